// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package prim defines the textured rectangle that flows from the
// compositor into the render targets.
package prim

import "fmt"

// ShadowSlot is the atlas slot of a shadow rectangle. Shadows sample no
// texture; targets fill them with the shadow colour.
const ShadowSlot = -1

// Request is one textured rectangle: copy W×H pixels from (SX, SY) of
// atlas slot Atlas to (DX, DY).
//
// AnimX and AnimY are the per-frame source advance in pixels along each
// axis, or zero for static sources. Targets that bake animation into the
// source position always receive zero.
type Request struct {
	Atlas  int
	SX, SY int
	DX, DY int
	W, H   int
	AnimX  int
	AnimY  int
}

// IsShadow reports whether r is a shadow fill.
func (r Request) IsShadow() bool {
	return r.Atlas == ShadowSlot
}

// Animated reports whether r advances with the animation counter.
func (r Request) Animated() bool {
	return r.AnimX > 0 || r.AnimY > 0
}

// String returns a compact description for diagnostics.
func (r Request) String() string {
	return fmt.Sprintf("Request(atlas=%d src=%d,%d dst=%d,%d %dx%d anim=%d,%d)",
		r.Atlas, r.SX, r.SY, r.DX, r.DY, r.W, r.H, r.AnimX, r.AnimY)
}

// Emitter receives rectangles from the compositor. The software target
// paints them into a backing surface; the batch target appends them to a
// primitive buffer.
type Emitter interface {
	Emit(r Request)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(r Request)

// Emit calls f(r).
func (f EmitterFunc) Emit(r Request) { f(r) }

// Collector is an Emitter that records every request in order.
type Collector struct {
	Requests []Request
}

// Emit appends r.
func (c *Collector) Emit(r Request) {
	c.Requests = append(c.Requests, r)
}

// Reset drops recorded requests and keeps the storage.
func (c *Collector) Reset() {
	c.Requests = c.Requests[:0]
}
