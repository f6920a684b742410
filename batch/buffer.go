// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package batch accumulates tile rectangles into a primitive buffer and
// serializes it into vertex data for a batched draw.
//
// One Buffer belongs to one render layer. It is cleared and refilled on a
// full repaint; its storage is kept between frames. An Encoder turns the
// buffer into bytes in one of two layouts: point sprites (one vertex per
// tile, expanded to a quad in the vertex stage) or explicit quads (four
// vertices per tile, drawn with an index buffer).
package batch

import "github.com/gogpu/tilemap/prim"

// Rect is one primitive: the 9 values a tile rectangle carries into the
// encoder.
type Rect struct {
	SX, SY int
	DX, DY int
	W, H   int
	AnimX  int
	AnimY  int
	Atlas  int
}

// Square reports whether r is square.
func (r Rect) Square() bool {
	return r.W == r.H
}

// Buffer is a growable primitive list. It implements prim.Emitter.
type Buffer struct {
	rects     []Rect
	hasAnim   bool
	nonSquare int
	version   uint64
}

// NewBuffer returns a buffer with room for n rectangles.
func NewBuffer(n int) *Buffer {
	return &Buffer{rects: make([]Rect, 0, n)}
}

// Emit appends r, splitting non-square rectangles into squares where the
// sides divide evenly. Empty rectangles are dropped.
func (b *Buffer) Emit(r prim.Request) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	rect := Rect{
		SX: r.SX, SY: r.SY,
		DX: r.DX, DY: r.DY,
		W: r.W, H: r.H,
		AnimX: r.AnimX, AnimY: r.AnimY,
		Atlas: r.Atlas,
	}
	switch {
	case r.W == r.H:
		b.Add(rect)
	case r.W%r.H == 0:
		n := r.W / r.H
		rect.W = r.H
		for i := 0; i < n; i++ {
			b.Add(rect)
			rect.SX += r.H
			rect.DX += r.H
		}
	case r.H%r.W == 0:
		n := r.H / r.W
		rect.H = r.W
		for i := 0; i < n; i++ {
			b.Add(rect)
			rect.SY += r.W
			rect.DY += r.W
		}
	default:
		b.Add(rect)
	}
}

// Add appends r without splitting.
func (b *Buffer) Add(r Rect) {
	b.rects = append(b.rects, r)
	if r.AnimX != 0 || r.AnimY != 0 {
		b.hasAnim = true
	}
	if !r.Square() {
		b.nonSquare++
	}
	b.version++
}

// Clear empties the buffer and keeps its storage.
func (b *Buffer) Clear() {
	b.rects = b.rects[:0]
	b.hasAnim = false
	b.nonSquare = 0
	b.version++
}

// Len returns the number of rectangles.
func (b *Buffer) Len() int {
	return len(b.rects)
}

// Cap returns the number of rectangles the buffer holds without growing.
func (b *Buffer) Cap() int {
	return cap(b.rects)
}

// Rects returns the rectangles. The slice is valid until the next Emit,
// Add or Clear.
func (b *Buffer) Rects() []Rect {
	return b.rects
}

// HasAnim reports whether any rectangle animates.
func (b *Buffer) HasAnim() bool {
	return b.hasAnim
}

// NonSquare returns the number of rectangles that could not be split into
// squares. Point-sprite encoding rejects buffers where it is non-zero.
func (b *Buffer) NonSquare() int {
	return b.nonSquare
}

// Version changes on every mutation. Encoders use it to skip re-encoding
// an unchanged buffer.
func (b *Buffer) Version() uint64 {
	return b.version
}
