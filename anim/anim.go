// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package anim encodes water and waterfall animation so geometry is built
// once and the frame is applied at draw time.
//
// A single counter advances once per tick. The visible frame is
// counter/TicksPerFrame. Each animated vertex carries a packed value that
// holds its per-frame source step and the cycle it follows; the draw stage
// decodes it with the counter from the uniform block:
//
//	packed = ((period << 1) | pingpong) * PackBase + step
//
// Offset is the CPU form of that decode and matches the shader exactly.
package anim

import (
	"errors"
	"fmt"
	"math"
)

// TicksPerFrame is the number of counter ticks per animation frame.
const TicksPerFrame = 30

// PackBase separates the step from the cycle header. Steps must be below it.
const PackBase = 2048

// ErrStepRange is returned by Pack for steps outside [0, PackBase).
var ErrStepRange = errors.New("anim: step out of range")

// Frame returns the animation frame of counter.
func Frame(counter int) int {
	if counter < 0 {
		return 0
	}
	return counter / TicksPerFrame
}

// Cycle describes the sequence of source offsets an animated tile steps
// through. A linear cycle visits 0..Steps-1 and restarts; a ping-pong cycle
// walks back down without repeating the ends.
type Cycle struct {
	Steps    int
	PingPong bool
}

var (
	// Water runs 0,1,2,1.
	Water = Cycle{Steps: 3, PingPong: true}
	// Waterfall runs 0,1,2.
	Waterfall = Cycle{Steps: 3, PingPong: false}
)

// Period returns the number of frames before the cycle repeats.
func (c Cycle) Period() int {
	if c.Steps <= 1 {
		return 1
	}
	if c.PingPong {
		return 2 * (c.Steps - 1)
	}
	return c.Steps
}

// Index returns the step index shown at frame.
func (c Cycle) Index(frame int) int {
	p := c.Period()
	idx := frame % p
	if idx < 0 {
		idx += p
	}
	if c.PingPong && idx > c.Steps-1 {
		idx = 2*(c.Steps-1) - idx
	}
	return idx
}

// Pack encodes step (pixels per cycle index) with cycle c. A zero step
// packs to 0, which decodes to no movement.
func Pack(step int, c Cycle) (float32, error) {
	if step < 0 || step >= PackBase {
		return 0, fmt.Errorf("%w: %d", ErrStepRange, step)
	}
	if step == 0 {
		return 0, nil
	}
	head := c.Period() << 1
	if c.PingPong {
		head |= 1
	}
	return float32(head*PackBase + step), nil
}

// Unpack splits a packed value into its step, period and ping-pong bit.
func Unpack(packed float32) (step, period int, pingPong bool) {
	if packed <= 0 {
		return 0, 0, false
	}
	head := int(math.Floor((float64(packed) + 0.5) / PackBase))
	step = int(packed) - head*PackBase
	return step, head >> 1, head&1 == 1
}

// Offset returns the source offset in pixels for packed at counter, with
// divisor ticks per frame. It follows the shader decode step by step.
func Offset(packed float32, counter, divisor int) float32 {
	step, period, pingPong := Unpack(packed)
	if period < 1 || divisor < 1 {
		return 0
	}
	frame := counter / divisor
	idx := frame % period
	if idx < 0 {
		idx += period
	}
	// For ping-pong cycles period = 2*(steps-1), so the mirror point is
	// period/2.
	if pingPong && 2*idx > period {
		idx = period - idx
	}
	return float32(idx * step)
}

// Encoder packs the per-axis animation steps of a rectangle. X steps
// follow the water cycle and Y steps the waterfall cycle unless configured
// otherwise.
type Encoder struct {
	X Cycle
	Y Cycle
}

// DefaultEncoder returns the encoder for water on X and waterfalls on Y.
func DefaultEncoder() Encoder {
	return Encoder{X: Water, Y: Waterfall}
}

// Pack encodes the two steps of one rectangle.
func (e Encoder) Pack(animX, animY int) (px, py float32, err error) {
	if px, err = Pack(animX, e.X); err != nil {
		return 0, 0, fmt.Errorf("anim x: %w", err)
	}
	if py, err = Pack(animY, e.Y); err != nil {
		return 0, 0, fmt.Errorf("anim y: %w", err)
	}
	return px, py, nil
}

// Wrap returns the number of frames after which both axes repeat.
func (e Encoder) Wrap() int {
	a, b := e.X.Period(), e.Y.Period()
	return a / gcd(a, b) * b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Uniform is the animation part of the draw uniform block.
type Uniform struct {
	Counter float32
	Divisor float32
}

// State holds the animation counter. The zero value starts at frame 0.
type State struct {
	Counter int
}

// Tick advances the counter by one and reports whether the frame changed.
func (s *State) Tick() bool {
	before := Frame(s.Counter)
	s.Counter++
	return Frame(s.Counter) != before
}

// Frame returns the current animation frame.
func (s *State) Frame() int {
	return Frame(s.Counter)
}

// Uniform returns the draw-time counter for e. The counter is reduced
// modulo the common period so it stays exact in float32.
func (s *State) Uniform(e Encoder) Uniform {
	span := e.Wrap() * TicksPerFrame
	c := s.Counter % span
	if c < 0 {
		c += span
	}
	return Uniform{Counter: float32(c), Divisor: TicksPerFrame}
}
