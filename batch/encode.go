// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/tilemap/anim"
)

// Encoding selects the vertex layout.
type Encoding int

const (
	// EncodingQuad writes four vertices per rectangle for indexed drawing.
	EncodingQuad Encoding = iota
	// EncodingPointSprite writes one vertex per square rectangle.
	EncodingPointSprite
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingQuad:
		return "quad"
	case EncodingPointSprite:
		return "point-sprite"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Vertex layouts, in float32 values.
//
// Point sprite, one vertex per rectangle:
//
//	dst (x, y) | src (u+shiftU, v+shiftV) | size | animX | animY | unit
//
// Quad, four vertices per rectangle (TL, TR, BR, BL):
//
//	pos (x, y) | uv (u, v) | frame (u0, v0, u1, v1) | animX | animY | unit
const (
	PointSpriteFloats = 8
	QuadFloats        = 11
	QuadVertices      = 4
	QuadIndices       = 6
)

// SlotSize is the size of one atlas slot inside a unit. Each unit packs
// four slots in a 2×2 arrangement.
const SlotSize = 1024

// FrameInset shrinks the quad sampling frame so filtering never reads the
// neighbouring atlas cell.
const FrameInset = 0.5

// MaxBufferBytes bounds the staging and GPU buffer size.
const MaxBufferBytes = 256 << 20

// MaxQuads is the number of quads addressable with 16-bit indices.
const MaxQuads = (math.MaxUint16 + 1) / QuadVertices

var (
	// ErrBufferTooLarge is returned when a buffer would exceed MaxBufferBytes.
	ErrBufferTooLarge = errors.New("batch: buffer too large")

	// ErrNonSquare is returned when point-sprite encoding meets a
	// rectangle that is not square.
	ErrNonSquare = errors.New("batch: non-square rectangle in point-sprite encoding")

	// ErrTooManyQuads is returned when quads exceed the 16-bit index range.
	ErrTooManyQuads = errors.New("batch: too many quads for 16-bit indices")
)

// Stride returns the number of bytes one rectangle occupies.
func (e Encoding) Stride() int {
	if e == EncodingPointSprite {
		return PointSpriteFloats * 4
	}
	return QuadVertices * QuadFloats * 4
}

// VertexStride returns the byte stride of one vertex.
func (e Encoding) VertexStride() int {
	if e == EncodingPointSprite {
		return PointSpriteFloats * 4
	}
	return QuadFloats * 4
}

// Unit splits an atlas slot into its texture unit and the offset of the
// slot inside that unit. Shadows (slot -1) keep unit -1.
func Unit(atlas int) (unit, shiftU, shiftV int) {
	return atlas >> 2, SlotSize * (atlas & 1), SlotSize * ((atlas >> 1) & 1)
}

// Stats describes one Encode call.
type Stats struct {
	Rects    int
	Vertices int
	Indices  int
	Bytes    int
	// Grew is set when the staging capacity had to grow.
	Grew bool
	// Reused is set when the buffer had not changed since the last call.
	Reused bool
}

// GrowCapacity returns the capacity for need bytes: current, or doubled
// from stride (or current when non-zero) until it fits.
func GrowCapacity(current, need, stride int) (int, error) {
	if need > MaxBufferBytes {
		return current, fmt.Errorf("%w: %d bytes", ErrBufferTooLarge, need)
	}
	if need <= current {
		return current, nil
	}
	c := current
	if c <= 0 {
		c = stride
	}
	for c < need {
		c *= 2
	}
	if c > MaxBufferBytes {
		c = MaxBufferBytes
	}
	return c, nil
}

// Encoder serializes buffers into vertex bytes. The staging storage is
// reused and only grows.
type Encoder struct {
	encoding Encoding
	anim     anim.Encoder

	staging  []byte
	capacity int

	last    *Buffer
	version uint64
	stats   Stats
}

// NewEncoder returns an encoder for encoding e using a for animation
// packing.
func NewEncoder(e Encoding, a anim.Encoder) *Encoder {
	return &Encoder{encoding: e, anim: a}
}

// Encoding returns the vertex layout.
func (e *Encoder) Encoding() Encoding {
	return e.encoding
}

// Capacity returns the staging capacity in bytes. It never decreases.
func (e *Encoder) Capacity() int {
	return e.capacity
}

// Encode serializes b. The returned slice aliases the staging storage and
// is valid until the next call.
func (e *Encoder) Encode(b *Buffer) ([]byte, Stats, error) {
	if e.last != nil && b == e.last && b.Version() == e.version {
		s := e.stats
		s.Grew = false
		s.Reused = true
		return e.staging[:s.Bytes], s, nil
	}

	rects := b.Rects()
	if e.encoding == EncodingPointSprite && b.NonSquare() > 0 {
		return nil, Stats{}, fmt.Errorf("%w: %d rectangles", ErrNonSquare, b.NonSquare())
	}

	stride := e.encoding.Stride()
	need := len(rects) * stride
	capacity, err := GrowCapacity(e.capacity, need, stride)
	if err != nil {
		return nil, Stats{}, err
	}
	s := Stats{Rects: len(rects), Bytes: need}
	if capacity != e.capacity {
		e.capacity = capacity
		e.staging = make([]byte, capacity)
		s.Grew = true
	}

	data := e.staging[:need]
	off := 0
	for i, r := range rects {
		ax, ay, err := e.anim.Pack(r.AnimX, r.AnimY)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("rect %d: %w", i, err)
		}
		if e.encoding == EncodingPointSprite {
			off = writePointSprite(data, off, r, ax, ay)
		} else {
			off = writeQuad(data, off, r, ax, ay)
		}
	}

	if e.encoding == EncodingPointSprite {
		s.Vertices = len(rects)
	} else {
		s.Vertices = len(rects) * QuadVertices
		s.Indices = len(rects) * QuadIndices
	}

	e.last = b
	e.version = b.Version()
	e.stats = s
	return data, s, nil
}

func writePointSprite(buf []byte, off int, r Rect, ax, ay float32) int {
	unit, shiftU, shiftV := Unit(r.Atlas)
	off = putFloat(buf, off, float32(r.DX))
	off = putFloat(buf, off, float32(r.DY))
	off = putFloat(buf, off, float32(r.SX+shiftU))
	off = putFloat(buf, off, float32(r.SY+shiftV))
	off = putFloat(buf, off, float32(r.W))
	off = putFloat(buf, off, ax)
	off = putFloat(buf, off, ay)
	return putFloat(buf, off, float32(unit))
}

func writeQuad(buf []byte, off int, r Rect, ax, ay float32) int {
	unit, shiftU, shiftV := Unit(r.Atlas)
	x0, y0 := float32(r.DX), float32(r.DY)
	x1, y1 := float32(r.DX+r.W), float32(r.DY+r.H)
	u0, v0 := float32(r.SX+shiftU), float32(r.SY+shiftV)
	u1, v1 := u0+float32(r.W), v0+float32(r.H)
	frame := [4]float32{u0 + FrameInset, v0 + FrameInset, u1 - FrameInset, v1 - FrameInset}

	corners := [QuadVertices][4]float32{
		{x0, y0, u0, v0}, // top-left
		{x1, y0, u1, v0}, // top-right
		{x1, y1, u1, v1}, // bottom-right
		{x0, y1, u0, v1}, // bottom-left
	}
	for _, c := range corners {
		for _, f := range c {
			off = putFloat(buf, off, f)
		}
		for _, f := range frame {
			off = putFloat(buf, off, f)
		}
		off = putFloat(buf, off, ax)
		off = putFloat(buf, off, ay)
		off = putFloat(buf, off, float32(unit))
	}
	return off
}

func putFloat(buf []byte, off int, f float32) int {
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
	return off + 4
}

// QuadIndexList returns the triangle indices of n quads: 0,1,2 and 2,3,0
// per quad.
func QuadIndexList(n int) ([]uint16, error) {
	if n > MaxQuads {
		return nil, fmt.Errorf("%w: %d", ErrTooManyQuads, n)
	}
	indices := make([]uint16, n*QuadIndices)
	for i := 0; i < n; i++ {
		base := i * QuadIndices
		vertex := uint16(i * QuadVertices) //nolint:gosec // n is bounded by MaxQuads

		indices[base+0] = vertex + 0
		indices[base+1] = vertex + 1
		indices[base+2] = vertex + 2

		indices[base+3] = vertex + 2
		indices[base+4] = vertex + 3
		indices[base+5] = vertex + 0
	}
	return indices, nil
}

// QuadIndexBytes serializes the indices of n quads for upload.
func QuadIndexBytes(n int) ([]byte, error) {
	indices, err := QuadIndexList(n)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data, nil
}
