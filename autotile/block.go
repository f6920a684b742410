// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package autotile holds the autotile shape tables and turns a tile id
// into source quadrant rectangles.
//
// An autotile kind occupies a block of the tileset image. The shape index
// selects, for each screen quadrant, which half-tile of the block is
// copied. Animated water and waterfalls either shift the block origin by
// the current frame (Baked) or leave it in place and report a per-frame
// pixel step for the draw stage to apply (deferred).
package autotile

import (
	"github.com/gogpu/tilemap/prim"
	"github.com/gogpu/tilemap/tileid"
)

// waterSurface is the ping-pong sequence of water surface blocks.
var waterSurface = [4]int{0, 1, 2, 1}

// Animation selects how animated blocks are resolved.
type Animation struct {
	// Baked shifts the block origin by Frame. When false the origin is
	// left unshifted and the block carries AnimX/AnimY steps instead.
	Baked bool
	// Frame is the animation frame, counter/30.
	Frame int
}

// Deferred is the animation mode of batched targets.
var Deferred = Animation{}

// Baked returns the animation mode for a software target at frame.
func Baked(frame int) Animation {
	return Animation{Baked: true, Frame: frame}
}

func (a Animation) waterIndex() int {
	return waterSurface[mod(a.Frame, 4)]
}

func (a Animation) fallIndex() int {
	return mod(a.Frame, 3)
}

// Block is a resolved autotile source block.
type Block struct {
	Slot    int
	BX, BY  int
	Table   Table
	IsTable bool
	// AnimX and AnimY are per-frame source steps in tile units: 2 for
	// water (two blocks per surface frame), 1 for waterfalls.
	AnimX, AnimY int
}

// Resolve maps an autotile id to its source block. isTable marks A2 table
// tiles; it is ignored outside A2. Resolve returns false for ids that are
// not autotiles.
func Resolve(id tileid.ID, isTable bool, a Animation) (Block, bool) {
	if !tileid.IsAutotile(id) || id >= tileid.Max {
		return Block{}, false
	}
	kind := tileid.Kind(id)
	tx := kind % 8
	ty := kind / 8
	b := Block{Table: Floor}

	switch tileid.BandOf(id) {
	case tileid.BandA1:
		b.Slot = 0
		switch kind {
		case 0, 1:
			if kind == 1 {
				b.BY = 3
			}
			if a.Baked {
				b.BX = a.waterIndex() * 2
			} else {
				b.AnimX = 2
			}
		case 2:
			b.BX, b.BY = 6, 0
		case 3:
			b.BX, b.BY = 6, 3
		default:
			b.BX = tx / 4 * 8
			b.BY = ty*6 + tx/2%2*3
			if kind%2 == 0 {
				if a.Baked {
					b.BX += a.waterIndex() * 2
				} else {
					b.AnimX = 2
				}
			} else {
				b.BX += 6
				b.Table = Waterfall
				if a.Baked {
					b.BY += a.fallIndex()
				} else {
					b.AnimY = 1
				}
			}
		}
	case tileid.BandA2:
		b.Slot = 1
		b.BX = tx * 2
		b.BY = (ty - 2) * 3
		b.IsTable = isTable
	case tileid.BandA3:
		b.Slot = 2
		b.BX = tx * 2
		b.BY = (ty - 6) * 2
		b.Table = Wall
	case tileid.BandA4:
		b.Slot = 3
		b.BX = tx * 2
		// (ty-10)*2.5, plus 0.5 on odd rows, floored. The sum is
		// non-negative for every A4 kind so integer division floors.
		half := (ty - 10) * 5
		if ty%2 == 1 {
			half++
			b.Table = Wall
		}
		b.BY = half / 2
	}
	return b, true
}

// Quadrants emits the four quadrant rectangles of shape for block b drawn
// at (dx, dy). Table tiles split the quadrants of their top visual row so
// the legs show through the table edge.
func Quadrants(b Block, shape, tileW, tileH, dx, dy int, e prim.Emitter) {
	entry := b.Table.At(shape)
	w1 := tileW / 2
	h1 := tileH / 2
	animX := b.AnimX * tileW
	animY := b.AnimY * tileH
	for i, q := range entry {
		sx1 := (b.BX*2 + q.X) * w1
		sy1 := (b.BY*2 + q.Y) * h1
		dx1 := dx + (i%2)*w1
		dy1 := dy + (i/2)*h1
		if b.IsTable && (q.Y == 1 || q.Y == 5) {
			qx2 := q.X
			if q.Y == 1 {
				qx2 = (4 - q.X) % 4
			}
			sx2 := (b.BX*2 + qx2) * w1
			sy2 := (b.BY*2 + 3) * h1
			e.Emit(prim.Request{Atlas: b.Slot, SX: sx2, SY: sy2, DX: dx1, DY: dy1, W: w1, H: h1, AnimX: animX, AnimY: animY})
			e.Emit(prim.Request{Atlas: b.Slot, SX: sx1, SY: sy1, DX: dx1, DY: dy1 + h1/2, W: w1, H: h1 / 2, AnimX: animX, AnimY: animY})
			continue
		}
		e.Emit(prim.Request{Atlas: b.Slot, SX: sx1, SY: sy1, DX: dx1, DY: dy1, W: w1, H: h1, AnimX: animX, AnimY: animY})
	}
}

// TableEdge emits the front edge of the A2 table id onto the cell below
// it at (dx, dy): the lower halves of the table's bottom quadrants, drawn
// over the top of the cell. Non-A2 ids emit nothing.
func TableEdge(id tileid.ID, tileW, tileH, dx, dy int, e prim.Emitter) {
	if !tileid.IsA2(id) {
		return
	}
	kind := tileid.Kind(id)
	bx := kind % 8 * 2
	by := (kind/8 - 2) * 3
	entry := Floor.At(tileid.Shape(id))
	w1 := tileW / 2
	h1 := tileH / 2
	for i := 0; i < 2; i++ {
		q := entry[2+i]
		e.Emit(prim.Request{
			Atlas: 1,
			SX:    (bx*2 + q.X) * w1,
			SY:    (by*2+q.Y)*h1 + h1/2,
			DX:    dx + i*w1,
			DY:    dy,
			W:     w1,
			H:     h1 / 2,
		})
	}
}

// Static returns the full-tile rectangle of a non-autotile id.
func Static(id tileid.ID, tileW, tileH, dx, dy int) prim.Request {
	n := int(id)
	return prim.Request{
		Atlas: tileid.StaticSlot(id),
		SX:    (n/128%2*8 + n%8) * tileW,
		SY:    (n % 256 / 8 % 16) * tileH,
		DX:    dx,
		DY:    dy,
		W:     tileW,
		H:     tileH,
	}
}

// Shadow emits one half-tile shadow rectangle per set bit of the low
// nibble: 0x1 top-left, 0x2 top-right, 0x4 bottom-left, 0x8 bottom-right.
func Shadow(bits, tileW, tileH, dx, dy int, e prim.Emitter) {
	if bits&0x0f == 0 {
		return
	}
	w1 := tileW / 2
	h1 := tileH / 2
	for i := 0; i < 4; i++ {
		if bits&(1<<i) == 0 {
			continue
		}
		e.Emit(prim.Request{
			Atlas: prim.ShadowSlot,
			DX:    dx + (i%2)*w1,
			DY:    dy + (i/2)*h1,
			W:     w1,
			H:     h1,
		})
	}
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
