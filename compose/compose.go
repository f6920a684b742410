// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package compose decides what each map cell draws and on which layer.
//
// For one cell the compositor reads the four visual planes and the shadow
// bitmask, splits them into a lower list (under characters) and an upper
// list (over characters), and turns list entries into rectangles for a
// prim.Emitter. The lists are plain ints so a software target can compare
// them against the previous paint and skip unchanged cells:
//
//	id >= TableEdgeBase   table edge of the A2 tile id-TableEdgeBase above
//	id < 0                shadow with bitmask -id
//	otherwise             tile id
package compose

import (
	"slices"

	"github.com/gogpu/tilemap/autotile"
	"github.com/gogpu/tilemap/grid"
	"github.com/gogpu/tilemap/prim"
	"github.com/gogpu/tilemap/tileid"
)

// TableEdgeBase offsets table-edge entries so they cannot collide with
// tile ids.
const TableEdgeBase = 10000

// Layer identifies one of the two output layers.
type Layer int

const (
	// Lower is drawn below characters.
	Lower Layer = iota
	// Upper is drawn above characters.
	Upper
)

// LayerCount is the number of output layers.
const LayerCount = 2

// String returns "lower" or "upper".
func (l Layer) String() string {
	if l == Upper {
		return "upper"
	}
	return "lower"
}

// OverpassFunc reports whether the cell at map position (mx, my) is an
// overpass: planes 2 and 3 always draw on the upper layer there,
// regardless of their height flag.
type OverpassFunc func(mx, my int) bool

// Config holds the compositor inputs that stay fixed between map loads.
type Config struct {
	TileWidth  int
	TileHeight int
	Flags      tileid.Flags

	// Overpass is consulted for every cell. Nil means no overpasses.
	Overpass OverpassFunc

	// AtlasAvailable reports whether an atlas slot holds an image. Tiles
	// from missing slots draw nothing. Nil means every slot is available.
	AtlasAvailable func(slot int) bool
}

// CellPlan is the caller-owned result of Plan. Lower and Upper are reused
// across calls; Plan truncates them before filling.
type CellPlan struct {
	Lower []int
	Upper []int

	// Tile0 is plane 0 of the cell; software targets repaint A1 cells on
	// animation frames.
	Tile0 tileid.ID
	// Above1 is plane 1 of the cell above, the source of a table edge.
	Above1 tileid.ID
	// Shadow is the shadow bitmask of the cell.
	Shadow int
}

// List returns the list of layer l.
func (p *CellPlan) List(l Layer) []int {
	if l == Upper {
		return p.Upper
	}
	return p.Lower
}

// Animated reports whether the cell's lower layer changes with the
// water animation.
func (p *CellPlan) Animated() bool {
	return tileid.IsA1(p.Tile0)
}

// Compositor turns map cells into rectangles.
type Compositor struct {
	cfg Config
}

// New returns a compositor for cfg.
func New(cfg Config) *Compositor {
	return &Compositor{cfg: cfg}
}

// Config returns the compositor configuration.
func (c *Compositor) Config() Config {
	return c.cfg
}

// SetFlags replaces the tileset flags.
func (c *Compositor) SetFlags(f tileid.Flags) {
	c.cfg.Flags = f
}

// SetAtlasAvailable replaces the atlas availability hook.
func (c *Compositor) SetAtlasAvailable(fn func(slot int) bool) {
	c.cfg.AtlasAvailable = fn
}

// IsTable reports whether id is an A2 table tile under the current flags.
func (c *Compositor) IsTable(id tileid.ID) bool {
	return c.cfg.Flags.Table(id)
}

// Plan classifies the planes of cell (mx, my) into dst.
func (c *Compositor) Plan(g *grid.Grid, mx, my int, dst *CellPlan) {
	flags := c.cfg.Flags
	id0 := g.At(mx, my, 0)
	id1 := g.At(mx, my, 1)
	id2 := g.At(mx, my, 2)
	id3 := g.At(mx, my, 3)
	shadow := max(g.Shadow(mx, my), 0) & shadowMask
	above1 := g.At(mx, my-1, 1)

	lower := dst.Lower[:0]
	upper := dst.Upper[:0]

	put := func(id tileid.ID) {
		id = visible(id)
		if flags.Higher(id) {
			upper = append(upper, int(id))
		} else {
			lower = append(lower, int(id))
		}
	}

	put(id0)
	put(id1)

	if shadow != 0 {
		lower = append(lower, -shadow)
	}

	if flags.Table(above1) && !flags.Table(id1) && !tileid.IsShadowing(id0) {
		lower = append(lower, TableEdgeBase+int(above1))
	}

	if c.cfg.Overpass != nil && c.cfg.Overpass(mx, my) {
		upper = append(upper, int(visible(id2)), int(visible(id3)))
	} else {
		put(id2)
		put(id3)
	}

	dst.Lower = lower
	dst.Upper = upper
	dst.Tile0 = id0
	dst.Above1 = above1
	dst.Shadow = shadow
}

// EmitList draws every entry of list at (dx, dy). a selects how water and
// waterfalls are animated.
func (c *Compositor) EmitList(list []int, dx, dy int, a autotile.Animation, e prim.Emitter) {
	for _, v := range list {
		switch {
		case v < 0:
			autotile.Shadow(-v, c.cfg.TileWidth, c.cfg.TileHeight, dx, dy, e)
		case v >= TableEdgeBase:
			if c.available(1) {
				autotile.TableEdge(tileid.ID(v-TableEdgeBase), c.cfg.TileWidth, c.cfg.TileHeight, dx, dy, e)
			}
		default:
			c.EmitTile(tileid.ID(v), dx, dy, a, e)
		}
	}
}

// EmitTile draws one tile id at (dx, dy). Invisible ids and ids from a
// missing atlas slot draw nothing.
func (c *Compositor) EmitTile(id tileid.ID, dx, dy int, a autotile.Animation, e prim.Emitter) {
	if !tileid.IsVisible(id) {
		return
	}
	w, h := c.cfg.TileWidth, c.cfg.TileHeight
	if !tileid.IsAutotile(id) {
		r := autotile.Static(id, w, h, dx, dy)
		if c.available(r.Atlas) {
			e.Emit(r)
		}
		return
	}
	b, ok := autotile.Resolve(id, c.IsTable(id), a)
	if !ok || !c.available(b.Slot) {
		return
	}
	autotile.Quadrants(b, tileid.Shape(id), w, h, dx, dy, e)
}

// Cell plans (mx, my) into scratch and emits both lists at (dx, dy), lower
// first. It is the whole per-cell step of targets that rebuild every
// visible cell.
func (c *Compositor) Cell(g *grid.Grid, mx, my, dx, dy int, a autotile.Animation, lower, upper prim.Emitter, scratch *CellPlan) {
	c.Plan(g, mx, my, scratch)
	c.EmitList(scratch.Lower, dx, dy, a, lower)
	c.EmitList(scratch.Upper, dx, dy, a, upper)
}

func (c *Compositor) available(slot int) bool {
	if slot == prim.ShadowSlot || c.cfg.AtlasAvailable == nil {
		return true
	}
	return c.cfg.AtlasAvailable(slot)
}

// shadowMask keeps the four quadrant bits of the shadow plane.
const shadowMask = 0x0f

// visible maps ids that draw nothing to 0, leaving negative and
// TableEdgeBase-or-larger entries to the sentinels.
func visible(id tileid.ID) tileid.ID {
	if !tileid.IsVisible(id) {
		return 0
	}
	return id
}

// ListsEqual reports whether a and b hold the same entries in the same
// order.
func ListsEqual(a, b []int) bool {
	return slices.Equal(a, b)
}
