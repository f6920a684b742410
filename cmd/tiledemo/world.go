package main

import (
	"image"
	"image/color"
	"math/rand/v2"

	"golang.org/x/image/draw"

	"github.com/gogpu/tilemap/grid"
	"github.com/gogpu/tilemap/raster"
	"github.com/gogpu/tilemap/tileid"
)

// Tile ids used by the generated world.
var (
	grassID     = tileid.MakeAutotile(16, 0)
	tableID     = tileid.MakeAutotile(17, 0)
	waterID     = tileid.MakeAutotile(0, 0)
	waterfallID = tileid.MakeAutotile(5, 0)
	roofID      = tileid.MakeAutotile(48, 0)
	wallID      = tileid.MakeAutotile(88, 0)
)

const (
	treeTrunkID tileid.ID = 16
	treeTopID   tileid.ID = 8
	bridgeID    tileid.ID = 24
)

// world is a generated map with its flags and overpass cells.
type world struct {
	grid     *grid.Grid
	flags    tileid.Flags
	overpass map[image.Point]bool
}

func (w *world) isOverpass(mx, my int) bool {
	return w.overpass[image.Pt(mx, my)]
}

func generateWorld(width, height int, seed uint64) *world {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := grid.Empty(width, height)
	w := &world{
		grid:     g,
		flags:    make(tileid.Flags, tileid.Max),
		overpass: make(map[image.Point]bool),
	}
	for k := 0; k < tileid.ShapesPerKind; k++ {
		w.flags[tileid.MakeAutotile(17, k)] |= tileid.FlagTable
	}
	w.flags[treeTopID] |= tileid.FlagHigher

	set := func(x, y, z int, id tileid.ID) {
		if x >= 0 && x < width && y >= 0 && y < height {
			g.Data[(z*height+y)*width+x] = int(id)
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			set(x, y, 0, grassID)
		}
	}

	// Pond with a bridge across its middle row.
	cx, cy := width/3, height/2
	rx, ry := max(width/8, 2), max(height/8, 2)
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx, dy := float64(x-cx)/float64(rx), float64(y-cy)/float64(ry)
			if dx*dx+dy*dy <= 1 {
				set(x, y, 0, waterID)
			}
		}
	}
	for x := cx - rx; x <= cx+rx; x++ {
		set(x, cy, 2, bridgeID)
		w.overpass[image.Pt(x, cy)] = true
	}

	// Waterfall feeding the pond from the north.
	for y := cy - ry - 4; y < cy-ry; y++ {
		set(cx, y, 0, waterfallID)
	}

	// A house: roof over a wall row, shadow to the east.
	hx, hy := width*2/3, height/3
	for x := hx; x < hx+4; x++ {
		set(x, hy, 0, roofID)
		set(x, hy+1, 0, roofID)
		set(x, hy+2, 0, wallID)
	}
	for y := hy; y < hy+3; y++ {
		set(hx+4, y, grid.ShadowPlane, 0x5)
	}

	// A table row in front of the house.
	for x := hx; x < hx+3; x++ {
		set(x, hy+4, 1, tableID)
	}

	// Scattered trees, top half on the upper layer.
	for i := 0; i < width*height/24; i++ {
		x, y := rng.IntN(width), 1+rng.IntN(height-1)
		if g.At(x, y, 0) != grassID || g.At(x, y-1, 0) != grassID || g.At(x, y, 2) != 0 {
			continue
		}
		set(x, y, 2, treeTrunkID)
		set(x, y-1, 3, treeTopID)
	}
	return w
}

// Atlas layouts in tiles, per slot.
var atlasTiles = map[int]image.Point{
	0: {16, 12}, // A1
	1: {16, 12}, // A2
	2: {16, 8},  // A3
	3: {16, 15}, // A4
	5: {16, 16}, // B
}

var atlasBase = map[int]color.RGBA{
	0: {40, 90, 200, 255},
	1: {70, 150, 60, 255},
	2: {170, 60, 50, 255},
	3: {140, 140, 150, 255},
	5: {120, 80, 40, 255},
}

// buildAtlases draws a procedural sheet per slot. Every half-tile cell
// gets its own shade so autotile quadrants and animation frames are
// visibly different.
func buildAtlases(tile int) *raster.AtlasSet {
	set := raster.NewAtlasSet()
	half := tile / 2
	for slot, size := range atlasTiles {
		img := image.NewRGBA(image.Rect(0, 0, size.X*tile, size.Y*tile))
		base := atlasBase[slot]
		for y := 0; y < size.Y*2; y++ {
			for x := 0; x < size.X*2; x++ {
				shade := uint8((x*7 + y*13) % 48)
				c := color.RGBA{
					R: clampAdd(base.R, shade),
					G: clampAdd(base.G, shade),
					B: clampAdd(base.B, shade),
					A: 255,
				}
				cell := image.Rect(x*half, y*half, (x+1)*half, (y+1)*half)
				draw.Draw(img, cell, &image.Uniform{C: c}, image.Point{}, draw.Src)
			}
		}
		set.Set(slot, img)
	}
	return set
}

func clampAdd(a, b uint8) uint8 {
	if s := int(a) + int(b); s < 255 {
		return uint8(s)
	}
	return 255
}
