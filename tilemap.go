// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tilemap

import (
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/tilemap/anim"
	"github.com/gogpu/tilemap/autotile"
	"github.com/gogpu/tilemap/batch"
	"github.com/gogpu/tilemap/compose"
	"github.com/gogpu/tilemap/grid"
	"github.com/gogpu/tilemap/raster"
	"github.com/gogpu/tilemap/tileid"
)

// paintState tracks what one renderer last painted.
type paintState struct {
	needsRepaint bool
	startX       int
	startY       int
	frame        int
}

// Tilemap drives painting of a tile grid at a scroll origin.
type Tilemap struct {
	screenW, screenH int
	tileW, tileH     int
	margin           int
	width, height    int
	encoding         batch.Encoding

	grid    *grid.Grid
	comp    *compose.Compositor
	anim    anim.State
	originX float64
	originY float64

	raster       paintState
	rasterTarget *raster.Target
	batch        paintState

	plan compose.CellPlan
}

// New returns a tilemap with an empty 0×0 grid.
func New(opts ...Option) *Tilemap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tm := &Tilemap{
		screenW:  o.screenW,
		screenH:  o.screenH,
		tileW:    o.tileW,
		tileH:    o.tileH,
		margin:   o.margin,
		width:    o.screenW + 2*o.margin,
		height:   o.screenH + 2*o.margin,
		encoding: o.encoding,
		grid:     grid.Empty(0, 0),
		comp: compose.New(compose.Config{
			TileWidth:      o.tileW,
			TileHeight:     o.tileH,
			Overpass:       o.overpass,
			AtlasAvailable: o.atlasAvailable,
		}),
	}
	tm.Refresh()
	return tm
}

// Size returns the painted area including margins.
func (tm *Tilemap) Size() (w, h int) {
	return tm.width, tm.height
}

// ScreenSize returns the visible area.
func (tm *Tilemap) ScreenSize() (w, h int) {
	return tm.screenW, tm.screenH
}

// TileSize returns the tile size in pixels.
func (tm *Tilemap) TileSize() (w, h int) {
	return tm.tileW, tm.tileH
}

// Margin returns the number of pixels painted beyond each screen edge.
func (tm *Tilemap) Margin() int {
	return tm.margin
}

// Encoding returns the vertex layout batch renderers should use.
func (tm *Tilemap) Encoding() batch.Encoding {
	return tm.encoding
}

// Compositor returns the compositor shared by both renderers.
func (tm *Tilemap) Compositor() *compose.Compositor {
	return tm.comp
}

// Grid returns the current map data.
func (tm *Tilemap) Grid() *grid.Grid {
	return tm.grid
}

// SetData replaces the map data. A nil grid clears the map.
func (tm *Tilemap) SetData(g *grid.Grid) {
	if g == nil {
		g = grid.Empty(0, 0)
	}
	tm.grid = g
	tm.Refresh()
}

// SetFlags replaces the tile flags.
func (tm *Tilemap) SetFlags(f tileid.Flags) {
	tm.comp.SetFlags(f)
	tm.Refresh()
}

// SetAtlasAvailable replaces the atlas slot check.
func (tm *Tilemap) SetAtlasAvailable(fn func(slot int) bool) {
	tm.comp.SetAtlasAvailable(fn)
	tm.Refresh()
}

// SetOrigin sets the scroll position in pixels.
func (tm *Tilemap) SetOrigin(x, y float64) {
	tm.originX, tm.originY = x, y
}

// Origin returns the scroll position.
func (tm *Tilemap) Origin() (x, y float64) {
	return tm.originX, tm.originY
}

// Update advances the animation counter by one tick.
func (tm *Tilemap) Update() {
	tm.anim.Tick()
}

// AnimationCount returns the number of ticks since creation.
func (tm *Tilemap) AnimationCount() int {
	return tm.anim.Counter
}

// AnimationFrame returns the current animation frame.
func (tm *Tilemap) AnimationFrame() int {
	return tm.anim.Frame()
}

// AnimationUniform returns the counter values for the draw stage of a
// batch renderer.
func (tm *Tilemap) AnimationUniform() anim.Uniform {
	return tm.anim.Uniform(anim.DefaultEncoder())
}

// Refresh forces every renderer to repaint everything on its next paint,
// forgetting what the raster cache holds.
func (tm *Tilemap) Refresh() {
	tm.raster.needsRepaint = true
	tm.batch.needsRepaint = true
}

// Start returns the map cell painted at the top-left of the layers.
func (tm *Tilemap) Start() (x, y int) {
	ox := int(math.Floor(tm.originX))
	oy := int(math.Floor(tm.originY))
	return grid.FloorDiv(ox-tm.margin, tm.tileW), grid.FloorDiv(oy-tm.margin, tm.tileH)
}

// Cells returns the number of columns and rows painted per pass.
func (tm *Tilemap) Cells() (cols, rows int) {
	return ceilDiv(tm.width, tm.tileW) + 1, ceilDiv(tm.height, tm.tileH) + 1
}

// LayerOffset returns where batch layer pixel (0, 0) lands on screen.
func (tm *Tilemap) LayerOffset() (x, y int) {
	sx, sy := tm.Start()
	ox := int(math.Floor(tm.originX))
	oy := int(math.Floor(tm.originY))
	return sx*tm.tileW - ox, sy*tm.tileH - oy
}

// NewRasterTarget returns a software target sized for this tilemap.
func (tm *Tilemap) NewRasterTarget(atlases *raster.AtlasSet) *raster.Target {
	return raster.NewTarget(tm.width, tm.height, tm.tileW, tm.tileH, atlases)
}

// PaintRaster brings t up to date. Cells are visited when the map was
// refreshed, the view moved by a tile or the animation frame advanced; the
// target cache then skips cells whose lists did not change. It reports
// whether a pass ran.
func (tm *Tilemap) PaintRaster(t *raster.Target) bool {
	sx, sy := tm.Start()
	frame := tm.AnimationFrame()
	s := &tm.raster
	if t != tm.rasterTarget {
		tm.rasterTarget = t
		s.needsRepaint = true
	}
	if !s.needsRepaint && s.frame == frame && s.startX == sx && s.startY == sy {
		return false
	}
	if s.needsRepaint {
		t.Reset()
	}
	frameUpdated := s.frame != frame
	s.frame = frame
	s.startX, s.startY = sx, sy

	t.BeginPaint()
	cols, rows := tm.Cells()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t.PaintCell(tm.comp, tm.grid, sx+x, sy+y, frame, frameUpdated)
		}
	}
	s.needsRepaint = false
	if d := t.Damage(); d != nil {
		Logger().Debug("tilemap raster pass",
			"start_x", sx, "start_y", sy, "frame", frame, "redrawn", d.Count())
	}
	return true
}

// ComposeRaster draws both layers of t onto dst at the current origin.
func (tm *Tilemap) ComposeRaster(dst draw.Image, t *raster.Target) {
	ox := int(math.Floor(tm.originX))
	oy := int(math.Floor(tm.originY))
	t.Compose(dst, t.Layout(ox, oy, tm.margin))
}

// PaintBatch rebuilds lower and upper when the map was refreshed or the
// view moved by a tile. Animation does not trigger a rebuild; the draw
// stage animates from AnimationUniform. Cell (0, 0) of the batch is drawn
// at layer pixel (0, 0); see LayerOffset. It reports whether the buffers
// were rebuilt.
func (tm *Tilemap) PaintBatch(lower, upper *batch.Buffer) bool {
	sx, sy := tm.Start()
	s := &tm.batch
	if !s.needsRepaint && s.startX == sx && s.startY == sy {
		return false
	}
	s.startX, s.startY = sx, sy

	lower.Clear()
	upper.Clear()
	cols, rows := tm.Cells()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			tm.comp.Cell(tm.grid, sx+x, sy+y, x*tm.tileW, y*tm.tileH,
				autotile.Deferred, lower, upper, &tm.plan)
		}
	}
	s.needsRepaint = false
	Logger().Debug("tilemap batch pass",
		"start_x", sx, "start_y", sy, "lower", lower.Len(), "upper", upper.Len())
	return true
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
