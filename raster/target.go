// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster paints tile maps into software surfaces.
//
// Each layer has a backing surface one tile larger than the view in both
// directions. Map cells land at their position modulo the surface size, so
// scrolling repaints only the newly exposed row or column and the surface
// is never reallocated. A Cache remembers what every backing cell holds so
// unchanged cells are skipped. Layout splits the wrapped surface into the
// four pieces that reassemble the view on screen.
package raster

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/tilemap/autotile"
	"github.com/gogpu/tilemap/compose"
	"github.com/gogpu/tilemap/grid"
)

// Target is the software render target: two wrapped backing surfaces with
// their repaint cache.
type Target struct {
	width, height int
	tileW, tileH  int
	layerW        int
	layerH        int

	layers  [compose.LayerCount]*image.RGBA
	cache   *Cache
	damage  *Damage
	atlases *AtlasSet

	plan    compose.CellPlan
	painter Painter
}

// NewTarget returns a target for a view of width×height pixels (margins
// included) and tiles of tileW×tileH.
func NewTarget(width, height, tileW, tileH int, atlases *AtlasSet) *Target {
	if tileW <= 0 {
		tileW = 1
	}
	if tileH <= 0 {
		tileH = 1
	}
	cols := ceilDiv(width, tileW) + 1
	rows := ceilDiv(height, tileH) + 1
	t := &Target{
		width:   width,
		height:  height,
		tileW:   tileW,
		tileH:   tileH,
		layerW:  cols * tileW,
		layerH:  rows * tileH,
		cache:   NewCache(cols, rows),
		damage:  NewDamage(cols, rows),
		atlases: atlases,
	}
	for l := range t.layers {
		t.layers[l] = image.NewRGBA(image.Rect(0, 0, t.layerW, t.layerH))
	}
	t.painter.Atlases = atlases
	return t
}

// Layer returns the backing surface of l.
func (t *Target) Layer(l compose.Layer) *image.RGBA {
	return t.layers[l]
}

// LayerSize returns the backing surface size in pixels.
func (t *Target) LayerSize() (w, h int) {
	return t.layerW, t.layerH
}

// Cache returns the repaint cache.
func (t *Target) Cache() *Cache {
	return t.cache
}

// Damage returns the cells redrawn since the last BeginPaint.
func (t *Target) Damage() *Damage {
	return t.damage
}

// Atlases returns the atlas set the target paints from.
func (t *Target) Atlases() *AtlasSet {
	return t.atlases
}

// Reset forgets the cache and clears both surfaces.
func (t *Target) Reset() {
	t.cache.Reset()
	for _, l := range t.layers {
		ClearRect(l, l.Bounds())
	}
}

// BeginPaint clears the damage record before a paint pass.
func (t *Target) BeginPaint() {
	if t.damage != nil {
		t.damage.Clear()
	}
}

// PaintCell repaints map cell (mx, my) where its list changed. The lower
// layer of a cell whose plane 0 is water is also repainted when
// frameUpdated is set. It returns whether either layer was redrawn.
func (t *Target) PaintCell(c *compose.Compositor, g *grid.Grid, mx, my, frame int, frameUpdated bool) bool {
	dx := grid.Mod(mx*t.tileW, t.layerW)
	dy := grid.Mod(my*t.tileH, t.layerH)
	lx := dx / t.tileW
	ly := dy / t.tileH

	c.Plan(g, mx, my, &t.plan)
	a := autotile.Baked(frame)
	cell := image.Rect(dx, dy, dx+t.tileW, dy+t.tileH)

	redrawn := false
	for l := compose.Lower; l <= compose.Upper; l++ {
		list := t.plan.List(l)
		animated := l == compose.Lower && t.plan.Animated() && frameUpdated
		if !t.cache.NeedsRedraw(l, lx, ly, list, animated) {
			continue
		}
		ClearRect(t.layers[l], cell)
		t.painter.Dst = t.layers[l]
		c.EmitList(list, dx, dy, a, &t.painter)
		t.cache.Store(l, lx, ly, list)
		redrawn = true
	}
	if redrawn && t.damage != nil {
		t.damage.Mark(lx, ly)
	}
	return redrawn
}

// Blit is one piece of the wrapped surface: Src of the backing surface is
// drawn at Dst on screen.
type Blit struct {
	Src image.Rectangle
	Dst image.Point
}

// Layout returns the four pieces that show the view at origin (ox, oy).
// The view spans the target width and height and starts margin pixels
// above and left of the screen origin.
func (t *Target) Layout(ox, oy, margin int) [4]Blit {
	x2 := grid.Mod(ox-margin, t.layerW)
	y2 := grid.Mod(oy-margin, t.layerH)
	w1 := t.layerW - x2
	h1 := t.layerH - y2
	w2 := max(t.width-w1, 0)
	h2 := max(t.height-h1, 0)

	origin := image.Pt(-margin, -margin)
	return [4]Blit{
		{Src: image.Rect(x2, y2, x2+w1, y2+h1), Dst: origin},
		{Src: image.Rect(0, y2, w2, y2+h1), Dst: origin.Add(image.Pt(w1, 0))},
		{Src: image.Rect(x2, 0, x2+w1, h2), Dst: origin.Add(image.Pt(0, h1))},
		{Src: image.Rect(0, 0, w2, h2), Dst: origin.Add(image.Pt(w1, h1))},
	}
}

// ComposeLayer draws layer l onto dst using blits.
func (t *Target) ComposeLayer(dst draw.Image, l compose.Layer, blits [4]Blit) {
	src := t.layers[l]
	for _, b := range blits {
		if b.Src.Empty() {
			continue
		}
		draw.Copy(dst, b.Dst, src, b.Src, draw.Over, nil)
	}
}

// Compose draws the lower layer then the upper layer onto dst.
func (t *Target) Compose(dst draw.Image, blits [4]Blit) {
	t.ComposeLayer(dst, compose.Lower, blits)
	t.ComposeLayer(dst, compose.Upper, blits)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
