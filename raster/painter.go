package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/tilemap/prim"
)

// ShadowColor is the fill of shadow rectangles, black at half opacity.
var ShadowColor = color.NRGBA{A: 128}

var shadowFill = image.NewUniform(ShadowColor)

// Painter draws requests into one surface. Source rectangles are copied
// from the atlas set with source-over compositing; shadows are filled with
// ShadowColor. Requests from empty slots draw nothing.
type Painter struct {
	Dst     draw.Image
	Atlases *AtlasSet
}

// Emit paints r.
func (p *Painter) Emit(r prim.Request) {
	dr := image.Rect(r.DX, r.DY, r.DX+r.W, r.DY+r.H)
	if r.IsShadow() {
		draw.Draw(p.Dst, dr, shadowFill, image.Point{}, draw.Over)
		return
	}
	if p.Atlases == nil {
		return
	}
	src, ok := p.Atlases.Source(r.Atlas)
	if !ok {
		return
	}
	sr := image.Rect(r.SX, r.SY, r.SX+r.W, r.SY+r.H)
	draw.Copy(p.Dst, dr.Min, src, sr, draw.Over, nil)
}

// ClearRect makes rect of dst fully transparent.
func ClearRect(dst draw.Image, rect image.Rectangle) {
	draw.Draw(dst, rect, image.Transparent, image.Point{}, draw.Src)
}
