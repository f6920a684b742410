package tilemap

import (
	"github.com/gogpu/tilemap/batch"
	"github.com/gogpu/tilemap/compose"
)

// Default geometry.
const (
	DefaultScreenWidth  = 300
	DefaultScreenHeight = 300
	DefaultTileWidth    = 48
	DefaultTileHeight   = 48
	DefaultMargin       = 20
)

// Option configures a Tilemap during creation.
//
// Example:
//
//	tm := tilemap.New(
//	    tilemap.WithScreenSize(816, 624),
//	    tilemap.WithTileSize(48, 48),
//	)
type Option func(*options)

type options struct {
	screenW, screenH int
	tileW, tileH     int
	margin           int
	encoding         batch.Encoding
	overpass         compose.OverpassFunc
	atlasAvailable   func(slot int) bool
}

func defaultOptions() options {
	return options{
		screenW:  DefaultScreenWidth,
		screenH:  DefaultScreenHeight,
		tileW:    DefaultTileWidth,
		tileH:    DefaultTileHeight,
		margin:   DefaultMargin,
		encoding: batch.EncodingQuad,
	}
}

// WithScreenSize sets the visible area in pixels. The painted area adds
// the margin on every side.
func WithScreenSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.screenW, o.screenH = w, h
		}
	}
}

// WithTileSize sets the tile size in pixels.
func WithTileSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.tileW, o.tileH = w, h
		}
	}
}

// WithMargin sets the number of pixels painted beyond each screen edge.
func WithMargin(m int) Option {
	return func(o *options) {
		if m >= 0 {
			o.margin = m
		}
	}
}

// WithEncoding selects the vertex layout used by batch renderers.
func WithEncoding(e batch.Encoding) Option {
	return func(o *options) {
		o.encoding = e
	}
}

// WithOverpass sets the predicate for overpass cells, where planes 2 and 3
// always draw on the upper layer.
func WithOverpass(fn compose.OverpassFunc) Option {
	return func(o *options) {
		o.overpass = fn
	}
}

// WithAtlasAvailable sets the check for atlas slots holding an image.
// Tiles from missing slots draw nothing.
func WithAtlasAvailable(fn func(slot int) bool) Option {
	return func(o *options) {
		o.atlasAvailable = fn
	}
}
