package raster

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// AtlasSet holds the tileset images by slot. Sources are converted to
// *image.RGBA on first use and kept until the slot is replaced.
//
// AtlasSet is safe for concurrent use.
type AtlasSet struct {
	mu        sync.Mutex
	images    []image.Image
	converted map[int]*image.RGBA
}

// NewAtlasSet returns an empty set.
func NewAtlasSet() *AtlasSet {
	return &AtlasSet{converted: make(map[int]*image.RGBA)}
}

// Set stores img in slot. A nil img empties the slot.
func (a *AtlasSet) Set(slot int, img image.Image) {
	if slot < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.images) <= slot {
		a.images = append(a.images, nil)
	}
	a.images[slot] = img
	delete(a.converted, slot)
}

// Available reports whether slot holds a non-empty image.
func (a *AtlasSet) Available(slot int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	img := a.image(slot)
	return img != nil && !img.Bounds().Empty()
}

// Len returns one past the highest slot ever set.
func (a *AtlasSet) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.images)
}

// Image returns the image in slot as stored.
func (a *AtlasSet) Image(slot int) image.Image {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.image(slot)
}

// Source returns slot as an *image.RGBA with its origin at (0, 0),
// converting it on first use.
func (a *AtlasSet) Source(slot int) (*image.RGBA, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if rgba, ok := a.converted[slot]; ok {
		return rgba, true
	}
	img := a.image(slot)
	if img == nil || img.Bounds().Empty() {
		return nil, false
	}

	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)
	}
	a.converted[slot] = rgba
	return rgba, true
}

func (a *AtlasSet) image(slot int) image.Image {
	if slot < 0 || slot >= len(a.images) {
		return nil
	}
	return a.images[slot]
}
