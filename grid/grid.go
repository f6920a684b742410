// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package grid holds the tile map planes read by the compositor.
//
// A map is five planes of width×height tile ids stored in one flat slice,
// indexed (plane*height+y)*width+x. Planes 0..3 are visual layers; plane 4
// holds the shadow bitmask of each cell.
package grid

import (
	"errors"
	"fmt"

	"github.com/gogpu/tilemap/tileid"
)

// Plane layout.
const (
	PlaneCount  = 5
	ShadowPlane = 4
)

var (
	// ErrInvalidDimensions is returned for negative map sizes.
	ErrInvalidDimensions = errors.New("grid: invalid dimensions")

	// ErrShortData is returned when the data slice cannot hold five planes.
	ErrShortData = errors.New("grid: data shorter than width*height*5")

	// ErrOutOfRange is returned by Set for coordinates outside the map.
	ErrOutOfRange = errors.New("grid: coordinate out of range")
)

// Grid is a read-mostly tile map. The zero value is an empty map where
// every read returns 0.
type Grid struct {
	Width  int
	Height int
	Data   []int

	HorizontalWrap bool
	VerticalWrap   bool
}

// New wraps data as a width×height map. data is used in place, not copied.
func New(width, height int, data []int) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if need := width * height * PlaneCount; len(data) < need {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShortData, len(data), need)
	}
	return &Grid{Width: width, Height: height, Data: data}, nil
}

// Empty allocates a zeroed width×height map.
func Empty(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]int, width*height*PlaneCount),
	}
}

// At returns the tile id at (x, y) on plane z. Coordinates wrap when the
// matching wrap flag is set; anything still outside the map reads as 0.
func (g *Grid) At(x, y, z int) tileid.ID {
	i, ok := g.index(x, y, z)
	if !ok {
		return 0
	}
	return tileid.ID(g.Data[i])
}

// Set stores id at (x, y) on plane z, honouring the wrap flags.
func (g *Grid) Set(x, y, z int, id tileid.ID) error {
	i, ok := g.index(x, y, z)
	if !ok {
		return fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfRange, x, y, z)
	}
	g.Data[i] = int(id)
	return nil
}

// Shadow returns the shadow bitmask of (x, y).
func (g *Grid) Shadow(x, y int) int {
	return int(g.At(x, y, ShadowPlane))
}

func (g *Grid) index(x, y, z int) (int, bool) {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return 0, false
	}
	if z < 0 || z >= PlaneCount {
		return 0, false
	}
	if g.HorizontalWrap {
		x = Mod(x, g.Width)
	}
	if g.VerticalWrap {
		y = Mod(y, g.Height)
	}
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0, false
	}
	i := (z*g.Height+y)*g.Width + x
	if i >= len(g.Data) {
		return 0, false
	}
	return i, true
}

// Mod is the floored modulo: the result has the sign of n.
func Mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, n int) int {
	q := a / n
	if (a%n != 0) && ((a < 0) != (n < 0)) {
		q--
	}
	return q
}
