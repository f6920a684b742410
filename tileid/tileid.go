// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tileid classifies tile ids into tileset bands and decodes
// autotile kind and shape.
//
// A tile id is an integer in [0, Max). The range is partitioned into
// contiguous bands:
//
//	B    0     static
//	C    256   static
//	D    512   static
//	E    768   static
//	A5   1536  static ground
//	A1   2048  animated water, waterfalls
//	A2   2816  ground, tables
//	A3   4352  roofs, wall sides
//	A4   5888  wall tops, wall sides
//	Max  8192
//
// Every id at or above A1 is an autotile: kind = (id-A1)/48 and
// shape = (id-A1)%48.
package tileid

import "fmt"

// ID is a tile id as stored in the map planes.
type ID int

// Band bases.
const (
	B   ID = 0
	C   ID = 256
	D   ID = 512
	E   ID = 768
	A5  ID = 1536
	A1  ID = 2048
	A2  ID = 2816
	A3  ID = 4352
	A4  ID = 5888
	Max ID = 8192
)

// ShapesPerKind is the number of shapes of one autotile kind.
const ShapesPerKind = 48

// Band identifies the tileset band an id belongs to.
type Band int

const (
	// BandNone is reported for ids outside [0, Max).
	BandNone Band = iota
	// BandStatic covers the B, C, D and E tilesets.
	BandStatic
	BandA5
	BandA1
	BandA2
	BandA3
	BandA4
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandNone:
		return "None"
	case BandStatic:
		return "Static"
	case BandA5:
		return "A5"
	case BandA1:
		return "A1"
	case BandA2:
		return "A2"
	case BandA3:
		return "A3"
	case BandA4:
		return "A4"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// BandOf returns the band of id. Exactly one band holds for every id in
// [0, Max); anything else is BandNone.
func BandOf(id ID) Band {
	switch {
	case id < 0 || id >= Max:
		return BandNone
	case id >= A4:
		return BandA4
	case id >= A3:
		return BandA3
	case id >= A2:
		return BandA2
	case id >= A1:
		return BandA1
	case id >= A5:
		return BandA5
	default:
		return BandStatic
	}
}

// IsVisible reports whether id draws anything. Zero and negative ids
// are empty.
func IsVisible(id ID) bool {
	return id > 0 && id < Max
}

// IsAutotile reports whether id is composed from quadrants.
func IsAutotile(id ID) bool {
	return id >= A1
}

// Kind returns the autotile kind of id.
func Kind(id ID) int {
	return int(id-A1) / ShapesPerKind
}

// Shape returns the autotile shape of id in [0, 48).
func Shape(id ID) int {
	return int(id-A1) % ShapesPerKind
}

// MakeAutotile builds the id of the given kind and shape.
func MakeAutotile(kind, shape int) ID {
	return A1 + ID(kind*ShapesPerKind+shape)
}

// IsSameKind reports whether two ids render the same terrain. Two
// autotiles match on kind; anything else must be identical.
func IsSameKind(a, b ID) bool {
	if IsAutotile(a) && IsAutotile(b) {
		return Kind(a) == Kind(b)
	}
	return a == b
}

// IsA1 reports animated water and waterfall autotiles.
func IsA1(id ID) bool { return id >= A1 && id < A2 }

// IsA2 reports ground autotiles.
func IsA2(id ID) bool { return id >= A2 && id < A3 }

// IsA3 reports building autotiles (roofs and their walls).
func IsA3(id ID) bool { return id >= A3 && id < A4 }

// IsA4 reports wall autotiles.
func IsA4(id ID) bool { return id >= A4 && id < Max }

// IsA5 reports the plain A5 tiles.
func IsA5(id ID) bool { return id >= A5 && id < A1 }

// IsWater reports A1 tiles other than the relative 96..191 block.
func IsWater(id ID) bool {
	if !IsA1(id) {
		return false
	}
	return !(id >= A1+96 && id < A1+192)
}

// IsWaterfall reports A1 tiles from relative offset 192 with odd kind.
func IsWaterfall(id ID) bool {
	if id >= A1+192 && id < A2 {
		return Kind(id)%2 == 1
	}
	return false
}

// IsGround reports tiles characters walk on.
func IsGround(id ID) bool {
	return IsA1(id) || IsA2(id) || IsA5(id)
}

// IsShadowing reports tiles that cast shadows (A3 and A4).
func IsShadowing(id ID) bool {
	return IsA3(id) || IsA4(id)
}

// IsRoof reports A3 tiles in the roof rows.
func IsRoof(id ID) bool {
	return IsA3(id) && Kind(id)%16 < 8
}

// IsWallTop reports A4 tiles in the wall-top rows.
func IsWallTop(id ID) bool {
	return IsA4(id) && Kind(id)%16 < 8
}

// IsWallSide reports A3 and A4 tiles in the wall-side rows.
func IsWallSide(id ID) bool {
	return (IsA3(id) || IsA4(id)) && Kind(id)%16 >= 8
}

// IsWall reports wall tops and wall sides.
func IsWall(id ID) bool {
	return IsWallTop(id) || IsWallSide(id)
}

// IsFloorTypeAutotile reports autotiles laid out with the 48-shape floor table.
func IsFloorTypeAutotile(id ID) bool {
	return (IsA1(id) && !IsWaterfall(id)) || IsA2(id) || IsWallTop(id)
}

// IsWallTypeAutotile reports autotiles laid out with the 16-shape wall table.
func IsWallTypeAutotile(id ID) bool {
	return IsRoof(id) || IsWallSide(id)
}

// IsWaterfallTypeAutotile reports autotiles laid out with the waterfall table.
func IsWaterfallTypeAutotile(id ID) bool {
	return IsWaterfall(id)
}

// StaticSlot returns the atlas slot of a non-autotile id: 4 for A5,
// otherwise 5 + id/256 (B=5, C=6, D=7, E=8).
func StaticSlot(id ID) int {
	if IsA5(id) {
		return 4
	}
	return 5 + int(id)/256
}

// AutotileSlot returns the atlas slot of an autotile band, or -1 for
// bands that are not autotiles.
func AutotileSlot(b Band) int {
	switch b {
	case BandA1:
		return 0
	case BandA2:
		return 1
	case BandA3:
		return 2
	case BandA4:
		return 3
	default:
		return -1
	}
}

// Slot returns the atlas slot id is drawn from.
func Slot(id ID) int {
	if IsAutotile(id) {
		return AutotileSlot(BandOf(id))
	}
	return StaticSlot(id)
}
