// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileid

// Tileset flag bits.
const (
	// FlagHigher draws the tile on the upper plane, above characters.
	FlagHigher uint16 = 0x10
	// FlagTable marks an A2 tile as a table with visible legs.
	FlagTable uint16 = 0x80
)

// Flags maps a tile id to its tileset flag bits. Ids outside the slice
// read as zero.
type Flags []uint16

// Get returns the flag bits of id.
func (f Flags) Get(id ID) uint16 {
	if id < 0 || int(id) >= len(f) {
		return 0
	}
	return f[id]
}

// Higher reports whether id renders on the upper plane.
func (f Flags) Higher(id ID) bool {
	return f.Get(id)&FlagHigher != 0
}

// Table reports whether id is an A2 table tile.
func (f Flags) Table(id ID) bool {
	return IsA2(id) && f.Get(id)&FlagTable != 0
}
