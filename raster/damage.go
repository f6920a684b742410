package raster

import "math/bits"

// Damage records which backing cells were redrawn by the last paint.
//
// The bitmap uses one bit per cell, packed into uint64 words. Bit index is
// ly*cols + lx. Painting happens on one goroutine, so the words are plain
// integers.
type Damage struct {
	words []uint64
	cols  int
	rows  int
}

// NewDamage returns a clean bitmap for a cols×rows backing surface, or nil
// for non-positive dimensions.
func NewDamage(cols, rows int) *Damage {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	return &Damage{
		words: make([]uint64, (cols*rows+63)/64),
		cols:  cols,
		rows:  rows,
	}
}

// Mark flags cell (lx, ly). Out-of-range cells are ignored.
func (d *Damage) Mark(lx, ly int) {
	if lx < 0 || lx >= d.cols || ly < 0 || ly >= d.rows {
		return
	}
	idx := ly*d.cols + lx
	d.words[idx/64] |= 1 << (idx & 63)
}

// MarkAll flags every cell.
func (d *Damage) MarkAll() {
	total := d.cols * d.rows
	full := total / 64
	for i := 0; i < full; i++ {
		d.words[i] = ^uint64(0)
	}
	if rem := total % 64; rem > 0 {
		d.words[full] = (uint64(1) << rem) - 1
	}
}

// Clear unflags every cell.
func (d *Damage) Clear() {
	clear(d.words)
}

// IsDirty reports whether cell (lx, ly) is flagged.
func (d *Damage) IsDirty(lx, ly int) bool {
	if lx < 0 || lx >= d.cols || ly < 0 || ly >= d.rows {
		return false
	}
	idx := ly*d.cols + lx
	return d.words[idx/64]&(1<<(idx&63)) != 0
}

// Count returns the number of flagged cells.
func (d *Damage) Count() int {
	n := 0
	for _, w := range d.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// ForEach calls fn for each flagged cell in row-major order.
func (d *Damage) ForEach(fn func(lx, ly int)) {
	total := d.cols * d.rows
	for wi, word := range d.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			idx := wi*64 + b
			if idx >= total {
				break
			}
			fn(idx%d.cols, idx/d.cols)
			word &^= 1 << b
		}
	}
}

// Cols returns the bitmap width in cells.
func (d *Damage) Cols() int { return d.cols }

// Rows returns the bitmap height in cells.
func (d *Damage) Rows() int { return d.rows }
