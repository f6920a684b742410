package raster

import (
	"slices"

	"github.com/gogpu/tilemap/compose"
)

// Cache remembers, per layer and per backing cell, the list painted there
// last. Cells are addressed in backing-surface coordinates, so the cache
// holds cols×rows entries per layer whatever the map size.
type Cache struct {
	cols, rows int
	lists      [compose.LayerCount][][]int
}

// NewCache returns an empty cache for a cols×rows backing surface.
func NewCache(cols, rows int) *Cache {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Cache{cols: cols, rows: rows}
	for l := range c.lists {
		c.lists[l] = make([][]int, cols*rows)
	}
	return c
}

// Cols returns the backing width in cells.
func (c *Cache) Cols() int { return c.cols }

// Rows returns the backing height in cells.
func (c *Cache) Rows() int { return c.rows }

// Size returns the number of cells per layer.
func (c *Cache) Size() int { return c.cols * c.rows }

// Last returns the list stored for (lx, ly) on layer l. A cell never
// painted reads as empty.
func (c *Cache) Last(l compose.Layer, lx, ly int) []int {
	i, ok := c.index(lx, ly)
	if !ok {
		return nil
	}
	return c.lists[l][i]
}

// NeedsRedraw reports whether (lx, ly) on layer l must be repainted for
// list. animated forces a repaint of an unchanged list.
func (c *Cache) NeedsRedraw(l compose.Layer, lx, ly int, list []int, animated bool) bool {
	return animated || !slices.Equal(c.Last(l, lx, ly), list)
}

// Store records list for (lx, ly) on layer l, copying it into storage the
// cache owns.
func (c *Cache) Store(l compose.Layer, lx, ly int, list []int) {
	i, ok := c.index(lx, ly)
	if !ok {
		return
	}
	c.lists[l][i] = append(c.lists[l][i][:0], list...)
}

// Reset forgets every stored list and keeps the per-cell storage.
func (c *Cache) Reset() {
	for l := range c.lists {
		for i := range c.lists[l] {
			c.lists[l][i] = c.lists[l][i][:0]
		}
	}
}

func (c *Cache) index(lx, ly int) (int, bool) {
	if lx < 0 || lx >= c.cols || ly < 0 || ly >= c.rows {
		return 0, false
	}
	return ly*c.cols + lx, true
}
