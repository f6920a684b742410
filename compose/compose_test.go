// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compose

import (
	"slices"
	"testing"

	"github.com/gogpu/tilemap/autotile"
	"github.com/gogpu/tilemap/grid"
	"github.com/gogpu/tilemap/prim"
	"github.com/gogpu/tilemap/tileid"
)

func newCompositor(flags tileid.Flags) *Compositor {
	return New(Config{TileWidth: 48, TileHeight: 48, Flags: flags})
}

func mustSet(t *testing.T, g *grid.Grid, x, y, z int, id tileid.ID) {
	t.Helper()
	if err := g.Set(x, y, z, id); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// Plan
// =============================================================================

func TestPlanHeightFlags(t *testing.T) {
	flags := make(tileid.Flags, tileid.Max)
	flags[20] = tileid.FlagHigher
	flags[30] = tileid.FlagHigher

	g := grid.Empty(1, 1)
	mustSet(t, g, 0, 0, 0, 10)
	mustSet(t, g, 0, 0, 1, 20)
	mustSet(t, g, 0, 0, 2, 30)
	mustSet(t, g, 0, 0, 3, 40)

	var p CellPlan
	newCompositor(flags).Plan(g, 0, 0, &p)

	if want := []int{10, 40}; !slices.Equal(p.Lower, want) {
		t.Errorf("Lower = %v, want %v", p.Lower, want)
	}
	if want := []int{20, 30}; !slices.Equal(p.Upper, want) {
		t.Errorf("Upper = %v, want %v", p.Upper, want)
	}
}

func TestPlanShadowSentinel(t *testing.T) {
	g := grid.Empty(1, 1)
	mustSet(t, g, 0, 0, 0, 10)
	mustSet(t, g, 0, 0, grid.ShadowPlane, 0x3)

	var p CellPlan
	newCompositor(nil).Plan(g, 0, 0, &p)

	if want := []int{10, 0, -3, 0, 0}; !slices.Equal(p.Lower, want) {
		t.Errorf("Lower = %v, want %v", p.Lower, want)
	}
	if p.Shadow != 3 {
		t.Errorf("Shadow = %d, want 3", p.Shadow)
	}

	mustSet(t, g, 0, 0, grid.ShadowPlane, 0)
	newCompositor(nil).Plan(g, 0, 0, &p)
	for _, v := range p.Lower {
		if v < 0 {
			t.Errorf("no shadow bits but Lower has sentinel %d", v)
		}
	}
}

func TestPlanOverpass(t *testing.T) {
	g := grid.Empty(2, 1)
	for x := 0; x < 2; x++ {
		mustSet(t, g, x, 0, 2, 5)
		mustSet(t, g, x, 0, 3, 6)
	}
	c := New(Config{
		TileWidth:  48,
		TileHeight: 48,
		Overpass:   func(mx, my int) bool { return mx == 1 },
	})

	var p CellPlan
	c.Plan(g, 0, 0, &p)
	if len(p.Upper) != 0 {
		t.Errorf("cell 0 Upper = %v, want empty", p.Upper)
	}
	c.Plan(g, 1, 0, &p)
	if want := []int{5, 6}; !slices.Equal(p.Upper, want) {
		t.Errorf("overpass Upper = %v, want %v", p.Upper, want)
	}
}

func TestPlanReusesStorage(t *testing.T) {
	g := grid.Empty(1, 1)
	p := CellPlan{Lower: make([]int, 0, 16)}
	newCompositor(nil).Plan(g, 0, 0, &p)
	first := &p.Lower[:1][0]
	newCompositor(nil).Plan(g, 0, 0, &p)
	if &p.Lower[:1][0] != first {
		t.Error("Plan reallocated the lower list")
	}
}

// =============================================================================
// Table edges
// =============================================================================

func tableFixture(t *testing.T) (*grid.Grid, tileid.Flags, tileid.ID, tileid.ID) {
	t.Helper()
	table := tileid.MakeAutotile(16, 0)
	floor := tileid.MakeAutotile(17, 0)
	flags := make(tileid.Flags, tileid.Max)
	flags[table] = tileid.FlagTable

	g := grid.Empty(1, 2)
	mustSet(t, g, 0, 0, 1, table)
	mustSet(t, g, 0, 1, 1, floor)
	return g, flags, table, floor
}

func TestPlanTableEdge(t *testing.T) {
	g, flags, table, floor := tableFixture(t)

	var p CellPlan
	c := newCompositor(flags)
	c.Plan(g, 0, 1, &p)

	want := []int{0, int(floor), TableEdgeBase + int(table), 0, 0}
	if !slices.Equal(p.Lower, want) {
		t.Fatalf("Lower = %v, want %v", p.Lower, want)
	}

	var out prim.Collector
	c.EmitList(p.Lower, 0, 48, autotile.Deferred, &out)
	// Four floor quadrants, then the two table-edge halves.
	if len(out.Requests) != 6 {
		t.Fatalf("got %d requests, want 6", len(out.Requests))
	}
	var edge prim.Collector
	autotile.TableEdge(table, 48, 48, 0, 48, &edge)
	for i, r := range edge.Requests {
		if out.Requests[4+i] != r {
			t.Errorf("edge request %d = %v, want %v", i, out.Requests[4+i], r)
		}
	}
}

func TestPlanTableEdgeSuppressed(t *testing.T) {
	t.Run("table below table", func(t *testing.T) {
		g, flags, table, _ := tableFixture(t)
		mustSet(t, g, 0, 1, 1, table)
		var p CellPlan
		newCompositor(flags).Plan(g, 0, 1, &p)
		for _, v := range p.Lower {
			if v >= TableEdgeBase {
				t.Errorf("unexpected table edge %d", v)
			}
		}
	})
	t.Run("shadowing plane 0", func(t *testing.T) {
		g, flags, _, _ := tableFixture(t)
		mustSet(t, g, 0, 1, 0, tileid.A3)
		var p CellPlan
		newCompositor(flags).Plan(g, 0, 1, &p)
		for _, v := range p.Lower {
			if v >= TableEdgeBase {
				t.Errorf("unexpected table edge %d", v)
			}
		}
	})
	t.Run("no flag", func(t *testing.T) {
		g, _, _, _ := tableFixture(t)
		var p CellPlan
		newCompositor(nil).Plan(g, 0, 1, &p)
		for _, v := range p.Lower {
			if v >= TableEdgeBase {
				t.Errorf("unexpected table edge %d", v)
			}
		}
	})
}

// =============================================================================
// Emission
// =============================================================================

func TestWaterCellScenario(t *testing.T) {
	g := grid.Empty(2, 1)
	mustSet(t, g, 0, 0, 0, tileid.A1)

	c := newCompositor(nil)
	var lower, upper prim.Collector
	var scratch CellPlan

	c.Cell(g, 0, 0, 0, 0, autotile.Baked(2), &lower, &upper, &scratch)
	if len(lower.Requests) != 4 || len(upper.Requests) != 0 {
		t.Fatalf("cell 0: lower=%d upper=%d, want 4/0", len(lower.Requests), len(upper.Requests))
	}
	// Frame 2 selects water surface 2, block x 4.
	for i, q := range autotile.Floor[0] {
		r := lower.Requests[i]
		if r.Atlas != 0 || r.SX != (4*2+q.X)*24 || r.SY != q.Y*24 {
			t.Errorf("quadrant %d = %v", i, r)
		}
	}

	lower.Reset()
	c.Cell(g, 1, 0, 48, 0, autotile.Baked(2), &lower, &upper, &scratch)
	if len(lower.Requests) != 0 || len(upper.Requests) != 0 {
		t.Errorf("empty cell emitted %d/%d requests", len(lower.Requests), len(upper.Requests))
	}
}

func TestEmitMissingAtlas(t *testing.T) {
	c := New(Config{
		TileWidth:      48,
		TileHeight:     48,
		AtlasAvailable: func(slot int) bool { return slot != 5 },
	})
	var out prim.Collector
	c.EmitList([]int{1, int(tileid.A2), -1}, 0, 0, autotile.Deferred, &out)

	// Static id 1 lives in slot 5 and is dropped; the A2 tile and the
	// shadow survive.
	if len(out.Requests) != 5 {
		t.Fatalf("got %d requests, want 5", len(out.Requests))
	}
	for _, r := range out.Requests {
		if r.Atlas == 5 {
			t.Errorf("request from missing slot: %v", r)
		}
	}
	if !out.Requests[4].IsShadow() {
		t.Errorf("last request = %v, want shadow", out.Requests[4])
	}
}

func TestEmitInvisible(t *testing.T) {
	var out prim.Collector
	newCompositor(nil).EmitList([]int{0, int(tileid.Max), 10001 - TableEdgeBase}, 0, 0, autotile.Deferred, &out)
	// 0 and Max are invisible; 1 is a static tile.
	if len(out.Requests) != 1 {
		t.Errorf("got %d requests, want 1", len(out.Requests))
	}
}

func TestPlanInvisibleIDs(t *testing.T) {
	flags := make(tileid.Flags, tileid.Max)
	flags[tileid.A2] |= tileid.FlagTable
	c := newCompositor(flags)

	shadowed := grid.Empty(1, 1)
	mustSet(t, shadowed, 0, 0, grid.ShadowPlane, 3)
	var shadowPlan CellPlan
	c.Plan(shadowed, 0, 0, &shadowPlan)

	tests := []struct {
		name string
		id   tileid.ID
	}{
		{"negative", -3},
		{"table edge range", TableEdgeBase + tileid.A2},
		{"max", tileid.Max},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for z := 0; z < 4; z++ {
				g := grid.Empty(1, 1)
				g.Data[z] = int(tt.id)

				var plan CellPlan
				c.Plan(g, 0, 0, &plan)
				for _, v := range append(slices.Clone(plan.Lower), plan.Upper...) {
					if v != 0 {
						t.Errorf("plane %d: list entry %d, want 0", z, v)
					}
				}
				if ListsEqual(plan.Lower, shadowPlan.Lower) {
					t.Errorf("plane %d: list matches a shadowed cell", z)
				}

				var lower, upper prim.Collector
				var scratch CellPlan
				c.Cell(g, 0, 0, 0, 0, autotile.Deferred, &lower, &upper, &scratch)
				if n := len(lower.Requests) + len(upper.Requests); n != 0 {
					t.Errorf("plane %d: %d requests, want 0", z, n)
				}
			}
		})
	}

	over := New(Config{
		TileWidth:  48,
		TileHeight: 48,
		Flags:      flags,
		Overpass:   func(int, int) bool { return true },
	})
	g := grid.Empty(1, 1)
	g.Data[2] = -3
	g.Data[3] = int(TableEdgeBase + tileid.A2)
	var plan CellPlan
	over.Plan(g, 0, 0, &plan)
	if !slices.Equal(plan.Upper, []int{0, 0}) {
		t.Errorf("overpass upper = %v, want [0 0]", plan.Upper)
	}

	g = grid.Empty(1, 1)
	g.Data[grid.ShadowPlane] = -3
	c.Plan(g, 0, 0, &plan)
	if !slices.Equal(plan.Lower, []int{0, 0}) {
		t.Errorf("negative shadow plane: lower = %v, want [0 0]", plan.Lower)
	}
}

func TestListsEqual(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{nil, nil, true},
		{nil, []int{}, true},
		{[]int{1, 2}, []int{1, 2}, true},
		{[]int{1, 2}, []int{2, 1}, false},
		{[]int{1}, []int{1, 0}, false},
	}
	for _, tt := range tests {
		if got := ListsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ListsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
