package raster

import (
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/gogpu/tilemap/compose"
	"github.com/gogpu/tilemap/grid"
	"github.com/gogpu/tilemap/prim"
	"github.com/gogpu/tilemap/tileid"
)

var red = color.RGBA{R: 255, A: 255}

func solidAtlas(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testTarget(t *testing.T) (*Target, *compose.Compositor, *grid.Grid) {
	t.Helper()
	atlases := NewAtlasSet()
	atlases.Set(5, solidAtlas(768, 768, red))
	atlases.Set(0, solidAtlas(768, 576, color.RGBA{B: 255, A: 255}))
	target := NewTarget(340, 340, 48, 48, atlases)
	c := compose.New(compose.Config{
		TileWidth:      48,
		TileHeight:     48,
		AtlasAvailable: atlases.Available,
	})
	return target, c, grid.Empty(20, 20)
}

// =============================================================================
// Damage
// =============================================================================

func TestDamage(t *testing.T) {
	if NewDamage(0, 3) != nil {
		t.Error("NewDamage(0, 3) should be nil")
	}
	d := NewDamage(10, 10)
	d.Mark(1, 2)
	d.Mark(9, 9)
	d.Mark(10, 0)
	if !d.IsDirty(1, 2) || d.IsDirty(2, 1) {
		t.Error("IsDirty mismatch")
	}
	if d.Count() != 2 {
		t.Errorf("Count = %d, want 2", d.Count())
	}
	var seen [][2]int
	d.ForEach(func(lx, ly int) { seen = append(seen, [2]int{lx, ly}) })
	if want := [][2]int{{1, 2}, {9, 9}}; !slices.Equal(seen, want) {
		t.Errorf("ForEach = %v, want %v", seen, want)
	}
	d.MarkAll()
	if d.Count() != 100 {
		t.Errorf("MarkAll Count = %d, want 100", d.Count())
	}
	d.Clear()
	if d.Count() != 0 {
		t.Errorf("Clear Count = %d, want 0", d.Count())
	}
}

// =============================================================================
// Cache
// =============================================================================

func TestCacheRedrawDecision(t *testing.T) {
	c := NewCache(3, 2)
	if c.Size() != 6 {
		t.Fatalf("Size = %d, want 6", c.Size())
	}
	list := []int{10, 20, 0, 0}

	if !c.NeedsRedraw(compose.Lower, 1, 1, list, false) {
		t.Error("unpainted cell should redraw")
	}
	c.Store(compose.Lower, 1, 1, list)
	if c.NeedsRedraw(compose.Lower, 1, 1, list, false) {
		t.Error("identical list should not redraw")
	}
	if !c.NeedsRedraw(compose.Lower, 1, 1, list, true) {
		t.Error("animated cell should redraw")
	}
	if !c.NeedsRedraw(compose.Lower, 1, 1, []int{20, 10, 0, 0}, false) {
		t.Error("reordered list should redraw")
	}
	if !c.NeedsRedraw(compose.Upper, 1, 1, list, false) {
		t.Error("layers must be independent")
	}
	// An empty list matches a cell never painted.
	if c.NeedsRedraw(compose.Upper, 0, 0, nil, false) {
		t.Error("empty list on fresh cell should not redraw")
	}

	list[0] = 99
	if got := c.Last(compose.Lower, 1, 1); got[0] != 10 {
		t.Errorf("Store kept a reference to the caller's slice: %v", got)
	}

	c.Reset()
	if !c.NeedsRedraw(compose.Lower, 1, 1, []int{10, 20, 0, 0}, false) {
		t.Error("Reset should force redraw")
	}
}

// =============================================================================
// Target
// =============================================================================

func TestTargetSize(t *testing.T) {
	target, _, _ := testTarget(t)
	w, h := target.LayerSize()
	if w != 432 || h != 432 {
		t.Errorf("LayerSize = %dx%d, want 432x432", w, h)
	}
	// The cache covers the backing surface, not the 20×20 map.
	if got := target.Cache().Size(); got != 81 {
		t.Errorf("cache size = %d, want 81", got)
	}
}

func TestPaintCellSkipsUnchanged(t *testing.T) {
	target, c, g := testTarget(t)
	if err := g.Set(0, 0, 0, 1); err != nil {
		t.Fatal(err)
	}

	if !target.PaintCell(c, g, 0, 0, 0, false) {
		t.Fatal("first paint did not draw")
	}
	if got := target.Layer(compose.Lower).RGBAAt(10, 10); got != red {
		t.Errorf("pixel = %v, want red", got)
	}
	if target.PaintCell(c, g, 0, 0, 0, false) {
		t.Error("unchanged cell was redrawn")
	}
	// A static cell ignores animation frames.
	if target.PaintCell(c, g, 0, 0, 1, true) {
		t.Error("static cell redrawn on frame change")
	}

	if err := g.Set(0, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !target.PaintCell(c, g, 0, 0, 0, false) {
		t.Error("changed cell was not redrawn")
	}
	if got := target.Layer(compose.Lower).RGBAAt(10, 10); got.A != 0 {
		t.Errorf("cleared pixel = %v, want transparent", got)
	}
}

func TestPaintCellWaterFrames(t *testing.T) {
	target, c, g := testTarget(t)
	if err := g.Set(1, 1, 0, tileid.A1); err != nil {
		t.Fatal(err)
	}
	target.PaintCell(c, g, 1, 1, 0, false)
	if target.PaintCell(c, g, 1, 1, 0, false) {
		t.Error("water cell redrawn without frame change")
	}
	target.BeginPaint()
	if !target.PaintCell(c, g, 1, 1, 1, true) {
		t.Error("water cell not redrawn on frame change")
	}
	if !target.Damage().IsDirty(1, 1) || target.Damage().Count() != 1 {
		t.Errorf("damage = %d cells", target.Damage().Count())
	}
}

func TestPaintCellWrapsBacking(t *testing.T) {
	target, c, g := testTarget(t)
	if err := g.Set(9, 0, 0, 1); err != nil {
		t.Fatal(err)
	}
	// Map column 9 lands on backing column 0 of a 9-column surface.
	target.PaintCell(c, g, 9, 0, 0, false)
	if got := target.Layer(compose.Lower).RGBAAt(5, 5); got != red {
		t.Errorf("pixel = %v, want red", got)
	}
	if !slices.Equal(target.Cache().Last(compose.Lower, 0, 0), []int{1, 0, 0, 0}) {
		t.Errorf("cache(0,0) = %v", target.Cache().Last(compose.Lower, 0, 0))
	}
}

func TestPaintShadowAndMissingAtlas(t *testing.T) {
	target, c, g := testTarget(t)
	// Tile 300 lives in slot 6, which holds no image.
	if err := g.Set(0, 0, 0, 300); err != nil {
		t.Fatal(err)
	}
	if err := g.Set(0, 0, grid.ShadowPlane, 0x1); err != nil {
		t.Fatal(err)
	}
	target.PaintCell(c, g, 0, 0, 0, false)

	lower := target.Layer(compose.Lower)
	if got := lower.RGBAAt(5, 5); got != (color.RGBA{A: 128}) {
		t.Errorf("shadow pixel = %v, want half black", got)
	}
	if got := lower.RGBAAt(30, 5); got.A != 0 {
		t.Errorf("pixel outside shadow = %v, want transparent", got)
	}
}

func TestPainterEmitOver(t *testing.T) {
	atlases := NewAtlasSet()
	atlases.Set(2, solidAtlas(48, 48, color.RGBA{G: 255, A: 255}))
	dst := image.NewRGBA(image.Rect(0, 0, 48, 48))
	p := Painter{Dst: dst, Atlases: atlases}

	p.Emit(prim.Request{Atlas: 2, SX: 0, SY: 0, DX: 24, DY: 0, W: 24, H: 24})
	p.Emit(prim.Request{Atlas: 9, DX: 0, DY: 0, W: 24, H: 24})
	if got := dst.RGBAAt(30, 10); got.G != 255 {
		t.Errorf("copied pixel = %v", got)
	}
	if got := dst.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("missing slot drew %v", got)
	}
}

func TestAtlasSetConvertsOnce(t *testing.T) {
	a := NewAtlasSet()
	src := image.NewNRGBA(image.Rect(10, 10, 20, 20))
	a.Set(3, src)
	if !a.Available(3) || a.Available(4) || a.Available(-1) {
		t.Fatal("Available mismatch")
	}
	first, ok := a.Source(3)
	if !ok || first.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("Source = %v, %v", first.Bounds(), ok)
	}
	second, _ := a.Source(3)
	if first != second {
		t.Error("Source converted twice")
	}
	a.Set(3, nil)
	if _, ok := a.Source(3); ok {
		t.Error("emptied slot still has a source")
	}
}

// =============================================================================
// Layout
// =============================================================================

func TestLayoutReassemblesView(t *testing.T) {
	target, _, _ := testTarget(t)
	lw, lh := target.LayerSize()
	lower := target.Layer(compose.Lower)
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			lower.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x>>8 | (y>>8)<<4), 255})
		}
	}

	origins := [][2]int{{0, 0}, {37, -5}, {500, 1000}, {-431, 20}}
	for _, o := range origins {
		ox, oy := o[0], o[1]
		screen := image.NewRGBA(image.Rect(0, 0, 300, 300))
		target.ComposeLayer(screen, compose.Lower, target.Layout(ox, oy, 20))

		for _, p := range [][2]int{{0, 0}, {299, 0}, {150, 150}, {0, 299}, {299, 299}, {17, 233}} {
			lx := grid.Mod(p[0]+ox, lw)
			ly := grid.Mod(p[1]+oy, lh)
			want := lower.RGBAAt(lx, ly)
			if got := screen.RGBAAt(p[0], p[1]); got != want {
				t.Errorf("origin %v screen %v = %v, want layer (%d,%d) %v", o, p, got, lx, ly, want)
			}
		}
	}
}

func TestReset(t *testing.T) {
	target, c, g := testTarget(t)
	if err := g.Set(0, 0, 0, 1); err != nil {
		t.Fatal(err)
	}
	target.PaintCell(c, g, 0, 0, 0, false)
	target.Reset()
	if got := target.Layer(compose.Lower).RGBAAt(10, 10); got.A != 0 {
		t.Errorf("Reset left pixel %v", got)
	}
	if !target.PaintCell(c, g, 0, 0, 0, false) {
		t.Error("Reset did not force a redraw")
	}
}
