package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/tilemap/batch"
	"github.com/gogpu/tilemap/tileid"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 816 || cfg.Height != 624 || cfg.Tile != 48 || cfg.Encoding != batch.EncodingQuad {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigSources(t *testing.T) {
	t.Setenv("TILEDEMO_FRAMES", "7")
	t.Setenv("TILEDEMO_MAP_WIDTH", "12")

	cfg, err := loadConfig([]string{"--encoding", "point-sprite", "--frames", "3"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Frames != 3 {
		t.Errorf("Frames = %d, flag should win over env", cfg.Frames)
	}
	if cfg.MapWidth != 12 {
		t.Errorf("MapWidth = %d, want env value 12", cfg.MapWidth)
	}
	if cfg.Encoding != batch.EncodingPointSprite {
		t.Errorf("Encoding = %v", cfg.Encoding)
	}

	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte("tile: 32\nmargin: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig([]string{"--config", path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tile != 32 || cfg.Margin != 0 {
		t.Errorf("config file not applied: tile %d margin %d", cfg.Tile, cfg.Margin)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := [][]string{
		{"--tile", "47"},
		{"--width", "0"},
		{"--encoding", "triangles"},
		{"--frames", "-1"},
		{"--no-such-flag"},
	}
	for _, args := range tests {
		if _, err := loadConfig(args); err == nil {
			t.Errorf("loadConfig(%v) succeeded", args)
		}
	}
}

func TestGenerateWorld(t *testing.T) {
	w := generateWorld(40, 30, 7)
	if w.grid.Width != 40 || w.grid.Height != 30 {
		t.Fatalf("grid %dx%d", w.grid.Width, w.grid.Height)
	}
	if !w.flags.Table(tableID) || !w.flags.Higher(treeTopID) {
		t.Error("flags not set")
	}
	if got := w.grid.At(40/3, 15, 0); got != waterID {
		t.Errorf("pond centre = %d, want water", got)
	}
	if !w.isOverpass(40/3, 15) {
		t.Error("bridge cell is not an overpass")
	}

	again := generateWorld(40, 30, 7)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if w.grid.At(x, y, 2) != again.grid.At(x, y, 2) {
				t.Fatal("same seed produced different maps")
			}
		}
	}
}

func TestGenerateWorldSmallMap(t *testing.T) {
	// The house and waterfall fall partly outside a tiny map.
	w := generateWorld(5, 4, 3)
	if len(w.grid.Data) != 5*4*5 {
		t.Fatalf("data length %d", len(w.grid.Data))
	}
	if got := w.grid.At(4, 1, 0); got != roofID {
		t.Errorf("At(4, 1) = %d, want roof", got)
	}
}

func TestBuildAtlases(t *testing.T) {
	set := buildAtlases(48)
	for _, slot := range []int{0, 1, 2, 3, 5} {
		if !set.Available(slot) {
			t.Errorf("slot %d missing", slot)
		}
	}
	if set.Available(4) {
		t.Error("slot 4 should be empty")
	}
	if b := set.Image(tileid.StaticSlot(treeTrunkID)).Bounds(); b.Dx() != 768 || b.Dy() != 768 {
		t.Errorf("B sheet = %v", b)
	}
}

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.png")
	var stdout bytes.Buffer
	args := []string{
		"--width", "320", "--height", "240",
		"--map-width", "30", "--map-height", "20",
		"--frames", "65", "--gpu", "-o", out,
	}
	if err := run(args, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("output %v", b)
	}

	for _, want := range []string{"ticks:          65", "raster passes:", "gpu frames:     65"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout.String())
		}
	}
}
