// Command tiledemo renders a generated tile map with the software target
// and reports what the batch path would upload.
//
// Usage:
//
//	tiledemo --frames 120 --scroll-x 2 -o map.png
//	TILEDEMO_ENCODING=point-sprite tiledemo --gpu
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/tilemap"
	"github.com/gogpu/tilemap/anim"
	"github.com/gogpu/tilemap/batch"
	"github.com/gogpu/tilemap/gpu"
	"github.com/gogpu/tilemap/raster"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("tiledemo: %v", err)
	}
}

// stats accumulates what the simulated frames did.
type stats struct {
	Ticks         int
	RasterPasses  int
	CellsRedrawn  int
	BatchRebuilds int
	Rects         int
	Bytes         int
	Reused        int
	GPUFrames     int
}

func run(args []string, out io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		tilemap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	w := generateWorld(cfg.MapWidth, cfg.MapHeight, cfg.Seed)
	atlases := buildAtlases(cfg.Tile)

	tm := tilemap.New(
		tilemap.WithScreenSize(cfg.Width, cfg.Height),
		tilemap.WithTileSize(cfg.Tile, cfg.Tile),
		tilemap.WithMargin(cfg.Margin),
		tilemap.WithEncoding(cfg.Encoding),
		tilemap.WithOverpass(w.isOverpass),
		tilemap.WithAtlasAvailable(atlases.Available),
	)
	tm.SetData(w.grid)
	tm.SetFlags(w.flags)

	st, err := simulate(cfg, tm, atlases)
	if err != nil {
		return err
	}

	screen := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(screen, screen.Bounds(), &image.Uniform{C: color.RGBA{A: 255}}, image.Point{}, draw.Src)
	target := tm.NewRasterTarget(atlases)
	tm.PaintRaster(target)
	tm.ComposeRaster(screen, target)

	ox, oy := tm.Origin()
	drawCaption(screen, fmt.Sprintf("frame %d  origin %.0f,%.0f  %s",
		tm.AnimationFrame(), ox, oy, cfg.Encoding))

	if err := savePNG(cfg.Output, screen); err != nil {
		return err
	}
	printStats(out, cfg, st)
	return nil
}

// simulate ticks the map, painting both paths every tick.
func simulate(cfg config, tm *tilemap.Tilemap, atlases *raster.AtlasSet) (stats, error) {
	var st stats
	target := tm.NewRasterTarget(atlases)
	lower, upper := batch.NewBuffer(1024), batch.NewBuffer(256)
	encoders := [2]*batch.Encoder{
		batch.NewEncoder(cfg.Encoding, anim.DefaultEncoder()),
		batch.NewEncoder(cfg.Encoding, anim.DefaultEncoder()),
	}

	var r *gpuRun
	if cfg.GPU {
		var err error
		if r, err = newGPURun(tm, atlases); err != nil {
			return st, err
		}
		defer r.close()
	}

	for i := 0; i < cfg.Frames; i++ {
		tm.Update()
		tm.SetOrigin(cfg.ScrollX*float64(i), cfg.ScrollY*float64(i))
		st.Ticks++

		if tm.PaintRaster(target) {
			st.RasterPasses++
			st.CellsRedrawn += target.Damage().Count()
		}
		if tm.PaintBatch(lower, upper) {
			st.BatchRebuilds++
		}
		for j, buf := range []*batch.Buffer{lower, upper} {
			_, s, err := encoders[j].Encode(buf)
			if err != nil {
				return st, fmt.Errorf("encode tick %d: %w", i, err)
			}
			if s.Reused {
				st.Reused++
				continue
			}
			st.Rects += s.Rects
			st.Bytes += s.Bytes
		}
		if r != nil {
			if err := r.frame(tm, lower, upper); err != nil {
				return st, fmt.Errorf("gpu tick %d: %w", i, err)
			}
			st.GPUFrames++
		}
	}
	return st, nil
}

// gpuRun draws the batches on the noop backend, exercising the whole
// upload and submission path without a real adapter.
type gpuRun struct {
	cleanup func()
	r       *gpu.Renderer
	target  *gpu.Target
	lower   *gpu.Layer
	upper   *gpu.Layer
}

func newGPURun(tm *tilemap.Tilemap, atlases *raster.AtlasSet) (*gpuRun, error) {
	if _, err := gpu.CompileShader(); err != nil {
		tilemap.Logger().Warn("shader validation skipped", "err", err)
	}

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	g := &gpuRun{cleanup: func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}}

	g.r, err = gpu.NewRenderer(openDev.Device, openDev.Queue, gpu.Config{})
	if err != nil {
		g.cleanup()
		return nil, err
	}
	for slot := 0; slot < g.r.Atlas().Slots(); slot++ {
		if !atlases.Available(slot) {
			continue
		}
		if err := g.r.Atlas().SetSlot(slot, atlases.Image(slot)); err != nil {
			g.close()
			return nil, err
		}
	}
	sw, sh := tm.ScreenSize()
	if g.target, err = g.r.NewTarget(sw, sh); err != nil {
		g.close()
		return nil, err
	}
	g.lower = g.r.NewLayer("lower", tm.Encoding())
	g.upper = g.r.NewLayer("upper", tm.Encoding())
	return g, nil
}

func (g *gpuRun) frame(tm *tilemap.Tilemap, lower, upper *batch.Buffer) error {
	sw, sh := tm.ScreenSize()
	lx, ly := tm.LayerOffset()
	u := gpu.Uniforms{
		ViewportW: float32(sw),
		ViewportH: float32(sh),
		OffsetX:   float32(lx),
		OffsetY:   float32(ly),
		Anim:      tm.AnimationUniform(),
	}
	if err := g.r.Prepare(g.lower, lower, u); err != nil {
		return err
	}
	if err := g.r.Prepare(g.upper, upper, u); err != nil {
		return err
	}
	return g.r.Render(g.target.View(), g.lower, g.upper)
}

func (g *gpuRun) close() {
	if g.target != nil {
		g.target.Destroy()
	}
	if g.r != nil {
		g.r.Destroy()
	}
	g.cleanup()
}

func drawCaption(dst draw.Image, text string) {
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, b.Max.Y-20, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, &image.Uniform{C: color.RGBA{A: 160}}, image.Point{}, draw.Over)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(b.Min.X+6, b.Max.Y-6),
	}
	d.DrawString(text)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func printStats(out io.Writer, cfg config, st stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(out, "saved %s (%dx%d)\n", cfg.Output, cfg.Width, cfg.Height)
	p.Fprintf(out, "ticks:          %d\n", st.Ticks)
	p.Fprintf(out, "raster passes:  %d (%d cells redrawn)\n", st.RasterPasses, st.CellsRedrawn)
	p.Fprintf(out, "batch rebuilds: %d (%s)\n", st.BatchRebuilds, cfg.Encoding)
	p.Fprintf(out, "encoded:        %d rects, %d bytes, %d reused\n", st.Rects, st.Bytes, st.Reused)
	if cfg.GPU {
		p.Fprintf(out, "gpu frames:     %d\n", st.GPUFrames)
	}
}
