// Package tilemap draws RPG-style tile maps from a five-plane tile grid.
//
// # Overview
//
// A map is a grid of cells, each holding up to four stacked tile ids and a
// shadow mask. The compositor sorts every cell into a lower and an upper
// layer so characters can walk between them, expands autotiles into their
// four quadrants and adds shadows and table edges. Two renderers consume
// the result:
//
//   - raster: paints into wrapped software surfaces and repaints only the
//     cells whose tile lists changed.
//   - batch + gpu: builds a vertex batch per layer and animates water and
//     waterfalls in the vertex shader, so geometry is rebuilt only when the
//     view scrolls by a whole tile.
//
// # Quick Start
//
//	g := grid.Empty(40, 30)
//	tm := tilemap.New(tilemap.WithScreenSize(816, 624))
//	tm.SetData(g)
//
//	atlases := raster.NewAtlasSet()
//	atlases.Set(0, waterSheet)
//	tm.SetAtlasAvailable(atlases.Available)
//	target := tm.NewRasterTarget(atlases)
//
//	for {
//	    tm.Update()
//	    tm.SetOrigin(camX, camY)
//	    tm.PaintRaster(target)
//	    tm.ComposeRaster(screen, target)
//	}
//
// # Sub-packages
//
//   - tileid: tile id bands and classification
//   - autotile: shape tables and quadrant emission
//   - grid: the five-plane tile grid
//   - compose: per-cell layer lists
//   - anim: animation frames and vertex packing
//   - batch: primitive buffers and vertex encodings
//   - raster: software target with repaint cache
//   - gpu: wgpu renderer for batches
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to enable output.
package tilemap
