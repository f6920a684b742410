package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// submitTimeout bounds the wait for a submitted frame.
const submitTimeout = 5 * time.Second

// ErrSubmitTimeout is returned when a submitted frame does not finish
// within the submit timeout.
var ErrSubmitTimeout = errors.New("gpu: timed out waiting for frame")

// Target is an offscreen color target.
type Target struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// NewTarget creates a width×height color target in the renderer format.
func (r *Renderer) NewTarget(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid target size %dx%d", width, height)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "tilemap_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   r.cfg.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.cfg.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create target texture: %w", err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "tilemap_target_view",
		Format:        r.cfg.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create target view: %w", err)
	}
	return &Target{device: r.device, tex: tex, view: view, width: w, height: h}, nil
}

// View returns the render attachment view.
func (t *Target) View() hal.TextureView {
	return t.view
}

// Size returns the target size in pixels.
func (t *Target) Size() (w, h int) {
	return int(t.width), int(t.height)
}

// Destroy releases the target texture.
func (t *Target) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// Render clears view, draws layers in order and waits for the GPU. Layers
// must have been prepared; pass the lower layer before the upper one.
func (r *Renderer) Render(view hal.TextureView, layers ...*Layer) error {
	if r.destroyed {
		return ErrClosed
	}
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "tilemap_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("tilemap_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "tilemap_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	drawn := 0
	for _, l := range layers {
		r.RecordDraws(rp, l)
		if l != nil && !l.skip {
			drawn += l.rects
		}
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, submitTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("%w after %v", ErrSubmitTimeout, submitTimeout)
	}
	slogger().Debug("tilemap frame submitted", "layers", len(layers), "rects", drawn)
	return nil
}
