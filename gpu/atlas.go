package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/tilemap/batch"
)

// Atlas geometry. Each unit is one array layer holding four slots in a
// 2×2 arrangement: slot s lives in layer s>>2 at
// (batch.SlotSize*(s&1), batch.SlotSize*((s>>1)&1)).
const (
	AtlasSize    = 2 * batch.SlotSize
	SlotsPerUnit = 4
	MaxUnits     = 4
)

var (
	// ErrSlotRange is returned for slots outside the configured units.
	ErrSlotRange = errors.New("gpu: atlas slot out of range")

	// ErrSlotTooLarge is returned for images larger than one slot.
	ErrSlotTooLarge = errors.New("gpu: image larger than atlas slot")
)

// Atlas is the tileset texture array.
type Atlas struct {
	device hal.Device
	queue  hal.Queue

	units int
	tex   hal.Texture
	view  hal.TextureView
	valid [MaxUnits * SlotsPerUnit]bool
}

func newAtlas(device hal.Device, queue hal.Queue, units int) (*Atlas, error) {
	if units < 1 || units > MaxUnits {
		return nil, fmt.Errorf("gpu: atlas units %d outside 1..%d", units, MaxUnits)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "tilemap_atlas",
		Size: hal.Extent3D{
			Width:              AtlasSize,
			Height:             AtlasSize,
			DepthOrArrayLayers: uint32(units), //nolint:gosec // units <= MaxUnits
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create atlas texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "tilemap_atlas_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(units), //nolint:gosec // units <= MaxUnits
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create atlas view: %w", err)
	}
	return &Atlas{device: device, queue: queue, units: units, tex: tex, view: view}, nil
}

// Units returns the number of array layers.
func (a *Atlas) Units() int {
	return a.units
}

// Slots returns the number of addressable slots.
func (a *Atlas) Slots() int {
	return a.units * SlotsPerUnit
}

// SetSlot uploads img into slot. A nil or empty img marks the slot
// invalid without touching the texture.
func (a *Atlas) SetSlot(slot int, img image.Image) error {
	if slot < 0 || slot >= a.Slots() {
		return fmt.Errorf("%w: %d", ErrSlotRange, slot)
	}
	if img == nil || img.Bounds().Empty() {
		a.valid[slot] = false
		return nil
	}
	b := img.Bounds()
	if b.Dx() > batch.SlotSize || b.Dy() > batch.SlotSize {
		return fmt.Errorf("%w: slot %d is %dx%d", ErrSlotTooLarge, slot, b.Dx(), b.Dy())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)

	unit, shiftU, shiftV := batch.Unit(slot)
	w, h := uint32(b.Dx()), uint32(b.Dy()) //nolint:gosec // bounded by SlotSize
	a.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  a.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(shiftU), Y: uint32(shiftV), Z: uint32(unit)}, //nolint:gosec // bounded by Slots
			Aspect:   gputypes.TextureAspectAll,
		},
		rgba.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  4 * w,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	a.valid[slot] = true
	slogger().Debug("tilemap atlas slot uploaded", "slot", slot, "unit", unit, "w", b.Dx(), "h", b.Dy())
	return nil
}

// Valid reports whether slot holds an uploaded image.
func (a *Atlas) Valid(slot int) bool {
	return slot >= 0 && slot < a.Slots() && a.valid[slot]
}

// Destroy releases the texture.
func (a *Atlas) Destroy() {
	if a.view != nil {
		a.device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		a.device.DestroyTexture(a.tex)
		a.tex = nil
	}
}
