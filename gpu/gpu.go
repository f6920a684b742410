// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu draws encoded tile batches with gogpu/wgpu.
//
// A Renderer owns the tileset texture array and two render pipelines, one
// per batch encoding. Each render layer keeps its own vertex, index and
// uniform buffers; they grow by doubling and are never shrunk, so a map
// that scrolls within its usual size uploads into the same buffers every
// frame. Animation runs entirely in the vertex stage from the counter in
// the uniform block.
//
// Usage with a shared device:
//
//	r, err := gpu.NewRendererFromProvider(app.GPUContextProvider(), gpu.Config{})
//	lower := r.NewLayer("lower", batch.EncodingQuad)
//	...
//	err = r.Prepare(lower, lowerBuf, uniforms)
//	r.RecordDraws(rp, lower)
package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilemap"
)

var (
	// ErrNilProvider is returned for a nil device provider.
	ErrNilProvider = errors.New("gpu: nil device provider")

	// ErrNoHAL is returned when a provider does not expose HAL objects.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")
)

// halProvider is implemented by device providers that expose their HAL
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewRendererFromProvider creates a renderer on the device of provider.
// An unset cfg.Format is taken from the provider's surface format.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	if cfg.Format == 0 {
		cfg.Format = provider.SurfaceFormat()
	}
	return NewRenderer(device, queue, cfg)
}

// slogger returns the tilemap logger, so tilemap.SetLogger configures this
// package too.
func slogger() *slog.Logger {
	return tilemap.Logger()
}

// CompileShader validates the embedded WGSL and returns its SPIR-V.
func CompileShader() ([]byte, error) {
	spirv, err := naga.Compile(tilemapShaderSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile tilemap shader: %w", err)
	}
	return spirv, nil
}
