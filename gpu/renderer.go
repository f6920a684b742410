// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilemap/anim"
	"github.com/gogpu/tilemap/batch"
)

//go:embed shaders/tilemap.wgsl
var tilemapShaderSource string

// Vertex strides in bytes, matching batch.Encoding.VertexStride.
const (
	spriteVertexStride = batch.PointSpriteFloats * 4
	quadVertexStride   = batch.QuadFloats * 4
)

// DefaultAtlasUnits is the number of atlas units when Config leaves it unset.
const DefaultAtlasUnits = 3

// ErrClosed is returned after Destroy.
var ErrClosed = errors.New("gpu: renderer destroyed")

// Config configures a Renderer.
type Config struct {
	// Format is the color target format. Zero selects BGRA8Unorm.
	Format gputypes.TextureFormat
	// AtlasUnits is the number of texture array layers, 1..MaxUnits.
	AtlasUnits int
	// SampleCount is the MSAA sample count of the target. Zero means 1.
	SampleCount uint32
}

func (c Config) withDefaults() Config {
	if c.Format == 0 {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.AtlasUnits == 0 {
		c.AtlasUnits = DefaultAtlasUnits
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
	return c
}

// Renderer draws tile batches into a render pass.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	atlas *Atlas

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	spritePipe hal.RenderPipeline
	quadPipe   hal.RenderPipeline

	animEncoder anim.Encoder
	layers      []*Layer
	destroyed   bool
}

// NewRenderer creates the atlas texture and both pipelines on device.
func NewRenderer(device hal.Device, queue hal.Queue, cfg Config) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: nil device or queue")
	}
	cfg = cfg.withDefaults()
	atlas, err := newAtlas(device, queue, cfg.AtlasUnits)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		device:      device,
		queue:       queue,
		cfg:         cfg,
		atlas:       atlas,
		animEncoder: anim.DefaultEncoder(),
	}
	if err := r.createPipelines(); err != nil {
		r.Destroy()
		return nil, err
	}
	slogger().Info("tilemap renderer created",
		"format", cfg.Format, "units", cfg.AtlasUnits, "samples", cfg.SampleCount)
	return r, nil
}

// Atlas returns the tileset texture array.
func (r *Renderer) Atlas() *Atlas {
	return r.atlas
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// NewLayer returns an empty render layer using encoding e.
func (r *Renderer) NewLayer(label string, e batch.Encoding) *Layer {
	l := &Layer{
		label:    label,
		encoding: e,
		encoder:  batch.NewEncoder(e, r.animEncoder),
	}
	r.layers = append(r.layers, l)
	return l
}

// Prepare encodes buf into layer and uploads it with u. When buf refers to
// an atlas slot that holds no image, the layer is marked skipped and
// nothing is uploaded; RecordDraws then draws nothing for it.
func (r *Renderer) Prepare(layer *Layer, buf *batch.Buffer, u Uniforms) error {
	if r.destroyed {
		return ErrClosed
	}
	layer.skip = false
	layer.rects = 0

	for _, rect := range buf.Rects() {
		if rect.Atlas >= 0 && !r.atlas.Valid(rect.Atlas) {
			layer.skip = true
			slogger().Debug("tilemap layer skipped, atlas slot empty",
				"layer", layer.label, "slot", rect.Atlas)
			return nil
		}
	}

	data, stats, err := layer.encoder.Encode(buf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", layer.label, err)
	}
	if stats.Rects == 0 {
		return nil
	}
	if !stats.Reused || layer.vertBuf == nil {
		if err := layer.upload(r.device, r.queue, data); err != nil {
			return fmt.Errorf("upload %s: %w", layer.label, err)
		}
	}
	if layer.encoding == batch.EncodingQuad {
		if err := layer.uploadIndices(r.device, r.queue, stats.Rects); err != nil {
			return fmt.Errorf("indices %s: %w", layer.label, err)
		}
	}
	if err := r.writeUniforms(layer, u); err != nil {
		return err
	}
	layer.rects = stats.Rects
	return nil
}

func (r *Renderer) writeUniforms(layer *Layer, u Uniforms) error {
	if layer.uniformBuf == nil {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: layer.label + "_uniform",
			Size:  uniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer: %w", err)
		}
		bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  layer.label + "_bind",
			Layout: r.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(), Offset: 0, Size: uniformSize,
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{
					TextureView: r.atlas.view.NativeHandle(),
				}},
				{Binding: 2, Resource: gputypes.SamplerBinding{
					Sampler: r.sampler.NativeHandle(),
				}},
			},
		})
		if err != nil {
			r.device.DestroyBuffer(buf)
			return fmt.Errorf("create bind group: %w", err)
		}
		layer.uniformBuf = buf
		layer.bindGroup = bindGroup
	}
	r.queue.WriteBuffer(layer.uniformBuf, 0, u.bytes())
	return nil
}

// RecordDraws records the draw of layer into an open render pass.
func (r *Renderer) RecordDraws(rp hal.RenderPassEncoder, layer *Layer) {
	if r.destroyed || layer == nil || layer.skip || layer.rects == 0 || layer.bindGroup == nil {
		return
	}
	n := uint32(layer.rects) //nolint:gosec // bounded by batch.MaxBufferBytes
	rp.SetBindGroup(0, layer.bindGroup, nil)
	rp.SetVertexBuffer(0, layer.vertBuf, 0)
	if layer.encoding == batch.EncodingPointSprite {
		rp.SetPipeline(r.spritePipe)
		rp.Draw(4, n, 0, 0)
		return
	}
	rp.SetPipeline(r.quadPipe)
	rp.SetIndexBuffer(layer.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(n*batch.QuadIndices, 1, 0, 0, 0)
}

// Destroy releases every layer, the pipelines and the atlas.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	for _, l := range r.layers {
		l.destroy(r.device)
	}
	r.layers = nil
	r.destroyPipelines()
	if r.atlas != nil {
		r.atlas.Destroy()
	}
}

// createPipelines compiles the shader and creates both pipelines sharing
// one bind group layout.
func (r *Renderer) createPipelines() error {
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "tilemap_shader",
		Source: hal.ShaderSource{WGSL: tilemapShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile tilemap shader: %w", err)
	}
	r.shader = shader

	// Bind group layout:
	//   Binding 0: Uniforms (vertex+fragment)
	//   Binding 1: atlas texture array (fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "tilemap_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create tilemap bind layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "tilemap_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create tilemap pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	// Nearest filtering keeps tile edges crisp at integer scroll positions.
	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "tilemap_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create tilemap sampler: %w", err)
	}
	r.sampler = sampler

	r.spritePipe, err = r.createPipeline("tilemap_sprite_pipeline", "vs_sprite",
		spriteVertexLayout(), gputypes.PrimitiveTopologyTriangleStrip)
	if err != nil {
		return err
	}
	r.quadPipe, err = r.createPipeline("tilemap_quad_pipeline", "vs_quad",
		quadVertexLayout(), gputypes.PrimitiveTopologyTriangleList)
	return err
}

func (r *Renderer) createPipeline(label, entry string, layout []gputypes.VertexBufferLayout, topology gputypes.PrimitiveTopology) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: entry,
			Buffers:    layout,
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.cfg.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: r.cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

func (r *Renderer) destroyPipelines() {
	if r.device == nil {
		return
	}
	if r.quadPipe != nil {
		r.device.DestroyRenderPipeline(r.quadPipe)
		r.quadPipe = nil
	}
	if r.spritePipe != nil {
		r.device.DestroyRenderPipeline(r.spritePipe)
		r.spritePipe = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// spriteVertexLayout steps once per instance; the shader expands each
// instance into a four-vertex strip.
func spriteVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: spriteVertexStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // dst
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // src
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},   // size
				{Format: gputypes.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 3}, // anim
				{Format: gputypes.VertexFormatFloat32, Offset: 28, ShaderLocation: 4},   // unit
			},
		},
	}
}

func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // pos
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // frame
				{Format: gputypes.VertexFormatFloat32x2, Offset: 32, ShaderLocation: 3}, // anim
				{Format: gputypes.VertexFormatFloat32, Offset: 40, ShaderLocation: 4},   // unit
			},
		},
	}
}
