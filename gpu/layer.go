package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilemap/anim"
	"github.com/gogpu/tilemap/batch"
)

// uniformSize is the byte size of the Uniforms block in tilemap.wgsl.
const uniformSize = 32

// Uniforms is the per-draw uniform block.
type Uniforms struct {
	ViewportW float32
	ViewportH float32
	// OffsetX and OffsetY move layer pixels to screen pixels.
	OffsetX float32
	OffsetY float32
	Anim    anim.Uniform
}

func (u Uniforms) bytes() []byte {
	buf := make([]byte, uniformSize)
	vals := [8]float32{
		u.ViewportW, u.ViewportH,
		u.OffsetX, u.OffsetY,
		AtlasSize, AtlasSize,
		u.Anim.Counter, u.Anim.Divisor,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Layer holds the GPU buffers of one render layer. Buffers only grow.
type Layer struct {
	label    string
	encoder  *batch.Encoder
	encoding batch.Encoding

	vertBuf  hal.Buffer
	vertSize int

	idxBuf   hal.Buffer
	idxQuads int

	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	rects int
	skip  bool
}

// Encoding returns the vertex layout of the layer.
func (l *Layer) Encoding() batch.Encoding {
	return l.encoding
}

// Rects returns the number of rectangles drawn by the last Prepare.
func (l *Layer) Rects() int {
	return l.rects
}

// Skipped reports whether the last Prepare left the layer undrawn.
func (l *Layer) Skipped() bool {
	return l.skip
}

// VertexCapacity returns the vertex buffer size in bytes.
func (l *Layer) VertexCapacity() int {
	return l.vertSize
}

// upload writes data into the vertex buffer, growing it first if needed.
func (l *Layer) upload(device hal.Device, queue hal.Queue, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	size, err := batch.GrowCapacity(l.vertSize, len(data), l.encoding.Stride())
	if err != nil {
		return err
	}
	if size != l.vertSize || l.vertBuf == nil {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: l.label + "_verts",
			Size:  uint64(size), //nolint:gosec // bounded by batch.MaxBufferBytes
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create vertex buffer: %w", err)
		}
		if l.vertBuf != nil {
			device.DestroyBuffer(l.vertBuf)
		}
		l.vertBuf = buf
		l.vertSize = size
		slogger().Debug("tilemap vertex buffer grown", "layer", l.label, "bytes", size)
	}
	queue.WriteBuffer(l.vertBuf, 0, data)
	return nil
}

// uploadIndices makes sure the index buffer covers quads. The index
// pattern is fixed, so the buffer is only written when it grows.
func (l *Layer) uploadIndices(device hal.Device, queue hal.Queue, quads int) error {
	if quads <= l.idxQuads {
		return nil
	}
	if quads > batch.MaxQuads {
		return fmt.Errorf("%w: %d", batch.ErrTooManyQuads, quads)
	}
	n, err := batch.GrowCapacity(l.idxQuads, quads, 1)
	if err != nil {
		return err
	}
	n = min(n, batch.MaxQuads)
	data, err := batch.QuadIndexBytes(n)
	if err != nil {
		return err
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: l.label + "_indices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	if l.idxBuf != nil {
		device.DestroyBuffer(l.idxBuf)
	}
	queue.WriteBuffer(buf, 0, data)
	l.idxBuf = buf
	l.idxQuads = n
	return nil
}

func (l *Layer) destroy(device hal.Device) {
	if l.bindGroup != nil {
		device.DestroyBindGroup(l.bindGroup)
		l.bindGroup = nil
	}
	if l.uniformBuf != nil {
		device.DestroyBuffer(l.uniformBuf)
		l.uniformBuf = nil
	}
	if l.idxBuf != nil {
		device.DestroyBuffer(l.idxBuf)
		l.idxBuf = nil
	}
	if l.vertBuf != nil {
		device.DestroyBuffer(l.vertBuf)
		l.vertBuf = nil
	}
	l.vertSize = 0
	l.idxQuads = 0
}
