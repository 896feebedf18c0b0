package native

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

var errDevice = errors.New("device refused")

// handle is a texture view with a distinct native handle.
type handle struct{ id uintptr }

func (h *handle) Destroy()              {}
func (h *handle) NativeHandle() uintptr { return h.id }

// device counts the objects a noop device creates and destroys.
type device struct {
	noop.Device

	mu sync.Mutex

	buffers, destroyedBuffers     int
	textures, destroyedTextures   int
	views, destroyedViews         int
	groups, destroyedGroups       int
	pipelines, destroyedPipelines int
	samplers                      int

	spirv      []uint32
	groupDescs []*hal.BindGroupDescriptor
	failBuffer bool
	failUnmap  bool
	nextID     uintptr
}

func (d *device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failBuffer {
		return nil, errDevice
	}
	d.buffers++
	return d.Device.CreateBuffer(desc)
}

func (d *device) UnmapBuffer(hal.Buffer) error {
	if d.failUnmap {
		return errDevice
	}
	return nil
}

func (d *device) DestroyBuffer(hal.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyedBuffers++
}

func (d *device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures++
	return d.Device.CreateTexture(desc)
}

func (d *device) DestroyTexture(hal.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyedTextures++
}

func (d *device) CreateTextureView(hal.Texture, *hal.TextureViewDescriptor) (hal.TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views++
	d.nextID++
	return &handle{id: d.nextID}, nil
}

func (d *device) DestroyTextureView(hal.TextureView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyedViews++
}

func (d *device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.spirv = desc.Source.SPIRV
	return d.Device.CreateShaderModule(desc)
}

func (d *device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups++
	d.groupDescs = append(d.groupDescs, desc)
	return d.Device.CreateBindGroup(desc)
}

func (d *device) DestroyBindGroup(hal.BindGroup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyedGroups++
}

func (d *device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelines++
	return d.Device.CreateRenderPipeline(desc)
}

func (d *device) DestroyRenderPipeline(hal.RenderPipeline) { d.destroyedPipelines++ }

func (d *device) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	d.samplers++
	return d.Device.CreateSampler(desc)
}

// pass records what a blit draws.
type pass struct {
	noop.RenderPassEncoder

	desc     *hal.RenderPassDescriptor
	viewport [4]float32
	scissor  [4]uint32
	groups   int
	draws    int
	ended    bool
}

func (p *pass) SetBindGroup(uint32, hal.BindGroup, []uint32) { p.groups++ }

func (p *pass) SetViewport(x, y, w, h, _, _ float32) { p.viewport = [4]float32{x, y, w, h} }

func (p *pass) SetScissorRect(x, y, w, h uint32) { p.scissor = [4]uint32{x, y, w, h} }

func (p *pass) Draw(vertices, _, _, _ uint32) {
	if vertices == 3 {
		p.draws++
	}
}

func (p *pass) End() { p.ended = true }

// encoder logs the commands recorded into it.
type encoder struct {
	noop.CommandEncoder

	log      []string
	barriers []hal.TextureBarrier
	copies   [][]hal.BufferTextureCopy
	passes   []*pass
}

func (e *encoder) TransitionTextures(barriers []hal.TextureBarrier) {
	e.barriers = append(e.barriers, barriers...)
	e.log = append(e.log, "barrier")
}

func (e *encoder) CopyBufferToTexture(_ hal.Buffer, _ hal.Texture, regions []hal.BufferTextureCopy) {
	e.copies = append(e.copies, regions)
	e.log = append(e.log, "copy")
}

func (e *encoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &pass{desc: desc}
	e.passes = append(e.passes, p)
	e.log = append(e.log, "pass")
	return p
}
