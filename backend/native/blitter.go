package native

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gtex"
)

// Blitter records filtered image to image copies as render passes. Each
// region is one pass drawing a single triangle that samples the source
// layer view into the destination rectangle.
//
// Pipelines are created per destination format and kept for the
// blitter's lifetime. Bind groups live until Reclaim, which must only be
// called once the GPU has finished with the recorded passes.
//
// A Blitter is safe for concurrent use.
type Blitter struct {
	mu sync.Mutex

	device hal.Device

	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	samplers  map[gputypes.FilterMode]hal.Sampler
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline

	// Bind groups referenced by recorded but unfinished passes.
	pending []hal.BindGroup

	destroyed bool
}

// NewBlitter compiles the blit shader and creates the layouts shared by
// every pipeline.
func NewBlitter(device hal.Device) (*Blitter, error) {
	b := &Blitter{
		device:    device,
		samplers:  make(map[gputypes.FilterMode]hal.Sampler),
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
	}
	if err := b.init(); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *Blitter) init() error {
	shader, err := createShaderModule(b.device, "gtex_blit_shader", blitShaderSource)
	if err != nil {
		return err
	}
	b.shader = shader

	// Binding 0: source layer (texture_2d, fragment)
	// Binding 1: sampler (fragment)
	layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "gtex_blit_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create blit bind group layout")
	}
	b.layout = layout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gtex_blit_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.layout},
	})
	if err != nil {
		return errors.Wrap(err, "create blit pipeline layout")
	}
	b.pipeLayout = pipeLayout
	return nil
}

// Record records cmd into encoder. The source must be readable by a
// sampler and the destination renderable; the caller records the
// barriers that put them there.
func (b *Blitter) Record(encoder hal.CommandEncoder, cmd gtex.BlitCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return ErrBlitterDestroyed
	}
	if cmd.DstFormat == gputypes.TextureFormatUndefined || cmd.DstFormat.IsDepthStencil() {
		return errors.Wrapf(ErrBlitFormat, "%s", cmd.DstFormat)
	}
	for i, r := range cmd.Regions {
		if r.SrcView == nil || r.DstView == nil {
			return errors.Wrapf(ErrNilView, "region %d", i)
		}
	}

	pipeline, err := b.pipeline(cmd.DstFormat)
	if err != nil {
		return err
	}
	filter := cmd.Filter
	if filter == gputypes.FilterModeUndefined {
		filter = gputypes.FilterModeLinear
	}
	sampler, err := b.sampler(filter)
	if err != nil {
		return err
	}

	for _, r := range cmd.Regions {
		group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "gtex_blit_bind_group",
			Layout: b.layout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: r.SrcView.NativeHandle()}},
				{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			},
		})
		if err != nil {
			return errors.Wrapf(err, "create blit bind group for level %d layer %d", r.DstLevel, r.DstLayer)
		}
		b.pending = append(b.pending, group)

		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "gtex_blit_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    r.DstView,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, group, nil)
		rp.SetViewport(float32(r.DstOrigin.X), float32(r.DstOrigin.Y),
			float32(r.DstSize.Width), float32(r.DstSize.Height), 0, 1)
		rp.SetScissorRect(r.DstOrigin.X, r.DstOrigin.Y, r.DstSize.Width, r.DstSize.Height)
		rp.Draw(3, 1, 0, 0)
		rp.End()
	}

	gtex.Logger().Debug("blit recorded",
		"format", cmd.DstFormat, "regions", len(cmd.Regions), "filter", filter)
	return nil
}

// pipeline returns the pipeline rendering into format, creating it on
// first use. The caller must hold b.mu.
func (b *Blitter) pipeline(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if p, ok := b.pipelines[format]; ok {
		return p, nil
	}
	p, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gtex_blit_pipeline",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create blit pipeline for %s", format)
	}
	b.pipelines[format] = p
	return p, nil
}

// sampler returns the clamped sampler for filter. The caller must hold
// b.mu.
func (b *Blitter) sampler(filter gputypes.FilterMode) (hal.Sampler, error) {
	if s, ok := b.samplers[filter]; ok {
		return s, nil
	}
	s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "gtex_blit_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create blit sampler")
	}
	b.samplers[filter] = s
	return s, nil
}

// Pipelines returns the number of cached pipelines.
func (b *Blitter) Pipelines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pipelines)
}

// Pending returns the number of bind groups awaiting Reclaim.
func (b *Blitter) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Reclaim releases the bind groups of every pass recorded so far.
func (b *Blitter) Reclaim() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releasePending()
}

func (b *Blitter) releasePending() {
	for _, g := range b.pending {
		b.device.DestroyBindGroup(g)
	}
	b.pending = b.pending[:0]
}

// Destroy releases all GPU objects in reverse creation order. Safe to
// call more than once.
func (b *Blitter) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed || b.device == nil {
		return
	}
	b.destroyed = true
	b.releasePending()
	for f, p := range b.pipelines {
		b.device.DestroyRenderPipeline(p)
		delete(b.pipelines, f)
	}
	for f, s := range b.samplers {
		b.device.DestroySampler(s)
		delete(b.samplers, f)
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.layout != nil {
		b.device.DestroyBindGroupLayout(b.layout)
		b.layout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}
