package gtex

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type fakeTexture struct {
	id   int
	desc hal.TextureDescriptor
}

func (t *fakeTexture) Destroy()                            {}
func (t *fakeTexture) NativeHandle() uintptr               { return uintptr(t.id) }
func (t *fakeTexture) CurrentUsage() gputypes.TextureUsage { return gputypes.TextureUsageNone }
func (t *fakeTexture) AddPendingRef()                      {}
func (t *fakeTexture) DecPendingRef()                      {}

type fakeView struct {
	id      int
	desc    hal.TextureViewDescriptor
	swizzle Swizzle
}

func (v *fakeView) Destroy()              {}
func (v *fakeView) NativeHandle() uintptr { return uintptr(v.id) }

type fakeBuffer struct{ id int }

func (b *fakeBuffer) Destroy()              {}
func (b *fakeBuffer) NativeHandle() uintptr { return uintptr(b.id) }

// fakeDevice hands out numbered resources and records destruction order.
type fakeDevice struct {
	next      int
	textures  []*fakeTexture
	views     []*fakeView
	destroyed []int // view ids in destruction order
	dropped   int   // textures destroyed

	failTexture error
	failView    error
}

func (d *fakeDevice) id() int {
	d.next++
	return d.next
}

func (d *fakeDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.failTexture != nil {
		return nil, d.failTexture
	}
	t := &fakeTexture{id: d.id(), desc: *desc}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) DestroyTexture(hal.Texture) { d.dropped++ }

func (d *fakeDevice) CreateTextureView(_ hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if d.failView != nil {
		return nil, d.failView
	}
	v := &fakeView{id: d.id(), desc: *desc}
	d.views = append(d.views, v)
	return v, nil
}

func (d *fakeDevice) DestroyTextureView(v hal.TextureView) {
	d.destroyed = append(d.destroyed, v.(*fakeView).id)
}

// swizzleDevice also supports channel remapping.
type swizzleDevice struct {
	*fakeDevice
}

func (d swizzleDevice) CreateSwizzledTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor, s Swizzle) (hal.TextureView, error) {
	v, err := d.CreateTextureView(tex, desc)
	if err != nil {
		return nil, err
	}
	v.(*fakeView).swizzle = s
	return v, nil
}

// fakePool lends plain memory and fake images.
type fakePool struct {
	dev    *fakeDevice
	stages []*Stage
	images []*StageImage

	failStage error
	offset    uint64 // Offset of every stage
}

func (p *fakePool) AcquireStage(size uint64) (*Stage, error) {
	if p.failStage != nil {
		return nil, p.failStage
	}
	st := &Stage{Buffer: &fakeBuffer{id: p.dev.id()}, Offset: p.offset, Data: make([]byte, size)}
	p.stages = append(p.stages, st)
	return st, nil
}

func (p *fakePool) AcquireImage(req ImageRequest) (*StageImage, error) {
	img := &StageImage{
		Texture: &fakeTexture{id: p.dev.id()},
		View:    &fakeView{id: p.dev.id()},
		Format:  req.Format,
		Size:    hal.Extent3D{Width: req.Width, Height: req.Height, DepthOrArrayLayers: req.Layers},
	}
	for range req.Layers {
		img.LayerViews = append(img.LayerViews, &fakeView{id: p.dev.id()})
	}
	p.images = append(p.images, img)
	return img, nil
}

// command is one recorded stream entry.
type command struct {
	kind    string // "barrier", "copy" or "blit"
	texture hal.Texture
	barrier Barrier
	buffer  hal.Buffer
	regions []hal.BufferTextureCopy
	blit    BlitCommand
}

// recorder is a CommandStream that keeps every command.
type recorder struct {
	cmds     []command
	src, dst AccessState
}

func newRecorder() *recorder {
	return &recorder{src: AccessShaderRead, dst: AccessColorAttachment}
}

func (r *recorder) Barrier(tex hal.Texture, b Barrier) {
	r.cmds = append(r.cmds, command{kind: "barrier", texture: tex, barrier: b})
}

func (r *recorder) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	r.cmds = append(r.cmds, command{kind: "copy", texture: dst, buffer: src, regions: regions})
}

func (r *recorder) Blit(cmd BlitCommand) error {
	r.cmds = append(r.cmds, command{kind: "blit", texture: cmd.Dst, blit: cmd})
	return nil
}

func (r *recorder) BlitStates() (AccessState, AccessState) { return r.src, r.dst }

// barriers returns the barriers recorded against tex.
func (r *recorder) barriers(tex hal.Texture) []Barrier {
	var out []Barrier
	for _, c := range r.cmds {
		if c.kind == "barrier" && c.texture == tex {
			out = append(out, c.barrier)
		}
	}
	return out
}

func (r *recorder) kinds() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.kind
	}
	return out
}

func (r *recorder) reset() { r.cmds = nil }
