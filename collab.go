package gtex

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device allocates images and views. hal.Device satisfies it.
type Device interface {
	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)
	CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(view hal.TextureView)
}

// SwizzleDevice is implemented by devices able to remap channels in a
// view. Textures configured with a non-identity swizzle require it.
type SwizzleDevice interface {
	Device
	CreateSwizzledTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor, swizzle Swizzle) (hal.TextureView, error)
}

// Barrier is one recorded access state transition.
type Barrier struct {
	Range SubresourceRange
	Old   AccessState
	New   AccessState
}

// HAL converts the barrier for hal.CommandEncoder.TransitionTextures.
func (b Barrier) HAL(texture hal.Texture) hal.TextureBarrier {
	return hal.TextureBarrier{
		Texture: texture,
		Range:   b.Range.HAL(),
		Usage: hal.TextureUsageTransition{
			OldUsage: b.Old.Usage(),
			NewUsage: b.New.Usage(),
		},
	}
}

// BlitRegion maps one source subresource rectangle onto one destination
// subresource rectangle. Views address exactly the region's level and
// layer.
type BlitRegion struct {
	SrcLevel, SrcLayer uint32
	SrcView            hal.TextureView
	SrcSize            hal.Extent3D

	DstLevel, DstLayer uint32
	DstView            hal.TextureView
	DstOrigin          hal.Origin3D
	DstSize            hal.Extent3D
}

// BlitCommand is an image to image blit with filtering.
type BlitCommand struct {
	Src, Dst  hal.Texture
	DstFormat gputypes.TextureFormat
	Regions   []BlitRegion
	Filter    gputypes.FilterMode
}

// CommandStream records commands in call order. Nothing is executed
// until the owner of the stream submits it.
type CommandStream interface {
	// Barrier records a transition of b.Range of texture.
	Barrier(texture hal.Texture, b Barrier)

	// CopyBufferToTexture records a buffer to image copy.
	CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy)

	// Blit records a filtered image to image copy.
	Blit(cmd BlitCommand) error

	// BlitStates returns the access states the blit source and
	// destination must be in before Blit.
	BlitStates() (src, dst AccessState)
}

// Buffer to image copies read rows every multiple of CopyPitchAlignment
// bytes and each image from an offset that is a multiple of
// StageAlignment.
const (
	CopyPitchAlignment = 256
	StageAlignment     = 512
)

// Stage is host-visible memory borrowed from a StagingPool. Data aliases
// the device buffer at Offset and stays valid until the command stream
// that consumed it has been submitted.
type Stage struct {
	Buffer hal.Buffer
	Offset uint64
	Data   []byte
}

// ImageRequest describes a transient image for the blit path.
type ImageRequest struct {
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Layers uint32
}

// StageImage is a transient image borrowed from a StagingPool. View
// covers every layer of the single mip level. Layer views address one
// layer each.
type StageImage struct {
	Texture    hal.Texture
	View       hal.TextureView
	LayerViews []hal.TextureView
	Format     gputypes.TextureFormat
	Size       hal.Extent3D
}

// StagingPool lends transient upload memory shared across textures.
// Loans last until the consuming command stream is submitted; the pool
// decides when to reuse them. Stage offsets must be multiples of
// StageAlignment.
type StagingPool interface {
	AcquireStage(size uint64) (*Stage, error)
	AcquireImage(req ImageRequest) (*StageImage, error)
}
