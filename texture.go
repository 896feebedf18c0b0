package gtex

import (
	"math/bits"
	"weak"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"
)

// Config describes the image backing a Texture.
type Config struct {
	// Label is a debug name. A unique one is generated when empty.
	Label string

	// Target is the shape seen by sampling views: 1D, 2D, 2DArray, Cube,
	// CubeArray or 3D.
	Target gputypes.TextureViewDimension

	Format gputypes.TextureFormat
	Width  uint32
	Height uint32

	// Depth is the depth of a 3D image, the layer count of a 2D array or
	// the cube count of a cube array. Ignored for other targets.
	Depth uint32

	// Levels is the mip level count. Zero selects a full chain.
	Levels uint32

	// Samples is the sample count. Zero means 1.
	Samples uint32

	// Usage lists usages beyond the ones every texture gets: CopyDst, and
	// TextureBinding for single-sampled images.
	Usage gputypes.TextureUsage
}

// ComputeLevels returns the length of a full mip chain for an image of
// the given size.
func ComputeLevels(width, height, depth uint32) uint32 {
	return uint32(bits.Len32(max(width, height, depth, 1)))
}

// Texture owns one GPU image, the access state of each of its
// subresources and every view created for it.
//
// A Texture is not safe for concurrent use. All calls must come from the
// goroutine recording the command streams it is given.
type Texture struct {
	device Device
	pool   StagingPool
	policy *Policy

	label     string
	target    gputypes.TextureViewDimension
	dimension gputypes.TextureDimension
	format    gputypes.TextureFormat
	aspect    gputypes.TextureAspect
	swizzle   Swizzle
	usage     gputypes.TextureUsage
	size      hal.Extent3D
	levels    uint32
	layers    uint32
	samples   uint32

	image   hal.Texture
	tracker *LayoutTracker

	primary SubresourceRange
	views   map[viewKey]*View
	created []*View

	sidecar   weak.Pointer[Texture]
	destroyed bool
}

// NewTexture allocates the image described by cfg on device and creates
// its primary view over every level and layer. pool supplies upload
// memory and may be nil for textures that are never updated from the
// host.
//
// Failures wrap ErrConstruction; on failure nothing stays allocated.
func NewTexture(device Device, pool StagingPool, cfg Config, opts ...Option) (*Texture, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = DefaultPolicy()
	}

	t := &Texture{
		device:  device,
		pool:    pool,
		policy:  o.policy,
		label:   cfg.Label,
		target:  cfg.Target,
		format:  cfg.Format,
		aspect:  aspectOf(cfg.Format),
		swizzle: o.swizzle,
		levels:  cfg.Levels,
		samples: max(cfg.Samples, 1),
		views:   make(map[viewKey]*View),
	}
	if t.label == "" {
		t.label = o.labelPrefix + "-" + uuid.NewString()
	}
	if err := t.shape(cfg); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	if _, ok := device.(SwizzleDevice); !ok && !t.swizzle.IsIdentity() {
		return nil, errors.Mark(errors.Wrapf(ErrUnsupported, "%s: device cannot swizzle views", t.label), ErrConstruction)
	}

	t.usage = cfg.Usage | gputypes.TextureUsageCopyDst
	if t.samples == 1 {
		t.usage |= gputypes.TextureUsageTextureBinding
	}

	img, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         t.label,
		Size:          t.size,
		MipLevelCount: t.levels,
		SampleCount:   t.samples,
		Dimension:     t.dimension,
		Format:        t.format,
		Usage:         t.usage,
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "create image %s", t.label), ErrConstruction)
	}
	t.image = img
	t.tracker = NewLayoutTracker(t.levels, t.layers)
	t.primary = SubresourceRange{
		Aspect:     t.aspect,
		LevelCount: t.levels,
		LayerCount: t.layers,
	}
	if _, err := t.view(t.primary, false); err != nil {
		device.DestroyTexture(img)
		t.image = nil
		return nil, errors.Mark(err, ErrConstruction)
	}

	Logger().Debug("gtex: texture created",
		"label", t.label,
		"target", t.target,
		"format", t.format,
		"size", t.size,
		"levels", t.levels,
		"layers", t.layers,
		"samples", t.samples)
	return t, nil
}

// shape derives the image dimension, extent and layer count from the
// sampling target.
func (t *Texture) shape(cfg Config) error {
	t.size = hal.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1}
	t.dimension = gputypes.TextureDimension2D
	t.layers = 1
	switch cfg.Target {
	case gputypes.TextureViewDimension1D:
		t.dimension = gputypes.TextureDimension1D
	case gputypes.TextureViewDimension2D:
	case gputypes.TextureViewDimension2DArray:
		t.layers = cfg.Depth
	case gputypes.TextureViewDimensionCube:
		t.layers = 6
	case gputypes.TextureViewDimensionCubeArray:
		t.layers = 6 * cfg.Depth
	case gputypes.TextureViewDimension3D:
		t.dimension = gputypes.TextureDimension3D
		t.size.DepthOrArrayLayers = cfg.Depth
	default:
		return errors.Wrapf(ErrInvalidConfig, "%s: target %s", t.label, cfg.Target)
	}
	if t.dimension != gputypes.TextureDimension3D {
		t.size.DepthOrArrayLayers = t.layers
	}
	if t.levels == 0 {
		t.levels = t.maxLevels()
	}
	return nil
}

func (t *Texture) maxLevels() uint32 {
	if t.dimension == gputypes.TextureDimension3D {
		return ComputeLevels(t.size.Width, t.size.Height, t.size.DepthOrArrayLayers)
	}
	return ComputeLevels(t.size.Width, t.size.Height, 1)
}

func (t *Texture) validate() error {
	var reason string
	switch {
	case t.format == gputypes.TextureFormatUndefined:
		reason = "undefined format"
	case t.size.Width < 1, t.size.Height < 1, t.size.DepthOrArrayLayers < 1:
		reason = "invalid size"
	case t.dimension == gputypes.TextureDimension1D && t.size.Height != 1:
		reason = "1D image with height"
	case t.layers < 1:
		reason = "invalid layer count"
	case t.target == gputypes.TextureViewDimensionCube || t.target == gputypes.TextureViewDimensionCubeArray:
		if t.size.Width != t.size.Height {
			reason = "cube's width and height differ"
		} else if t.samples != 1 {
			reason = "multi-sample cube"
		}
	case t.dimension == gputypes.TextureDimension3D && t.samples != 1:
		reason = "multi-sample 3D image"
	}
	if reason == "" {
		switch {
		case t.levels > t.maxLevels():
			reason = "invalid level count"
		case t.samples&(t.samples-1) != 0:
			reason = "invalid sample count"
		case t.levels > 1 && t.samples != 1:
			reason = "multi-sample mipmap"
		case t.format.IsDepthStencil() && t.dimension == gputypes.TextureDimension3D:
			reason = "3D depth image"
		}
	}
	if reason != "" {
		return errors.Wrapf(ErrInvalidConfig, "%s: %s", t.label, reason)
	}
	return nil
}

// Label returns the debug name.
func (t *Texture) Label() string { return t.label }

// Format returns the device format of the image.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Target returns the view dimension used by sampling views.
func (t *Texture) Target() gputypes.TextureViewDimension { return t.target }

// Aspect returns the aspect covering every plane of the format.
func (t *Texture) Aspect() gputypes.TextureAspect { return t.aspect }

// Swizzle returns the channel mapping of sampling views.
func (t *Texture) Swizzle() Swizzle { return t.swizzle }

// Usage returns the usages the image was created with.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Size returns the extent of level 0.
func (t *Texture) Size() hal.Extent3D { return t.size }

// Width returns the width of level 0 in texels.
func (t *Texture) Width() int { return int(t.size.Width) }

// Height returns the height of level 0 in texels.
func (t *Texture) Height() int { return int(t.size.Height) }

// Levels returns the mip level count.
func (t *Texture) Levels() uint32 { return t.levels }

// Layers returns the array layer count; 6 per cube for cube targets.
func (t *Texture) Layers() uint32 { return t.layers }

// Samples returns the sample count.
func (t *Texture) Samples() uint32 { return t.samples }

// Image returns the underlying HAL image, or nil after Destroy.
func (t *Texture) Image() hal.Texture { return t.image }

// Layout returns the access state of one subresource.
func (t *Texture) Layout(layer, level uint32) (AccessState, error) {
	if err := t.check(Subresource(level, layer, t.aspect)); err != nil {
		return AccessUndefined, err
	}
	return t.tracker.Get(level, layer), nil
}

// Tracker exposes the access states for inspection. Callers must not
// modify it; state changes go through SetLayout so barriers are recorded.
func (t *Texture) Tracker() *LayoutTracker { return t.tracker }

// SetSidecar associates the multisample companion of t. The association
// does not keep s alive; pass nil to clear it. Clearing it when s is
// destroyed is the caller's job.
func (t *Texture) SetSidecar(s *Texture) {
	if s == nil {
		t.sidecar = weak.Pointer[Texture]{}
		return
	}
	t.sidecar = weak.Make(s)
}

// Sidecar returns the multisample companion, or nil when none is set,
// it was garbage collected, or it has been destroyed.
func (t *Texture) Sidecar() *Texture {
	s := t.sidecar.Value()
	if s == nil || s.destroyed {
		return nil
	}
	return s
}

// Destroy releases every view the texture created, in reverse creation
// order, then the image. It is safe to call more than once.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	for i := len(t.created) - 1; i >= 0; i-- {
		t.device.DestroyTextureView(t.created[i].Handle)
	}
	clear(t.views)
	t.created = nil
	if t.image != nil {
		t.device.DestroyTexture(t.image)
		t.image = nil
	}
	t.sidecar = weak.Pointer[Texture]{}
	Logger().Debug("gtex: texture destroyed", "label", t.label)
}

// check validates r against the image and the texture's lifetime.
func (t *Texture) check(r SubresourceRange) error {
	if t.destroyed {
		return errors.Wrapf(ErrDestroyed, "%s", t.label)
	}
	if r.Empty() || !r.within(t.levels, t.layers) {
		return errors.Wrapf(ErrOutOfRange, "%s: %s outside %d levels x %d layers", t.label, r, t.levels, t.layers)
	}
	return nil
}
