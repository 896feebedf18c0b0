package gtex

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// View is a typed handle over a range of subresources, owned by the
// texture that created it.
type View struct {
	Handle     hal.TextureView
	Range      SubresourceRange
	Dimension  gputypes.TextureViewDimension
	Format     gputypes.TextureFormat
	Swizzle    Swizzle
	Attachment bool
}

type viewKey struct {
	r          SubresourceRange
	attachment bool
}

// view returns the cached view for (r, attachment), creating it on a
// miss. Attachment views are always 2D with the identity swizzle;
// sampling views use the texture's target and swizzle.
func (t *Texture) view(r SubresourceRange, attachment bool) (*View, error) {
	if err := t.check(r); err != nil {
		return nil, err
	}
	key := viewKey{r: r, attachment: attachment}
	if v, ok := t.views[key]; ok {
		return v, nil
	}

	v := &View{
		Range:      r,
		Dimension:  t.target,
		Format:     t.format,
		Swizzle:    t.swizzle,
		Attachment: attachment,
	}
	if attachment {
		v.Dimension = gputypes.TextureViewDimension2D
		v.Swizzle = Identity
	}
	desc := &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s %s", t.label, r),
		Format:          t.format,
		Dimension:       v.Dimension,
		Aspect:          r.Aspect,
		BaseMipLevel:    r.BaseLevel,
		MipLevelCount:   r.LevelCount,
		BaseArrayLayer:  r.BaseLayer,
		ArrayLayerCount: r.LayerCount,
	}

	var err error
	if sd, ok := t.device.(SwizzleDevice); ok && !v.Swizzle.IsIdentity() {
		v.Handle, err = sd.CreateSwizzledTextureView(t.image, desc, v.Swizzle)
	} else {
		v.Handle, err = t.device.CreateTextureView(t.image, desc)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: create view %s", t.label, r), ErrViewCreation)
	}

	t.views[key] = v
	t.created = append(t.created, v)
	Logger().Debug("gtex: view created",
		"label", t.label,
		"range", r.String(),
		"dimension", v.Dimension,
		"attachment", attachment)
	return v, nil
}

// PrimaryView returns the sampling view over the primary range.
func (t *Texture) PrimaryView() (*View, error) {
	return t.view(t.primary, false)
}

// PrimaryRange returns the range bound for default shader sampling.
func (t *Texture) PrimaryRange() SubresourceRange { return t.primary }

// SetPrimaryRange selects mip levels [minLevel, maxLevel] of every layer
// for default sampling. maxLevel is clamped to the last level. Views
// created for earlier ranges stay cached.
func (t *Texture) SetPrimaryRange(minLevel, maxLevel uint32) error {
	if t.destroyed {
		return errors.Wrapf(ErrDestroyed, "%s", t.label)
	}
	maxLevel = min(maxLevel, t.levels-1)
	if minLevel > maxLevel {
		return errors.Wrapf(ErrOutOfRange, "%s: primary levels [%d, %d] of %d", t.label, minLevel, maxLevel, t.levels)
	}
	t.primary.BaseLevel = minLevel
	t.primary.LevelCount = maxLevel - minLevel + 1
	return nil
}

// AttachmentView returns the 2D render target view of one level and
// layer. An undefined aspect selects the texture's full aspect.
func (t *Texture) AttachmentView(level, layer uint32, aspect gputypes.TextureAspect) (*View, error) {
	if aspect == gputypes.TextureAspectUndefined {
		aspect = t.aspect
	}
	return t.view(Subresource(level, layer, aspect), true)
}

// SampledRangeView returns the sampling view over r.
func (t *Texture) SampledRangeView(r SubresourceRange) (*View, error) {
	return t.view(r, false)
}

// Views returns the number of cached views.
func (t *Texture) Views() int { return len(t.views) }
