package gtex

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
)

// SetLayout transitions every subresource in r to s. One barrier is
// recorded per run of subresources sharing a prior state other than s;
// runs already in s record nothing.
func (t *Texture) SetLayout(cs CommandStream, r SubresourceRange, s AccessState) error {
	if err := t.check(r); err != nil {
		return err
	}
	t.transition(cs, r, s)
	return nil
}

// SetLayoutFrom records a single barrier from old to s over r without
// consulting the tracked state, then records s as the state of r. The
// caller vouches for old.
func (t *Texture) SetLayoutFrom(cs CommandStream, r SubresourceRange, old, s AccessState) error {
	if err := t.check(r); err != nil {
		return err
	}
	t.record(cs, Barrier{Range: r, Old: old, New: s})
	t.tracker.Set(r, s)
	return nil
}

// PrepareSampling moves r into the shader read state, recording barriers
// only for subresources not already there. Uploads leave their target in
// a copy or blit destination state; this is where that is undone, on
// first read use.
func (t *Texture) PrepareSampling(cs CommandStream, r SubresourceRange) error {
	return t.SetLayout(cs, r, t.readState())
}

// SampledView prepares the primary range for sampling and returns the
// primary view.
func (t *Texture) SampledView(cs CommandStream) (*View, error) {
	if err := t.PrepareSampling(cs, t.primary); err != nil {
		return nil, err
	}
	return t.PrimaryView()
}

// PrepareAttachment moves one subresource into the attachment state
// matching the format and returns its attachment view.
func (t *Texture) PrepareAttachment(cs CommandStream, level, layer uint32) (*View, error) {
	if !t.usage.Contains(gputypes.TextureUsageRenderAttachment) {
		return nil, errors.Wrapf(ErrUnsupported, "%s: not created for render attachment", t.label)
	}
	s := AccessColorAttachment
	if t.format.HasDepth() || t.format.HasStencil() {
		s = AccessDepthAttachment
	}
	if err := t.SetLayout(cs, Subresource(level, layer, t.aspect), s); err != nil {
		return nil, err
	}
	return t.AttachmentView(level, layer, t.aspect)
}

func (t *Texture) readState() AccessState {
	if t.format.HasDepth() {
		return AccessDepthRead
	}
	return AccessShaderRead
}

// transition records barriers moving r to s and updates the tracker. It
// returns the number of barriers recorded.
func (t *Texture) transition(cs CommandStream, r SubresourceRange, s AccessState) int {
	var pending []Barrier
	t.tracker.Runs(r, func(sub SubresourceRange, old AccessState) bool {
		if old != s {
			pending = append(pending, Barrier{Range: sub, Old: old, New: s})
		}
		return true
	})
	for _, b := range pending {
		t.record(cs, b)
	}
	t.tracker.Set(r, s)
	return len(pending)
}

func (t *Texture) record(cs CommandStream, b Barrier) {
	cs.Barrier(t.image, b)
	Logger().Debug("gtex: barrier",
		"label", t.label,
		"range", b.Range.String(),
		"old", b.Old.String(),
		"new", b.New.String())
}
