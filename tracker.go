package gtex

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gtex/internal/rangemap"
)

// LayoutTracker records the access state of every (level, layer) of an
// image. It is total: every subresource has a state at all times, and
// subresources never written report AccessUndefined.
//
// States are kept in a sparse interval map keyed by layer*levels+level,
// so a range covering whole layers is a single interval no matter how
// many subresources it holds.
type LayoutTracker struct {
	levels, layers uint32
	states         *rangemap.Map[AccessState]
}

// NewLayoutTracker returns a tracker for levels x layers subresources,
// all in AccessUndefined.
func NewLayoutTracker(levels, layers uint32) *LayoutTracker {
	t := &LayoutTracker{
		levels: levels,
		layers: layers,
		states: rangemap.New[AccessState](),
	}
	t.states.Set(0, levels*layers, AccessUndefined)
	return t
}

// Levels returns the number of mip levels tracked.
func (t *LayoutTracker) Levels() uint32 { return t.levels }

// Layers returns the number of array layers tracked.
func (t *LayoutTracker) Layers() uint32 { return t.layers }

// Intervals returns the number of stored intervals.
func (t *LayoutTracker) Intervals() int { return t.states.Len() }

func (t *LayoutTracker) key(level, layer uint32) uint32 {
	return layer*t.levels + level
}

// Get returns the state of one subresource.
func (t *LayoutTracker) Get(level, layer uint32) AccessState {
	s, _ := t.states.Get(t.key(level, layer))
	return s
}

// Query returns the state shared by every subresource in r. It fails
// with ErrInconsistentState when r spans subresources in different
// states; callers that expect mixed states should use Runs instead.
func (t *LayoutTracker) Query(r SubresourceRange) (AccessState, error) {
	var (
		state AccessState
		seen  bool
		err   error
	)
	t.Runs(r, func(sub SubresourceRange, s AccessState) bool {
		if !seen {
			state, seen = s, true
			return true
		}
		if s != state {
			err = errors.Wrapf(ErrInconsistentState, "%s: %s and %s at %s", r, state, s, sub)
			return false
		}
		return true
	})
	if err != nil {
		return AccessUndefined, err
	}
	return state, nil
}

// Set overwrites the state of every subresource in r. It never fails;
// the range is trusted to lie inside the image.
func (t *LayoutTracker) Set(r SubresourceRange, s AccessState) {
	if r.Empty() {
		return
	}
	if r.BaseLevel == 0 && r.LevelCount == t.levels {
		t.states.Set(t.key(0, r.BaseLayer), t.key(0, r.BaseLayer+r.LayerCount), s)
		return
	}
	for layer := r.BaseLayer; layer < r.BaseLayer+r.LayerCount; layer++ {
		t.states.Set(t.key(r.BaseLevel, layer), t.key(r.BaseLevel+r.LevelCount, layer), s)
	}
}

// Runs calls fn for each rectangular run of equal state inside r, in
// layer-major order. Equal runs covering the same levels of adjacent
// layers are reported as one range. Iteration stops when fn returns
// false.
func (t *LayoutTracker) Runs(r SubresourceRange, fn func(SubresourceRange, AccessState) bool) {
	if r.Empty() {
		return
	}
	if r.BaseLevel == 0 && r.LevelCount == t.levels {
		lo, hi := t.key(0, r.BaseLayer), t.key(0, r.BaseLayer+r.LayerCount)
		t.states.Ascend(lo, hi, func(a, b uint32, s AccessState) bool {
			for _, sub := range t.rects(a, b, r.Aspect) {
				if !fn(sub, s) {
					return false
				}
			}
			return true
		})
		return
	}
	// Partial level spans: walk each layer and fold a run into the
	// previous one when it covers the same levels of the next layer.
	var (
		pend      SubresourceRange
		pendState AccessState
		has, stop bool
	)
	for layer := r.BaseLayer; layer < r.BaseLayer+r.LayerCount && !stop; layer++ {
		base := layer * t.levels
		t.states.Ascend(t.key(r.BaseLevel, layer), t.key(r.BaseLevel+r.LevelCount, layer), func(a, b uint32, s AccessState) bool {
			sub := SubresourceRange{
				Aspect:     r.Aspect,
				BaseLevel:  a - base,
				LevelCount: b - a,
				BaseLayer:  layer,
				LayerCount: 1,
			}
			if has && s == pendState && sub.BaseLevel == pend.BaseLevel &&
				sub.LevelCount == pend.LevelCount && pend.BaseLayer+pend.LayerCount == layer {
				pend.LayerCount++
				return true
			}
			if has && !fn(pend, pendState) {
				stop = true
				return false
			}
			pend, pendState, has = sub, s, true
			return true
		})
	}
	if has && !stop {
		fn(pend, pendState)
	}
}

// rects splits the linear run [a, b) into at most three rectangles: the
// tail of a partial first layer, whole layers, and the head of a partial
// last layer.
func (t *LayoutTracker) rects(a, b uint32, aspect gputypes.TextureAspect) []SubresourceRange {
	n := t.levels
	out := make([]SubresourceRange, 0, 3)
	if a%n != 0 {
		end := min(b, (a/n+1)*n)
		out = append(out, SubresourceRange{aspect, a % n, end - a, a / n, 1})
		a = end
	}
	if full := (b - a) / n; full > 0 {
		out = append(out, SubresourceRange{aspect, 0, n, a / n, full})
		a += full * n
	}
	if a < b {
		out = append(out, SubresourceRange{aspect, 0, b - a, a / n, 1})
	}
	return out
}
