package gtex

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gpucontext"
)

var (
	_ gpucontext.Texture              = (*Texture)(nil)
	_ gpucontext.TextureUpdater       = (*Updater)(nil)
	_ gpucontext.TextureRegionUpdater = (*Updater)(nil)
)

// Updater adapts a Texture to the gpucontext update interfaces. Uploads
// write level 0, layer 0 with data in the texture's own format and are
// recorded into Stream.
type Updater struct {
	Texture *Texture
	Stream  CommandStream
}

// Width returns the texture width in pixels.
func (u *Updater) Width() int { return u.Texture.Width() }

// Height returns the texture height in pixels.
func (u *Updater) Height() int { return u.Texture.Height() }

// UpdateData replaces the whole of level 0.
func (u *Updater) UpdateData(data []byte) error {
	return u.UpdateRegion(0, 0, u.Texture.Width(), u.Texture.Height(), data)
}

// UpdateRegion replaces a w x h rectangle at (x, y) of level 0. data
// holds densely packed rows.
func (u *Updater) UpdateRegion(x, y, w, h int, data []byte) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 {
		return errors.Wrapf(ErrOutOfRange, "%s: region %dx%d at (%d,%d)", u.Texture.label, w, h, x, y)
	}
	pb := PixelBuffer{Data: data, Format: u.Texture.format}
	return u.Texture.Update2DRegion(u.Stream, pb, uint32(x), uint32(y), uint32(w), uint32(h), 0)
}
