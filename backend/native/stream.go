package native

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gtex"
)

// Stream records gtex commands into a hal.CommandEncoder that is already
// encoding. Barriers become TransitionTextures calls, copies pass
// through, and blits are drawn by the Blitter.
//
// A Stream is not safe for concurrent use, like the encoder it wraps.
type Stream struct {
	encoder hal.CommandEncoder
	blitter *Blitter

	barriers int
	copies   int
	blits    int
}

var _ gtex.CommandStream = (*Stream)(nil)

// NewStream returns a stream recording into encoder. blitter may be nil,
// in which case Blit fails and uploads must take the copy path.
func NewStream(encoder hal.CommandEncoder, blitter *Blitter) *Stream {
	return &Stream{encoder: encoder, blitter: blitter}
}

// Barrier records one texture transition.
func (s *Stream) Barrier(texture hal.Texture, b gtex.Barrier) {
	s.encoder.TransitionTextures([]hal.TextureBarrier{b.HAL(texture)})
	s.barriers++
}

// CopyBufferToTexture records a buffer to image copy.
func (s *Stream) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	s.encoder.CopyBufferToTexture(src, dst, regions)
	s.copies++
}

// Blit records cmd as render passes.
func (s *Stream) Blit(cmd gtex.BlitCommand) error {
	if s.blitter == nil {
		return ErrNoBlitter
	}
	if err := s.blitter.Record(s.encoder, cmd); err != nil {
		return err
	}
	s.blits++
	return nil
}

// BlitStates reports that blit sources are sampled and destinations are
// rendered to.
func (s *Stream) BlitStates() (src, dst gtex.AccessState) {
	return gtex.AccessShaderRead, gtex.AccessColorAttachment
}

// Counts returns how many barriers, copies and blits were recorded.
func (s *Stream) Counts() (barriers, copies, blits int) {
	return s.barriers, s.copies, s.blits
}
