package native

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gtex"
)

func rgbaPixels(w, h int) gtex.PixelBuffer {
	data := make([]byte, w*h*4)
	for i := range data {
		data[i] = byte(i)
	}
	return gtex.PixelBuffer{Data: data, Format: gputypes.TextureFormatRGBA8Unorm}
}

func newTexture(t *testing.T, dev *device, pool *StagingPool, format gputypes.TextureFormat, usage gputypes.TextureUsage) *gtex.Texture {
	t.Helper()
	tex, err := gtex.NewTexture(dev, pool, gtex.Config{
		Target: gputypes.TextureViewDimension2D,
		Format: format,
		Width:  8,
		Height: 8,
		Levels: 1,
		Usage:  usage,
	})
	if err != nil {
		t.Fatalf("NewTexture() error: %v", err)
	}
	t.Cleanup(tex.Destroy)
	return tex
}

func TestStreamCopyUpload(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)
	tex := newTexture(t, dev, pool, gputypes.TextureFormatRGBA8Unorm, 0)

	enc := &encoder{}
	s := NewStream(enc, nil)
	if err := tex.Update2D(s, rgbaPixels(8, 8), 8, 8, 0); err != nil {
		t.Fatalf("Update2D() error: %v", err)
	}
	if _, err := tex.SampledView(s); err != nil {
		t.Fatalf("SampledView() error: %v", err)
	}

	want := []string{"barrier", "copy", "barrier"}
	if len(enc.log) != len(want) {
		t.Fatalf("encoder log = %v, want %v", enc.log, want)
	}
	for i := range want {
		if enc.log[i] != want[i] {
			t.Fatalf("encoder log = %v, want %v", enc.log, want)
		}
	}

	first, second := enc.barriers[0], enc.barriers[1]
	if first.Usage.NewUsage != gputypes.TextureUsageCopyDst {
		t.Errorf("first barrier new usage = %v, want CopyDst", first.Usage.NewUsage)
	}
	if second.Usage.OldUsage != gputypes.TextureUsageCopyDst || second.Usage.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("second barrier = %v -> %v, want CopyDst -> TextureBinding", second.Usage.OldUsage, second.Usage.NewUsage)
	}
	if first.Texture != tex.Image() {
		t.Error("barrier does not reference the texture image")
	}

	region := enc.copies[0][0]
	if region.BufferLayout.BytesPerRow != gtex.CopyPitchAlignment || region.Size.Width != 8 || region.Size.Height != 8 {
		t.Errorf("copy region = %+v, want 8x8 with %d byte rows", region, gtex.CopyPitchAlignment)
	}
	if b, c, bl := s.Counts(); b != 2 || c != 1 || bl != 0 {
		t.Errorf("Counts() = %d, %d, %d, want 2, 1, 0", b, c, bl)
	}
}

func TestStreamBlitUpload(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)
	blitter, err := NewBlitter(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer blitter.Destroy()

	tex := newTexture(t, dev, pool, gputypes.TextureFormatBGRA8Unorm, gputypes.TextureUsageRenderAttachment)

	enc := &encoder{}
	s := NewStream(enc, blitter)
	if err := tex.Update2D(s, rgbaPixels(8, 8), 8, 8, 0); err != nil {
		t.Fatalf("Update2D() error: %v", err)
	}

	if n := len(enc.log); n == 0 || enc.log[n-1] != "pass" {
		t.Fatalf("encoder log = %v, want a trailing render pass", enc.log)
	}
	if b, c, bl := s.Counts(); b != 3 || c != 1 || bl != 1 {
		t.Errorf("Counts() = %d, %d, %d, want 3, 1, 1", b, c, bl)
	}
	state, err := tex.Layout(0, 0)
	if err != nil || state != gtex.AccessColorAttachment {
		t.Errorf("Layout(0, 0) = %v, %v, want color-attachment", state, err)
	}
	if s := pool.Stats(); s.Images != 1 {
		t.Errorf("pool images = %d, want 1", s.Images)
	}
}

func TestStreamWithoutBlitter(t *testing.T) {
	dev := &device{}
	tex := newTexture(t, dev, NewStagingPool(dev), gputypes.TextureFormatBGRA8Unorm, gputypes.TextureUsageRenderAttachment)

	s := NewStream(&encoder{}, nil)
	err := tex.Update2D(s, rgbaPixels(8, 8), 8, 8, 0)
	if !errors.Is(err, ErrNoBlitter) {
		t.Errorf("Update2D() error = %v, want ErrNoBlitter", err)
	}
}

func TestStreamBlitStates(t *testing.T) {
	src, dst := NewStream(&encoder{}, nil).BlitStates()
	if src != gtex.AccessShaderRead || dst != gtex.AccessColorAttachment {
		t.Errorf("BlitStates() = %v, %v, want shader-read, color-attachment", src, dst)
	}
}
