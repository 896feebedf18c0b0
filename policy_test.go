package gtex

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		host, device gputypes.TextureFormat
		want         UploadPath
	}{
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8Unorm, PathCopy},
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb, PathCopy},
		{gputypes.TextureFormatBC7RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb, PathCopy},
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm, PathBlit},
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA16Float, PathBlit},
		{gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatRGBA8Unorm, PathReject},
		{gputypes.TextureFormatR32Float, gputypes.TextureFormatDepth32Float, PathReject},
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8Uint, PathReject},
		{gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA16Float, PathReject},
		{gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatR32Float, PathReject},
		{gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Float, PathCopy},
		{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb, PathBlit},
	}
	for _, tt := range tests {
		if got := p.Path(tt.host, tt.device); got != tt.want {
			t.Errorf("Path(%v, %v) = %v, want %v", tt.host, tt.device, got, tt.want)
		}
	}
}

func TestLoadPolicy(t *testing.T) {
	src := `{"rules": [
		{"host": "rgba8unorm", "device": "BGRA8Unorm", "path": "copy"},
		{"host": "RGBA8Unorm", "device": "RGBA16Float", "path": "reject"}
	]}`
	p, err := LoadPolicy(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadPolicy() error: %v", err)
	}
	if p.Rules() != 2 {
		t.Errorf("Rules() = %d, want 2", p.Rules())
	}
	if got := p.Path(gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm); got != PathCopy {
		t.Errorf("Path(RGBA8, BGRA8) = %v, want copy", got)
	}
	if got := p.Path(gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA16Float); got != PathReject {
		t.Errorf("Path(RGBA8, RGBA16F) = %v, want reject", got)
	}
}

func TestLoadPolicyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `{"rules": [`},
		{"host", `{"rules": [{"host": "RGB8", "device": "R8Unorm", "path": "copy"}]}`},
		{"device", `{"rules": [{"host": "R8Unorm", "device": "nope", "path": "copy"}]}`},
		{"path", `{"rules": [{"host": "R8Unorm", "device": "R8Unorm", "path": "teleport"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPolicy(strings.NewReader(tt.src))
			if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrConstruction) {
				t.Errorf("LoadPolicy() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []gputypes.TextureFormat{
		gputypes.TextureFormatR8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatASTC12x12UnormSrgb,
	} {
		got, ok := ParseFormat(strings.ToUpper(f.String()))
		if !ok || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", strings.ToUpper(f.String()), got, ok, f)
		}
	}
}
