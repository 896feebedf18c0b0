package gtex

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// blockInfo describes the texel block of a format. Uncompressed formats
// have 1x1 blocks.
type blockInfo struct {
	width, height uint32
	bytes         uint32
	components    int
}

// formatBlock returns the block layout of f. ok is false for formats
// whose memory layout is not host-addressable (packed depth/stencil).
func formatBlock(f gputypes.TextureFormat) (b blockInfo, ok bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return blockInfo{1, 1, 1, 1}, true
	case gputypes.TextureFormatR16Unorm, gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float, gputypes.TextureFormatDepth16Unorm:
		return blockInfo{1, 1, 2, 1}, true
	case gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint:
		return blockInfo{1, 1, 2, 2}, true
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatR32Sint, gputypes.TextureFormatDepth32Float:
		return blockInfo{1, 1, 4, 1}, true
	case gputypes.TextureFormatRG16Unorm, gputypes.TextureFormatRG16Snorm,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float:
		return blockInfo{1, 1, 4, 2}, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatRGB10A2Uint,
		gputypes.TextureFormatRGB10A2Unorm:
		return blockInfo{1, 1, 4, 4}, true
	case gputypes.TextureFormatRG11B10Ufloat, gputypes.TextureFormatRGB9E5Ufloat:
		return blockInfo{1, 1, 4, 3}, true
	case gputypes.TextureFormatRG32Float, gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRG32Sint:
		return blockInfo{1, 1, 8, 2}, true
	case gputypes.TextureFormatRGBA16Unorm, gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float:
		return blockInfo{1, 1, 8, 4}, true
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return blockInfo{1, 1, 16, 4}, true
	case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm,
		gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatETC2RGB8UnormSrgb,
		gputypes.TextureFormatETC2RGB8A1Unorm, gputypes.TextureFormatETC2RGB8A1UnormSrgb,
		gputypes.TextureFormatEACR11Unorm, gputypes.TextureFormatEACR11Snorm:
		return blockInfo{4, 4, 8, 4}, true
	case gputypes.TextureFormatBC2RGBAUnorm, gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnorm, gputypes.TextureFormatBC3RGBAUnormSrgb,
		gputypes.TextureFormatBC5RGUnorm, gputypes.TextureFormatBC5RGSnorm,
		gputypes.TextureFormatBC6HRGBUfloat, gputypes.TextureFormatBC6HRGBFloat,
		gputypes.TextureFormatBC7RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGBA8Unorm, gputypes.TextureFormatETC2RGBA8UnormSrgb,
		gputypes.TextureFormatEACRG11Unorm, gputypes.TextureFormatEACRG11Snorm,
		gputypes.TextureFormatASTC4x4Unorm, gputypes.TextureFormatASTC4x4UnormSrgb:
		return blockInfo{4, 4, 16, 4}, true
	}
	return blockInfo{}, false
}

// compressed reports whether f stores texels in blocks larger than one
// texel.
func compressed(f gputypes.TextureFormat) bool {
	b, ok := formatBlock(f)
	return ok && b.width > 1
}

// integer reports whether f holds unnormalized integer texels, which
// cannot be filtered.
func integer(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint,
		gputypes.TextureFormatR32Uint, gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRGBA8Uint, gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatRGB10A2Uint,
		gputypes.TextureFormatRG32Uint, gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA32Uint, gputypes.TextureFormatRGBA32Sint:
		return true
	}
	return false
}

// filterable reports whether f can be read through a filtering sampler
// without optional device features. Integer and 32-bit float formats
// cannot.
func filterable(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatRG32Float,
		gputypes.TextureFormatRGBA32Float:
		return false
	}
	return !integer(f)
}

// srgbFormat returns the sRGB variant of an uncompressed color format,
// or f when it has none.
func srgbFormat(f gputypes.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case gputypes.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8UnormSrgb
	}
	return f
}

// linearFormat strips the sRGB encoding from f. Bytes uploaded to an sRGB
// texture are stored verbatim, so the host side compares against the
// linear variant.
func linearFormat(f gputypes.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return gputypes.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return gputypes.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatBC1RGBAUnormSrgb:
		return gputypes.TextureFormatBC1RGBAUnorm
	case gputypes.TextureFormatBC2RGBAUnormSrgb:
		return gputypes.TextureFormatBC2RGBAUnorm
	case gputypes.TextureFormatBC3RGBAUnormSrgb:
		return gputypes.TextureFormatBC3RGBAUnorm
	case gputypes.TextureFormatBC7RGBAUnormSrgb:
		return gputypes.TextureFormatBC7RGBAUnorm
	case gputypes.TextureFormatETC2RGB8UnormSrgb:
		return gputypes.TextureFormatETC2RGB8Unorm
	case gputypes.TextureFormatETC2RGB8A1UnormSrgb:
		return gputypes.TextureFormatETC2RGB8A1Unorm
	case gputypes.TextureFormatETC2RGBA8UnormSrgb:
		return gputypes.TextureFormatETC2RGBA8Unorm
	case gputypes.TextureFormatASTC4x4UnormSrgb:
		return gputypes.TextureFormatASTC4x4Unorm
	}
	return f
}

// aspectOf returns the aspect covering every plane of f.
func aspectOf(f gputypes.TextureFormat) gputypes.TextureAspect {
	switch {
	case f.HasDepth() && !f.HasStencil():
		return gputypes.TextureAspectDepthOnly
	case f.HasStencil() && !f.HasDepth():
		return gputypes.TextureAspectStencilOnly
	}
	return gputypes.TextureAspectAll
}

// ParseFormat returns the format whose String form is name, ignoring
// case. It is the inverse of gputypes.TextureFormat.String.
func ParseFormat(name string) (gputypes.TextureFormat, bool) {
	for f := gputypes.TextureFormatR8Unorm; f <= gputypes.TextureFormatASTC12x12UnormSrgb; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, true
		}
	}
	return gputypes.TextureFormatUndefined, false
}
