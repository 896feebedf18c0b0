package gtex

import "github.com/gogpu/gputypes"

// AccessState is what the GPU currently guarantees is safe to do with a
// subresource without a prior transition.
type AccessState uint8

// Access states. The zero value is AccessUndefined, the state of freshly
// allocated memory.
const (
	AccessUndefined AccessState = iota
	AccessGeneral
	AccessCopyDst
	AccessCopySrc
	AccessShaderRead
	AccessColorAttachment
	AccessDepthAttachment
	AccessDepthRead
	AccessPresent
)

var accessNames = [...]string{
	AccessUndefined:       "undefined",
	AccessGeneral:         "general",
	AccessCopyDst:         "copy-dst",
	AccessCopySrc:         "copy-src",
	AccessShaderRead:      "shader-read",
	AccessColorAttachment: "color-attachment",
	AccessDepthAttachment: "depth-attachment",
	AccessDepthRead:       "depth-read",
	AccessPresent:         "present",
}

func (s AccessState) String() string {
	if int(s) < len(accessNames) {
		return accessNames[s]
	}
	return "unknown"
}

// Usage returns the HAL usage whose layout realises the state. Present
// maps to RenderAttachment; the surface performs the final transition.
func (s AccessState) Usage() gputypes.TextureUsage {
	switch s {
	case AccessGeneral:
		return gputypes.TextureUsageStorageBinding
	case AccessCopyDst:
		return gputypes.TextureUsageCopyDst
	case AccessCopySrc:
		return gputypes.TextureUsageCopySrc
	case AccessShaderRead, AccessDepthRead:
		return gputypes.TextureUsageTextureBinding
	case AccessColorAttachment, AccessDepthAttachment, AccessPresent:
		return gputypes.TextureUsageRenderAttachment
	default:
		return gputypes.TextureUsageNone
	}
}
