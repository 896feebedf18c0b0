package gtex

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SubresourceRange selects a rectangle of mip levels and array layers.
// Unlike hal.TextureRange, counts are always explicit. The type is
// comparable and is used as part of the view cache key.
type SubresourceRange struct {
	Aspect     gputypes.TextureAspect
	BaseLevel  uint32
	LevelCount uint32
	BaseLayer  uint32
	LayerCount uint32
}

// Subresource returns the range covering a single level and layer.
func Subresource(level, layer uint32, aspect gputypes.TextureAspect) SubresourceRange {
	return SubresourceRange{
		Aspect:     aspect,
		BaseLevel:  level,
		LevelCount: 1,
		BaseLayer:  layer,
		LayerCount: 1,
	}
}

// HAL converts the range for use in HAL barriers.
func (r SubresourceRange) HAL() hal.TextureRange {
	return hal.TextureRange{
		Aspect:          r.Aspect,
		BaseMipLevel:    r.BaseLevel,
		MipLevelCount:   r.LevelCount,
		BaseArrayLayer:  r.BaseLayer,
		ArrayLayerCount: r.LayerCount,
	}
}

// Empty reports whether the range selects no subresource.
func (r SubresourceRange) Empty() bool {
	return r.LevelCount == 0 || r.LayerCount == 0
}

// within reports whether r lies inside levels x layers.
func (r SubresourceRange) within(levels, layers uint32) bool {
	return r.BaseLevel < levels && r.LevelCount <= levels-r.BaseLevel &&
		r.BaseLayer < layers && r.LayerCount <= layers-r.BaseLayer
}

func (r SubresourceRange) String() string {
	return fmt.Sprintf("levels[%d+%d] layers[%d+%d] %s",
		r.BaseLevel, r.LevelCount, r.BaseLayer, r.LayerCount, r.Aspect)
}
