package native

import (
	_ "embed"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/blit.wgsl
var blitShaderSource string

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, errors.Wrap(err, "compile shader")
	}
	if len(spirv)%4 != 0 {
		return nil, errors.Newf("compile shader: %d bytes is not a whole number of words", len(spirv))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// createShaderModule compiles source and creates a HAL shader module
// from it.
func createShaderModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	words, err := compileSPIRV(source)
	if err != nil {
		return nil, errors.Wrap(err, label)
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %s", label)
	}
	return module, nil
}
