// Package native connects gtex textures to a gogpu/wgpu HAL device.
//
// Stream records gtex commands into a hal.CommandEncoder. StagingPool
// lends mapped upload buffers and transient blit images out of a
// hal.Device. Blitter draws filtered blits with a WGSL shader compiled to
// SPIR-V by naga.
//
// A typical frame:
//
//	enc, _ := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "upload"})
//	_ = enc.BeginEncoding("upload")
//	stream := native.NewStream(enc, blitter)
//	if err := tex.Update2D(stream, pixels, w, h, 0); err != nil {
//	    enc.DiscardEncoding()
//	    return err
//	}
//	cmd, _ := enc.EndEncoding()
//	// submit cmd, wait for the fence, then:
//	pool.Reclaim()
//	blitter.Reclaim()
package native
