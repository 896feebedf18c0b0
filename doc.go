// Package gtex manages a single GPU image for a gogpu/wgpu HAL backend:
// the access state of each of its subresources, the views derived from
// it and the paths that move host pixels into it.
//
// # Overview
//
// A Texture owns one hal.Texture. Every (mip level, array layer) pair has
// an AccessState recorded in a LayoutTracker, which starts out
// AccessUndefined everywhere. Operations that need a subresource in a
// different state record a barrier into a CommandStream and update the
// tracker in the same step, so the tracker always reflects the recorded
// command order rather than GPU progress.
//
// # Quick Start
//
//	tex, err := gtex.NewTexture(device, pool, gtex.Config{
//	    Target: gputypes.TextureViewDimension2D,
//	    Format: gputypes.TextureFormatRGBA8Unorm,
//	    Width:  256,
//	    Height: 256,
//	    Levels: 1,
//	})
//	if err != nil {
//	    return err
//	}
//	defer tex.Destroy()
//
//	// Record the upload; level 0 ends up in AccessCopyDst.
//	if err := tex.Update2D(stream, gtex.PixelsFromImage(img), 256, 256, 0); err != nil {
//	    return err
//	}
//
//	// First read use records the single CopyDst -> ShaderRead barrier.
//	view, err := tex.SampledView(stream)
//
// # Uploads
//
// Update2D, Update3D and UpdateCube choose a path once per call from the
// texture's Policy. The copy path stages host bytes in a buffer borrowed
// from the StagingPool and records buffer to image copies. The blit path
// stages them in an intermediate image of the host format and records a
// filtered blit into the target. Either way the written subresources are
// left in the destination state; the move to a read state is deferred
// until PrepareSampling or SampledView asks for it.
//
// # Views
//
// Views are cached per (range, attachment) pair and live as long as the
// texture. Attachment views are always 2D with the identity swizzle.
//
// # Concurrency
//
// A Texture is not safe for concurrent use. Collaborators such as the
// staging pool may be shared between textures and guard themselves.
//
// # Errors
//
// Every error raised by this package matches one of ErrConstruction,
// ErrViewCreation or ErrContractViolation under errors.Is. LoadPolicy
// failures are ErrInvalidConfig, in the construction class. Errors from
// the staging pool or the command stream are wrapped and passed through
// unclassed. Nothing is retried.
package gtex
