package native

import "github.com/cockroachdb/errors"

// Package errors.
var (
	// ErrNoBlitter is returned by Stream.Blit when the stream was created
	// without a Blitter.
	ErrNoBlitter = errors.New("native: stream has no blitter")

	// ErrNilView is returned when a blit region lacks a source or
	// destination view.
	ErrNilView = errors.New("native: blit region has no view")

	// ErrBlitFormat is returned when the destination format cannot be a
	// raster blit target.
	ErrBlitFormat = errors.New("native: format is not a blit target")

	// ErrPoolDestroyed is returned by a StagingPool after Destroy.
	ErrPoolDestroyed = errors.New("native: staging pool destroyed")

	// ErrBlitterDestroyed is returned by a Blitter after Destroy.
	ErrBlitterDestroyed = errors.New("native: blitter destroyed")
)
