package gtex

import "github.com/cockroachdb/errors"

// Failure classes. Every error returned by this package matches one of
// them under errors.Is.
var (
	// ErrConstruction is returned when the device refuses to allocate the
	// image or when the construction parameters are unusable. The texture
	// is not created.
	ErrConstruction = errors.New("gtex: texture construction failed")

	// ErrViewCreation is returned when the device refuses to create a view
	// for an otherwise valid range.
	ErrViewCreation = errors.New("gtex: view creation failed")

	// ErrContractViolation is returned for caller errors: out-of-range
	// levels, layers or faces, queries over mixed states, use after Destroy.
	ErrContractViolation = errors.New("gtex: caller contract violation")
)

// Specific errors, each matching its failure class.
var (
	// ErrInvalidConfig is returned by NewTexture and LoadPolicy for unusable
	// parameters.
	ErrInvalidConfig = classed("gtex: invalid config", ErrConstruction)

	// ErrInconsistentState is returned by a range query whose subresources
	// are not all in the same access state.
	ErrInconsistentState = classed("gtex: inconsistent subresource state", ErrContractViolation)

	// ErrOutOfRange is returned for mip levels, array layers or faces
	// outside the image.
	ErrOutOfRange = classed("gtex: subresource out of range", ErrContractViolation)

	// ErrUnsupported is returned when a format, usage or upload
	// combination cannot be served. NewTexture additionally marks it as
	// ErrConstruction.
	ErrUnsupported = classed("gtex: unsupported operation", ErrContractViolation)

	// ErrShortData is returned when host pixel data is smaller than the
	// region it is meant to fill.
	ErrShortData = classed("gtex: pixel data too short", ErrContractViolation)

	// ErrDestroyed is returned by operations on a destroyed texture.
	ErrDestroyed = classed("gtex: texture destroyed", ErrContractViolation)
)

// classError is a sentinel belonging to a failure class. Its own message
// keeps it apart from the other sentinels of the same class.
type classError struct {
	msg   string
	class error
}

func classed(msg string, class error) error {
	return &classError{msg: msg, class: class}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Is(target error) bool { return target == e.class }
