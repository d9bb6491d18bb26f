package bvhgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bvhgo/hierarchy/bvh"
	"github.com/hupe1980/bvhgo/persistence"
)

var (
	// ErrInvalidOption is returned when a build option is out of range.
	ErrInvalidOption = errors.New("invalid option")

	// ErrCorruptSnapshot is returned when a snapshot fails structural or
	// checksum validation on load.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// ErrShapeMismatch indicates that a loaded snapshot references more shapes
// than the caller supplied.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape count mismatch: snapshot expects %d, got %d", e.Expected, e.Actual)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Option validation normalization.
	if errors.Is(err, bvh.ErrInvalidLeafSize) ||
		errors.Is(err, bvh.ErrInvalidBucketCount) ||
		errors.Is(err, bvh.ErrInvalidMaxDepth) {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	// Snapshot corruption unification.
	if errors.Is(err, persistence.ErrBadMagic) ||
		errors.Is(err, persistence.ErrCorruptSnapshot) {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	var cm *persistence.ChecksumMismatchError
	if errors.As(err, &cm) {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	return err
}
