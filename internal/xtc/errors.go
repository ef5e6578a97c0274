package xtc

import "errors"

// Errors reported by the codec. All of them indicate caller-input defects:
// the codec performs no I/O and has no transient failure class, so a failed
// page or container build should be aborted rather than skipped (skipping
// would desynchronize page ordering and index offsets).
var (
	// ErrInvalidDimensions reports a non-positive canvas or source image.
	ErrInvalidDimensions = errors.New("xtc: invalid dimensions")
	// ErrInvalidThresholds reports a gray threshold triple that is not
	// strictly increasing.
	ErrInvalidThresholds = errors.New("xtc: thresholds must be strictly increasing")
	// ErrEmptyPageSet reports a container build with zero pages.
	ErrEmptyPageSet = errors.New("xtc: container requires at least one page")
	// ErrInconsistentBlobHeader reports a page blob whose self-describing
	// header cannot be parsed or contradicts the blob itself.
	ErrInconsistentBlobHeader = errors.New("xtc: inconsistent page blob header")
)
