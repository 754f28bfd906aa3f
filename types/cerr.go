// Package types
package types

import (
	"errors"
)

// ErrUnavailable marks a read that failed at the provider or reverted at the
// contract. Callers must treat it as "unknown", never as zero.
var ErrUnavailable = errors.New("chain read unavailable")

var ErrProposalNotFound = errors.New("proposal not found")
var ErrAnnotationNotFound = errors.New("annotation not found")
