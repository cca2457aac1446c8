package gapi

import (
	"errors"

	"github.com/ryn-cx/gapi/fixture"
	"github.com/ryn-cx/gapi/internal/patch"
)

var (
	// ErrClassNotFound reports a customization naming a class absent from
	// the generated text. Fatal for that customization pass; no partial
	// rollback is performed.
	ErrClassNotFound = patch.ErrClassNotFound

	// ErrFieldNotFound reports a customization naming a field absent from
	// its class.
	ErrFieldNotFound = patch.ErrFieldNotFound

	// ErrStorage reports fixture directory and file failures.
	ErrStorage = fixture.ErrStorage

	// ErrValidationMismatch reports a round-trip failure: re-serializing
	// the validated value did not reproduce the original instance.
	// Diagnostic copies of both are persisted before this error surfaces.
	ErrValidationMismatch = errors.New("parsed value does not match original")

	// ErrRepairExhausted reports that validation still failed after the
	// single allowed repair cycle. There is no second attempt.
	ErrRepairExhausted = errors.New("validation failed after model repair")
)
