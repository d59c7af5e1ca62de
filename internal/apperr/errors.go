package apperr

import "errors"

var (
	// ErrNotFound means a lookup by id or address yielded nothing.
	ErrNotFound = errors.New("not found")
	// ErrValidation means required input (typically the address) is missing.
	ErrValidation = errors.New("validation failed")
	// ErrBackend wraps a network or service failure from the remote store.
	ErrBackend = errors.New("backend failure")
	// ErrRegionRequired means a place search was attempted without a
	// selected region.
	ErrRegionRequired = errors.New("region must be selected before searching")
	// ErrRegionUnconfigured means no access code exists for a region.
	ErrRegionUnconfigured = errors.New("no access code configured for region")
)
