// Copyright (c) 2026 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
)

// Device and surface error taxonomy. Acquisition-phase failures wrap
// ErrUnavailable and are fatal to the caller; per-frame failures map onto
// the remaining sentinels and are dropped at the frame boundary.
var (
	// ErrOutOfMemory is reported when the device or host cannot satisfy
	// an allocation.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrDeviceLost is reported when the logical device is gone.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrSurfaceLost is reported when the presentation surface is no
	// longer usable and must be reconfigured or torn down.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrUnexpected is reported for driver conditions with no defined
	// recovery.
	ErrUnexpected = errors.New("gpu: unexpected driver error")

	// ErrUnavailable is reported when a device, adapter or surface
	// cannot be obtained at all.
	ErrUnavailable = errors.New("gpu: unavailable")
)

// UnavailableError carries the human-readable cause of an acquisition
// failure. The caller cannot distinguish which acquisition step failed
// except via the reason; none of the failures are locally recoverable.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "gpu: unavailable: " + e.Reason
}

// Unwrap makes the error match ErrUnavailable under errors.Is.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// Unavailablef builds an UnavailableError from a format string.
func Unavailablef(format string, args ...interface{}) error {
	return &UnavailableError{Reason: fmt.Sprintf(format, args...)}
}
