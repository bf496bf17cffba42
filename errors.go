//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// Common errors
var (
	// ErrMisuse matches every MisuseError. Misuse never reaches the driver.
	ErrMisuse = errors.New("adlgo: misuse")

	// ErrContextDestroyed indicates a call on a destroyed context or legacy session.
	ErrContextDestroyed = errors.New("adlgo: context destroyed")

	// ErrNilAllocator indicates Create or OpenLegacy was called without an allocator.
	ErrNilAllocator = errors.New("adlgo: allocator is nil")

	// ErrNilPointer indicates a required pointer argument was nil.
	ErrNilPointer = errors.New("adlgo: required pointer is nil")

	// ErrInvalidArgument indicates an out of range argument.
	ErrInvalidArgument = errors.New("adlgo: invalid argument")

	// ErrNoSlots indicates every allocation callback slot is bound to a live
	// context or legacy session. Destroy one before creating another.
	ErrNoSlots = driver.ErrNoCallbackSlots

	// ErrLegacyActive indicates a second legacy session was opened in the process.
	ErrLegacyActive = errors.New("adlgo: legacy session already open")

	// ErrDriverUnavailable indicates the ADL library could not be loaded.
	ErrDriverUnavailable = errors.New("adlgo: ADL driver unavailable")

	// ErrSymbolNotFound indicates a required entry point is missing from the library.
	ErrSymbolNotFound = errors.New("adlgo: ADL entry point not found")

	// ErrUnsupported indicates the installed driver offers no version of a capability.
	// It also matches DriverErrors carrying ADL_ERR_NOT_SUPPORTED.
	ErrUnsupported = errors.New("adlgo: capability not supported by driver")
)

// ErrorKind classifies errors returned by this package.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindDriver is a negative ADL status.
	KindDriver
	// KindLoader is a library or entry point loading failure.
	KindLoader
	// KindMisuse is an error detected before any driver call.
	KindMisuse
	// KindUnsupported is a capability with no available entry point.
	KindUnsupported
	// KindOther is any other error.
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDriver:
		return "driver"
	case KindLoader:
		return "loader"
	case KindMisuse:
		return "misuse"
	case KindUnsupported:
		return "unsupported"
	default:
		return "other"
	}
}

// DriverError is a negative status returned by an ADL call.
type DriverError struct {
	Op     string
	Status Status
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("adlgo: %s: %s (%d)", e.Op, e.Status, int32(e.Status))
}

// Is makes errors.Is(err, ErrUnsupported) true for ADL_ERR_NOT_SUPPORTED.
func (e *DriverError) Is(target error) bool {
	return target == ErrUnsupported && e.Status == StatusErrNotSupported
}

// LoaderError is a failure to load the library or resolve an entry point.
type LoaderError struct {
	Op     string
	Symbol string
	// Err is ErrDriverUnavailable or ErrSymbolNotFound.
	Err error
	// Cause is the underlying loader error, if any.
	Cause error
}

func (e *LoaderError) Error() string {
	msg := "adlgo: " + e.Op + ": " + e.Err.Error()
	if e.Symbol != "" {
		msg += " (" + e.Symbol + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoaderError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// MisuseError is an API contract violation detected before calling the driver.
type MisuseError struct {
	Op string
	// Err is a misuse sentinel such as ErrContextDestroyed.
	Err    error
	Reason string
}

func (e *MisuseError) Error() string {
	if e.Reason == "" {
		return "adlgo: " + e.Op + ": " + e.Err.Error()
	}
	return "adlgo: " + e.Op + ": " + e.Err.Error() + ": " + e.Reason
}

func (e *MisuseError) Unwrap() error { return e.Err }

func (e *MisuseError) Is(target error) bool { return target == ErrMisuse }

// UnsupportedError reports a capability with no available entry point.
type UnsupportedError struct {
	Op         string
	Capability string
}

func (e *UnsupportedError) Error() string {
	return "adlgo: " + e.Op + ": " + e.Capability + " not supported by driver"
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func misuse(op string, err error, reason string) error {
	return &MisuseError{Op: op, Err: err, Reason: reason}
}

// MaxSessions is the number of contexts and legacy sessions that may be
// alive at once on the installed driver.
const MaxSessions = driver.MaxSessions

// createError maps the status of a create call. Running out of callback
// slots is a wrapper limit, not a driver error.
func createError(op, entry string, st Status) error {
	if st == driver.StatusNoCallbackSlots {
		return misuse(op, ErrNoSlots, fmt.Sprintf("%d sessions already alive", MaxSessions))
	}
	return NewStatusError(st, entry)
}

// NewStatusError creates a DriverError from an ADL status.
// Returns nil if the status is ADL_OK or a positive success variant.
func NewStatusError(status Status, op string) error {
	if status.Succeeded() {
		return nil
	}
	return &DriverError{Op: op, Status: status}
}

// StatusOf returns the ADL status carried by err, or StatusOk if err is not a DriverError.
func StatusOf(err error) Status {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Status
	}
	return StatusOk
}

// IsUnsupported reports whether err means the driver lacks a capability,
// either because no entry point exists or because it returned ADL_ERR_NOT_SUPPORTED.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		de *DriverError
		le *LoaderError
		me *MisuseError
		ue *UnsupportedError
	)
	switch {
	case errors.As(err, &me):
		return KindMisuse
	case errors.As(err, &le):
		return KindLoader
	case errors.As(err, &ue):
		return KindUnsupported
	case errors.As(err, &de):
		return KindDriver
	}
	return KindOther
}

// Status is an ADL return code.
type Status = driver.Status

// Status code constants re-exported from driver
const (
	StatusOkWait                      = driver.StatusOkWait
	StatusOkRestart                   = driver.StatusOkRestart
	StatusOkModeChange                = driver.StatusOkModeChange
	StatusOkWarning                   = driver.StatusOkWarning
	StatusOk                          = driver.StatusOk
	StatusErr                         = driver.StatusErr
	StatusErrNotInit                  = driver.StatusErrNotInit
	StatusErrInvalidParam             = driver.StatusErrInvalidParam
	StatusErrInvalidParamSize         = driver.StatusErrInvalidParamSize
	StatusErrInvalidADLIdx            = driver.StatusErrInvalidADLIdx
	StatusErrInvalidControllerIdx     = driver.StatusErrInvalidControllerIdx
	StatusErrInvalidDisplayIdx        = driver.StatusErrInvalidDisplayIdx
	StatusErrNotSupported             = driver.StatusErrNotSupported
	StatusErrNullPointer              = driver.StatusErrNullPointer
	StatusErrDisabledAdapter          = driver.StatusErrDisabledAdapter
	StatusErrInvalidCallback          = driver.StatusErrInvalidCallback
	StatusErrResourceConflict         = driver.StatusErrResourceConflict
	StatusErrSetIncomplete            = driver.StatusErrSetIncomplete
	StatusErrNoXDisplay               = driver.StatusErrNoXDisplay
	StatusErrCallToIncompatibleDriver = driver.StatusErrCallToIncompatibleDriver
)
