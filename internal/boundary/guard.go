package boundary

import "errors"

// Status is the tri-state outcome of a guarded entry point.
type Status int32

const (
	// StatusOK indicates success; output parameters are valid.
	StatusOK Status = 0

	// StatusError indicates a reported failure with a descriptive message.
	// This is the expected path for invalid input, missing entries,
	// malformed JSON/SQL, and poisoned locks.
	StatusError Status = 1

	// StatusFault indicates the wrapped logic panicked. The panic was
	// contained, a generic message is reported, and no guarantee is made
	// about the state of resources touched during the call.
	StatusFault Status = -1
)

// ErrInternalFault is the generic error reported for a contained panic.
// The panic value is deliberately not included: no assumption can be
// made about what state produced it.
var ErrInternalFault = errors.New("internal fault in engram core")

// Guard executes fn inside an unwind barrier.
//
// It returns StatusOK with a nil error, StatusError with fn's error, or
// StatusFault with ErrInternalFault if fn panicked. A panic never
// escapes Guard.
func Guard(fn func() error) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusFault
			err = ErrInternalFault
		}
	}()

	if err = fn(); err != nil {
		return StatusError, err
	}
	return StatusOK, nil
}
