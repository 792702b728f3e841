// Package ffi is the flat, explicit-handle presentation of the engram
// boundary: every operation takes opaque handles and output-parameter
// addresses, returns a tri-state status, and reports failures through a
// caller-owned error slot.
//
// The conventions mirror a C ABI so the surface can sit directly under
// a foreign binding layer:
//
//   - Handles are opaque tokens created by Open* and destroyed by
//     exactly one Close*. Closing the zero handle is a no-op; using or
//     closing a handle after its close is a caller error and undefined.
//   - Returned Buffers, StringLists, and Messages transfer ownership to
//     the caller, who must release each through its matching Free
//     function exactly once. Releasing twice, or releasing a value this
//     package did not produce, is undefined.
//   - Every entry point runs inside the fault guard: a reported failure
//     puts a descriptive message in the error slot and returns
//     StatusError; a contained panic puts a generic message there and
//     returns StatusFault. No panic crosses this package's surface.
//
// All operations against one underlying resource are serialized by that
// resource's lock. A lock poisoned by a faulting operation surfaces as
// a reported failure on every later call, never as a crash.
package ffi
