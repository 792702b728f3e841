// Package boundary implements the fault-containment and shared-resource
// primitives that every engram entry point is built on.
//
// Guard runs an operation body and collapses any panic into a distinct
// internal-fault outcome so that a fault can never propagate past an
// entry point. Resource is a reference-counted, mutex-guarded cell whose
// lock records poisoning when a holder panics; once poisoned, every
// later access reports a normal error instead of crashing.
//
// Both facades (the flat ffi surface and the managed engram surface)
// share these primitives; neither duplicates locking or recovery logic.
package boundary
