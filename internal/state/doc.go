// Package state holds the authoritative settings snapshot for lumen.
//
// # Overview
//
// Exactly one Snapshot is current at any time. It starts empty, absorbs each
// successful GET through Replace, and each confirmed write through Patch.
// Failures are recorded with Fail without discarding previous data, so the
// UI keeps showing the last known good values alongside the error.
//
// # Update Semantics
//
//	// Fetch succeeded: merge every reported field
//	store.Replace(settings)
//	→ reported fields overwrite, absent fields stay
//	→ LastError = nil, ConsecutiveFailures = 0
//
//	// Fetch succeeded while a newer local write is pending for dimmer
//	store.Replace(settings, lights.KeyDimmer)
//	→ dimmer keeps the value the pending write will confirm
//
//	// Write confirmed
//	store.Patch(update)
//	→ the update's keys are applied from the local intent
//
//	// Any failure
//	store.Fail(err)
//	→ settings unchanged, LastError = err, ConsecutiveFailures++
//
// # Ownership
//
// The Store has no lock. It belongs to the sync controller, which only runs
// inside the Bubble Tea update loop. Snapshot returns deep copies so views can
// hold on to them freely.
package state
