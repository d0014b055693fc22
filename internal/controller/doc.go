// Package controller keeps the UI's view of the device settings in sync with
// the device.
//
// # Overview
//
// A Controller owns two snapshots: the confirmed one (state.Store, only ever
// written from device responses) and the display one the widgets render
// (confirmed plus optimistic values for unresolved writes). It is driven
// entirely from the Bubble Tea update loop: operations return tea.Cmd values
// that perform the round trip, and results come back through Update as
// FetchResultMsg and WriteResultMsg. No locking is needed as long as every
// method is called from that loop.
//
// # Per-key Phases
//
//	loading ──fetch ok──> ready ──Submit──> writing ──ok──> ready
//	   │                    ^                  │
//	   └──fetch failed──> error <──failed──────┘
//	                        │
//	                        └──notice delivered──> ready
//
// A failure is reported once as a NoticeMsg. When the UI hands the notice
// back to Update, the affected keys leave PhaseError.
//
// # Ordering
//
// Every write takes the next sequence number and records it on each key it
// touches. A write response only counts for keys whose recorded number still
// matches, so an older response can never overwrite a newer choice. Fetches
// carry their own sequence and only the newest is applied; even then, keys
// with a write in flight or a dimmer waiting to settle keep their display
// value. A fetch issued before a write never overrides the keys that write
// touched, even when its answer is processed after the write succeeded.
//
// # Dimmer
//
// SlideDimmer updates the display immediately and feeds the debouncer. Once
// movement has been quiet for the debounce window, a DimmerSettledMsg is
// delivered through the notify function (Program.Send in the UI) and turned
// into a single write. With DimmerLeadingEdge the first value of a burst is
// sent instead; later values in the same burst are dropped and never shown.
//
// # Failure Handling
//
// A failed write reverts the affected keys to the confirmed value, or clears
// them when the device never reported one. A dimmer still being dragged keeps
// the user's value. Failures are never retried automatically; the r key in
// the UI issues a fresh fetch.
package controller
