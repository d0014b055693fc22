package state

import (
	"fmt"
	"time"

	"github.com/five82/lumen/internal/lights"
)

// Snapshot is the settings record the device has confirmed.
type Snapshot struct {
	Settings            lights.Settings
	Fetched             bool // at least one GET succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // failed round trips since the last success
}

// IsOffline returns true when the device has been unreachable for multiple
// round trips.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the single authoritative snapshot. It is not safe for
// concurrent use; the sync controller touches it only from the UI event loop.
type Store struct {
	snapshot Snapshot
	now      func() time.Time
}

// NewStore returns an empty store. A nil clock uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Replace merges a fetched snapshot. Fields the response did not report
// keep their previous value. Keys listed in skip are left untouched too;
// the controller uses this for keys with a newer local write in flight.
func (s *Store) Replace(fetched lights.Settings, skip ...lights.Key) {
	incoming := fetched.Clone()
	for _, k := range skip {
		switch k {
		case lights.KeyIntensityMode:
			incoming.IntensityMode = nil
		case lights.KeyCurrentPreset:
			incoming.CurrentPreset = nil
		case lights.KeyDimmer:
			incoming.Dimmer = nil
		}
	}
	s.snapshot.Settings = s.snapshot.Settings.Merge(incoming)
	s.snapshot.Fetched = true
	s.succeeded()
}

// Patch records a confirmed write from the locally known intent. The write
// response body is never parsed.
func (s *Store) Patch(update lights.Update) {
	s.snapshot.Settings = s.snapshot.Settings.Apply(update)
	s.succeeded()
}

// Fail records a failed round trip. Previous data is kept.
func (s *Store) Fail(err error) {
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = s.clock()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	snap := s.snapshot
	snap.Settings = s.snapshot.Settings.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) succeeded() {
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = s.clock()
	s.snapshot.ConsecutiveFailures = 0
}

func (s *Store) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
