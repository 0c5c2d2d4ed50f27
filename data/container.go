// Package data provides thread-safe storage for the upstream probe status.
// Values are replaced with atomic swaps so readers never block a probe.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/logging"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer holds the latest probe result
type StatusContainer struct {
	probe           atomic.Pointer[interfaces.ProbeStatus]
	lastHealthy     atomic.Value // time.Time
	probing         atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewStatusContainer creates a container with no probe recorded
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{}
	sc.lastHealthy.Store(time.Time{})
	sc.serverStartTime.Store(time.Time{})
	return sc
}

// GetProbeStatus returns the latest probe and whether one has run
func (sc *StatusContainer) GetProbeStatus() (interfaces.ProbeStatus, bool) {
	if p := sc.probe.Load(); p != nil {
		return *p, true
	}
	return interfaces.ProbeStatus{}, false
}

// SetProbeStatus atomically replaces the latest probe
func (sc *StatusContainer) SetProbeStatus(status interfaces.ProbeStatus) {
	if status.CheckedAt.IsZero() {
		status.CheckedAt = time.Now()
	}
	sc.probe.Store(&status)
	if status.OK() {
		sc.lastHealthy.Store(status.CheckedAt)
	}
}

// GetLastHealthy returns when a probe last succeeded, zero if never
func (sc *StatusContainer) GetLastHealthy() time.Time {
	if v := sc.lastHealthy.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the last healthy probe time")
	return time.Time{}
}

// IsProbing returns true while a probe is in flight
func (sc *StatusContainer) IsProbing() bool {
	return sc.probing.Load()
}

// SetServerStartTime sets the server start time
func (sc *StatusContainer) SetServerStartTime(startTime time.Time) {
	sc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (sc *StatusContainer) GetServerStartTime() time.Time {
	if v := sc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// BeginProbe marks the start of a probe.
// Returns true if the probe can proceed, false if another one is in flight
func (sc *StatusContainer) BeginProbe() bool {
	return sc.probing.CompareAndSwap(false, true)
}

// EndProbe marks the end of a probe
func (sc *StatusContainer) EndProbe() {
	sc.probing.Store(false)
}
