// pilot/safety.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package pilot

import "github.com/Plane14/AICopilotFS-sub000/aviation"

const (
	// LowFuelGallons is the reserve below which the pilot calls for a
	// diversion.
	LowFuelGallons = 5

	// MinRunningRPM is the idle floor; below it with the aircraft in
	// motion the engine has failed.
	MinRunningRPM = 500
)

// SafetyStatus is the result of the per-tick systems probe.
type SafetyStatus struct {
	LowFuel       bool
	EngineFailure bool
}

// OK reports whether normal phase actions may run this tick.
func (s SafetyStatus) OK() bool {
	return !s.EngineFailure
}

// CheckSafety probes the telemetry snapshot for conditions that must
// override normal phase behavior. Low fuel is a warning that requests a
// diversion but lets the phase continue; an engine failure in flight
// suppresses normal actions.
func CheckSafety(phase Phase, st aviation.AircraftState) SafetyStatus {
	var s SafetyStatus
	s.LowFuel = st.FuelGallons <= LowFuelGallons

	switch phase {
	case PhasePreflight, PhaseTaxiIn, PhaseShutdown:
		// Engine may legitimately be off.
	default:
		s.EngineFailure = st.EngineRPM < MinRunningRPM
	}
	return s
}
