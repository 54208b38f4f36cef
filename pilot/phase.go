// pilot/phase.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package pilot

import (
	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

// Phase is where the flight is in its lifecycle.
type Phase int

const (
	PhasePreflight Phase = iota
	PhaseTaxiOut
	PhaseTakeoff
	PhaseClimb
	PhaseCruise
	PhaseDescent
	PhaseApproach
	PhaseLanding
	PhaseTaxiIn
	PhaseShutdown
)

func (p Phase) String() string {
	return [...]string{"PREFLIGHT", "TAXI_OUT", "TAKEOFF", "CLIMB", "CRUISE",
		"DESCENT", "APPROACH", "LANDING", "TAXI_IN", "SHUTDOWN"}[p]
}

const (
	// TaxiSpeed and TakeoffSpeed split the on-ground regimes, knots.
	TaxiSpeed    = 5
	TakeoffSpeed = 40

	// LevelVS is the vertical speed band, fpm, inside which the
	// aircraft counts as level.
	LevelVS = 300

	// DescentStartNM is how far from the destination the descent
	// begins.
	DescentStartNM = 30

	// ApproachAltitude splits descent from approach, feet MSL.
	ApproachAltitude = 5000

	// PatternAltitude is the airborne altitude, feet MSL, below which
	// the aircraft is either just off the runway or about to be back
	// on it.
	PatternAltitude = 1000
)

// NextPhase is the transition function: given the current phase and a
// telemetry snapshot it returns the phase for this tick. The guards are
// evaluated in order, so earlier ones win. cruiseAlt is the planned
// cruise altitude; distToDestNM is the remaining distance, or 0 if
// unknown.
func NextPhase(phase Phase, st aviation.AircraftState, cruiseAlt, distToDestNM float32) Phase {
	arriving := phase == PhaseApproach || phase == PhaseLanding || phase == PhaseTaxiIn
	gs := st.GroundSpeed

	switch {
	case phase == PhaseShutdown:
		return PhaseShutdown

	case st.OnGround && gs < TaxiSpeed && (phase == PhaseLanding || phase == PhaseTaxiIn):
		return PhaseTaxiIn
	case st.OnGround && gs < TaxiSpeed:
		return PhasePreflight
	case st.OnGround && gs < TakeoffSpeed && arriving:
		return PhaseTaxiIn
	case st.OnGround && gs < TakeoffSpeed:
		return PhaseTaxiOut
	case st.OnGround && arriving:
		return PhaseLanding // rollout
	case st.OnGround:
		return PhaseTakeoff

	case st.Altitude < PatternAltitude && arriving:
		return PhaseLanding // short final
	case st.Altitude < PatternAltitude:
		return PhaseTakeoff

	case phase == PhaseCruise && distToDestNM > 0 && distToDestNM < DescentStartNM:
		return PhaseDescent

	case st.VerticalSpeed > LevelVS && st.Altitude < cruiseAlt-1000:
		return PhaseClimb
	case math.Abs(st.VerticalSpeed) <= LevelVS && (phase == PhaseDescent || phase == PhaseApproach):
		// Leveling off partway down does not resume the cruise.
		return phase
	case math.Abs(st.VerticalSpeed) <= LevelVS:
		return PhaseCruise
	case st.VerticalSpeed < -LevelVS && st.Altitude >= ApproachAltitude:
		return PhaseDescent
	default:
		return PhaseApproach
	}
}
