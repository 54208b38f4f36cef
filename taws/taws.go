// taws/taws.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package taws implements a terrain awareness and warning system: it
// grades the aircraft's clearance above the terrain under and ahead of
// it and, when clearance is lost, prescribes an escape maneuver.
package taws

import (
	"errors"
	"log/slog"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/terrain"
)

// Alert levels, ordered by severity.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertCaution
	AlertWarning
	AlertPullUp
)

func (a AlertLevel) String() string {
	return [...]string{"NONE", "CAUTION", "WARNING", "PULL_UP"}[a]
}

// Clearance thresholds, feet AGL.
const (
	CautionClearance = 1000
	WarningClearance = 500
	PullUpClearance  = 300

	// SafetyMargin is added to terrain elevation to get the minimum
	// safe altitude.
	SafetyMargin = 1000

	// EscapePitch is the pitch target, degrees nose up, commanded when
	// escaping terrain.
	EscapePitch = 15

	// EscapeMargin is added to the obstructing elevation to get the
	// escape target altitude.
	EscapeMargin = 500
)

// System grades terrain clearance against an elevation store. Unknown
// terrain (ocean, missing tiles) is treated as sea level rather than as
// an alert.
type System struct {
	terrain *terrain.Store
	lg      *log.Logger
}

func NewSystem(store *terrain.Store, lg *log.Logger) *System {
	return &System{terrain: store, lg: lg}
}

// ElevationAt returns the terrain elevation in feet MSL at p, or 0
// where no data exists.
func (s *System) ElevationAt(p math.Point2LL) float32 {
	elev, err := s.terrain.Elevation(p)
	if err != nil {
		if !errors.Is(err, terrain.ErrNoData) {
			s.lg.Warnf("%v: terrain elevation: %v", p, err)
		}
		return 0
	}
	return elev
}

// AGL returns the aircraft's height above the terrain directly below.
func (s *System) AGL(p math.Point2LL, altitudeMSL float32) float32 {
	return altitudeMSL - s.ElevationAt(p)
}

// MinimumSafeAltitude returns the lowest altitude, feet MSL, with full
// terrain clearance at p.
func (s *System) MinimumSafeAltitude(p math.Point2LL) float32 {
	return s.ElevationAt(p) + SafetyMargin
}

// CheckClearance grades height above terrain. PULL_UP is only issued
// when the aircraft is not already climbing away.
func CheckClearance(agl float32, verticalSpeed float32) AlertLevel {
	switch {
	case agl < PullUpClearance && verticalSpeed <= 0:
		return AlertPullUp
	case agl < WarningClearance:
		return AlertWarning
	case agl < CautionClearance:
		return AlertCaution
	default:
		return AlertNone
	}
}

// Alert is the result of one terrain assessment.
type Alert struct {
	Level     AlertLevel
	AGL       float32
	Elevation float32 // terrain elevation, feet MSL
	Predicted bool    // alert is from the look-ahead position, not the current one
}

// Assess grades clearance at the aircraft's current position.
func (s *System) Assess(state aviation.AircraftState) Alert {
	elev := s.ElevationAt(state.Position)
	agl := state.Altitude - elev
	return Alert{
		Level:     CheckClearance(agl, state.VerticalSpeed),
		AGL:       agl,
		Elevation: elev,
	}
}

// PredictConflict dead-reckons the aircraft ahead by lookAheadSec along
// its present track and vertical speed and grades clearance there. The
// more severe of the current and predicted alerts is returned.
func (s *System) PredictConflict(state aviation.AircraftState, lookAheadSec float32) Alert {
	now := s.Assess(state)

	distNM := state.GroundSpeed * lookAheadSec / 3600
	ahead := math.Offset2LL(state.Position, state.Heading, distNM)
	altitude := state.Altitude + state.VerticalSpeed*lookAheadSec/60

	elev := s.ElevationAt(ahead)
	agl := altitude - elev
	predicted := Alert{
		Level:     CheckClearance(agl, state.VerticalSpeed),
		AGL:       agl,
		Elevation: elev,
		Predicted: true,
	}

	if predicted.Level > now.Level {
		if predicted.Level >= AlertWarning {
			s.lg.Warn("predicted terrain conflict", slog.String("level", predicted.Level.String()),
				slog.Float64("agl", float64(predicted.AGL)), slog.Float64("lookahead_s", float64(lookAheadSec)))
		}
		return predicted
	}
	return now
}

// ProfileAhead samples terrain elevation along the aircraft's track for
// the given distance, n+1 evenly spaced points starting under the
// aircraft.
func (s *System) ProfileAhead(state aviation.AircraftState, distanceNM float32, n int) ([]float32, error) {
	end := math.Offset2LL(state.Position, state.Heading, distanceNM)
	return s.terrain.Profile(state.Position, end, n)
}

// EscapeManeuver is what the pilot flies to recover terrain clearance.
type EscapeManeuver struct {
	TargetAltitude float32 // feet MSL
	PitchDegrees   float32
}

// Escape returns the maneuver clearing the terrain that produced the
// alert.
func Escape(a Alert) EscapeManeuver {
	return EscapeManeuver{
		TargetAltitude: a.Elevation + SafetyMargin + EscapeMargin,
		PitchDegrees:   EscapePitch,
	}
}
