// approach/approach.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package approach monitors the final approach: it tracks which stage
// of the approach the aircraft is in, judges whether the approach is
// stabilized, and calls for a go-around when it no longer is.
package approach

import (
	"log/slog"

	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

// Stabilized-approach tolerances. Deviation signs follow the usual
// flight-director convention: positive glideslope deviation is above
// the path, positive localizer deviation is right of course.
const (
	AltitudeTolerance    = 50   // feet from the target profile
	SpeedTolerance       = 10   // knots from the target approach speed
	MaxDescentRate       = 1000 // fpm
	GlideslopeTolerance  = 1.0  // dots
	LocalizerTolerance   = 1.0  // dots
	MinLandingFlaps      = 50   // percent
	MinimumsRelaxFactor  = 2    // altitude/speed relax for a minimally stabilized call
	LocalizerAbortDots   = 1.5
	GoAroundSpeedMargin  = 20 // knots above target before aborting
	GoAroundAltMargin    = 100
	GlideslopeCheckFloor = 1000 // feet AGL below which glideslope is enforced
	LocalizerCheckFloor  = 500  // feet AGL below which localizer and altitude are enforced
)

// Stage is how far down the approach the aircraft has gotten, keyed off
// height above the runway.
type Stage int

const (
	StageInitialDescent Stage = iota
	StageLevelOff1000
	StageFinalApproach
	StageShortFinal
	StageLandingImminent
	StageTouchdown
)

func (s Stage) String() string {
	return [...]string{"INITIAL_DESCENT", "LEVEL_OFF_1000FT", "FINAL_APPROACH",
		"SHORT_FINAL", "LANDING_IMMINENT", "TOUCHDOWN"}[s]
}

// StageForAGL maps height above the runway to the approach stage.
func StageForAGL(agl float32) Stage {
	switch {
	case agl > 2000:
		return StageInitialDescent
	case agl > 1000:
		return StageLevelOff1000
	case agl > 500:
		return StageFinalApproach
	case agl > 200:
		return StageShortFinal
	case agl > 50:
		return StageLandingImminent
	default:
		return StageTouchdown
	}
}

// State is what the monitor sees each tick.
type State struct {
	AGL            float32 // feet above the runway
	Altitude       float32 // feet MSL
	TargetAltitude float32 // profile altitude at this point, feet MSL
	IAS            float32
	TargetSpeed    float32 // Vapp
	VerticalSpeed  float32 // fpm, negative descending
	Glideslope     float32 // dots, positive above path
	Localizer      float32 // dots, positive right of course
	GearDown       bool
	Flaps          float32 // percent
}

// Snapshot records each stabilization criterion separately so the
// caller can report what exactly is out of limits.
type Snapshot struct {
	AltitudeOK   bool
	SpeedOK      bool
	DescentOK    bool
	GlideslopeOK bool
	LocalizerOK  bool
	ConfiguredOK bool // gear down, landing flaps set
}

// Evaluate checks every stabilization criterion against the tolerances.
func Evaluate(st State) Snapshot {
	return Snapshot{
		AltitudeOK:   math.Abs(st.Altitude-st.TargetAltitude) <= AltitudeTolerance,
		SpeedOK:      math.Abs(st.IAS-st.TargetSpeed) <= SpeedTolerance,
		DescentOK:    math.Abs(st.VerticalSpeed) <= MaxDescentRate,
		GlideslopeOK: math.Abs(st.Glideslope) <= GlideslopeTolerance,
		LocalizerOK:  math.Abs(st.Localizer) <= LocalizerTolerance,
		ConfiguredOK: st.GearDown && st.Flaps >= MinLandingFlaps,
	}
}

// FullyStabilized reports whether all criteria are within limits.
func (s Snapshot) FullyStabilized() bool {
	return s.AltitudeOK && s.SpeedOK && s.DescentOK && s.GlideslopeOK &&
		s.LocalizerOK && s.ConfiguredOK
}

// MinimumlyStabilized is the degraded bar for continuing a non-precision
// approach: altitude and speed tolerances are doubled and the localizer
// is not checked.
func MinimumlyStabilized(st State) bool {
	s := Snapshot{
		AltitudeOK:   math.Abs(st.Altitude-st.TargetAltitude) <= MinimumsRelaxFactor*AltitudeTolerance,
		SpeedOK:      math.Abs(st.IAS-st.TargetSpeed) <= MinimumsRelaxFactor*SpeedTolerance,
		DescentOK:    math.Abs(st.VerticalSpeed) <= MaxDescentRate,
		GlideslopeOK: math.Abs(st.Glideslope) <= GlideslopeTolerance,
		ConfiguredOK: st.GearDown && st.Flaps >= MinLandingFlaps,
	}
	return s.AltitudeOK && s.SpeedOK && s.DescentOK && s.GlideslopeOK && s.ConfiguredOK
}

// GoAroundReason names which limit forced the go-around.
type GoAroundReason int

const (
	GoAroundNone GoAroundReason = iota
	GoAroundAltitude
	GoAroundSpeed
	GoAroundDescentRate
	GoAroundGlideslope
	GoAroundLocalizer
)

func (r GoAroundReason) String() string {
	return [...]string{"NONE", "ALTITUDE", "SPEED", "DESCENT_RATE",
		"GLIDESLOPE", "LOCALIZER"}[r]
}

// CheckGoAround returns the first go-around trigger the state violates,
// or GoAroundNone. The checks are ordered by how directly they threaten
// the landing.
func CheckGoAround(st State) GoAroundReason {
	switch {
	case st.AGL < LocalizerCheckFloor && st.Altitude > st.TargetAltitude+GoAroundAltMargin:
		return GoAroundAltitude
	case st.IAS > st.TargetSpeed+GoAroundSpeedMargin:
		return GoAroundSpeed
	case math.Abs(st.VerticalSpeed) > MaxDescentRate:
		return GoAroundDescentRate
	case st.AGL < GlideslopeCheckFloor && st.Glideslope > GlideslopeTolerance:
		return GoAroundGlideslope
	case st.AGL < LocalizerCheckFloor && math.Abs(st.Localizer) > LocalizerAbortDots:
		return GoAroundLocalizer
	default:
		return GoAroundNone
	}
}

// Monitor tracks the approach across ticks so stage transitions and
// go-around calls are only reported once.
type Monitor struct {
	stage    Stage
	started  bool
	goAround GoAroundReason
	lg       *log.Logger
}

func NewMonitor(lg *log.Logger) *Monitor {
	return &Monitor{lg: lg}
}

func (m *Monitor) Stage() Stage { return m.stage }

// GoAroundCalled reports whether this approach has already been
// abandoned.
func (m *Monitor) GoAroundCalled() (GoAroundReason, bool) {
	return m.goAround, m.goAround != GoAroundNone
}

// Reset prepares the monitor for a fresh approach.
func (m *Monitor) Reset() {
	m.stage = StageInitialDescent
	m.started = false
	m.goAround = GoAroundNone
}

// Update advances the monitor one tick and returns the go-around reason
// if one fires. Once a go-around has been called the monitor stays in
// that state until Reset.
func (m *Monitor) Update(st State) (Snapshot, GoAroundReason) {
	snap := Evaluate(st)

	stage := StageForAGL(st.AGL)
	if !m.started || stage != m.stage {
		m.lg.Info("approach stage", slog.String("stage", stage.String()),
			slog.Float64("agl", float64(st.AGL)))
		m.stage = stage
		m.started = true
	}

	if m.goAround != GoAroundNone {
		return snap, m.goAround
	}

	if reason := CheckGoAround(st); reason != GoAroundNone {
		m.goAround = reason
		m.lg.Warn("go-around", slog.String("reason", reason.String()),
			slog.Float64("agl", float64(st.AGL)),
			slog.Float64("ias", float64(st.IAS)),
			slog.Float64("vs", float64(st.VerticalSpeed)))
		return snap, reason
	}
	return snap, GoAroundNone
}
