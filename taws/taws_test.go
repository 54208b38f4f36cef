// taws/taws_test.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package taws

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/terrain"
)

// flatTileStore writes a tile covering N40 W076 with uniform elevation
// in meters and returns a store over it.
func flatTileStore(t *testing.T, meters int16) *terrain.Store {
	t.Helper()

	dir := t.TempDir()
	buf := make([]byte, 2*terrain.TileDim*terrain.TileDim)
	for i := 0; i < len(buf); i += 2 {
		binary.BigEndian.PutUint16(buf[i:], uint16(meters))
	}
	if err := os.WriteFile(filepath.Join(dir, terrain.TileName(40, -76)), buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return terrain.NewStore(dir, nil)
}

func TestCheckClearance(t *testing.T) {
	for _, c := range []struct {
		agl, vs float32
		level   AlertLevel
	}{
		{5000, 0, AlertNone},
		{1000, 0, AlertNone},
		{999, 0, AlertCaution},
		{501, -500, AlertCaution},
		{499, 0, AlertWarning},
		{301, -500, AlertWarning},
		{299, -500, AlertPullUp},
		{299, 0, AlertPullUp},
		{299, 500, AlertWarning}, // climbing suppresses PULL_UP
		{50, 800, AlertWarning},
		{50, -100, AlertPullUp},
	} {
		if l := CheckClearance(c.agl, c.vs); l != c.level {
			t.Errorf("CheckClearance(%f, %f) got %v, expected %v", c.agl, c.vs, l, c.level)
		}
	}
}

func TestAlertMonotonicity(t *testing.T) {
	// Decreasing AGL at constant descent never lowers the alert level.
	prev := AlertNone
	for agl := float32(2000); agl >= 0; agl -= 10 {
		l := CheckClearance(agl, -500)
		if l < prev {
			t.Fatalf("alert level dropped from %v to %v at %f AGL", prev, l, agl)
		}
		prev = l
	}
	if prev != AlertPullUp {
		t.Errorf("final level got %v", prev)
	}
}

func TestAssess(t *testing.T) {
	// 500 m terrain = 1640.42 ft.
	s := NewSystem(flatTileStore(t, 500), nil)

	const elev = 500 * terrain.MetersToFeet
	p := math.MakePoint2LL(40.5, -75.5)

	if msa := s.MinimumSafeAltitude(p); math.Abs(msa-(elev+SafetyMargin)) > 0.5 {
		t.Errorf("MSA got %f, expected %f", msa, elev+SafetyMargin)
	}

	a := s.Assess(aviation.AircraftState{Position: p, Altitude: elev + 400, VerticalSpeed: -200})
	if a.Level != AlertWarning {
		t.Errorf("400 AGL descending got %v", a.Level)
	}
	if math.Abs(a.AGL-400) > 0.5 {
		t.Errorf("AGL got %f", a.AGL)
	}

	m := Escape(a)
	if math.Abs(m.TargetAltitude-(elev+SafetyMargin+EscapeMargin)) > 0.5 {
		t.Errorf("escape altitude got %f", m.TargetAltitude)
	}
	if m.PitchDegrees != EscapePitch {
		t.Errorf("escape pitch got %f", m.PitchDegrees)
	}
}

func TestAssessNoData(t *testing.T) {
	// Ocean: no tiles, elevation treated as sea level.
	s := NewSystem(terrain.NewStore(t.TempDir(), nil), nil)

	p := math.MakePoint2LL(30, -60)
	if e := s.ElevationAt(p); e != 0 {
		t.Errorf("no-data elevation got %f", e)
	}
	a := s.Assess(aviation.AircraftState{Position: p, Altitude: 3500})
	if a.Level != AlertNone || a.AGL != 3500 {
		t.Errorf("over ocean got %v at %f AGL", a.Level, a.AGL)
	}
}

func TestPredictConflict(t *testing.T) {
	s := NewSystem(flatTileStore(t, 500), nil)

	const elev = 500 * terrain.MetersToFeet
	p := math.MakePoint2LL(40.5, -75.5)

	// Level at 1200 AGL: fine now, fine ahead.
	st := aviation.AircraftState{Position: p, Altitude: elev + 1200, Heading: 90, GroundSpeed: 120}
	if a := s.PredictConflict(st, 60); a.Level != AlertNone {
		t.Errorf("level flight got %v", a.Level)
	}

	// Descending 1000 fpm from 1200 AGL: in 60 s the aircraft is at
	// 200 AGL, descending, so the predicted alert is PULL_UP.
	st.VerticalSpeed = -1000
	a := s.PredictConflict(st, 60)
	if a.Level != AlertPullUp {
		t.Errorf("descent prediction got %v", a.Level)
	}
	if !a.Predicted {
		t.Errorf("alert should come from the look-ahead position")
	}

	// Already below the warning floor now: the current alert wins when
	// it is at least as severe.
	st.Altitude = elev + 250
	st.VerticalSpeed = -100
	a = s.PredictConflict(st, 60)
	if a.Level != AlertPullUp || a.Predicted {
		t.Errorf("current conflict got %v predicted=%v", a.Level, a.Predicted)
	}
}

func TestProfileAhead(t *testing.T) {
	s := NewSystem(flatTileStore(t, 200), nil)

	st := aviation.AircraftState{Position: math.MakePoint2LL(40.5, -75.5), Heading: 270}
	prof, err := s.ProfileAhead(st, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(prof) != 6 {
		t.Fatalf("got %d samples", len(prof))
	}
	for i, e := range prof {
		if math.Abs(e-200*terrain.MetersToFeet) > 0.5 {
			t.Errorf("sample %d got %f", i, e)
		}
	}
}
