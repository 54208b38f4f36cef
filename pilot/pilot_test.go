// pilot/pilot_test.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package pilot

import (
	"strings"
	"testing"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/bridge"
	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/nav"
	"github.com/Plane14/AICopilotFS-sub000/perf"
)

// fakeBridge serves a fixed state snapshot and records every command.
type fakeBridge struct {
	st   aviation.AircraftState
	err  error
	cmds []bridge.Command
}

func (f *fakeBridge) State() (aviation.AircraftState, error)      { return f.st, f.err }
func (f *fakeBridge) Autopilot() (aviation.AutopilotState, error) { return aviation.AutopilotState{}, f.err }
func (f *fakeBridge) Send(cmd bridge.Command) error               { f.cmds = append(f.cmds, cmd); return nil }
func (f *fakeBridge) Close() error                                { return nil }

func (f *fakeBridge) sent(op bridge.Op) (bridge.Command, bool) {
	for _, c := range f.cmds {
		if c.Op == op {
			return c, true
		}
	}
	return bridge.Command{}, false
}

func testPilot(fb *fakeBridge) *Pilot {
	plan := &nav.FlightPlan{
		Departure:      "KJFK",
		Arrival:        "KBOS",
		CruiseAltitude: 8000,
		CruiseSpeed:    120,
		Waypoints: []aviation.Waypoint{
			{Id: "KJFK", Type: aviation.WaypointAirport, Location: math.MakePoint2LL(40.64, -73.78)},
			{Id: "KBOS", Type: aviation.WaypointAirport, Location: math.MakePoint2LL(42.36, -71.01)},
		},
	}
	return New(fb, Config{Nav: nav.NewNav(plan, nil)}, nil)
}

func TestPreflightActions(t *testing.T) {
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:    math.MakePoint2LL(40.64, -73.78),
		OnGround:    true,
		FuelGallons: 40,
	}}
	p := testPilot(fb)

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhasePreflight {
		t.Fatalf("phase got %v", p.Phase())
	}
	if c, ok := fb.sent(bridge.OpParkingBrake); !ok || !c.On {
		t.Errorf("parking brake not set")
	}
	if _, ok := fb.sent(bridge.OpLight); !ok {
		t.Errorf("lights not commanded")
	}

	// Entry actions run once.
	fb.cmds = nil
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if len(fb.cmds) != 0 {
		t.Errorf("preflight entry actions repeated: %+v", fb.cmds)
	}
}

func TestCruiseCommands(t *testing.T) {
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:      math.MakePoint2LL(41.2, -72.8),
		Altitude:      8000,
		GroundSpeed:   120,
		VerticalSpeed: 0,
		FuelGallons:   30,
		EngineRPM:     2300,
	}}
	p := testPilot(fb)
	p.phase = PhaseCruise
	p.nav.Advance() // departure already sequenced

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhaseCruise {
		t.Fatalf("phase got %v", p.Phase())
	}
	if c, ok := fb.sent(bridge.OpAPAltitude); !ok || c.Value != 8000 {
		t.Errorf("altitude target got %+v", c)
	}
	if c, ok := fb.sent(bridge.OpAPSpeed); !ok || c.Value != 120 {
		t.Errorf("speed target got %+v", c)
	}
	if c, ok := fb.sent(bridge.OpAPHeading); !ok || c.Value <= 0 || c.Value >= 90 {
		t.Errorf("heading to KBOS got %+v", c)
	}
}

func TestEngineFailureSuppressesActions(t *testing.T) {
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:      math.MakePoint2LL(41.2, -72.8),
		Altitude:      8000,
		GroundSpeed:   120,
		FuelGallons:   30,
		EngineRPM:     0,
	}}
	p := testPilot(fb)
	p.phase = PhaseCruise

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if len(fb.cmds) != 0 {
		t.Errorf("commands sent with failed systems probe: %+v", fb.cmds)
	}
}

func TestTickSkipOnBridgeFailure(t *testing.T) {
	fb := &fakeBridge{err: bridge.ErrBridgeUnavailable}
	p := testPilot(fb)

	for i := 0; i < maxSkippedTicks-1; i++ {
		if err := p.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if err := p.Tick(); err != ErrConnectionLost {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}

	// One good tick resets the failure count.
	fb.err = nil
	fb.st = aviation.AircraftState{OnGround: true, FuelGallons: 40}
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.skipped != 0 {
		t.Errorf("skipped count not reset: %d", p.skipped)
	}
}

func TestTerrainEscape(t *testing.T) {
	// No terrain data: elevation 0, so AGL equals altitude. Descending
	// through 250 ft triggers the pull-up.
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:      math.MakePoint2LL(41.2, -72.8),
		Altitude:      250,
		GroundSpeed:   100,
		VerticalSpeed: -400,
		FuelGallons:   30,
		EngineRPM:     2300,
	}}
	p := testPilot(fb)

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if c, ok := fb.sent(bridge.OpThrottle); !ok || c.Value != 1 {
		t.Errorf("escape throttle got %+v", c)
	}
	c, ok := fb.sent(bridge.OpAPAltitude)
	if !ok || c.Value < 1000 {
		t.Errorf("escape altitude got %+v", c)
	}
}

func TestGoAroundOnFastApproach(t *testing.T) {
	// 135 kn against a 110 kn target on short final.
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:      math.MakePoint2LL(42.3, -71.05),
		Altitude:      400,
		IAS:           135,
		GroundSpeed:   130,
		VerticalSpeed: -600,
		GearDown:      true,
		Flaps:         50,
		FuelGallons:   20,
		EngineRPM:     2300,
	}}
	p := testPilot(fb)
	p.phase = PhaseApproach
	p.monitor.Reset()
	p.vspeeds.Vapp = 110

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if c, ok := fb.sent(bridge.OpThrottle); !ok || c.Value != 1 {
		t.Errorf("go-around power not applied: %+v", fb.cmds)
	}
	if c, ok := fb.sent(bridge.OpAPApproach); !ok || c.On {
		t.Errorf("approach mode not dropped: %+v", c)
	}
}

func TestLowFuelDiversion(t *testing.T) {
	db := &aviation.RunwayDB{Airports: map[string][]aviation.Runway{
		"KPVD": {{Airport: "KPVD", Id: "05", Threshold: math.MakePoint2LL(41.72, -71.43),
			Heading: 50, Length: 7166, LDA: 7166, Surface: aviation.SurfaceAsphalt}},
		"KBOS": {{Airport: "KBOS", Id: "04R", Threshold: math.MakePoint2LL(42.36, -71.01),
			Heading: 40, Length: 10005, LDA: 10005, Surface: aviation.SurfaceAsphalt}},
	}}
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:    math.MakePoint2LL(41.6, -71.9),
		Altitude:    8000,
		GroundSpeed: 110,
		Altimeter:   29.92,
		FuelGallons: 4,
		EngineRPM:   2300,
	}}
	p := testPilot(fb)
	p.runways = db
	p.phase = PhaseCruise

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.nav.Plan.Arrival != "KPVD" {
		t.Fatalf("diversion arrival got %q", p.nav.Plan.Arrival)
	}
	if p.landingRwy == nil || p.landingRwy.Airport != "KPVD" {
		t.Errorf("landing runway not planned: %+v", p.landingRwy)
	}
}

func TestDiversionRollback(t *testing.T) {
	// The only field around is far too short to land on; the original
	// plan must survive the attempt.
	db := &aviation.RunwayDB{Airports: map[string][]aviation.Runway{
		"1B9": {{Airport: "1B9", Id: "09", Threshold: math.MakePoint2LL(41.7, -71.8),
			Heading: 90, Length: 900, LDA: 900, Surface: aviation.SurfaceGrass}},
	}}
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:    math.MakePoint2LL(41.6, -71.9),
		Altitude:    8000,
		GroundSpeed: 110,
		Altimeter:   29.92,
		FuelGallons: 4,
		EngineRPM:   2300,
	}}
	p := testPilot(fb)
	p.runways = db
	p.phase = PhaseCruise

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.nav.Plan.Arrival != "KBOS" {
		t.Errorf("arrival got %q, expected the original plan back", p.nav.Plan.Arrival)
	}
	if len(p.nav.Plan.Waypoints) != 2 {
		t.Errorf("plan waypoints got %d", len(p.nav.Plan.Waypoints))
	}
}

func TestSafetyHoldKeepsEntryActions(t *testing.T) {
	fb := &fakeBridge{st: aviation.AircraftState{
		Position:      math.MakePoint2LL(42.0, -71.4),
		Altitude:      4000,
		IAS:           100,
		GroundSpeed:   110,
		VerticalSpeed: -400,
		FuelGallons:   30,
	}}
	p := testPilot(fb)
	p.phase = PhaseDescent
	p.vspeeds = perf.VSpeeds{Vapp: 110}

	// The engine probe fails on the tick that enters APPROACH; the
	// entry actions are held for a later tick, not lost.
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhaseApproach {
		t.Fatalf("phase got %v", p.Phase())
	}
	if len(fb.cmds) != 0 {
		t.Errorf("commands emitted during failed probe: %+v", fb.cmds)
	}

	fb.st.EngineRPM = 2300
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if c, ok := fb.sent(bridge.OpAPApproach); !ok || !c.On {
		t.Errorf("approach mode not armed after probe recovered: %+v", c)
	}
}

func TestObserve(t *testing.T) {
	p := testPilot(&fakeBridge{})

	if err := p.Observe("KJFK 121851Z 31008KT 10SM BKN020 22/14 A2992"); err != nil {
		t.Fatal(err)
	}
	m, ok := p.wx.Get("KJFK")
	if !ok {
		t.Fatal("observation not cached")
	}
	if m.Ceiling != 2000 {
		t.Errorf("ceiling got %d", m.Ceiling)
	}

	if err := p.Observe("garbage"); err == nil {
		t.Error("expected parse error")
	}
}

func TestShutdownSecuresAircraft(t *testing.T) {
	fb := &fakeBridge{st: aviation.AircraftState{OnGround: true, FuelGallons: 30}}
	p := testPilot(fb)
	p.shutdownPass()

	if p.Phase() != PhaseShutdown {
		t.Fatalf("phase got %v", p.Phase())
	}
	want := []bridge.Op{bridge.OpParkingBrake, bridge.OpThrottle, bridge.OpMixture,
		bridge.OpMagnetos, bridge.OpEngineStop}
	for _, op := range want {
		if _, ok := fb.sent(op); !ok {
			t.Errorf("%s not commanded at shutdown", op)
		}
	}
}

func TestPhaseStrings(t *testing.T) {
	// Sanity for log output.
	s := strings.Join([]string{PhasePreflight.String(), PhaseShutdown.String()}, ",")
	if s != "PREFLIGHT,SHUTDOWN" {
		t.Errorf("got %s", s)
	}
}
