// nav/nav_test.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

func testPlan() *FlightPlan {
	return &FlightPlan{
		Title:          "test",
		Departure:      "KJFK",
		Arrival:        "KBOS",
		CruiseAltitude: 8000,
		CruiseSpeed:    120,
		Waypoints: []aviation.Waypoint{
			{Id: "KJFK", Type: aviation.WaypointAirport, Location: math.MakePoint2LL(40.64, -73.78)},
			{Id: "MERIT", Type: aviation.WaypointFix, Location: math.MakePoint2LL(41.38, -73.14)},
			{Id: "PVD", Type: aviation.WaypointVOR, Location: math.MakePoint2LL(41.72, -71.43)},
			{Id: "KBOS", Type: aviation.WaypointAirport, Location: math.MakePoint2LL(42.36, -71.01)},
		},
	}
}

func TestCursorMonotonic(t *testing.T) {
	n := NewNav(testPlan(), nil)

	if n.Cursor() != 0 {
		t.Fatalf("fresh cursor got %d", n.Cursor())
	}

	prev := 0
	for i := 0; i < 10; i++ {
		n.Advance()
		if n.Cursor() < prev {
			t.Fatalf("cursor went backwards: %d -> %d", prev, n.Cursor())
		}
		prev = n.Cursor()
	}
	// Advancing past the end is a no-op.
	if n.Cursor() != len(n.Plan.Waypoints) {
		t.Errorf("cursor got %d, expected %d", n.Cursor(), len(n.Plan.Waypoints))
	}
	if _, ok := n.ActiveWaypoint(); ok {
		t.Errorf("active waypoint after end of plan")
	}

	n.Reset()
	if n.Cursor() != 0 {
		t.Errorf("cursor after reset got %d", n.Cursor())
	}
}

func TestActiveNextWaypoint(t *testing.T) {
	n := NewNav(testPlan(), nil)

	wp, ok := n.ActiveWaypoint()
	if !ok || wp.Id != "KJFK" {
		t.Errorf("active got %v %v", wp.Id, ok)
	}
	next, ok := n.NextWaypoint()
	if !ok || next.Id != "MERIT" {
		t.Errorf("next got %v %v", next.Id, ok)
	}

	n.Advance()
	n.Advance()
	n.Advance()
	if wp, ok = n.ActiveWaypoint(); !ok || wp.Id != "KBOS" {
		t.Errorf("active at last got %v %v", wp.Id, ok)
	}
	if _, ok = n.NextWaypoint(); ok {
		t.Errorf("next past last waypoint should not exist")
	}
}

func TestGuidance(t *testing.T) {
	n := NewNav(testPlan(), nil)
	n.Advance() // direct MERIT

	p := math.MakePoint2LL(40.9, -73.6)
	g := n.Update(p)
	if g.Done {
		t.Fatalf("guidance done with plan remaining")
	}
	if g.ActiveWaypoint != "MERIT" {
		t.Errorf("active got %s", g.ActiveWaypoint)
	}
	// MERIT is northeast of here.
	if g.Heading <= 0 || g.Heading >= 90 {
		t.Errorf("heading to MERIT got %f", g.Heading)
	}
	if g.DistanceNM <= 0 || g.DistanceNM > 60 {
		t.Errorf("distance to MERIT got %f", g.DistanceNM)
	}
}

func TestWaypointSequencing(t *testing.T) {
	n := NewNav(testPlan(), nil)
	n.Advance()

	// On top of MERIT: Update sequences to PVD.
	merit := n.Plan.Waypoints[1].Location
	g := n.Update(merit)
	if g.ActiveWaypoint != "PVD" {
		t.Errorf("after reaching MERIT, active got %s", g.ActiveWaypoint)
	}
	if n.Cursor() != 2 {
		t.Errorf("cursor got %d", n.Cursor())
	}
}

func TestCrossTrackError(t *testing.T) {
	plan := &FlightPlan{
		Waypoints: []aviation.Waypoint{
			{Id: "A", Location: math.MakePoint2LL(0, 0)},
			{Id: "B", Location: math.MakePoint2LL(0, 2)},
		},
	}
	n := NewNav(plan, nil)

	// No previous waypoint: no cross-track error.
	if xte := n.CrossTrackError(math.MakePoint2LL(1, 1)); xte != 0 {
		t.Errorf("cursor 0 cross-track got %f", xte)
	}

	n.Advance()
	// South of the eastbound leg is right of track.
	if xte := n.CrossTrackError(math.MakePoint2LL(-0.1, 1)); xte <= 0 {
		t.Errorf("south of track got %f, expected positive", xte)
	}
	if xte := n.CrossTrackError(math.MakePoint2LL(0.1, 1)); xte >= 0 {
		t.Errorf("north of track got %f, expected negative", xte)
	}
}

func TestTimeToDestination(t *testing.T) {
	n := NewNav(testPlan(), nil)

	total := n.RemainingDistance()
	if total < 140 || total > 220 {
		t.Errorf("JFK-BOS route distance got %f", total)
	}

	mins := n.TimeToDestination(120)
	if math.Abs(mins-total/120*60) > 0.01 {
		t.Errorf("time got %f for %f NM at 120 kn", mins, total)
	}
	if n.TimeToDestination(0) != 0 {
		t.Errorf("zero ground speed should return 0")
	}
}

func TestSnapshotRestore(t *testing.T) {
	n := NewNav(testPlan(), nil)
	n.Advance()
	snap := n.TakeSnapshot()

	n.Advance()
	n.Plan.Waypoints[0].Id = "SCRIBBLED"

	n.Restore(snap)
	if n.Cursor() != 1 {
		t.Errorf("restored cursor got %d", n.Cursor())
	}
	if n.Plan.Waypoints[0].Id != "KJFK" {
		t.Errorf("restored plan got %s", n.Plan.Waypoints[0].Id)
	}
}

func TestParseFlatFlightPlan(t *testing.T) {
	plan := `
# departure
AIRPORT KJFK 40.64 -73.78 13
FIX MERIT 41.38 -73.14 8000
VOR PVD 41.72 -71.43 8000
AIRPORT KBOS 42.36 -71.01 20
`
	fp, err := ParseFlightPlan([]byte(plan))
	if err != nil {
		t.Fatal(err)
	}
	if len(fp.Waypoints) != 4 {
		t.Fatalf("got %d waypoints", len(fp.Waypoints))
	}
	if fp.Departure != "KJFK" || fp.Arrival != "KBOS" {
		t.Errorf("got %s -> %s", fp.Departure, fp.Arrival)
	}
	if fp.CruiseAltitude != 8000 {
		t.Errorf("cruise altitude got %f", fp.CruiseAltitude)
	}
	if fp.Waypoints[1].Type != aviation.WaypointFix {
		t.Errorf("MERIT type got %v", fp.Waypoints[1].Type)
	}

	if _, err := ParseFlightPlan([]byte("FIX MERIT 41.38\n")); err == nil {
		t.Errorf("expected error for short line")
	}
	if _, err := ParseFlightPlan([]byte("# nothing\n")); err != ErrEmptyFlightPlan {
		t.Errorf("expected ErrEmptyFlightPlan, got %v", err)
	}
}

func TestParseXMLFlightPlan(t *testing.T) {
	plan := `<?xml version="1.0"?>
<FlightPlan>
  <Title>JFK to LAX</Title>
  <DepartureID>KJFK</DepartureID>
  <DestinationID>KLAX</DestinationID>
  <DepartureLLA>40.6398,-73.7789,+13</DepartureLLA>
  <DestinationLLA>33.9425,-118.4081,+126</DestinationLLA>
  <CruiseAltitude>35000</CruiseAltitude>
  <CruiseSpeed>450</CruiseSpeed>
  <Waypoints>
    <Waypoint id="DIRECT" type="RNAV">37.0,-95.0,+35000</Waypoint>
  </Waypoints>
</FlightPlan>`

	fp, err := ParseFlightPlan([]byte(plan))
	if err != nil {
		t.Fatal(err)
	}
	if fp.Title != "JFK to LAX" {
		t.Errorf("title got %q", fp.Title)
	}
	if len(fp.Waypoints) != 3 {
		t.Fatalf("got %d waypoints", len(fp.Waypoints))
	}
	if fp.Waypoints[0].Id != "KJFK" || fp.Waypoints[2].Id != "KLAX" {
		t.Errorf("endpoints got %s, %s", fp.Waypoints[0].Id, fp.Waypoints[2].Id)
	}
	if fp.Waypoints[1].Type != aviation.WaypointRNAV {
		t.Errorf("middle waypoint type got %v", fp.Waypoints[1].Type)
	}
	if fp.CruiseAltitude != 35000 {
		t.Errorf("cruise altitude got %f", fp.CruiseAltitude)
	}

	// The whole route is ~2145 NM.
	d := math.NMDistance2LL(fp.Waypoints[0].Location, fp.Waypoints[2].Location)
	if d < 2100 || d > 2200 {
		t.Errorf("JFK-LAX got %f NM", d)
	}

	if _, err := ParseFlightPlan([]byte("<FlightPlan></FlightPlan>")); err != ErrEmptyFlightPlan {
		t.Errorf("empty XML plan got %v", err)
	}
}
