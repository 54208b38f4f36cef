// nav/nav.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package nav owns the flight plan and the active-waypoint cursor and
// turns them into the guidance the autopilot flies.
package nav

import (
	"log/slog"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/math"

	"github.com/brunoga/deep"
)

// WaypointTolerance is how close the aircraft must get to a waypoint,
// NM, for it to count as reached.
const WaypointTolerance = 0.5

// Nav tracks progress along a flight plan. The cursor starts at 0 and
// only moves forward, except on Reset; it may equal len(Waypoints) once
// the last waypoint has been sequenced.
type Nav struct {
	Plan   *FlightPlan
	cursor int
	lg     *log.Logger
}

func NewNav(plan *FlightPlan, lg *log.Logger) *Nav {
	return &Nav{Plan: plan, lg: lg}
}

// Snapshot captures the plan and cursor for later rollback, e.g. before
// a diversion is attempted.
type Snapshot struct {
	Plan   *FlightPlan
	Cursor int
}

func (n *Nav) TakeSnapshot() Snapshot {
	return Snapshot{Plan: deep.MustCopy(n.Plan), Cursor: n.cursor}
}

func (n *Nav) Restore(s Snapshot) {
	n.Plan = s.Plan
	n.cursor = s.Cursor
}

func (n *Nav) Cursor() int { return n.cursor }

// ActiveWaypoint returns the waypoint currently being navigated to.
func (n *Nav) ActiveWaypoint() (aviation.Waypoint, bool) {
	if n.Plan == nil || n.cursor >= len(n.Plan.Waypoints) {
		return aviation.Waypoint{}, false
	}
	return n.Plan.Waypoints[n.cursor], true
}

// NextWaypoint returns the waypoint after the active one.
func (n *Nav) NextWaypoint() (aviation.Waypoint, bool) {
	if n.Plan == nil || n.cursor+1 >= len(n.Plan.Waypoints) {
		return aviation.Waypoint{}, false
	}
	return n.Plan.Waypoints[n.cursor+1], true
}

// Advance sequences the cursor to the next waypoint; advancing past the
// end is a no-op.
func (n *Nav) Advance() {
	if n.Plan == nil {
		return
	}
	if n.cursor < len(n.Plan.Waypoints) {
		n.cursor++
	}
	if wp, ok := n.ActiveWaypoint(); ok {
		n.lg.Debug("sequenced waypoint", slog.String("active", wp.Id), slog.Int("cursor", n.cursor))
	}
}

// Reset rewinds the cursor to the start of the plan.
func (n *Nav) Reset() {
	n.cursor = 0
}

// DistanceTo returns the distance in NM from the given position to the
// active waypoint, or 0 if the plan has been fully sequenced.
func (n *Nav) DistanceTo(p math.Point2LL) float32 {
	wp, ok := n.ActiveWaypoint()
	if !ok {
		return 0
	}
	return math.NMDistance2LL(p, wp.Location)
}

// BearingTo returns the great-circle bearing from the given position to
// the active waypoint.
func (n *Nav) BearingTo(p math.Point2LL) float32 {
	wp, ok := n.ActiveWaypoint()
	if !ok {
		return 0
	}
	return math.GreatCircleBearing(p, wp.Location)
}

// CrossTrackError returns the signed cross-track distance, NM, from the
// leg between the previous and active waypoints; positive right of
// track. With no previous waypoint there is no leg, so it is zero.
func (n *Nav) CrossTrackError(p math.Point2LL) float32 {
	wp, ok := n.ActiveWaypoint()
	if !ok || n.cursor == 0 {
		return 0
	}
	prev := n.Plan.Waypoints[n.cursor-1]
	return math.CrossTrackErrorNM(prev.Location, wp.Location, p)
}

// WaypointReached reports whether the aircraft is within
// WaypointTolerance of the active waypoint.
func (n *Nav) WaypointReached(p math.Point2LL) bool {
	if _, ok := n.ActiveWaypoint(); !ok {
		return false
	}
	return n.DistanceTo(p) <= WaypointTolerance
}

// RemainingDistance sums the great-circle legs from the active waypoint
// to the end of the plan.
func (n *Nav) RemainingDistance() float32 {
	if n.Plan == nil {
		return 0
	}
	var nm float32
	for i := n.cursor; i+1 < len(n.Plan.Waypoints); i++ {
		nm += math.NMDistance2LL(n.Plan.Waypoints[i].Location, n.Plan.Waypoints[i+1].Location)
	}
	return nm
}

// TimeToDestination estimates the minutes remaining at the given ground
// speed.
func (n *Nav) TimeToDestination(groundSpeed float32) float32 {
	if groundSpeed <= 0 {
		return 0
	}
	return n.RemainingDistance() / groundSpeed * 60
}

// Guidance is what the autopilot needs from navigation each tick.
type Guidance struct {
	ActiveWaypoint string
	Heading        float32 // degrees to fly
	DistanceNM     float32
	CrossTrackNM   float32
	Done           bool // plan fully sequenced
}

// Update sequences past any reached waypoint and returns the lateral
// guidance toward the active one.
func (n *Nav) Update(p math.Point2LL) Guidance {
	if n.WaypointReached(p) {
		n.Advance()
	}

	wp, ok := n.ActiveWaypoint()
	if !ok {
		return Guidance{Done: true}
	}
	return Guidance{
		ActiveWaypoint: wp.Id,
		Heading:        n.BearingTo(p),
		DistanceNM:     n.DistanceTo(p),
		CrossTrackNM:   n.CrossTrackError(p),
	}
}
