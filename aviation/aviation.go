// aviation/aviation.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package aviation carries the data model shared across the copilot:
// aircraft and autopilot state snapshots, waypoints, runways, and wind.
package aviation

import (
	"fmt"
	"strings"

	"github.com/Plane14/AICopilotFS-sub000/math"
)

type WaypointType int

const (
	WaypointFix WaypointType = iota
	WaypointVOR
	WaypointNDB
	WaypointAirport
	WaypointRNAV
	WaypointIAF // initial approach fix
	WaypointIF  // intermediate fix
	WaypointFAF // final approach fix
	WaypointMAP // missed approach point
	WaypointUser
)

func (t WaypointType) String() string {
	switch t {
	case WaypointVOR:
		return "VOR"
	case WaypointNDB:
		return "NDB"
	case WaypointFix:
		return "FIX"
	case WaypointAirport:
		return "AIRPORT"
	case WaypointRNAV:
		return "RNAV"
	case WaypointIAF:
		return "IAF"
	case WaypointIF:
		return "IF"
	case WaypointFAF:
		return "FAF"
	case WaypointMAP:
		return "MAP"
	default:
		return "USER"
	}
}

func ParseWaypointType(s string) WaypointType {
	switch strings.ToUpper(s) {
	case "VOR":
		return WaypointVOR
	case "NDB":
		return WaypointNDB
	case "FIX", "INTERSECTION":
		return WaypointFix
	case "AIRPORT":
		return WaypointAirport
	case "RNAV":
		return WaypointRNAV
	case "IAF":
		return WaypointIAF
	case "IF":
		return WaypointIF
	case "FAF":
		return WaypointFAF
	case "MAP":
		return WaypointMAP
	default:
		return WaypointUser
	}
}

type Waypoint struct {
	Id       string
	Location math.Point2LL
	Altitude float32 // feet MSL constraint; 0 if unconstrained
	Type     WaypointType
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s %s %s alt %.0f", w.Id, w.Type, w.Location.DDString(), w.Altitude)
}

// Wind is a surface wind observation or forecast.
type Wind struct {
	Direction float32 // degrees, direction the wind blows from
	Speed     float32 // knots
	Gust      float32 // knots, 0 if none
}

// AircraftState is the per-tick telemetry snapshot from the simulator.
type AircraftState struct {
	Position math.Point2LL
	Altitude float32 // feet MSL
	Heading  float32 // degrees

	IAS           float32 // knots
	TAS           float32
	GroundSpeed   float32
	VerticalSpeed float32 // fpm

	Pitch float32 // degrees, positive nose up
	Bank  float32 // degrees, positive right

	Altimeter float32 // inHg setting

	OnGround     bool
	ParkingBrake bool
	GearDown     bool
	Flaps        float32 // 0-100

	FuelGallons float32
	EngineRPM   float32
}

// AutopilotState reports which holds are engaged and their targets.
type AutopilotState struct {
	Master bool

	HeadingHold  bool
	AltitudeHold bool
	SpeedHold    bool
	VSHold       bool
	NavMode      bool
	ApproachMode bool

	TargetHeading  float32
	TargetAltitude float32
	TargetSpeed    float32
	TargetVS       float32
}
