// bridge/bridge.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package bridge is the link to the running simulator: it pulls the
// aircraft and autopilot state and pushes control commands. Command
// values are clamped to their legal ranges here so that no caller can
// send the simulator an out-of-range input.
package bridge

import (
	"errors"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

var ErrBridgeUnavailable = errors.New("Simulator bridge is unavailable")

// Bridge is implemented by each simulator connection.
type Bridge interface {
	// State returns the current aircraft state; it is polled every
	// tick, so implementations must bound how long it can block.
	State() (aviation.AircraftState, error)
	Autopilot() (aviation.AutopilotState, error)
	Send(cmd Command) error
	Close() error
}

// Op identifies a simulator command.
type Op string

const (
	OpAPMaster        Op = "ap_master"
	OpAPHeading       Op = "ap_heading"
	OpAPAltitude      Op = "ap_altitude"
	OpAPSpeed         Op = "ap_speed"
	OpAPVerticalSpeed Op = "ap_vs"
	OpAPNav           Op = "ap_nav"
	OpAPApproach      Op = "ap_approach"

	OpElevator Op = "elevator"
	OpAileron  Op = "aileron"
	OpRudder   Op = "rudder"

	OpThrottle     Op = "throttle"
	OpMixture      Op = "mixture"
	OpPropeller    Op = "propeller"
	OpFlaps        Op = "flaps"
	OpGear         Op = "gear"
	OpSpoilers     Op = "spoilers"
	OpParkingBrake Op = "parking_brake"
	OpBrakes       Op = "brakes"

	OpMagnetos    Op = "magnetos"
	OpEngineStart Op = "engine_start"
	OpEngineStop  Op = "engine_stop"

	OpLight   Op = "light"
	OpATCMenu Op = "atc_menu"
)

// Light identifies an aircraft light circuit.
type Light string

const (
	LightNav     Light = "NAV"
	LightBeacon  Light = "BEACON"
	LightStrobe  Light = "STROBE"
	LightLanding Light = "LANDING"
	LightTaxi    Light = "TAXI"
)

// Command is one instruction to the simulator; only the fields the op
// uses are meaningful.
type Command struct {
	Op    Op      `msgpack:"op"`
	On    bool    `msgpack:"on,omitempty"`
	Value float32 `msgpack:"value,omitempty"`
	Index int     `msgpack:"index,omitempty"`
	Light Light   `msgpack:"light,omitempty"`
}

func APMaster(on bool) Command { return Command{Op: OpAPMaster, On: on} }

func APHeading(deg float32) Command {
	return Command{Op: OpAPHeading, Value: math.NormalizeHeading(deg)}
}

func APAltitude(feet float32) Command {
	return Command{Op: OpAPAltitude, Value: math.Clamp(feet, 0, 60000)}
}

func APSpeed(knots float32) Command {
	return Command{Op: OpAPSpeed, Value: math.Clamp(knots, 0, 500)}
}

func APVerticalSpeed(fpm float32) Command {
	return Command{Op: OpAPVerticalSpeed, Value: math.Clamp(fpm, -6000, 6000)}
}

func APNav(on bool) Command      { return Command{Op: OpAPNav, On: on} }
func APApproach(on bool) Command { return Command{Op: OpAPApproach, On: on} }

// Control surfaces are normalized to [-1, 1].
func Elevator(v float32) Command { return Command{Op: OpElevator, Value: math.Clamp(v, -1, 1)} }
func Aileron(v float32) Command  { return Command{Op: OpAileron, Value: math.Clamp(v, -1, 1)} }
func Rudder(v float32) Command   { return Command{Op: OpRudder, Value: math.Clamp(v, -1, 1)} }

// Levers are normalized to [0, 1].
func Throttle(v float32) Command  { return Command{Op: OpThrottle, Value: math.Clamp(v, 0, 1)} }
func Mixture(v float32) Command   { return Command{Op: OpMixture, Value: math.Clamp(v, 0, 1)} }
func Propeller(v float32) Command { return Command{Op: OpPropeller, Value: math.Clamp(v, 0, 1)} }
func Brakes(v float32) Command    { return Command{Op: OpBrakes, Value: math.Clamp(v, 0, 1)} }

// Flaps takes percent of full deflection.
func Flaps(pct float32) Command { return Command{Op: OpFlaps, Value: math.Clamp(pct, 0, 100)} }

func Gear(down bool) Command       { return Command{Op: OpGear, On: down} }
func Spoilers(out bool) Command    { return Command{Op: OpSpoilers, On: out} }
func ParkingBrake(on bool) Command { return Command{Op: OpParkingBrake, On: on} }

// Magnetos is 0 off, 1 right, 2 left, 3 both.
func Magnetos(pos int) Command { return Command{Op: OpMagnetos, Index: math.Clamp(pos, 0, 3)} }

func EngineStart() Command { return Command{Op: OpEngineStart} }
func EngineStop() Command  { return Command{Op: OpEngineStop} }

func SetLight(l Light, on bool) Command { return Command{Op: OpLight, Light: l, On: on} }

// ATCMenu selects the numbered option in the simulator's ATC window.
func ATCMenu(option int) Command {
	return Command{Op: OpATCMenu, Index: math.Clamp(option, 0, 9)}
}
