// perf/perf.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package perf computes V-speeds, runway distance requirements, and
// weight-and-balance for the aircraft being flown. The numbers are
// advisory, tuned for Cessna-172-class aircraft and intended to drive a
// simulator, not an airplane.
package perf

import (
	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

const (
	// Reference constants for a C172-class aircraft.
	RefStallSpeed = 38   // knots, clean, at reference weight
	RefWeight     = 2450 // pounds

	StandardPressure = 29.92 // inHg
	StandardTempC    = 15
)

// Environment captures the conditions that performance depends on.
type Environment struct {
	FieldElevation float32 // feet MSL
	TemperatureC   float32
	Altimeter      float32 // inHg
	Wind           aviation.Wind
	RunwayHeading  float32 // degrees
	Surface        aviation.Surface
}

// PressureAltitude is field elevation corrected for non-standard
// pressure.
func (e Environment) PressureAltitude() float32 {
	return e.FieldElevation + (StandardPressure-e.Altimeter)*1000
}

// DensityAltitude corrects pressure altitude for non-standard
// temperature, at 120 ft per degree away from ISA.
func (e Environment) DensityAltitude() float32 {
	isa := float32(StandardTempC) - 2*e.FieldElevation/1000
	return e.PressureAltitude() + (e.TemperatureC-isa)*120
}

// Headwind returns the headwind component on the environment's runway;
// negative values are a tailwind.
func (e Environment) Headwind() float32 {
	hw, _ := aviation.WindComponents(e.Wind, e.RunwayHeading)
	return hw
}

// Configuration is the aircraft's flap/gear setup.
type Configuration struct {
	Flaps    float32 // 0-100
	GearDown bool
}

func surfaceCoefficient(s aviation.Surface) float32 {
	switch s {
	case aviation.SurfaceAsphalt, aviation.SurfaceConcrete:
		return 1.0
	case aviation.SurfaceGrass:
		return 0.85
	case aviation.SurfaceGravel:
		return 0.8
	case aviation.SurfaceDirt:
		return 0.75
	default:
		return 0.9
	}
}

// VSpeeds are the computed reference speeds, knots IAS.
type VSpeeds struct {
	Vs   float32 // stall, current weight and configuration
	Vref float32 // reference landing speed
	Vapp float32 // approach speed
	V1   float32 // takeoff decision speed
	Vr   float32 // rotation speed
	V2   float32 // takeoff safety speed
}

// ComputeVSpeeds derives the V-speeds for the given gross weight,
// environment, and configuration. Stall speed scales with the square
// root of the weight ratio; all speeds grow ~2% per thousand feet of
// density altitude. Gusts add half the gust increment to the takeoff
// speeds, and a soft surface lowers Vr for an early, soft-field
// rotation.
func ComputeVSpeeds(weight float32, env Environment, cfg Configuration) VSpeeds {
	vs := RefStallSpeed * math.Sqrt(weight/RefWeight)

	// Flaps lower the stall speed, up to ~15% at full deflection.
	vs *= 1 - 0.15*math.Clamp(cfg.Flaps, 0, 100)/100

	v := VSpeeds{
		Vs:   vs,
		Vref: 1.3 * vs,
		Vapp: 1.4 * vs,
		V1:   1.1 * vs,
		Vr:   1.05 * vs,
		V2:   1.2 * vs,
	}

	daFactor := 1 + env.DensityAltitude()/1000*0.02
	v.Vs *= daFactor
	v.Vref *= daFactor
	v.Vapp *= daFactor
	v.V1 *= daFactor
	v.Vr *= daFactor
	v.V2 *= daFactor

	if env.Wind.Gust > env.Wind.Speed {
		gustAdd := (env.Wind.Gust - env.Wind.Speed) / 2
		v.V1 += gustAdd
		v.Vr += gustAdd
		v.V2 += gustAdd
	}
	if c := surfaceCoefficient(env.Surface); c < 1 {
		v.Vr *= 0.95
	}

	return v
}
