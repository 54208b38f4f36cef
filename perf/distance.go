// perf/distance.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package perf

import (
	"github.com/Plane14/AICopilotFS-sub000/math"
)

const (
	// Sea-level standard-day distances over a 50 ft obstacle at
	// reference weight, feet.
	BaseTakeoffDistance = 1600
	BaseLandingDistance = 1300

	// Margin required beyond computed distance for a runway to be
	// considered suitable.
	DefaultRunwayMargin = 1000

	// FAA 121.195 landing factor.
	landingSafetyFactor = 1.67
	takeoffSafetyFactor = 1.15
)

// TakeoffDistance returns the takeoff distance required in feet for the
// given gross weight and conditions, including the safety factor.
func TakeoffDistance(weight float32, env Environment) float32 {
	d := float32(BaseTakeoffDistance)
	d *= weight / RefWeight
	d *= 1 + env.DensityAltitude()/1000*0.035
	d *= 1 + math.Max(0, (env.TemperatureC-StandardTempC)/5)*0.02
	d /= surfaceCoefficient(env.Surface)
	d *= windDistanceFactor(env.Headwind(), 0.1)
	return d * takeoffSafetyFactor
}

// LandingDistance returns the landing distance required in feet,
// including the FAA safety factor.
func LandingDistance(weight float32, env Environment) float32 {
	d := float32(BaseLandingDistance)
	d *= weight / RefWeight
	d *= 1 + env.DensityAltitude()/1000*0.04
	d *= 1 + math.Max(0, (env.TemperatureC-StandardTempC)/5)*0.02
	d /= surfaceCoefficient(env.Surface)
	d *= windDistanceFactor(env.Headwind(), 0.5)
	return d * landingSafetyFactor
}

// windDistanceFactor shortens the distance with headwind and stretches
// it with tailwind. A 20 kn headwind would nominally halve the roll
// twice over, so the factor is floored to keep the result physical.
func windDistanceFactor(headwind, floor float32) float32 {
	return math.Max(1-headwind/20, floor)
}

// RunwaySuitable reports whether a runway of the given length leaves the
// required margin beyond the distance required.
func RunwaySuitable(runwayLength, distanceRequired, margin float32) bool {
	if margin <= 0 {
		margin = DefaultRunwayMargin
	}
	return runwayLength > distanceRequired+margin
}
