// aviation/runway.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/util"
)

type Surface int

const (
	SurfaceUnknown Surface = iota
	SurfaceAsphalt
	SurfaceConcrete
	SurfaceGrass
	SurfaceGravel
	SurfaceDirt
	SurfaceWater
)

func ParseSurface(s string) Surface {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASPHALT", "ASP":
		return SurfaceAsphalt
	case "CONCRETE", "CON":
		return SurfaceConcrete
	case "GRASS", "TURF", "GRS":
		return SurfaceGrass
	case "GRAVEL", "GVL":
		return SurfaceGravel
	case "DIRT":
		return SurfaceDirt
	case "WATER":
		return SurfaceWater
	default:
		return SurfaceUnknown
	}
}

func (s Surface) String() string {
	switch s {
	case SurfaceAsphalt:
		return "ASPHALT"
	case SurfaceConcrete:
		return "CONCRETE"
	case SurfaceGrass:
		return "GRASS"
	case SurfaceGravel:
		return "GRAVEL"
	case SurfaceDirt:
		return "DIRT"
	case SurfaceWater:
		return "WATER"
	default:
		return "UNKNOWN"
	}
}

// ILS describes the instrument landing system serving a runway.
type ILS struct {
	LocalizerMHz   float32
	GlideslopeMHz  float32
	Course         float32 // degrees magnetic
	Category       string  // "I", "II", "III"
	DecisionHeight int     // feet AGL
	MinRVR         int     // feet
}

// Runway describes one landing direction at an airport.
type Runway struct {
	Airport   string // ICAO
	Id        string // e.g. "04L"
	Threshold math.Point2LL
	Heading   float32 // degrees magnetic
	Length    int     // feet
	Width     int     // feet
	Surface   Surface
	HasILS    bool
	ILS       ILS

	// Declared distances, feet.
	TORA int
	TODA int
	ASDA int
	LDA  int
}

// WindComponents resolves a wind against a runway heading. Headwind is
// positive down the runway (negative values are a tailwind); crosswind is
// signed, positive from the right.
func WindComponents(wind Wind, runwayHeading float32) (headwind, crosswind float32) {
	diff := math.Radians(math.SignedAngleDifference(wind.Direction, runwayHeading))
	headwind = wind.Speed * math.Cos(diff)
	crosswind = wind.Speed * math.Sin(diff)
	return
}

// SelectionCriteria constrains and weights runway selection.
type SelectionCriteria struct {
	MaxCrosswind     float32 // knots
	MaxTailwind      float32 // knots
	RequiredDistance float32 // feet (landing or takeoff distance required)
	PreferILS        bool
}

// LandingCriteria returns the default limits used when picking an
// arrival runway.
func LandingCriteria(requiredDistance float32) SelectionCriteria {
	return SelectionCriteria{
		MaxCrosswind:     20,
		MaxTailwind:      5,
		RequiredDistance: requiredDistance,
		PreferILS:        true,
	}
}

// TakeoffCriteria returns the default limits used when picking a
// departure runway.
func TakeoffCriteria(requiredDistance float32) SelectionCriteria {
	return SelectionCriteria{
		MaxCrosswind:     20,
		MaxTailwind:      3,
		RequiredDistance: requiredDistance,
	}
}

// Acceptable reports whether the runway can be used at all under the
// given wind and criteria.
func (r Runway) Acceptable(wind Wind, c SelectionCriteria) bool {
	if r.Length == 0 {
		return false // closed
	}
	hw, xw := WindComponents(wind, r.Heading)
	if math.Abs(xw) > c.MaxCrosswind {
		return false
	}
	if hw < -c.MaxTailwind {
		return false
	}
	return float32(r.LDA) >= c.RequiredDistance
}

// Score rates an acceptable runway; lower is better. Crosswind dominates,
// tailwind is penalized heavily, headwind and extra length are credited,
// and an ILS earns a bonus when one is preferred.
func (r Runway) Score(wind Wind, c SelectionCriteria) float32 {
	hw, xw := WindComponents(wind, r.Heading)

	score := math.Abs(xw) * 100
	score += math.Max(0, -hw) * 200
	score -= math.Max(0, hw) * 50
	score -= (float32(r.Length) - c.RequiredDistance) * 0.1
	if c.PreferILS && r.HasILS {
		score -= 50
	}
	return score
}

// SelectRunway returns the acceptable runway with the lowest score, with
// ties broken by input order.
func SelectRunway(runways []Runway, wind Wind, c SelectionCriteria) (Runway, error) {
	acceptable := util.FilterSlice(runways, func(r Runway) bool { return r.Acceptable(wind, c) })
	if len(acceptable) == 0 {
		return Runway{}, ErrNoAcceptableRunway
	}

	best := acceptable[0]
	bestScore := best.Score(wind, c)
	for _, r := range acceptable[1:] {
		if s := r.Score(wind, c); s < bestScore {
			best, bestScore = r, s
		}
	}
	return best, nil
}

// ReciprocalId returns the zero-padded identifier of the opposite runway
// end: "04L" -> "22R", "22R" -> "04L", "36" -> "18", "9C" -> "27C".
func ReciprocalId(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	num, side := id, ""
	switch id[len(id)-1] {
	case 'L':
		num, side = id[:len(id)-1], "R"
	case 'R':
		num, side = id[:len(id)-1], "L"
	case 'C':
		num, side = id[:len(id)-1], "C"
	}

	v, err := strconv.Atoi(num)
	if err != nil {
		return ""
	}
	v = (v + 18) % 36
	if v == 0 {
		v = 36
	}
	return fmt.Sprintf("%02d%s", v, side)
}
