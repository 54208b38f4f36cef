// perf/wb.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package perf

import (
	"errors"
	"sort"

	"github.com/Plane14/AICopilotFS-sub000/math"
)

var ErrEmptyLoad = errors.New("No weight items provided")

// WeightItem is one entry in the loading manifest.
type WeightItem struct {
	Name   string
	Weight float32 // pounds
	Arm    float32 // feet aft of datum
}

// EnvelopePoint gives the CG limits, as percent MAC, at one gross
// weight. An envelope is a list of these, monotonic in weight, with
// limits linearly interpolated between points.
type EnvelopePoint struct {
	Weight       float32 // pounds
	ForwardLimit float32 // %MAC
	AftLimit     float32 // %MAC
}

// Envelope is the certified loading envelope plus the MAC geometry
// needed to express CG as a percentage of it.
type Envelope struct {
	Points    []EnvelopePoint
	MACLE     float32 // MAC leading edge, feet aft of datum
	MACLength float32 // feet
}

type WBStatus int

const (
	WBOK WBStatus = iota
	WBNoseHeavy
	WBTailHeavy
	WBOverweight
	WBUnderweight
)

func (s WBStatus) String() string {
	switch s {
	case WBOK:
		return "OK"
	case WBNoseHeavy:
		return "NOSE_HEAVY"
	case WBTailHeavy:
		return "TAIL_HEAVY"
	case WBOverweight:
		return "OVERWEIGHT"
	default:
		return "UNDERWEIGHT"
	}
}

// WBResult is the computed loading solution.
type WBResult struct {
	TotalWeight  float32
	TotalMoment  float32
	CGFeet       float32
	CGPercentMAC float32
	ForwardLimit float32 // %MAC at this weight
	AftLimit     float32
	Status       WBStatus
}

// ComputeWB sums the manifest, locates the CG, and checks it against the
// envelope interpolated at the total weight.
func ComputeWB(items []WeightItem, env Envelope) (WBResult, error) {
	if len(items) == 0 {
		return WBResult{}, ErrEmptyLoad
	}

	var r WBResult
	for _, it := range items {
		r.TotalWeight += it.Weight
		r.TotalMoment += it.Weight * it.Arm
	}
	if r.TotalWeight <= 0 {
		return WBResult{}, ErrEmptyLoad
	}

	r.CGFeet = r.TotalMoment / r.TotalWeight
	if env.MACLength > 0 {
		r.CGPercentMAC = (r.CGFeet - env.MACLE) / env.MACLength * 100
	}

	if len(env.Points) == 0 {
		r.Status = WBOK
		return r, nil
	}

	if r.TotalWeight < env.Points[0].Weight {
		r.Status = WBUnderweight
		r.ForwardLimit = env.Points[0].ForwardLimit
		r.AftLimit = env.Points[0].AftLimit
		return r, nil
	}
	last := env.Points[len(env.Points)-1]
	if r.TotalWeight > last.Weight {
		r.Status = WBOverweight
		r.ForwardLimit = last.ForwardLimit
		r.AftLimit = last.AftLimit
		return r, nil
	}

	r.ForwardLimit, r.AftLimit = env.limitsAt(r.TotalWeight)
	switch {
	case r.CGPercentMAC < r.ForwardLimit:
		r.Status = WBNoseHeavy
	case r.CGPercentMAC > r.AftLimit:
		r.Status = WBTailHeavy
	default:
		r.Status = WBOK
	}
	return r, nil
}

// limitsAt interpolates the envelope limits at the given weight, which
// must lie inside the envelope's weight range.
func (env Envelope) limitsAt(weight float32) (fwd, aft float32) {
	pts := env.Points
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Weight >= weight })
	if i == 0 {
		return pts[0].ForwardLimit, pts[0].AftLimit
	}
	if i == len(pts) {
		last := pts[len(pts)-1]
		return last.ForwardLimit, last.AftLimit
	}

	lo, hi := pts[i-1], pts[i]
	if hi.Weight == lo.Weight {
		return hi.ForwardLimit, hi.AftLimit
	}
	t := (weight - lo.Weight) / (hi.Weight - lo.Weight)
	return math.Lerp(t, lo.ForwardLimit, hi.ForwardLimit), math.Lerp(t, lo.AftLimit, hi.AftLimit)
}
