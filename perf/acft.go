// perf/acft.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package perf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AircraftConfig is what the copilot needs to know about the airframe,
// read from an INI-style aircraft .cfg file.
type AircraftConfig struct {
	Name string

	EmptyWeight    float32 // pounds
	EmptyArm       float32 // feet aft of datum
	MaxGrossWeight float32
	FuelCapacity   float32 // gallons

	StallSpeedClean float32 // knots
	ReferenceWeight float32 // pounds
	CruiseSpeed     float32 // knots
	CruiseAltitude  float32 // feet

	Stations []WeightItem
	Envelope Envelope
}

// DefaultAircraftConfig returns C172-class values for when no .cfg file
// is given.
func DefaultAircraftConfig() *AircraftConfig {
	return &AircraftConfig{
		Name:            "Generic Single",
		EmptyWeight:     1680,
		EmptyArm:        39.0 / 12,
		MaxGrossWeight:  RefWeight,
		FuelCapacity:    53,
		StallSpeedClean: RefStallSpeed,
		ReferenceWeight: RefWeight,
		CruiseSpeed:     122,
		CruiseAltitude:  8500,
		Envelope: Envelope{
			Points: []EnvelopePoint{
				{Weight: 1500, ForwardLimit: 15, AftLimit: 36},
				{Weight: 1950, ForwardLimit: 15, AftLimit: 36},
				{Weight: 2450, ForwardLimit: 20, AftLimit: 36},
			},
			MACLE:     2.80,
			MACLength: 4.90,
		},
	}
}

// LoadAircraftConfig parses an aircraft .cfg file: INI-style sections,
// key = value pairs, ';' or '//' comments. Recognized sections are
// [GENERAL], [WEIGHT_AND_BALANCE] (empty_weight, empty_weight_cg_position,
// max_gross_weight, fuel_capacity, station_load.N = weight, arm, "name"),
// [PERFORMANCE] (stall_speed_clean, reference_weight, cruise_speed,
// cruise_altitude), and [CG_ENVELOPE] (mac_leading_edge, mac_length,
// point.N = weight, fwd%MAC, aft%MAC). Unrecognized keys are ignored.
func LoadAircraftConfig(path string) (*AircraftConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAircraftConfig(f)
}

func ReadAircraftConfig(r io.Reader) (*AircraftConfig, error) {
	ac := DefaultAircraftConfig()
	ac.Envelope.Points = nil
	ac.Stations = nil

	section := ""
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if idx := strings.Index(line, ";"); idx != -1 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "//"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToUpper(line[1 : len(line)-1])
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key = value", lineno)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		getf := func() (float32, error) {
			v, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s: %w", lineno, key, err)
			}
			return float32(v), nil
		}

		var err error
		switch section {
		case "GENERAL":
			if key == "atc_model" || key == "title" {
				ac.Name = strings.Trim(value, `"`)
			}

		case "WEIGHT_AND_BALANCE":
			switch {
			case key == "empty_weight":
				ac.EmptyWeight, err = getf()
			case key == "empty_weight_cg_position":
				ac.EmptyArm, err = getf()
			case key == "max_gross_weight":
				ac.MaxGrossWeight, err = getf()
			case key == "fuel_capacity":
				ac.FuelCapacity, err = getf()
			case strings.HasPrefix(key, "station_load."):
				var item WeightItem
				if item, err = parseStationLoad(value); err == nil {
					ac.Stations = append(ac.Stations, item)
				}
			}

		case "PERFORMANCE":
			switch key {
			case "stall_speed_clean":
				ac.StallSpeedClean, err = getf()
			case "reference_weight":
				ac.ReferenceWeight, err = getf()
			case "cruise_speed":
				ac.CruiseSpeed, err = getf()
			case "cruise_altitude":
				ac.CruiseAltitude, err = getf()
			}

		case "CG_ENVELOPE":
			switch {
			case key == "mac_leading_edge":
				ac.Envelope.MACLE, err = getf()
			case key == "mac_length":
				ac.Envelope.MACLength, err = getf()
			case strings.HasPrefix(key, "point."):
				var pt EnvelopePoint
				if pt, err = parseEnvelopePoint(value); err == nil {
					ac.Envelope.Points = append(ac.Envelope.Points, pt)
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(ac.Envelope.Points) == 0 {
		ac.Envelope = DefaultAircraftConfig().Envelope
	}
	return ac, nil
}

// parseStationLoad parses `weight, arm, "name"`.
func parseStationLoad(v string) (WeightItem, error) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return WeightItem{}, fmt.Errorf("station load %q: expected weight, arm[, name]", v)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return WeightItem{}, fmt.Errorf("station load %q: %w", v, err)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return WeightItem{}, fmt.Errorf("station load %q: %w", v, err)
	}
	item := WeightItem{Weight: float32(w), Arm: float32(a)}
	if len(parts) > 2 {
		item.Name = strings.Trim(strings.TrimSpace(strings.Join(parts[2:], ",")), `"`)
	}
	return item, nil
}

// parseEnvelopePoint parses `weight, forward%MAC, aft%MAC`.
func parseEnvelopePoint(v string) (EnvelopePoint, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return EnvelopePoint{}, fmt.Errorf("envelope point %q: expected weight, fwd, aft", v)
	}
	var vals [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return EnvelopePoint{}, fmt.Errorf("envelope point %q: %w", v, err)
		}
		vals[i] = float32(f)
	}
	return EnvelopePoint{Weight: vals[0], ForwardLimit: vals[1], AftLimit: vals[2]}, nil
}
