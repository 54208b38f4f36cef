// nav/flightplan.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/math"
)

// FlightPlan is an ordered sequence of waypoints from departure to
// arrival; it lives for the duration of one flight.
type FlightPlan struct {
	Title     string
	Departure string
	Arrival   string

	CruiseAltitude float32 // feet MSL
	CruiseSpeed    float32 // knots

	Waypoints []aviation.Waypoint
}

// LoadFlightPlan reads a flight plan file in either supported format:
// a flat list of "type id lat lon alt" lines, or a tagged hierarchical
// plan. The format is sniffed from the content.
func LoadFlightPlan(path string) (*FlightPlan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFlightPlan(b)
}

func ParseFlightPlan(b []byte) (*FlightPlan, error) {
	if strings.HasPrefix(strings.TrimSpace(string(b)), "<") {
		return parseXMLFlightPlan(b)
	}
	return parseFlatFlightPlan(string(b))
}

// parseFlatFlightPlan parses "type id lat lon alt" lines; '#' starts a
// comment and blank lines are skipped.
func parseFlatFlightPlan(s string) (*FlightPlan, error) {
	fp := &FlightPlan{}
	for i, line := range strings.Split(s, "\n") {
		line, _, _ = strings.Cut(line, "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		f := strings.Fields(line)
		if len(f) != 5 {
			return nil, fmt.Errorf("line %d: expected \"type id lat lon alt\", got %d fields: %w",
				i+1, len(f), ErrMalformedFlightPlan)
		}

		lat, err := strconv.ParseFloat(f[2], 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude %q: %w", i+1, f[2], ErrMalformedFlightPlan)
		}
		lon, err := strconv.ParseFloat(f[3], 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude %q: %w", i+1, f[3], ErrMalformedFlightPlan)
		}
		alt, err := strconv.ParseFloat(f[4], 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: altitude %q: %w", i+1, f[4], ErrMalformedFlightPlan)
		}

		wp := aviation.Waypoint{
			Id:       f[1],
			Type:     aviation.ParseWaypointType(f[0]),
			Location: math.MakePoint2LL(float32(lat), float32(lon)),
			Altitude: float32(alt),
		}
		fp.Waypoints = append(fp.Waypoints, wp)
	}

	if len(fp.Waypoints) == 0 {
		return nil, ErrEmptyFlightPlan
	}

	if fp.Waypoints[0].Type == aviation.WaypointAirport {
		fp.Departure = fp.Waypoints[0].Id
	}
	if last := fp.Waypoints[len(fp.Waypoints)-1]; last.Type == aviation.WaypointAirport {
		fp.Arrival = last.Id
	}
	for _, wp := range fp.Waypoints {
		fp.CruiseAltitude = math.Max(fp.CruiseAltitude, wp.Altitude)
	}
	return fp, nil
}

// xmlFlightPlan mirrors the hierarchical plan format: Title,
// DepartureLLA/DestinationLLA triplets ("lat,lon,±alt"), CruiseAltitude,
// and an optional list of en-route waypoints.
type xmlFlightPlan struct {
	Title          string        `xml:"Title"`
	DepartureID    string        `xml:"DepartureID"`
	DestinationID  string        `xml:"DestinationID"`
	DepartureLLA   string        `xml:"DepartureLLA"`
	DestinationLLA string        `xml:"DestinationLLA"`
	CruiseAltitude float32       `xml:"CruiseAltitude"`
	CruiseSpeed    float32       `xml:"CruiseSpeed"`
	Waypoints      []xmlWaypoint `xml:"Waypoints>Waypoint"`
}

type xmlWaypoint struct {
	Id   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	LLA  string `xml:",chardata"`
}

func parseXMLFlightPlan(b []byte) (*FlightPlan, error) {
	var x xmlFlightPlan
	if err := xml.Unmarshal(b, &x); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformedFlightPlan)
	}

	fp := &FlightPlan{
		Title:          x.Title,
		Departure:      x.DepartureID,
		Arrival:        x.DestinationID,
		CruiseAltitude: x.CruiseAltitude,
		CruiseSpeed:    x.CruiseSpeed,
	}

	if x.DepartureLLA != "" {
		wp, err := waypointFromLLA(x.DepartureID, x.DepartureLLA, aviation.WaypointAirport)
		if err != nil {
			return nil, err
		}
		fp.Waypoints = append(fp.Waypoints, wp)
	}
	for _, xwp := range x.Waypoints {
		wp, err := waypointFromLLA(xwp.Id, xwp.LLA, aviation.ParseWaypointType(xwp.Type))
		if err != nil {
			return nil, err
		}
		fp.Waypoints = append(fp.Waypoints, wp)
	}
	if x.DestinationLLA != "" {
		wp, err := waypointFromLLA(x.DestinationID, x.DestinationLLA, aviation.WaypointAirport)
		if err != nil {
			return nil, err
		}
		fp.Waypoints = append(fp.Waypoints, wp)
	}

	if len(fp.Waypoints) == 0 {
		return nil, ErrEmptyFlightPlan
	}
	return fp, nil
}

// waypointFromLLA parses a "lat,lon,±alt" triplet.
func waypointFromLLA(id, lla string, ty aviation.WaypointType) (aviation.Waypoint, error) {
	parts := strings.Split(lla, ",")
	if len(parts) != 3 {
		return aviation.Waypoint{}, fmt.Errorf("%q: expected lat,lon,alt: %w", lla, ErrMalformedFlightPlan)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(p), "+"), 32)
		if err != nil {
			return aviation.Waypoint{}, fmt.Errorf("%q: %v: %w", lla, err, ErrMalformedFlightPlan)
		}
		vals[i] = v
	}
	return aviation.Waypoint{
		Id:       id,
		Type:     ty,
		Location: math.MakePoint2LL(float32(vals[0]), float32(vals[1])),
		Altitude: float32(vals[2]),
	}, nil
}
