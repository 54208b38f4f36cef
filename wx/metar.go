// wx/metar.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wx parses textual METAR observations and derives the weather
// suitability predicates used for flight planning decisions.
package wx

import (
	"fmt"
	"strconv"
	"strings"
)

// UnlimitedCeiling is reported when no broken or overcast layer is
// present.
const UnlimitedCeiling = 10000

// CloudLayer is a single reported cloud layer.
type CloudLayer struct {
	Coverage string // SKC, CLR, FEW, SCT, BKN, OVC
	Altitude int    // feet AGL
	Type     string // "", "CB", or "TCU"
}

// METAR is a parsed surface weather observation. Zero-value fields of a
// report with Valid false should not be trusted; ParseError says what
// went wrong.
type METAR struct {
	Station string
	Day     int // day of month, UTC
	Hour    int
	Minute  int

	WindDir      int // degrees true; meaningless if WindVariable
	WindSpeed    int // knots
	WindGust     int // knots, 0 if not reported
	WindVariable bool

	Visibility float32 // statute miles
	Weather    []string
	Clouds     []CloudLayer

	Temperature float32 // Celsius
	Dewpoint    float32
	Altimeter   float32 // inHg

	Remarks string
	Raw     string

	// Derived at parse time.
	Ceiling       int // feet AGL; UnlimitedCeiling if no BKN/OVC layer
	Thunderstorm  bool
	Precipitation bool
	Icing         bool
	LowVisibility bool

	Valid      bool
	ParseError string
}

var cloudCoverages = []string{"SKC", "CLR", "FEW", "SCT", "BKN", "OVC"}

var weatherCodes = []string{
	"RA", "SN", "SG", "PL", "GR", "GS", "UP", "TS", "FZ", "VC", "DZ", "BR", "FG", "FU",
}

// ParseMETAR parses a single whitespace-tokenized observation in the
// canonical order: station, time, wind, visibility, weather, clouds,
// temperature/dewpoint, altimeter, remarks. A failure to parse one of
// the mandatory leading fields yields Valid false with ParseError set;
// tokens that match no known field shape are skipped.
func ParseMETAR(raw string) METAR {
	m := METAR{Raw: strings.TrimSpace(raw), Ceiling: UnlimitedCeiling}

	raw, _, _ = strings.Cut(raw, "\n")
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return m.fail("too few fields")
	}

	if !isStation(fields[0]) {
		return m.fail(fields[0] + ": invalid station identifier")
	}
	m.Station = fields[0]

	if err := m.parseTime(fields[1]); err != nil {
		return m.fail(err.Error())
	}

	for i := 2; i < len(fields); i++ {
		f := fields[i]

		if f == "RMK" {
			m.Remarks = strings.Join(fields[i+1:], " ")
			break
		}

		switch {
		case f == "CAVOK":
			m.Visibility = 10
			m.Weather = nil
			m.Clouds = nil

		case strings.HasSuffix(f, "KT"):
			if err := m.parseWind(f); err != nil {
				return m.fail(err.Error())
			}

		case strings.HasSuffix(f, "SM"):
			if err := m.parseVisibility(f); err != nil {
				return m.fail(err.Error())
			}

		case isCloudLayer(f):
			layer, err := parseCloudLayer(f)
			if err != nil {
				return m.fail(err.Error())
			}
			m.Clouds = append(m.Clouds, layer)

		case strings.HasPrefix(f, "A") && len(f) == 5 && isDigits(f[1:]):
			alt, _ := strconv.Atoi(f[1:])
			m.Altimeter = float32(alt) / 100

		case isTempDewpoint(f):
			if err := m.parseTempDewpoint(f); err != nil {
				return m.fail(err.Error())
			}

		case hasWeatherCode(f):
			m.Weather = append(m.Weather, f)

		default:
			// AUTO, COR, and other tokens we don't interpret.
		}
	}

	m.Valid = true
	m.derive()
	return m
}

func (m METAR) fail(why string) METAR {
	m.Valid = false
	m.ParseError = why
	return m
}

func isStation(s string) bool {
	if len(s) < 3 || len(s) > 4 {
		return false
	}
	for _, ch := range s {
		if !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (m *METAR) parseTime(f string) error {
	if len(f) != 7 || f[6] != 'Z' || !isDigits(f[:6]) {
		return fmt.Errorf("%s: invalid observation time", f)
	}
	day, _ := strconv.Atoi(f[0:2])
	hour, _ := strconv.Atoi(f[2:4])
	min, _ := strconv.Atoi(f[4:6])
	if day < 1 || day > 31 || hour > 23 || min > 59 {
		return fmt.Errorf("%s: observation time out of range", f)
	}
	m.Day, m.Hour, m.Minute = day, hour, min
	return nil
}

func (m *METAR) parseWind(f string) error {
	w := strings.TrimSuffix(f, "KT")

	if strings.HasPrefix(w, "VRB") {
		spd, err := strconv.Atoi(w[3:])
		if err != nil {
			return fmt.Errorf("%s: invalid variable wind", f)
		}
		m.WindVariable = true
		m.WindSpeed = spd
		return nil
	}

	var gust int
	if idx := strings.IndexByte(w, 'G'); idx != -1 {
		g, err := strconv.Atoi(w[idx+1:])
		if err != nil {
			return fmt.Errorf("%s: invalid gust", f)
		}
		gust = g
		w = w[:idx]
	}

	if len(w) != 5 || !isDigits(w) {
		return fmt.Errorf("%s: invalid wind group", f)
	}
	dir, _ := strconv.Atoi(w[:3])
	spd, _ := strconv.Atoi(w[3:])
	if dir > 360 {
		return fmt.Errorf("%s: wind direction out of range", f)
	}
	m.WindDir, m.WindSpeed, m.WindGust = dir, spd, gust
	return nil
}

func (m *METAR) parseVisibility(f string) error {
	v := strings.TrimSuffix(f, "SM")
	v = strings.TrimPrefix(v, "M") // "M1/4SM": less than a quarter mile

	if v == "P6" {
		m.Visibility = 10
		return nil
	}
	if num, denom, ok := strings.Cut(v, "/"); ok {
		n, err := strconv.Atoi(num)
		if err != nil {
			return fmt.Errorf("%s: invalid visibility", f)
		}
		d, err := strconv.Atoi(denom)
		if err != nil || d == 0 {
			return fmt.Errorf("%s: invalid visibility", f)
		}
		m.Visibility = float32(n) / float32(d)
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid visibility", f)
	}
	m.Visibility = float32(n)
	return nil
}

func isCloudLayer(f string) bool {
	for _, cov := range cloudCoverages {
		if strings.HasPrefix(f, cov) {
			return true
		}
	}
	return false
}

func parseCloudLayer(f string) (CloudLayer, error) {
	layer := CloudLayer{Coverage: f[:3]}
	rest := f[3:]

	// SKC/CLR carry no altitude.
	if rest == "" {
		return layer, nil
	}
	if len(rest) < 3 || !isDigits(rest[:3]) {
		return CloudLayer{}, fmt.Errorf("%s: invalid cloud layer", f)
	}
	alt, _ := strconv.Atoi(rest[:3])
	layer.Altitude = alt * 100

	switch rest[3:] {
	case "":
	case "CB", "TCU":
		layer.Type = rest[3:]
	default:
		return CloudLayer{}, fmt.Errorf("%s: invalid cloud layer suffix", f)
	}
	return layer, nil
}

func isTempDewpoint(f string) bool {
	tt, dd, ok := strings.Cut(f, "/")
	if !ok {
		return false
	}
	tt = strings.TrimPrefix(tt, "M")
	dd = strings.TrimPrefix(dd, "M")
	return isDigits(tt) && isDigits(dd)
}

func (m *METAR) parseTempDewpoint(f string) error {
	parse := func(s string) (float32, error) {
		neg := strings.HasPrefix(s, "M")
		v, err := strconv.Atoi(strings.TrimPrefix(s, "M"))
		if err != nil {
			return 0, fmt.Errorf("%s: invalid temperature group", f)
		}
		if neg {
			v = -v
		}
		return float32(v), nil
	}

	tt, dd, _ := strings.Cut(f, "/")
	var err error
	if m.Temperature, err = parse(tt); err != nil {
		return err
	}
	m.Dewpoint, err = parse(dd)
	return err
}

func hasWeatherCode(f string) bool {
	// Altimeter/cloud groups are dispatched before this, so a simple
	// substring check is enough.
	for _, code := range weatherCodes {
		if strings.Contains(f, code) {
			return true
		}
	}
	return false
}

// derive fills in the fields computed from the parsed report.
func (m *METAR) derive() {
	// The lowest broken or overcast layer constitutes the ceiling; layers
	// above the unlimited default don't lower it.
	m.Ceiling = UnlimitedCeiling
	for _, layer := range m.Clouds {
		if layer.Coverage == "BKN" || layer.Coverage == "OVC" {
			if layer.Altitude < m.Ceiling {
				m.Ceiling = layer.Altitude
			}
		}
	}

	for _, w := range m.Weather {
		if strings.Contains(w, "TS") {
			m.Thunderstorm = true
		}
		for _, p := range []string{"RA", "SN", "PL", "GR"} {
			if strings.Contains(w, p) {
				m.Precipitation = true
			}
		}
	}

	m.Icing = m.Temperature >= -20 && m.Temperature <= 10 &&
		(m.Precipitation || m.Thunderstorm)
	m.LowVisibility = m.Visibility < 3
}

// SuitableForFlight reports whether the observed weather allows starting
// a flight at all: VMC-ish visibility and ceiling, manageable wind, and
// no icing conditions in cold air.
func (m METAR) SuitableForFlight() bool {
	if !m.Valid {
		return false
	}
	if m.Visibility < 3 || m.Ceiling < 1000 || m.WindSpeed > 30 {
		return false
	}
	if m.Icing && m.Temperature < 5 {
		return false
	}
	return true
}

// SuitableForTakeoff applies the (looser) departure minima.
func (m METAR) SuitableForTakeoff() bool {
	return m.Valid && m.Visibility >= 1 && m.Ceiling >= 500 && m.WindSpeed <= 35
}

// SuitableForLanding applies the landing minima.
func (m METAR) SuitableForLanding() bool {
	return m.Valid && m.Visibility >= 0.5 && m.Ceiling >= 300 && m.WindSpeed <= 40
}
