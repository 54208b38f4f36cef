// aviation/db.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Plane14/AICopilotFS-sub000/math"
	"github.com/Plane14/AICopilotFS-sub000/util"
)

// RunwayDB indexes the runway database by airport ICAO.
type RunwayDB struct {
	Airports map[string][]Runway
}

// LoadRunwayDB reads a runway database CSV file. The first row is the
// header:
//
//	ICAO,RunwayId,Lat,Lon,HeadingMag,LengthFt,WidthFt,Surface,HasILS,
//	LOC_MHz,GS_MHz,LOC_course,DH_ft,Category,RVR_ft,TODA,TORA,LDA,ASDA
func LoadRunwayDB(path string) (*RunwayDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRunwayDB(f)
}

func ReadRunwayDB(r io.Reader) (*RunwayDB, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("runway database header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"ICAO", "RunwayId", "Lat", "Lon", "HeadingMag", "LengthFt"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("runway database missing column %q", required)
		}
	}

	db := &RunwayDB{Airports: make(map[string][]Runway)}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("runway database line %d: %w", line+1, err)
		}
		line++

		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		getf := func(name string) float32 {
			v, _ := strconv.ParseFloat(get(name), 32)
			return float32(v)
		}
		geti := func(name string) int {
			v, _ := strconv.Atoi(get(name))
			return v
		}

		lat, err := strconv.ParseFloat(get("Lat"), 32)
		if err != nil {
			return nil, fmt.Errorf("runway database line %d: latitude %q", line, get("Lat"))
		}
		lon, err := strconv.ParseFloat(get("Lon"), 32)
		if err != nil {
			return nil, fmt.Errorf("runway database line %d: longitude %q", line, get("Lon"))
		}

		rwy := Runway{
			Airport:   get("ICAO"),
			Id:        get("RunwayId"),
			Threshold: math.MakePoint2LL(float32(lat), float32(lon)),
			Heading:   getf("HeadingMag"),
			Length:    geti("LengthFt"),
			Width:     geti("WidthFt"),
			Surface:   ParseSurface(get("Surface")),
			TORA:      geti("TORA"),
			TODA:      geti("TODA"),
			ASDA:      geti("ASDA"),
			LDA:       geti("LDA"),
		}

		switch strings.ToLower(get("HasILS")) {
		case "1", "true", "yes", "y":
			rwy.HasILS = true
			rwy.ILS = ILS{
				LocalizerMHz:   getf("LOC_MHz"),
				GlideslopeMHz:  getf("GS_MHz"),
				Course:         getf("LOC_course"),
				Category:       get("Category"),
				DecisionHeight: geti("DH_ft"),
				MinRVR:         geti("RVR_ft"),
			}
		}

		// Declared distances default to the full length when absent.
		if rwy.TORA == 0 {
			rwy.TORA = rwy.Length
		}
		if rwy.TODA == 0 {
			rwy.TODA = rwy.Length
		}
		if rwy.ASDA == 0 {
			rwy.ASDA = rwy.Length
		}
		if rwy.LDA == 0 {
			rwy.LDA = rwy.Length
		}

		if rwy.Airport == "" || rwy.Id == "" {
			return nil, fmt.Errorf("runway database line %d: missing airport or runway id", line)
		}
		db.Airports[rwy.Airport] = append(db.Airports[rwy.Airport], rwy)
	}

	return db, nil
}

// Runways returns all runways at the given airport. The returned slice
// is a copy; callers may reorder it.
func (db *RunwayDB) Runways(icao string) ([]Runway, error) {
	rwys, ok := db.Airports[icao]
	if !ok {
		return nil, ErrUnknownAirport
	}
	return util.DuplicateSlice(rwys), nil
}

// LookupRunway finds a specific runway at an airport.
func (db *RunwayDB) LookupRunway(icao, id string) (Runway, error) {
	rwys, ok := db.Airports[icao]
	if !ok {
		return Runway{}, ErrUnknownAirport
	}
	idx := slices.IndexFunc(rwys, func(r Runway) bool { return r.Id == id })
	if idx == -1 {
		return Runway{}, ErrUnknownRunway
	}
	return rwys[idx], nil
}
