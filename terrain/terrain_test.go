// terrain/terrain_test.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Plane14/AICopilotFS-sub000/math"
)

func writeTile(t *testing.T, dir string, lat, lon int, sample func(r, c int) int16) {
	t.Helper()

	buf := make([]byte, tileBytes)
	for r := 0; r < TileDim; r++ {
		for c := 0; c < TileDim; c++ {
			binary.BigEndian.PutUint16(buf[2*(r*TileDim+c):], uint16(sample(r, c)))
		}
	}
	if err := os.WriteFile(filepath.Join(dir, TileName(lat, lon)), buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTileName(t *testing.T) {
	for _, c := range []struct {
		lat, lon int
		name     string
	}{
		{40, -76, "N40W076.hgt"},
		{-1, 36, "S01E036.hgt"},
		{0, 0, "N00E000.hgt"},
		{-34, -59, "S34W059.hgt"},
	} {
		if n := TileName(c.lat, c.lon); n != c.name {
			t.Errorf("TileName(%d, %d) got %q, expected %q", c.lat, c.lon, n, c.name)
		}
	}
}

func TestElevationFlatTile(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 40, -76, func(r, c int) int16 { return 100 }) // meters

	s := NewStore(dir, nil)
	e, err := s.Elevation(math.MakePoint2LL(40.5, -75.5))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(e-100*MetersToFeet) > 0.01 {
		t.Errorf("flat tile elevation got %f, expected %f", e, 100*MetersToFeet)
	}
}

func TestElevationInterpolation(t *testing.T) {
	dir := t.TempDir()
	// Elevation increases from south to north: row 0 is the north edge.
	writeTile(t, dir, 40, -76, func(r, c int) int16 { return int16(TileDim - 1 - r) })

	s := NewStore(dir, nil)

	// At the south edge samples are 0, at the north edge 3600.
	south, err := s.Elevation(math.MakePoint2LL(40.0001, -75.5))
	if err != nil {
		t.Fatal(err)
	}
	north, err := s.Elevation(math.MakePoint2LL(40.9999, -75.5))
	if err != nil {
		t.Fatal(err)
	}
	if south >= north {
		t.Errorf("gradient lost in interpolation: south %f, north %f", south, north)
	}

	// Midpoint is halfway up the gradient.
	mid, err := s.Elevation(math.MakePoint2LL(40.5, -75.5))
	if err != nil {
		t.Fatal(err)
	}
	expect := float32(1800) * MetersToFeet
	if math.Abs(mid-expect) > 2 {
		t.Errorf("midpoint elevation got %f, expected ~%f", mid, expect)
	}
}

func TestElevationNoData(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	// Missing tile is recoverable.
	e, err := s.Elevation(math.MakePoint2LL(40.5, -75.5))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("missing tile: got err %v, expected ErrNoData", err)
	}
	if e != 0 {
		t.Errorf("missing tile elevation got %f, expected 0", e)
	}

	// Outside the data latitude band.
	if _, err := s.Elevation(math.MakePoint2LL(75, 10)); !errors.Is(err, ErrNoData) {
		t.Errorf("out of band: got err %v, expected ErrNoData", err)
	}
	if _, err := s.Elevation(math.MakePoint2LL(-75, 10)); !errors.Is(err, ErrNoData) {
		t.Errorf("out of band south: got err %v, expected ErrNoData", err)
	}
}

func TestElevationCorruptTile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TileName(40, -76)), make([]byte, 1000), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir, nil)
	if _, err := s.Elevation(math.MakePoint2LL(40.5, -75.5)); !errors.Is(err, ErrCorruptTile) {
		t.Errorf("truncated tile: got err %v, expected ErrCorruptTile", err)
	}
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 40, -76, func(r, c int) int16 { return 50 })

	s := NewStore(dir, nil)
	elevs, err := s.Profile(math.MakePoint2LL(40.2, -75.8), math.MakePoint2LL(40.8, -75.2), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(elevs) != 11 {
		t.Fatalf("profile returned %d samples, expected 11", len(elevs))
	}
	for i, e := range elevs {
		if math.Abs(e-50*MetersToFeet) > 0.01 {
			t.Errorf("profile sample %d got %f", i, e)
		}
	}
}

func TestAreaStats(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 40, -76, func(r, c int) int16 { return 200 })

	s := NewStore(dir, nil)
	stats, err := s.AreaStats(math.MakePoint2LL(40.5, -75.5), 5)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Samples == 0 {
		t.Fatal("no samples returned")
	}
	expect := float32(200) * MetersToFeet
	if math.Abs(stats.MinElevation-expect) > 0.01 || math.Abs(stats.MaxElevation-expect) > 0.01 ||
		math.Abs(stats.MeanElevation-expect) > 0.01 {
		t.Errorf("stats got %+v, expected all ~%f", stats, expect)
	}

	// A circle with no coverage at all reports no data.
	if _, err := s.AreaStats(math.MakePoint2LL(10, 10), 5); !errors.Is(err, ErrNoData) {
		t.Errorf("uncovered area: got err %v, expected ErrNoData", err)
	}
}
