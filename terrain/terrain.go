// terrain/terrain.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package terrain provides elevation lookups over a directory of 1x1
// degree SRTM-style .hgt tiles, with a bounded LRU cache so that only a
// handful of (roughly 25MB) tiles are resident at a time.
package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrNoData      = errors.New("No elevation data for location")
	ErrCorruptTile = errors.New("Elevation tile is corrupt")
)

const (
	// TileDim is the number of samples along each axis of a 1 degree
	// tile; samples are spaced 1 arc-second apart with the last row and
	// column shared with the neighboring tiles.
	TileDim = 3601

	tileBytes = 2 * TileDim * TileDim

	MetersToFeet = 3.28084

	// Tiles are not available outside this latitude band.
	MaxDataLatitude = 60

	// CacheTiles bounds resident tiles; at ~25MB each this is ~400MB.
	CacheTiles = 16
)

type tileKey struct {
	lat, lon int // floor of the tile's southwest corner
}

type tile struct {
	samples []int16
}

// Store provides elevation lookups, profiles, and area statistics over a
// tile directory. It is safe for use from multiple goroutines: the LRU
// updates recency under its own lock and tile loads are serialized by mu.
type Store struct {
	dir   string
	cache *lru.Cache[tileKey, *tile]
	mu    sync.Mutex
	lg    *log.Logger
}

func NewStore(dir string, lg *log.Logger) *Store {
	cache, _ := lru.New[tileKey, *tile](CacheTiles) // only errors for size <= 0
	return &Store{dir: dir, cache: cache, lg: lg}
}

// TileName returns the filename for the tile containing the given
// coordinates, e.g. N40W076.hgt for (40.7, -75.2).
func TileName(lat, lon int) string {
	ns, ew := 'N', 'E'
	alat, alon := lat, lon
	if lat < 0 {
		ns, alat = 'S', -lat
	}
	if lon < 0 {
		ew, alon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, alat, ew, alon)
}

// Elevation returns the terrain elevation in feet MSL at the given point,
// bilinearly interpolated from the four surrounding samples. Locations
// with no tile coverage return 0 and ErrNoData; tiles that fail
// validation return ErrCorruptTile.
func (s *Store) Elevation(p math.Point2LL) (float32, error) {
	lat, lon := p.Latitude(), math.NormalizeLongitude(p.Longitude())
	if lat < -MaxDataLatitude || lat > MaxDataLatitude {
		return 0, ErrNoData
	}

	key := tileKey{lat: int(math.Floor(lat)), lon: int(math.Floor(lon))}
	t, err := s.tile(key)
	if err != nil {
		return 0, err
	}

	// Row 0 is the tile's northern edge.
	fracRow := (float32(key.lat+1) - lat) * (TileDim - 1)
	fracCol := (lon - float32(key.lon)) * (TileDim - 1)

	r := math.Clamp(int(fracRow), 0, TileDim-2)
	c := math.Clamp(int(fracCol), 0, TileDim-2)
	fy := math.Clamp(fracRow-float32(r), 0, 1)
	fx := math.Clamp(fracCol-float32(c), 0, 1)

	at := func(r, c int) float32 { return float32(t.samples[r*TileDim+c]) }
	meters := math.Bilinear(fx, fy, at(r, c), at(r, c+1), at(r+1, c), at(r+1, c+1))

	return meters * MetersToFeet, nil
}

func (s *Store) tile(key tileKey) (*tile, error) {
	if t, ok := s.cache.Get(key); ok {
		return t, nil
	}

	// Serialize loads so a miss storm doesn't read the same tile from
	// disk multiple times.
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache.Get(key); ok {
		return t, nil
	}

	t, err := s.loadTile(key)
	if err != nil {
		return nil, err
	}

	if evicted := s.cache.Add(key, t); evicted {
		s.lg.Debugf("%s: loaded tile, evicted LRU", TileName(key.lat, key.lon))
	}
	return t, nil
}

func (s *Store) loadTile(key tileKey) (*tile, error) {
	name := TileName(key.lat, key.lon)
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		// Also look for a zstd-compressed variant.
		zraw, zerr := os.ReadFile(filepath.Join(s.dir, name+".zst"))
		if zerr != nil {
			s.lg.Debugf("%s: tile unavailable", name)
			return nil, ErrNoData
		}
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if raw, err = zr.DecodeAll(zraw, nil); err != nil {
			return nil, fmt.Errorf("%s.zst: %w", name, ErrCorruptTile)
		}
	} else if err != nil {
		return nil, err
	}

	if len(raw) != tileBytes {
		return nil, fmt.Errorf("%s: %d bytes, expected %d: %w", name, len(raw), tileBytes, ErrCorruptTile)
	}

	// Samples are big-endian int16, row-major north to south.
	t := &tile{samples: make([]int16, TileDim*TileDim)}
	for i := range t.samples {
		t.samples[i] = int16(binary.BigEndian.Uint16(raw[2*i:]))
	}
	return t, nil
}

// Profile samples the elevation at n+1 equally-spaced fractions between
// start and end, interpolating linearly in latitude-longitude. Points
// without data are reported as 0 feet.
func (s *Store) Profile(start, end math.Point2LL, n int) ([]float32, error) {
	if n < 1 {
		return nil, fmt.Errorf("profile steps %d: must be at least 1", n)
	}

	elevs := make([]float32, n+1)
	for i := 0; i <= n; i++ {
		p := math.Lerp2LL(float32(i)/float32(n), start, end)
		e, err := s.Elevation(p)
		if err != nil && !errors.Is(err, ErrNoData) {
			return nil, err
		}
		elevs[i] = e
	}
	return elevs, nil
}

// Stats summarizes the terrain inside a circle's bounding box.
type Stats struct {
	MinElevation  float32
	MaxElevation  float32
	MeanElevation float32
	Samples       int
}

// AreaStats grid-samples the bounding box of the given circle and
// returns elevation statistics over the points with data available.
func (s *Store) AreaStats(center math.Point2LL, radiusNM float32) (Stats, error) {
	const gridDim = 16

	dlat := radiusNM / math.NMPerLatitude
	dlon := radiusNM / math.NMPerLongitudeAt(center)

	stats := Stats{}
	var sum float64
	for i := 0; i <= gridDim; i++ {
		for j := 0; j <= gridDim; j++ {
			lat := center.Latitude() - dlat + 2*dlat*float32(i)/gridDim
			lon := center.Longitude() - dlon + 2*dlon*float32(j)/gridDim

			e, err := s.Elevation(math.MakePoint2LL(lat, lon))
			if errors.Is(err, ErrNoData) {
				continue
			} else if err != nil {
				return Stats{}, err
			}

			if stats.Samples == 0 {
				stats.MinElevation, stats.MaxElevation = e, e
			} else {
				stats.MinElevation = math.Min(stats.MinElevation, e)
				stats.MaxElevation = math.Max(stats.MaxElevation, e)
			}
			sum += float64(e)
			stats.Samples++
		}
	}

	if stats.Samples == 0 {
		return Stats{}, ErrNoData
	}
	stats.MeanElevation = float32(sum / float64(stats.Samples))
	return stats, nil
}
