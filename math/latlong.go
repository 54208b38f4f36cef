// math/latlong.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

const NMPerLatitude = 60

const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet

// EarthRadiusNM is the mean spherical earth radius used by all of the
// great-circle math.
const EarthRadiusNM = 3440.065

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

// MakePoint2LL returns a Point2LL for the given latitude and longitude,
// normalizing the longitude to (-180,180] and clamping the latitude away
// from the poles so that the spherical formulas stay well-conditioned.
func MakePoint2LL(lat, lon float32) Point2LL {
	return Point2LL{NormalizeLongitude(lon), Clamp(lat, -89.999, 89.999)}
}

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// NormalizeLongitude reduces a longitude in degrees to (-180,180].
func NormalizeLongitude(lon float32) float32 {
	l := Mod(lon, 360)
	if l > 180 {
		l -= 360
	} else if l <= -180 {
		l += 360
	}
	return l
}

// NMDistance2LL returns the great-circle distance in nautical miles
// between two provided lat-long coordinates, via the haversine formula.
func NMDistance2LL(a Point2LL, b Point2LL) float32 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	rad := func(d float32) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lat2 := rad(a[1]), rad(b[1])
	dlat := lat2 - lat1
	dlon := rad(NormalizeLongitude(b[0] - a[0]))

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))

	return float32(EarthRadiusNM * c)
}

// GreatCircleBearing returns the initial great-circle bearing in degrees
// from a to b, normalized to [0,360). The bearing between coincident
// points is undefined; zero is returned.
func GreatCircleBearing(a Point2LL, b Point2LL) float32 {
	if a[0] == b[0] && a[1] == b[1] {
		return 0
	}

	rad := func(d float32) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lat2 := rad(a[1]), rad(b[1])
	dlon := rad(NormalizeLongitude(b[0] - a[0]))

	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)

	return NormalizeHeading(float32(gomath.Atan2(y, x) / gomath.Pi * 180))
}

// CrossTrackErrorNM returns the signed cross-track distance in nautical
// miles of cur from the great circle through from and to; positive values
// are to the right of the track. Degenerate tracks (from and to
// coincident) short-circuit to zero.
func CrossTrackErrorNM(from, to, cur Point2LL) float32 {
	if from[0] == to[0] && from[1] == to[1] {
		return 0
	}
	if cur[0] == from[0] && cur[1] == from[1] {
		return 0
	}

	d13 := float64(NMDistance2LL(from, cur)) / EarthRadiusNM
	theta13 := float64(Radians(GreatCircleBearing(from, cur)))
	theta12 := float64(Radians(GreatCircleBearing(from, to)))

	// Positive sin(theta13-theta12) means the bearing to cur is clockwise
	// of the track bearing, i.e. cur lies right of track.
	xt := gomath.Asin(gomath.Sin(d13) * gomath.Sin(theta13-theta12))
	return float32(xt * EarthRadiusNM)
}

// NM2LL converts a point expressed in nautical mile coordinates to
// lat-long.
func NM2LL(p [2]float32, nmPerLongitude float32) Point2LL {
	return Point2LL{p[0] / nmPerLongitude, p[1] / NMPerLatitude}
}

// LL2NM converts a point expressed in latitude-longitude coordinates to
// nautical mile coordinates; this is useful for example for reasoning
// about distances, since both axes then have the same measure.
func LL2NM(p Point2LL, nmPerLongitude float32) [2]float32 {
	return [2]float32{p[0] * nmPerLongitude, p[1] * NMPerLatitude}
}

// NMPerLongitudeAt returns the local scale of a degree of longitude in
// nautical miles at the given point.
func NMPerLongitudeAt(p Point2LL) float32 {
	return Max(NMPerLatitude*Cos(Radians(p[1])), 0.001)
}

// Offset2LL returns the point at distance dist along the vector with
// heading hdg from the given point. It assumes a (locally) flat earth,
// which is fine for the short distances it is used for.
func Offset2LL(pll Point2LL, hdg float32, dist float32) Point2LL {
	nmPerLongitude := NMPerLongitudeAt(pll)
	p := LL2NM(pll, nmPerLongitude)
	h := Radians(hdg)
	v := [2]float32{Sin(h) * dist, Cos(h) * dist}
	p = [2]float32{p[0] + v[0], p[1] + v[1]}
	ll := NM2LL(p, nmPerLongitude)
	return MakePoint2LL(ll[1], ll[0])
}

// Lerp2LL linearly interpolates between two points in latitude-longitude.
func Lerp2LL(x float32, a, b Point2LL) Point2LL {
	return Point2LL{Lerp(x, a[0], b[0]), Lerp(x, a[1], b[1])}
}
