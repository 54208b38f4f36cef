// math/grid.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// Bilinear interpolates the four samples v00, v10, v01, v11 (first index
// is the fractional x direction, second is y) at the point (fx, fy),
// fx, fy in [0,1].
func Bilinear(fx, fy float32, v00, v10, v01, v11 float32) float32 {
	return Lerp(fy, Lerp(fx, v00, v10), Lerp(fx, v01, v11))
}
