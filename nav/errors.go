// nav/errors.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "errors"

var (
	ErrEmptyFlightPlan     = errors.New("Flight plan has no waypoints")
	ErrMalformedFlightPlan = errors.New("Malformed flight plan")
)
