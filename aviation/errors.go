// aviation/errors.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrNoAcceptableRunway = errors.New("No runway satisfies the wind and distance limits")
	ErrUnknownAirport     = errors.New("Unknown airport")
	ErrUnknownRunway      = errors.New("Unknown runway")
)
