// wx/cache.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ReportExpiry is how long a cached observation is served before it is
// considered stale.
const ReportExpiry = 60 * time.Minute

// Cache holds recent observations keyed by station. Entries expire after
// ReportExpiry; the underlying LRU is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, METAR]
}

func NewCache() *Cache {
	return &Cache{lru: expirable.NewLRU[string, METAR](64, nil, ReportExpiry)}
}

// Add stores a parsed report under its station identifier. Invalid
// reports are not cached.
func (c *Cache) Add(m METAR) bool {
	if !m.Valid || m.Station == "" {
		return false
	}
	c.lru.Add(m.Station, m)
	return true
}

// Get returns the cached report for the station, if present and fresh.
func (c *Cache) Get(station string) (METAR, bool) {
	return c.lru.Get(station)
}
