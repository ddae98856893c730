package cache

import "github.com/Reshigan/SalesSync-sub016/module/core/domain"

// Key identifies a cached location. CustomerID may be empty for an
// agent-wide last-known fix.
type Key struct {
	AgentID    string
	CustomerID string
}

// LocationCache is the offline-fallback store for last-known agent
// locations. Get must not return expired entries; callers cannot
// distinguish staleness from absence.
type LocationCache interface {
	Get(key Key) (domain.LocationReading, bool)
	Put(key Key, reading domain.LocationReading)
}
