package domain

import "time"

// Coordinate is a validated WGS84 position. Values outside the valid
// lat/lon ranges are rejected at the boundary and never stored.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// LocationReading is a single GPS fix as reported by an agent device
// or replayed from the location cache.
type LocationReading struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	CapturedAt     time.Time  `json:"captured_at"`
	IsCached       bool       `json:"is_cached"`
}

type ConfidenceLevel string

const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceVeryLow ConfidenceLevel = "very_low"
)

// GeofenceResult is the outcome of one presence evaluation. It is
// immutable; a new result is produced per evaluation.
type GeofenceResult struct {
	IsValid               bool            `json:"is_valid"`
	DistanceMeters        float64         `json:"distance_meters"`
	AccuracyMeters        float64         `json:"accuracy_meters"`
	AllowedRadiusMeters   float64         `json:"allowed_radius_meters"`
	EffectiveRadiusMeters float64         `json:"effective_radius_meters"`
	Confidence            ConfidenceLevel `json:"confidence_level"`
	// AccuracyAcceptable reports accuracy <= 100m. Informational only,
	// it never gates validity.
	AccuracyAcceptable bool      `json:"accuracy_acceptable"`
	Reason             string    `json:"reason,omitempty"`
	EvaluatedAt        time.Time `json:"evaluated_at"`
}
