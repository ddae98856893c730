package service

import (
	"math"
	"time"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/cache"
)

const earthRadiusMeters = 6371000

const (
	// DefaultAllowedRadiusMeters is the geofence tolerance around a
	// customer's registered position.
	DefaultAllowedRadiusMeters = 10
	// defaultAccuracyMeters is assumed when a reading omits accuracy.
	defaultAccuracyMeters = 50
	// accuracyAcceptableMeters is a reporting threshold only; it does
	// not gate validity.
	accuracyAcceptableMeters = 100
)

// DistanceMeters returns the haversine great-circle distance between
// two coordinates. Inputs are assumed already validated.
func DistanceMeters(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinate reports whether lat/lon are finite and in range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ClassifyAccuracy maps a GPS accuracy reading to a confidence tier.
func ClassifyAccuracy(accuracyMeters float64) domain.ConfidenceLevel {
	switch {
	case accuracyMeters <= 5:
		return domain.ConfidenceHigh
	case accuracyMeters <= 15:
		return domain.ConfidenceMedium
	case accuracyMeters <= 50:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceVeryLow
	}
}

// GeofenceService decides whether an agent's position is "at" a
// customer's registered position. It performs no I/O beyond the
// injected last-known-location cache.
type GeofenceService struct {
	cache cache.LocationCache
	now   func() time.Time
}

func NewGeofenceService(locations cache.LocationCache) *GeofenceService {
	return &GeofenceService{cache: locations, now: time.Now}
}

// Evaluate runs the geofence check. The accuracy margin is added to
// the allowed radius: GPS error can place the true position anywhere
// within it, so the check must not produce false negatives on noisy
// fixes. Distance is rounded for reporting only, after comparison.
func (s *GeofenceService) Evaluate(reading domain.LocationReading, customer domain.Coordinate, allowedRadiusMeters float64) (*domain.GeofenceResult, error) {
	if !ValidCoordinate(reading.Coordinate.Lat, reading.Coordinate.Lon) {
		return nil, &domain.InvalidCoordinatesError{Who: "agent"}
	}
	if !ValidCoordinate(customer.Lat, customer.Lon) {
		return nil, &domain.InvalidCoordinatesError{Who: "customer"}
	}

	accuracy := reading.AccuracyMeters
	if accuracy <= 0 {
		accuracy = defaultAccuracyMeters
	}

	distance := DistanceMeters(reading.Coordinate, customer)
	effectiveRadius := allowedRadiusMeters + accuracy

	return &domain.GeofenceResult{
		IsValid:               distance <= effectiveRadius,
		DistanceMeters:        round2(distance),
		AccuracyMeters:        accuracy,
		AllowedRadiusMeters:   allowedRadiusMeters,
		EffectiveRadiusMeters: effectiveRadius,
		Confidence:            ClassifyAccuracy(accuracy),
		AccuracyAcceptable:    accuracy <= accuracyAcceptableMeters,
		EvaluatedAt:           s.now(),
	}, nil
}

// EvaluateVisit is Evaluate with the cached-fix policy applied: a
// cached reading never satisfies a presence check unless the caller
// explicitly permits it.
func (s *GeofenceService) EvaluateVisit(reading domain.LocationReading, customer domain.Coordinate, allowedRadiusMeters float64, allowCached bool) (*domain.GeofenceResult, error) {
	result, err := s.Evaluate(reading, customer, allowedRadiusMeters)
	if err != nil {
		return nil, err
	}
	if reading.IsCached && !allowCached {
		result.IsValid = false
		result.Reason = "live location required"
	}
	return result, nil
}

// LastKnown returns the agent's cached location, preferring the
// per-customer entry over the agent-wide one.
func (s *GeofenceService) LastKnown(agentID, customerID string) (domain.LocationReading, bool) {
	if customerID != "" {
		if reading, ok := s.cache.Get(cache.Key{AgentID: agentID, CustomerID: customerID}); ok {
			return reading, true
		}
	}
	return s.cache.Get(cache.Key{AgentID: agentID})
}

// Remember stores a live fix for offline fallback, under both the
// agent-wide key and, when known, the per-customer key.
func (s *GeofenceService) Remember(agentID, customerID string, reading domain.LocationReading) {
	s.cache.Put(cache.Key{AgentID: agentID}, reading)
	if customerID != "" {
		s.cache.Put(cache.Key{AgentID: agentID, CustomerID: customerID}, reading)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
