package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/publisher"
)

// VisitService hosts the workflow engine: it owns the in-memory visit
// registry, serializes transitions per visit (the workflow itself is
// single-writer by contract), snapshots every transition for audit and
// publishes visit events downstream.
type VisitService struct {
	workflow  *WorkflowService
	geofence  *GeofenceService
	repo      database.VisitRepository
	events    publisher.VisitEventPublisher
	radius    float64
	templates []domain.ActivityTemplate

	mu      sync.Mutex
	entries map[string]*visitEntry
}

type visitEntry struct {
	mu    sync.Mutex
	visit *domain.Visit
}

// InitiateParams carries the caller-supplied inputs for a new visit.
type InitiateParams struct {
	AgentID       string
	CustomerID    string
	CustomerType  domain.CustomerType
	AgentLocation domain.LocationReading
	Brands        []domain.Brand
	VisitType     string
	// Templates override the service-wide mandatory templates when set.
	Templates []domain.ActivityTemplate
}

func NewVisitService(workflow *WorkflowService, geofence *GeofenceService, repo database.VisitRepository, events publisher.VisitEventPublisher, allowedRadiusMeters float64, templates []domain.ActivityTemplate) *VisitService {
	if allowedRadiusMeters <= 0 {
		allowedRadiusMeters = DefaultAllowedRadiusMeters
	}
	return &VisitService{
		workflow:  workflow,
		geofence:  geofence,
		repo:      repo,
		events:    events,
		radius:    allowedRadiusMeters,
		templates: templates,
		entries:   make(map[string]*visitEntry),
	}
}

func (s *VisitService) Initiate(ctx context.Context, params InitiateParams) (*domain.Visit, error) {
	templates := params.Templates
	if templates == nil {
		templates = s.templates
	}

	visit := s.workflow.Initiate(params.AgentID, params.CustomerID, params.CustomerType, params.AgentLocation, params.Brands, params.VisitType, templates)

	s.mu.Lock()
	s.entries[visit.VisitID] = &visitEntry{visit: visit}
	s.mu.Unlock()

	if err := s.repo.SaveSnapshot(ctx, visit); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return cloneVisit(visit), nil
}

// ValidateLocation runs the geofence check for a visit. A nil reading
// falls back to the agent's cached location; if none is available the
// caller gets ErrLocationUnavailable and must supply a live fix.
func (s *VisitService) ValidateLocation(ctx context.Context, visitID string, reading *domain.LocationReading, customer domain.Coordinate, allowCached bool) (*domain.GeofenceResult, error) {
	entry, err := s.entry(visitID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	visit := entry.visit

	var fix domain.LocationReading
	if reading != nil {
		fix = *reading
		if !fix.IsCached {
			s.geofence.Remember(visit.AgentID, visit.CustomerID, fix)
		}
	} else {
		cached, ok := s.geofence.LastKnown(visit.AgentID, visit.CustomerID)
		if !ok {
			return nil, domain.ErrLocationUnavailable
		}
		fix = cached
	}

	result, err := s.workflow.ValidateLocation(visit, fix, customer, s.radius, allowCached)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveSnapshot(ctx, visit); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if !result.IsValid {
		if err := s.publish(ctx, visit, domain.VisitEventGeofenceRejected); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *VisitService) RecordConsent(ctx context.Context, visitID string) (*domain.Visit, error) {
	return s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.RecordConsent(v)
	})
}

func (s *VisitService) StartActivity(ctx context.Context, visitID, activityID string) (*domain.Visit, error) {
	return s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.StartActivity(v, activityID)
	})
}

func (s *VisitService) CompleteActivity(ctx context.Context, visitID, activityID string, data *domain.ActivityData) (*domain.Visit, error) {
	return s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.CompleteActivity(v, activityID, data)
	})
}

func (s *VisitService) SkipActivity(ctx context.Context, visitID, activityID string) (*domain.Visit, error) {
	return s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.SkipActivity(v, activityID)
	})
}

func (s *VisitService) CompleteVisit(ctx context.Context, visitID, notes string) (*domain.Visit, error) {
	visit, err := s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.CompleteVisit(v, notes)
	})
	if err != nil {
		return nil, err
	}
	if err := s.publishByID(ctx, visitID, domain.VisitEventCompleted); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *VisitService) Cancel(ctx context.Context, visitID, reason string) (*domain.Visit, error) {
	visit, err := s.transition(ctx, visitID, func(v *domain.Visit) error {
		return s.workflow.Cancel(v, reason)
	})
	if err != nil {
		return nil, err
	}
	if err := s.publishByID(ctx, visitID, domain.VisitEventCancelled); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *VisitService) Get(visitID string) (*domain.Visit, error) {
	entry, err := s.entry(visitID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneVisit(entry.visit), nil
}

func (s *VisitService) Summary(visitID string) (domain.VisitSummary, error) {
	entry, err := s.entry(visitID)
	if err != nil {
		return domain.VisitSummary{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return s.workflow.Summary(entry.visit), nil
}

// AuditTrail returns the persisted per-transition snapshots.
func (s *VisitService) AuditTrail(ctx context.Context, visitID string) ([]database.VisitSnapshot, error) {
	return s.repo.GetSnapshots(ctx, visitID)
}

// LastKnownLocation exposes the cache fallback to callers that want to
// re-display a stale fix.
func (s *VisitService) LastKnownLocation(agentID string) (domain.LocationReading, bool) {
	return s.geofence.LastKnown(agentID, "")
}

func (s *VisitService) transition(ctx context.Context, visitID string, apply func(*domain.Visit) error) (*domain.Visit, error) {
	entry, err := s.entry(visitID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := apply(entry.visit); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSnapshot(ctx, entry.visit); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return cloneVisit(entry.visit), nil
}

func (s *VisitService) entry(visitID string) (*visitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[visitID]
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	return entry, nil
}

func (s *VisitService) publishByID(ctx context.Context, visitID string, event domain.VisitEventType) error {
	entry, err := s.entry(visitID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return s.publish(ctx, entry.visit, event)
}

func (s *VisitService) publish(ctx context.Context, v *domain.Visit, event domain.VisitEventType) error {
	if err := s.events.PublishVisitEvent(ctx, &domain.VisitEvent{
		Event:      event,
		VisitID:    v.VisitID,
		AgentID:    v.AgentID,
		CustomerID: v.CustomerID,
		State:      v.State,
		Commission: v.TotalCommission,
		Timestamp:  v.UpdatedAt.Unix(),
	}); err != nil {
		return fmt.Errorf("publish visit event: %w", err)
	}
	return nil
}

// cloneVisit copies the visit and its activity list so callers outside
// the per-visit lock never observe a partially applied transition.
// Nested slices and payloads are written once and treated as immutable.
func cloneVisit(v *domain.Visit) *domain.Visit {
	out := *v
	out.Brands = append([]domain.Brand(nil), v.Brands...)
	out.Activities = append([]domain.Activity(nil), v.Activities...)
	if v.Geofence != nil {
		g := *v.Geofence
		out.Geofence = &g
	}
	return &out
}
