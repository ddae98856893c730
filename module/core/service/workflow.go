package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

// WorkflowService drives a visit through its lifecycle. It is a
// synchronous library with no I/O; a Visit is single-writer and the
// host must serialize concurrent transition attempts on the same
// instance.
type WorkflowService struct {
	geofence *GeofenceService
	now      func() time.Time
}

func NewWorkflowService(geofence *GeofenceService) *WorkflowService {
	return &WorkflowService{geofence: geofence, now: time.Now}
}

// Initiate creates a visit in the initiated state with its full
// activity list. Brands and templates are opaque caller inputs.
func (s *WorkflowService) Initiate(agentID, customerID string, customerType domain.CustomerType, agentLocation domain.LocationReading, brands []domain.Brand, visitType string, templates []domain.ActivityTemplate) *domain.Visit {
	now := s.now()
	return &domain.Visit{
		VisitID:       uuid.NewString(),
		AgentID:       agentID,
		CustomerID:    customerID,
		CustomerType:  customerType,
		State:         domain.VisitInitiated,
		VisitType:     visitType,
		Brands:        append([]domain.Brand(nil), brands...),
		AgentLocation: agentLocation,
		Activities:    BuildActivities(brands, visitType, templates),
		Validations: domain.ValidationFlags{
			CustomerIdentified: customerType == domain.CustomerExisting,
			BrandsSelected:     len(brands) > 0,
		},
		StartTime: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// ValidateLocation evaluates the geofence against the customer's
// registered coordinate. An invalid result leaves the visit in the
// initiated state so the caller can retry with a fresh fix.
func (s *WorkflowService) ValidateLocation(v *domain.Visit, reading domain.LocationReading, customer domain.Coordinate, allowedRadiusMeters float64, allowCached bool) (*domain.GeofenceResult, error) {
	if v.State.Terminal() {
		return nil, fmt.Errorf("validate location in state %s: %w", v.State, domain.ErrInvalidTransition)
	}

	result, err := s.geofence.EvaluateVisit(reading, customer, allowedRadiusMeters, allowCached)
	if err != nil {
		return nil, err
	}

	v.AgentLocation = reading
	v.Geofence = result
	v.Validations.LocationValidated = result.IsValid
	if result.IsValid && v.State == domain.VisitInitiated {
		v.State = domain.VisitLocationValidated
	}
	s.touch(v)
	return result, nil
}

// RecordConsent stamps customer consent on the visit, satisfying the
// customer_consent requirement for subsequent activity starts.
func (s *WorkflowService) RecordConsent(v *domain.Visit) error {
	if v.State.Terminal() {
		return fmt.Errorf("record consent in state %s: %w", v.State, domain.ErrInvalidTransition)
	}
	v.CustomerConsent = true
	s.touch(v)
	return nil
}

func (s *WorkflowService) StartActivity(v *domain.Visit, activityID string) error {
	if v.State.Terminal() {
		return fmt.Errorf("start activity in state %s: %w", v.State, domain.ErrInvalidTransition)
	}

	activity := v.FindActivity(activityID)
	if activity == nil {
		return domain.ErrActivityNotFound
	}
	if activity.Status != domain.ActivityPending {
		return fmt.Errorf("activity is %s, not pending: %w", activity.Status, domain.ErrInvalidTransition)
	}
	if missing := unmetRequirements(activity, v); len(missing) > 0 {
		return &domain.RequirementsUnmetError{Missing: missing}
	}

	started := s.now()
	activity.Status = domain.ActivityInProgress
	activity.StartedAt = &started

	if v.State == domain.VisitLocationValidated || v.State == domain.VisitBrandsSelected {
		v.State = domain.VisitActivitiesInProgress
	}
	s.touch(v)
	return nil
}

func (s *WorkflowService) CompleteActivity(v *domain.Visit, activityID string, data *domain.ActivityData) error {
	if v.State.Terminal() {
		return fmt.Errorf("complete activity in state %s: %w", v.State, domain.ErrInvalidTransition)
	}

	activity := v.FindActivity(activityID)
	if activity == nil {
		return domain.ErrActivityNotFound
	}
	if activity.Status != domain.ActivityInProgress {
		return fmt.Errorf("activity is %s, not in progress: %w", activity.Status, domain.ErrInvalidTransition)
	}
	if errs := validateActivityData(activity.Type, data); len(errs) > 0 {
		return &domain.InvalidActivityDataError{Errors: errs}
	}

	completed := s.now()
	activity.Status = domain.ActivityCompleted
	activity.CompletedAt = &completed
	activity.Data = data

	s.refreshProgress(v)
	s.touch(v)
	return nil
}

// SkipActivity marks an optional activity as skipped. Skip is a
// terminal status, never a deletion; mandatory activities cannot be
// skipped.
func (s *WorkflowService) SkipActivity(v *domain.Visit, activityID string) error {
	if v.State.Terminal() {
		return fmt.Errorf("skip activity in state %s: %w", v.State, domain.ErrInvalidTransition)
	}

	activity := v.FindActivity(activityID)
	if activity == nil {
		return domain.ErrActivityNotFound
	}
	if activity.Mandatory {
		return fmt.Errorf("mandatory activity cannot be skipped: %w", domain.ErrInvalidTransition)
	}
	if activity.Status != domain.ActivityPending && activity.Status != domain.ActivityInProgress {
		return fmt.Errorf("activity is %s: %w", activity.Status, domain.ErrInvalidTransition)
	}

	activity.Status = domain.ActivitySkipped
	s.refreshProgress(v)
	s.touch(v)
	return nil
}

func (s *WorkflowService) CompleteVisit(v *domain.Visit, notes string) error {
	if v.State.Terminal() {
		return fmt.Errorf("complete visit in state %s: %w", v.State, domain.ErrInvalidTransition)
	}
	if !v.Validations.MandatoryActivitiesCompleted {
		return domain.ErrMandatoryActivitiesIncomplete
	}

	end := s.now()
	v.TotalCommission = CalculateCommission(v)
	v.State = domain.VisitCompleted
	v.EndTime = &end
	v.CompletionNotes = notes
	s.touch(v)
	return nil
}

// Cancel is allowed from any non-terminal state. No commission is
// computed for a cancelled visit.
func (s *WorkflowService) Cancel(v *domain.Visit, reason string) error {
	if v.State.Terminal() {
		return fmt.Errorf("cancel in state %s: %w", v.State, domain.ErrInvalidTransition)
	}

	end := s.now()
	v.State = domain.VisitCancelled
	v.EndTime = &end
	v.CompletionNotes = reason
	s.touch(v)
	return nil
}

// Summary produces the progress snapshot consumed by collaborators.
func (s *WorkflowService) Summary(v *domain.Visit) domain.VisitSummary {
	var completed, mandatory, completedMandatory int
	for i := range v.Activities {
		a := &v.Activities[i]
		if a.Status == domain.ActivityCompleted {
			completed++
		}
		if a.Mandatory {
			mandatory++
			if a.Status == domain.ActivityCompleted {
				completedMandatory++
			}
		}
	}

	end := s.now()
	if v.EndTime != nil {
		end = *v.EndTime
	}

	percentage := 0
	if len(v.Activities) > 0 {
		percentage = int(math.Round(float64(completed) / float64(len(v.Activities)) * 100))
	}

	return domain.VisitSummary{
		VisitID:         v.VisitID,
		AgentID:         v.AgentID,
		CustomerID:      v.CustomerID,
		State:           v.State,
		DurationMinutes: int(math.Round(end.Sub(v.StartTime).Minutes())),
		Progress: domain.VisitProgress{
			TotalActivities:      len(v.Activities),
			CompletedActivities:  completed,
			MandatoryActivities:  mandatory,
			CompletedMandatory:   completedMandatory,
			CompletionPercentage: percentage,
		},
		Commission:  v.TotalCommission,
		Brands:      v.Brands,
		Validations: v.Validations,
	}
}

// refreshProgress recomputes the mandatory flag and advances the visit
// to activities_completed once every activity is completed or skipped.
func (s *WorkflowService) refreshProgress(v *domain.Visit) {
	allDone := true
	mandatoryDone := true
	for i := range v.Activities {
		a := &v.Activities[i]
		if a.Mandatory && a.Status != domain.ActivityCompleted {
			mandatoryDone = false
		}
		if a.Status != domain.ActivityCompleted && a.Status != domain.ActivitySkipped {
			allDone = false
		}
	}

	v.Validations.MandatoryActivitiesCompleted = mandatoryDone
	if allDone {
		v.State = domain.VisitActivitiesCompleted
	}
}

func (s *WorkflowService) touch(v *domain.Visit) {
	v.UpdatedAt = s.now()
	v.Version++
}

// unmetRequirements checks start-time preconditions. Device and
// inventory requirements are deferred to completion-time payload
// validation and never block start.
func unmetRequirements(activity *domain.Activity, v *domain.Visit) []string {
	var missing []string
	for _, req := range activity.Requirements {
		switch req {
		case domain.ReqCustomerConsent:
			if !v.CustomerConsent {
				missing = append(missing, "customer consent required")
			}
		case domain.ReqLocationValidated:
			if !v.Validations.LocationValidated {
				missing = append(missing, "location validation required")
			}
		case domain.ReqCustomerPermission, domain.ReqPhotoRequired,
			domain.ReqBoardAvailable, domain.ReqProductsAvailable, domain.ReqCameraAvailable:
			// validated via the completion payload
		}
	}
	return missing
}

// validateActivityData applies the per-type payload rules.
func validateActivityData(activityType domain.ActivityType, data *domain.ActivityData) []string {
	var errs []string

	switch activityType {
	case domain.ActivitySurvey:
		if data == nil || data.Survey == nil || len(data.Survey.Responses) == 0 {
			errs = append(errs, "survey responses are required")
		}
	case domain.ActivityBoardPlacement:
		if data == nil || data.BoardPlacement == nil {
			errs = append(errs, "board placement photos are required", "valid board coverage percentage is required")
			break
		}
		if len(data.BoardPlacement.Photos) == 0 {
			errs = append(errs, "board placement photos are required")
		}
		if data.BoardPlacement.CoveragePercent < 0 || data.BoardPlacement.CoveragePercent > 100 {
			errs = append(errs, "valid board coverage percentage is required")
		}
	case domain.ActivityProductDistribution:
		if data == nil || data.ProductDistribution == nil {
			errs = append(errs, "product quantity must be greater than 0", "product list is required")
			break
		}
		if data.ProductDistribution.Quantity <= 0 {
			errs = append(errs, "product quantity must be greater than 0")
		}
		if len(data.ProductDistribution.Products) == 0 {
			errs = append(errs, "product list is required")
		}
	case domain.ActivityPhotoCapture:
		if data == nil || data.PhotoCapture == nil || len(data.PhotoCapture.Photos) == 0 {
			errs = append(errs, "photos are required")
		}
	case domain.ActivityCustomerRegistration:
		if data == nil || data.Registration == nil || data.Registration.CustomerName == "" {
			errs = append(errs, "customer details are required")
		}
	case domain.ActivityMerchandising:
		// no structured payload
	}

	return errs
}
