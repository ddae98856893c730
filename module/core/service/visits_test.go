package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/cache"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database"
)

type mockVisitRepo struct {
	saveFn    func(ctx context.Context, v *domain.Visit) error
	snapshots []database.VisitSnapshot
}

func (m *mockVisitRepo) SaveSnapshot(ctx context.Context, v *domain.Visit) error {
	m.snapshots = append(m.snapshots, database.VisitSnapshot{
		VisitID: v.VisitID, State: v.State, Version: v.Version, Commission: v.TotalCommission,
	})
	if m.saveFn != nil {
		return m.saveFn(ctx, v)
	}
	return nil
}

func (m *mockVisitRepo) GetSnapshots(_ context.Context, visitID string) ([]database.VisitSnapshot, error) {
	var out []database.VisitSnapshot
	for _, s := range m.snapshots {
		if s.VisitID == visitID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockEventPublisher struct {
	publishFn func(ctx context.Context, event *domain.VisitEvent) error
	events    []*domain.VisitEvent
}

func (m *mockEventPublisher) PublishVisitEvent(ctx context.Context, event *domain.VisitEvent) error {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

type stubCache struct {
	entries map[cache.Key]domain.LocationReading
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[cache.Key]domain.LocationReading)}
}

func (s *stubCache) Get(key cache.Key) (domain.LocationReading, bool) {
	r, ok := s.entries[key]
	if ok {
		r.IsCached = true
	}
	return r, ok
}

func (s *stubCache) Put(key cache.Key, reading domain.LocationReading) {
	s.entries[key] = reading
}

func newTestVisitService(repo *mockVisitRepo, pub *mockEventPublisher, locations cache.LocationCache) *VisitService {
	geofence := NewGeofenceService(locations)
	workflow := NewWorkflowService(geofence)
	return NewVisitService(workflow, geofence, repo, pub, DefaultAllowedRadiusMeters, nil)
}

func initiateTestVisit(t *testing.T, svc *VisitService) *domain.Visit {
	t.Helper()
	visit, err := svc.Initiate(context.Background(), InitiateParams{
		AgentID:       "AGENT-1",
		CustomerID:    "CUST-1",
		CustomerType:  domain.CustomerExisting,
		AgentLocation: liveReading(6.5244, 3.3792, 8),
		Brands:        testBrands[:1],
		VisitType:     domain.VisitTypeFullActivation,
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return visit
}

func TestVisitService_InitiateSnapshots(t *testing.T) {
	repo := &mockVisitRepo{}
	svc := newTestVisitService(repo, &mockEventPublisher{}, newStubCache())

	visit := initiateTestVisit(t, svc)
	if len(repo.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(repo.snapshots))
	}
	if repo.snapshots[0].VisitID != visit.VisitID {
		t.Error("snapshot visit id mismatch")
	}
}

func TestVisitService_GetUnknown(t *testing.T) {
	svc := newTestVisitService(&mockVisitRepo{}, &mockEventPublisher{}, newStubCache())

	_, err := svc.Get("nope")
	if !errors.Is(err, domain.ErrVisitNotFound) {
		t.Fatalf("expected ErrVisitNotFound, got %v", err)
	}
}

func TestVisitService_GetReturnsCopy(t *testing.T) {
	svc := newTestVisitService(&mockVisitRepo{}, &mockEventPublisher{}, newStubCache())
	visit := initiateTestVisit(t, svc)

	copy1, err := svc.Get(visit.VisitID)
	if err != nil {
		t.Fatal(err)
	}
	copy1.Activities[0].Status = domain.ActivityFailed
	copy1.State = domain.VisitCancelled

	copy2, err := svc.Get(visit.VisitID)
	if err != nil {
		t.Fatal(err)
	}
	if copy2.Activities[0].Status != domain.ActivityPending || copy2.State != domain.VisitInitiated {
		t.Error("caller mutation leaked into the registry")
	}
}

func TestVisitService_ValidateLocation_LiveFix(t *testing.T) {
	repo := &mockVisitRepo{}
	locations := newStubCache()
	svc := newTestVisitService(repo, &mockEventPublisher{}, locations)
	visit := initiateTestVisit(t, svc)

	fix := liveReading(6.5244, 3.3792, 8)
	result, err := svc.ValidateLocation(context.Background(), visit.VisitID, &fix,
		domain.Coordinate{Lat: 6.5244, Lon: 3.3793}, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid {
		t.Fatal("expected valid result")
	}

	// a live fix is remembered for offline fallback
	if _, ok := locations.Get(cache.Key{AgentID: "AGENT-1"}); !ok {
		t.Error("expected live fix cached under agent key")
	}
	if _, ok := locations.Get(cache.Key{AgentID: "AGENT-1", CustomerID: "CUST-1"}); !ok {
		t.Error("expected live fix cached under customer key")
	}
}

func TestVisitService_ValidateLocation_CacheFallback(t *testing.T) {
	locations := newStubCache()
	svc := newTestVisitService(&mockVisitRepo{}, &mockEventPublisher{}, locations)
	visit := initiateTestVisit(t, svc)

	// no reading supplied, nothing cached
	_, err := svc.ValidateLocation(context.Background(), visit.VisitID, nil,
		domain.Coordinate{Lat: 6.5244, Lon: 3.3793}, false)
	if !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}

	locations.Put(cache.Key{AgentID: "AGENT-1"}, liveReading(6.5244, 3.3792, 8))

	// cached fallback without permission is rejected
	result, err := svc.ValidateLocation(context.Background(), visit.VisitID, nil,
		domain.Coordinate{Lat: 6.5244, Lon: 3.3793}, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatal("cached fix must not satisfy the check by default")
	}
	if result.Reason != "live location required" {
		t.Errorf("unexpected reason %q", result.Reason)
	}

	// explicitly allowed cached fallback passes
	result, err = svc.ValidateLocation(context.Background(), visit.VisitID, nil,
		domain.Coordinate{Lat: 6.5244, Lon: 3.3793}, true)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid {
		t.Fatal("expected cached fix to pass when allowed")
	}
}

func TestVisitService_GeofenceRejectionPublishes(t *testing.T) {
	pub := &mockEventPublisher{}
	svc := newTestVisitService(&mockVisitRepo{}, pub, newStubCache())
	visit := initiateTestVisit(t, svc)

	fix := liveReading(6.5244, 3.3792, 8)
	result, err := svc.ValidateLocation(context.Background(), visit.VisitID, &fix,
		domain.Coordinate{Lat: 6.6, Lon: 3.5}, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected rejection for a far customer")
	}
	if len(pub.events) != 1 || pub.events[0].Event != domain.VisitEventGeofenceRejected {
		t.Fatalf("expected geofence_rejected event, got %+v", pub.events)
	}
}

func completeMandatory(t *testing.T, svc *VisitService, visit *domain.Visit) {
	t.Helper()
	ctx := context.Background()

	fix := liveReading(6.5244, 3.3792, 8)
	if _, err := svc.ValidateLocation(ctx, visit.VisitID, &fix, domain.Coordinate{Lat: 6.5244, Lon: 3.3793}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordConsent(ctx, visit.VisitID); err != nil {
		t.Fatal(err)
	}

	current, err := svc.Get(visit.VisitID)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range current.Activities {
		if !a.Mandatory {
			continue
		}
		if _, err := svc.StartActivity(ctx, visit.VisitID, a.ID); err != nil {
			t.Fatalf("start %s: %v", a.Type, err)
		}
		if _, err := svc.CompleteActivity(ctx, visit.VisitID, a.ID, dataFor(a.Type)); err != nil {
			t.Fatalf("complete %s: %v", a.Type, err)
		}
	}
}

func TestVisitService_CompleteVisitPublishesAndSnapshots(t *testing.T) {
	repo := &mockVisitRepo{}
	pub := &mockEventPublisher{}
	svc := newTestVisitService(repo, pub, newStubCache())
	visit := initiateTestVisit(t, svc)

	completeMandatory(t, svc, visit)

	done, err := svc.CompleteVisit(context.Background(), visit.VisitID, "all good")
	if err != nil {
		t.Fatalf("complete visit: %v", err)
	}
	if done.State != domain.VisitCompleted {
		t.Errorf("expected visit_completed, got %s", done.State)
	}
	if done.TotalCommission != 17.00 {
		t.Errorf("expected commission 17.00, got %f", done.TotalCommission)
	}

	last := pub.events[len(pub.events)-1]
	if last.Event != domain.VisitEventCompleted {
		t.Errorf("expected visit_completed event, got %s", last.Event)
	}
	if last.Commission != 17.00 {
		t.Errorf("event commission: %f", last.Commission)
	}

	trail, err := svc.AuditTrail(context.Background(), visit.VisitID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) == 0 {
		t.Fatal("expected audit snapshots")
	}
	if trail[len(trail)-1].State != domain.VisitCompleted {
		t.Error("final snapshot must record the completed state")
	}
}

func TestVisitService_CancelPublishes(t *testing.T) {
	pub := &mockEventPublisher{}
	svc := newTestVisitService(&mockVisitRepo{}, pub, newStubCache())
	visit := initiateTestVisit(t, svc)

	cancelled, err := svc.Cancel(context.Background(), visit.VisitID, "store closed")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.State != domain.VisitCancelled {
		t.Errorf("expected visit_cancelled, got %s", cancelled.State)
	}
	if len(pub.events) != 1 || pub.events[0].Event != domain.VisitEventCancelled {
		t.Fatalf("expected visit_cancelled event, got %+v", pub.events)
	}
}

func TestVisitService_SnapshotErrorPropagates(t *testing.T) {
	repo := &mockVisitRepo{
		saveFn: func(_ context.Context, _ *domain.Visit) error {
			return errors.New("db down")
		},
	}
	svc := newTestVisitService(repo, &mockEventPublisher{}, newStubCache())

	_, err := svc.Initiate(context.Background(), InitiateParams{
		AgentID: "AGENT-1", CustomerID: "CUST-1", CustomerType: domain.CustomerExisting,
		VisitType: "survey",
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
