package database

import (
	"context"
	"time"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

// GPSLogRepository is the append-only audit trail of agent GPS fixes.
type GPSLogRepository interface {
	Insert(ctx context.Context, agentID, customerID string, reading domain.LocationReading) error
	GetLatest(ctx context.Context, agentID string) (domain.LocationReading, error)
}

// VisitSnapshot is one audit row per visit transition.
type VisitSnapshot struct {
	VisitID    string
	AgentID    string
	CustomerID string
	State      domain.VisitState
	Version    int
	Commission float64
	UpdatedAt  time.Time
}

// VisitRepository persists visit snapshots for audit and stale-write
// detection by external collaborators. The workflow core never reads
// them back to make decisions.
type VisitRepository interface {
	SaveSnapshot(ctx context.Context, v *domain.Visit) error
	GetSnapshots(ctx context.Context, visitID string) ([]VisitSnapshot, error)
}
