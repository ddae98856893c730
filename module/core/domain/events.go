package domain

type VisitEventType string

const (
	VisitEventCompleted        VisitEventType = "visit_completed"
	VisitEventCancelled        VisitEventType = "visit_cancelled"
	VisitEventGeofenceRejected VisitEventType = "geofence_rejected"
)

// VisitEvent is the outbound notification emitted to downstream
// consumers (commission processing, dashboards) on visit transitions.
type VisitEvent struct {
	Event      VisitEventType `json:"event"`
	VisitID    string         `json:"visit_id"`
	AgentID    string         `json:"agent_id"`
	CustomerID string         `json:"customer_id"`
	State      VisitState     `json:"state"`
	Commission float64        `json:"commission"`
	Timestamp  int64          `json:"timestamp"`
}
