package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

func TestSaveSnapshot_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO visit_snapshots`).
		WithArgs("V-1", "AGENT-1", "CUST-1", "location_validated", 2, 0.0, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewVisitRepo(db)
	err = repo.SaveSnapshot(context.Background(), &domain.Visit{
		VisitID:    "V-1",
		AgentID:    "AGENT-1",
		CustomerID: "CUST-1",
		State:      domain.VisitLocationValidated,
		Version:    2,
		UpdatedAt:  ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveSnapshot_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO visit_snapshots`).
		WithArgs("V-1", "AGENT-1", "CUST-1", "initiated", 1, 0.0, ts).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewVisitRepo(db)
	err = repo.SaveSnapshot(context.Background(), &domain.Visit{
		VisitID:    "V-1",
		AgentID:    "AGENT-1",
		CustomerID: "CUST-1",
		State:      domain.VisitInitiated,
		Version:    1,
		UpdatedAt:  ts,
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetSnapshots_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts1 := time.Unix(1715000000, 0)
	ts2 := time.Unix(1715005000, 0)
	rows := sqlmock.NewRows([]string{"visit_id", "agent_id", "customer_id", "state", "version", "commission", "updated_at"}).
		AddRow("V-1", "AGENT-1", "CUST-1", "initiated", 1, 0.0, ts1).
		AddRow("V-1", "AGENT-1", "CUST-1", "visit_completed", 8, 17.00, ts2)

	mock.ExpectQuery(`SELECT visit_id, agent_id, customer_id, state, version, commission, updated_at FROM visit_snapshots WHERE visit_id = (.+) ORDER BY version ASC`).
		WithArgs("V-1").
		WillReturnRows(rows)

	repo := NewVisitRepo(db)
	results, err := repo.GetSnapshots(context.Background(), "V-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(results))
	}
	if results[0].State != domain.VisitInitiated {
		t.Errorf("expected initiated, got %s", results[0].State)
	}
	if results[1].State != domain.VisitCompleted {
		t.Errorf("expected visit_completed, got %s", results[1].State)
	}
	if results[1].Commission != 17.00 {
		t.Errorf("expected 17.00, got %f", results[1].Commission)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetSnapshots_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"visit_id", "agent_id", "customer_id", "state", "version", "commission", "updated_at"})
	mock.ExpectQuery(`SELECT visit_id, agent_id, customer_id, state, version, commission, updated_at FROM visit_snapshots`).
		WithArgs("V-404").
		WillReturnRows(rows)

	repo := NewVisitRepo(db)
	results, err := repo.GetSnapshots(context.Background(), "V-404")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 snapshots, got %d", len(results))
	}
}

func TestGetSnapshots_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT visit_id, agent_id, customer_id, state, version, commission, updated_at FROM visit_snapshots`).
		WithArgs("V-1").
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewVisitRepo(db)
	_, err = repo.GetSnapshots(context.Background(), "V-1")
	if err == nil {
		t.Fatal("expected error")
	}
}
