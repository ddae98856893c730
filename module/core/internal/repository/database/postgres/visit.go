package postgres

import (
	"context"
	"database/sql"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database"
)

var _ database.VisitRepository = (*VisitRepo)(nil)

type VisitRepo struct {
	db *sql.DB
}

func NewVisitRepo(db *sql.DB) *VisitRepo {
	return &VisitRepo{db: db}
}

func (r *VisitRepo) SaveSnapshot(ctx context.Context, v *domain.Visit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visit_snapshots (visit_id, agent_id, customer_id, state, version, commission, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.VisitID, v.AgentID, v.CustomerID, string(v.State), v.Version, v.TotalCommission, v.UpdatedAt,
	)
	return err
}

func (r *VisitRepo) GetSnapshots(ctx context.Context, visitID string) ([]database.VisitSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT visit_id, agent_id, customer_id, state, version, commission, updated_at FROM visit_snapshots WHERE visit_id = $1 ORDER BY version ASC`,
		visitID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []database.VisitSnapshot
	for rows.Next() {
		var s database.VisitSnapshot
		var state string
		if err := rows.Scan(&s.VisitID, &s.AgentID, &s.CustomerID, &state, &s.Version, &s.Commission, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.State = domain.VisitState(state)
		results = append(results, s)
	}
	return results, rows.Err()
}
