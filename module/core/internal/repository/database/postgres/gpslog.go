package postgres

import (
	"context"
	"database/sql"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/database"
)

var _ database.GPSLogRepository = (*GPSLogRepo)(nil)

type GPSLogRepo struct {
	db *sql.DB
}

func NewGPSLogRepo(db *sql.DB) *GPSLogRepo {
	return &GPSLogRepo{db: db}
}

func (r *GPSLogRepo) Insert(ctx context.Context, agentID, customerID string, reading domain.LocationReading) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agent_gps_logs (agent_id, customer_id, latitude, longitude, accuracy, captured_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		agentID, nullable(customerID), reading.Coordinate.Lat, reading.Coordinate.Lon, reading.AccuracyMeters, reading.CapturedAt,
	)
	return err
}

func (r *GPSLogRepo) GetLatest(ctx context.Context, agentID string) (domain.LocationReading, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, accuracy, captured_at FROM agent_gps_logs WHERE agent_id = $1 ORDER BY captured_at DESC LIMIT 1`,
		agentID,
	)

	var reading domain.LocationReading
	if err := row.Scan(&reading.Coordinate.Lat, &reading.Coordinate.Lon, &reading.AccuracyMeters, &reading.CapturedAt); err != nil {
		return domain.LocationReading{}, err
	}
	return reading, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
