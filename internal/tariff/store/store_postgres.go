package store

import (
	"context"
	"database/sql"
	"fmt"

	"ishemalink/internal/tariff/models"
)

// PostgresStore reads the tariffs table seeded by migration.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Tariff, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT zone, base_rate::text, weight_multiplier::text FROM tariffs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	tariffs := []models.Tariff{}
	for rows.Next() {
		var t models.Tariff
		if err := rows.Scan(&t.Zone, &t.BaseRate, &t.WeightMultiplier); err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		tariffs = append(tariffs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tariffs: %w", err)
	}
	return tariffs, nil
}
