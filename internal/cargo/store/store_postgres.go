package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ishemalink/internal/cargo/models"
	"ishemalink/internal/platform/postgres"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
)

// PostgresStore persists cargo in the international_cargo table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Cargo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO international_cargo (id, owner_id, manifest_id, tin_number, passport_number,
			destination_country, weight_kg, is_customs_cleared, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7::numeric, $8, $9)
	`, uuid.UUID(c.ID), uuid.UUID(c.OwnerID), c.ManifestID, c.TINNumber, c.PassportNumber,
		string(c.Destination), c.WeightKg, c.IsCustomsCleared, c.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert cargo: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Cargo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, manifest_id, COALESCE(tin_number, ''), COALESCE(passport_number, ''),
			destination_country, weight_kg::text, is_customs_cleared, created_at
		FROM international_cargo
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list cargo: %w", err)
	}
	defer rows.Close()

	out := []*models.Cargo{}
	for rows.Next() {
		var (
			c       models.Cargo
			cargoID uuid.UUID
			ownerID uuid.UUID
			dest    string
		)
		if err := rows.Scan(&cargoID, &ownerID, &c.ManifestID, &c.TINNumber, &c.PassportNumber,
			&dest, &c.WeightKg, &c.IsCustomsCleared, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cargo: %w", err)
		}
		c.ID = id.CargoID(cargoID)
		c.OwnerID = id.UserID(ownerID)
		c.Destination = models.Destination(dest)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cargo: %w", err)
	}
	return out, nil
}
