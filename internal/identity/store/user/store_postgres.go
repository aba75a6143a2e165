package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ishemalink/internal/identity/models"
	"ishemalink/internal/platform/postgres"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
	txcontext "ishemalink/pkg/platform/tx"
)

// PostgresStore persists users in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, username, phone, email, role, is_verified, national_id, tax_id,
			assigned_sector, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Username, u.Phone.String(), u.Email, u.Role.String(), u.IsVerified,
		u.NationalID, u.TaxID, u.AssignedSector, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, username, phone, email, role, is_verified, COALESCE(national_id, ''),
	COALESCE(tax_id, ''), COALESCE(assigned_sector, ''), password_hash, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users SET username = $2, phone = $3, email = $4, role = $5, is_verified = $6,
			national_id = NULLIF($7, ''), tax_id = NULLIF($8, ''), assigned_sector = NULLIF($9, ''),
			password_hash = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Username, u.Phone.String(), u.Email, u.Role.String(), u.IsVerified,
		u.NationalID, u.TaxID, u.AssignedSector, u.PasswordHash, u.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u     models.User
		uid   uuid.UUID
		phone string
		role  string
	)
	err := row.Scan(&uid, &u.Username, &phone, &u.Email, &role, &u.IsVerified, &u.NationalID,
		&u.TaxID, &u.AssignedSector, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Phone = id.PhoneNumber(phone)
	u.Role = id.Role(role)
	return &u, nil
}
