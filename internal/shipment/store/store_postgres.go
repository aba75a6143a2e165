package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ishemalink/internal/platform/postgres"
	"ishemalink/internal/shipment/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/sentinel"
	txcontext "ishemalink/pkg/platform/tx"
)

// PostgresStore persists shipments in the shipments and shipment_logs tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, sh *models.Shipment) error {
	query := `
		INSERT INTO shipments (id, tracking_number, owner_id, driver_id, origin, destination, sector,
			cargo_value, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(sh.ID), sh.TrackingNumber, uuid.UUID(sh.OwnerID), nullableUser(sh.DriverID),
		sh.Origin, sh.Destination, sh.Sector, sh.CargoValue, string(sh.Status), sh.CreatedAt, sh.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

const shipmentColumns = `id, tracking_number, owner_id, driver_id, origin, destination, sector,
	COALESCE(cargo_value, ''), status, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, scope models.Scope, shipmentID id.ShipmentID) (*models.Shipment, error) {
	where, args := scopeClause(scope, []any{uuid.UUID(shipmentID)})
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`+where, args...)
	sh, err := scanShipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return sh, err
}

func (s *PostgresStore) List(ctx context.Context, scope models.Scope, filter models.Filter) (*models.Page, error) {
	where, args := scopeClause(scope, nil)
	where, args = filterClause(filter, where, args)

	var total int
	if err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shipments WHERE TRUE`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count shipments: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE TRUE%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		shipmentColumns, where, len(args)-1, len(args))
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	page := &models.Page{Total: total, Shipments: []*models.Shipment{}}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		page.Shipments = append(page.Shipments, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return page, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, shipmentID id.ShipmentID, status models.Status, at time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(shipmentID), string(status), at)
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendLog(ctx context.Context, entry models.Log) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO shipment_logs (shipment_id, status, location, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(entry.ShipmentID), string(entry.Status), entry.Location, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert shipment log: %w", err)
	}
	return nil
}

func (s *PostgresStore) Logs(ctx context.Context, shipmentID id.ShipmentID) ([]models.Log, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT status, location, created_at FROM shipment_logs WHERE shipment_id = $1 ORDER BY created_at, id`,
		uuid.UUID(shipmentID))
	if err != nil {
		return nil, fmt.Errorf("list shipment logs: %w", err)
	}
	defer rows.Close()

	logs := []models.Log{}
	for rows.Next() {
		entry := models.Log{ShipmentID: shipmentID}
		var status string
		if err := rows.Scan(&status, &entry.Location, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment log: %w", err)
		}
		entry.Status = models.Status(status)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// scopeClause appends the visibility predicate for scope. The same predicate
// guards lists and point lookups.
func scopeClause(scope models.Scope, args []any) (string, []any) {
	switch scope.Kind {
	case models.ScopeSector:
		args = append(args, scope.Sector)
		return fmt.Sprintf(" AND sector = $%d", len(args)), args
	case models.ScopeDriver:
		args = append(args, uuid.UUID(scope.UserID))
		return fmt.Sprintf(" AND driver_id = $%d", len(args)), args
	case models.ScopeOwner:
		args = append(args, uuid.UUID(scope.UserID))
		return fmt.Sprintf(" AND owner_id = $%d", len(args)), args
	}
	return "", args
}

func filterClause(f models.Filter, where string, args []any) (string, []any) {
	var b strings.Builder
	b.WriteString(where)
	if f.Status != "" {
		args = append(args, string(f.Status))
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	if f.Destination != "" {
		args = append(args, likePattern(f.Destination))
		fmt.Fprintf(&b, " AND destination ILIKE $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		fmt.Fprintf(&b, " AND (tracking_number ILIKE $%d OR origin ILIKE $%d OR destination ILIKE $%d)", n, n, n)
	}
	return b.String(), args
}

// likePattern escapes LIKE metacharacters so user input matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(row scanner) (*models.Shipment, error) {
	var (
		sh     models.Shipment
		sid    uuid.UUID
		owner  uuid.UUID
		driver uuid.NullUUID
		status string
	)
	err := row.Scan(&sid, &sh.TrackingNumber, &owner, &driver, &sh.Origin, &sh.Destination,
		&sh.Sector, &sh.CargoValue, &status, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	sh.ID = id.ShipmentID(sid)
	sh.OwnerID = id.UserID(owner)
	if driver.Valid {
		d := id.UserID(driver.UUID)
		sh.DriverID = &d
	}
	sh.Status = models.Status(status)
	return &sh, nil
}

func nullableUser(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}
