package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// Bootstrap applies the schema. Safe to call on every boot; all
// statements are idempotent.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Reservations() store.Reservations { return &reservations{db: s.db} }
func (s *pgStore) Actors() store.Actors             { return &actors{db: s.db} }
func (s *pgStore) Resources() store.Resources       { return &resources{db: s.db} }

// HealthPing implements the store health probe.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Reservations ---

type reservations struct{ db *sql.DB }

func (r *reservations) ListConfirmed(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT reservation_id, resource_id, holder_id, start_time, end_time, status, creation_time
        FROM reservations
        WHERE resource_id=$1 AND status='confirmed'
        ORDER BY start_time
    `, resourceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.ResourceID, &res.HolderID, &res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *reservations) Create(ctx context.Context, in *model.Reservation) (*model.Reservation, error) {
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO reservations (reservation_id, resource_id, holder_id, start_time, end_time, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, in.ResourceID, in.HolderID, in.StartTime, in.EndTime, in.Status)
	if err := row.Scan(&created); err != nil {
		if conflictErr := r.asConflict(ctx, err, in); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, err
	}
	out := *in
	out.ID = id
	out.CreatedAt = created
	return &out, nil
}

// asConflict maps an exclusion or unique violation to the typed conflict
// result, re-reading the blocking rows so callers can show them.
func (r *reservations) asConflict(ctx context.Context, err error, in *model.Reservation) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	// 23P01 exclusion_violation, 23505 unique_violation
	if pgErr.Code != "23P01" && pgErr.Code != "23505" {
		return nil
	}
	confirmed, listErr := r.ListConfirmed(ctx, in.ResourceID)
	if listErr != nil {
		return &model.ConflictError{}
	}
	var conflicts []model.Reservation
	for _, c := range confirmed {
		if c.Overlaps(in.StartTime, in.EndTime) {
			conflicts = append(conflicts, c)
		}
	}
	return &model.ConflictError{Conflicts: conflicts}
}

func (r *reservations) Get(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var out model.Reservation
	row := r.db.QueryRowContext(ctx, `
        SELECT reservation_id, resource_id, holder_id, start_time, end_time, status, creation_time
        FROM reservations WHERE reservation_id=$1
    `, reservationID)
	if err := row.Scan(&out.ID, &out.ResourceID, &out.HolderID, &out.StartTime, &out.EndTime, &out.Status, &out.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *reservations) UpdateStatus(ctx context.Context, reservationID string, status model.ReservationStatus) (*model.Reservation, error) {
	var out model.Reservation
	row := r.db.QueryRowContext(ctx, `
        UPDATE reservations SET status=$2
        WHERE reservation_id=$1
        RETURNING reservation_id, resource_id, holder_id, start_time, end_time, status, creation_time
    `, reservationID, status)
	if err := row.Scan(&out.ID, &out.ResourceID, &out.HolderID, &out.StartTime, &out.EndTime, &out.Status, &out.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// --- Actors ---

type actors struct{ db *sql.DB }

func (a *actors) Get(ctx context.Context, actorID string) (*model.Actor, error) {
	var out model.Actor
	row := a.db.QueryRowContext(ctx, `
        SELECT actor_id, display_name, role, member_tier, phone
        FROM actors WHERE actor_id=$1
    `, actorID)
	if err := row.Scan(&out.ActorID, &out.DisplayName, &out.Role, &out.MemberTier, &out.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// --- Resources ---

type resources struct{ db *sql.DB }

func (r *resources) Get(ctx context.Context, resourceID string) (*model.Resource, error) {
	var out model.Resource
	row := r.db.QueryRowContext(ctx, `
        SELECT resource_id, name, size_meters, owner_id
        FROM resources WHERE resource_id=$1
    `, resourceID)
	if err := row.Scan(&out.ResourceID, &out.Name, &out.SizeMeters, &out.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
