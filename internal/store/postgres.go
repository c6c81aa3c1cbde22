package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS public.users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS public.rooms (
	position    INT  NOT NULL,
	branch_name TEXT NOT NULL,
	room_id     TEXT NOT NULL,
	type        TEXT NOT NULL,
	capacity    INT  NOT NULL,
	PRIMARY KEY (branch_name, room_id)
);
CREATE TABLE IF NOT EXISTS public.bookings (
	position     INT  NOT NULL,
	id           TEXT PRIMARY KEY,
	customer_id  TEXT NOT NULL,
	branch_name  TEXT NOT NULL,
	room_id      TEXT NOT NULL,
	booking_date DATE NOT NULL,
	booking_time TEXT NOT NULL,
	UNIQUE (branch_name, room_id, booking_date, booking_time)
);
`

// PgxStore keeps records in Postgres tables. Each Save rewrites its table in
// one transaction so a failed save leaves the previous contents in place.
type PgxStore struct {
	pool *pgxpool.Pool
	psql squirrel.StatementBuilderType
}

func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Migrate creates the tables if they do not exist.
func (s *PgxStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate schema failed: %w", err)
	}
	return nil
}

func (s *PgxStore) LoadUsers(ctx context.Context) ([]UserRecord, int, error) {
	query, args, err := s.psql.Select("id", "name", "role", "password_hash").
		From("public.users").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load users query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("load users failed: %w", err)
	}
	defer rows.Close()

	var out []UserRecord
	for rows.Next() {
		var r UserRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Role, &r.PasswordHash); err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		out = append(out, r)
	}
	return out, 0, rows.Err()
}

func (s *PgxStore) SaveUsers(ctx context.Context, records []UserRecord) error {
	insert := s.psql.Insert("public.users").Columns("id", "name", "role", "password_hash")
	for _, r := range records {
		insert = insert.Values(r.ID, r.Name, r.Role, r.PasswordHash)
	}
	return s.replace(ctx, "public.users", insert, len(records))
}

func (s *PgxStore) LoadRooms(ctx context.Context) ([]RoomRecord, int, error) {
	query, args, err := s.psql.Select("branch_name", "room_id", "type", "capacity").
		From("public.rooms").
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load rooms query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("load rooms failed: %w", err)
	}
	defer rows.Close()

	var out []RoomRecord
	for rows.Next() {
		var r RoomRecord
		if err := rows.Scan(&r.Branch, &r.RoomID, &r.Type, &r.Capacity); err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		out = append(out, r)
	}
	return out, 0, rows.Err()
}

func (s *PgxStore) SaveRooms(ctx context.Context, records []RoomRecord) error {
	insert := s.psql.Insert("public.rooms").Columns("position", "branch_name", "room_id", "type", "capacity")
	for i, r := range records {
		insert = insert.Values(i, r.Branch, r.RoomID, r.Type, r.Capacity)
	}
	return s.replace(ctx, "public.rooms", insert, len(records))
}

func (s *PgxStore) LoadBookings(ctx context.Context) ([]BookingRecord, int, error) {
	query, args, err := s.psql.Select(
		"id", "customer_id", "branch_name", "room_id",
		"to_char(booking_date, 'YYYY-MM-DD')", "booking_time",
	).
		From("public.bookings").
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load bookings query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("load bookings failed: %w", err)
	}
	defer rows.Close()

	var out []BookingRecord
	skipped := 0
	for rows.Next() {
		var r BookingRecord
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.Branch, &r.RoomID, &r.Date, &r.Time); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		// booking_time is free text; reject what the file driver would reject.
		if _, err := schedule.ParseSlot(r.Date, r.Time); err != nil {
			log.Printf("bookings: skipping %s: %v", r.ID, err)
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped, rows.Err()
}

func (s *PgxStore) SaveBookings(ctx context.Context, records []BookingRecord) error {
	insert := s.psql.Insert("public.bookings").
		Columns("position", "id", "customer_id", "branch_name", "room_id", "booking_date", "booking_time")
	for i, r := range records {
		insert = insert.Values(i, r.ID, r.CustomerID, r.Branch, r.RoomID, r.Date, r.Time)
	}
	return s.replace(ctx, "public.bookings", insert, len(records))
}

// replace deletes every row of table and runs insert, in one transaction.
func (s *PgxStore) replace(ctx context.Context, table string, insert squirrel.InsertBuilder, n int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s failed: %w", table, err)
	}

	if n > 0 {
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert %s query failed: %w", table, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("insert %s: %w", table, ErrDuplicateRecord)
			}
			return fmt.Errorf("insert %s failed: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s failed: %w", table, err)
	}
	return nil
}

var (
	_ Store = (*PgxStore)(nil)
	_ Store = (*FileStore)(nil)
)
