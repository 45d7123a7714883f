// Package lnput keeps the roster of input clerks, the staff who register
// members.  A member's lnput column holds the clerk's name.
//
//	lnput (id PK, name, position, create_time, update_time, delete_time)
package lnput

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no live clerk matches.
var ErrNotFound = errors.New("lnput: not found")

// Clerk mirrors one row of the lnput table.
type Clerk struct {
	ID       int64  `db:"id"       json:"id"`
	Name     string `db:"name"     json:"name"`
	Position string `db:"position" json:"position"`
}

// Store reads and writes the lnput table.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

// List returns every live clerk ordered by name.
func (s *Store) List(ctx context.Context) ([]Clerk, error) {
	out := make([]Clerk, 0, 8)
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, name, COALESCE(position, '') AS position
		   FROM lnput
		  WHERE delete_time IS NULL
		  ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts c and returns its id.
func (s *Store) Create(ctx context.Context, c Clerk) (int64, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lnput (name, position, create_time, update_time) VALUES (?, ?, ?, ?)`,
		c.Name, c.Position, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites live clerk c.ID.
func (s *Store) Update(ctx context.Context, c Clerk) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lnput SET name = ?, position = ?, update_time = ? WHERE id = ? AND delete_time IS NULL`,
		c.Name, c.Position, s.now(), c.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SoftDelete stamps delete_time on live clerk id.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lnput SET delete_time = ? WHERE id = ? AND delete_time IS NULL`, s.now(), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
