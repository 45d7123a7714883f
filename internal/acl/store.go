// internal/acl/store.go
//
// Query helpers for group-based access control.
//
// Context
// -------
// The lincms ACL model lives in the application database:
//
//	lin_group  (id PK, name, info)
//	lin_auth   (group_id, auth)
//	lin_event  (group_id, message_events)
//	lin_user   (id, group_id, admin, ...)
//
// Handlers and middleware need answers to three questions:
//  1. Does group X exist, and what is it?          → `GroupByID()`
//  2. Which auths does group X hold?               → `GroupAuths()`
//  3. May user U perform auth A?                   → `UserAccess()` + `Allowed()`
//
// Writes (group CRUD, dispatch, removal) run in one transaction each.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a group or user row does not exist.
var ErrNotFound = errors.New("acl: not found")

// ErrGroupInUse is returned by DeleteGroup while users still belong to it.
var ErrGroupInUse = errors.New("acl: group still has users")

// Group mirrors one row of lin_group.
type Group struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
	Info string `db:"info" json:"info"`
}

// Access is what the middleware needs to know about a caller.
type Access struct {
	UserID  int64 `db:"id"`
	GroupID int64 `db:"group_id"`
	Admin   bool  `db:"admin"`
}

// Store wraps the application pool.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// GroupByID returns the group or ErrNotFound.
func (s *Store) GroupByID(ctx context.Context, id int64) (*Group, error) {
	const q = `SELECT id, name, COALESCE(info, '') AS info FROM lin_group WHERE id = ?`

	var g Group
	err := s.db.GetContext(ctx, &g, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GroupByName returns the group or ErrNotFound.
func (s *Store) GroupByName(ctx context.Context, name string) (*Group, error) {
	const q = `SELECT id, name, COALESCE(info, '') AS info FROM lin_group WHERE name = ?`

	var g Group
	err := s.db.GetContext(ctx, &g, q, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Groups lists every group ordered by id.
func (s *Store) Groups(ctx context.Context) ([]Group, error) {
	const q = `SELECT id, name, COALESCE(info, '') AS info FROM lin_group ORDER BY id`

	groups := make([]Group, 0, 8)
	if err := s.db.SelectContext(ctx, &groups, q); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup inserts the group and its initial auths, returning the new id.
func (s *Store) CreateGroup(ctx context.Context, name, info string, auths []string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx, `INSERT INTO lin_group (name, info) VALUES (?, ?)`, name, info)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, a := range dedupe(auths) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lin_auth (group_id, auth) VALUES (?, ?)`, id, a); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// UpdateGroup renames the group.  ErrNotFound when no row matched.
func (s *Store) UpdateGroup(ctx context.Context, id int64, name, info string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lin_group SET name = ?, info = ? WHERE id = ?`, name, info, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteGroup removes an empty group together with its auths and events.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var users int
	if err := tx.GetContext(ctx, &users,
		`SELECT COUNT(*) FROM lin_user WHERE group_id = ? AND delete_time IS NULL`, id); err != nil {
		return err
	}
	if users > 0 {
		return ErrGroupInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lin_group WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lin_auth WHERE group_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lin_event WHERE group_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// GroupAuths returns the auth names held by groupID.
func (s *Store) GroupAuths(ctx context.Context, groupID int64) ([]string, error) {
	const q = `SELECT auth FROM lin_auth WHERE group_id = ? ORDER BY auth`

	auths := make([]string, 0, 8)
	if err := s.db.SelectContext(ctx, &auths, q, groupID); err != nil {
		return nil, err
	}
	return auths, nil
}

// DispatchAuths grants every auth the group does not already hold.
func (s *Store) DispatchAuths(ctx context.Context, groupID int64, auths []string) error {
	held, err := s.GroupAuths(ctx, groupID)
	if err != nil {
		return err
	}
	have := make(map[string]struct{}, len(held))
	for _, a := range held {
		have[a] = struct{}{}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, a := range dedupe(auths) {
		if _, ok := have[a]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lin_auth (group_id, auth) VALUES (?, ?)`, groupID, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RemoveAuths revokes the listed auths.  Unknown names are ignored.
func (s *Store) RemoveAuths(ctx context.Context, groupID int64, auths []string) error {
	if len(auths) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM lin_auth WHERE group_id = ? AND auth IN (?)`, groupID, auths)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	return err
}

// Events returns the message events the group subscribes to.
func (s *Store) Events(ctx context.Context, groupID int64) ([]string, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw,
		`SELECT message_events FROM lin_event WHERE group_id = ?`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []string{}, nil
	}
	return strings.Split(raw, ","), nil
}

// SetEvents replaces the group's subscribed events.
func (s *Store) SetEvents(ctx context.Context, groupID int64, events []string) error {
	joined := strings.Join(dedupe(events), ",")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lin_event (group_id, message_events) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE message_events = VALUES(message_events)`, groupID, joined)
	return err
}

// UserAccess loads the caller's group and admin flag.
func (s *Store) UserAccess(ctx context.Context, userID int64) (*Access, error) {
	// admin is 2 for super administrators, 1 for everyone else.
	const q = `SELECT id, COALESCE(group_id, 0) AS group_id, (admin = 2) AS admin
                 FROM lin_user
                WHERE id = ? AND delete_time IS NULL`

	var a Access
	err := s.db.GetContext(ctx, &a, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Allowed reports whether groupID holds auth.
func (s *Store) Allowed(ctx context.Context, groupID int64, auth string) (bool, error) {
	const q = `SELECT 1
                 FROM lin_auth
                WHERE group_id = ?
                  AND auth     = ?
                LIMIT 1`

	var dummy int
	err := s.db.QueryRowContext(ctx, q, groupID, auth).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

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

// dedupe keeps the first occurrence of each name.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
