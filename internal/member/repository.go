// Package member persists club members.
//
// Uniqueness of number_id and phone is enforced twice: the form pipeline asks
// ActiveByNumberID / ActiveByPhone before a write, and the database holds
// unique keys for the race the pre-check cannot see.  Create and Update turn
// MySQL's duplicate-key error into *DuplicateError so callers report both
// paths the same way.
package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/lincms/internal/database"
)

// ErrNotFound is returned when no active member matches.
var ErrNotFound = errors.New("member: not found")

// DuplicateError reports a unique-key violation on Field.
type DuplicateError struct{ Field string }

func (e *DuplicateError) Error() string { return "member: duplicate " + e.Field }

const mysqlDuplicateEntry = 1062

var columns = []string{
	"id", "number_id", "name", "number", "phone", "address", "nation",
	"birthday", "remarks", "lnput", "create_time", "update_time", "delete_time",
}

// Repository reads and writes the member table.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository returns a Repository bound to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ActiveByNumberID returns the live member holding numberID.
func (r *Repository) ActiveByNumberID(ctx context.Context, numberID string) (*Member, error) {
	return r.getOne(ctx, sq.Eq{"number_id": numberID})
}

// ActiveByPhone returns the live member holding phone.
func (r *Repository) ActiveByPhone(ctx context.Context, phone string) (*Member, error) {
	return r.getOne(ctx, sq.Eq{"phone": phone})
}

// Get returns the live member with id.
func (r *Repository) Get(ctx context.Context, id int64) (*Member, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *Repository) getOne(ctx context.Context, where sq.Eq) (*Member, error) {
	q, args, err := sq.Select(columns...).
		From("member").
		Where(where).
		Where(sq.Eq{"delete_time": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var m Member
	err = r.db.GetContext(ctx, &m, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts m and returns its id.
func (r *Repository) Create(ctx context.Context, m Member) (int64, error) {
	now := r.now()
	q, args, err := sq.Insert("member").
		Columns("number_id", "name", "number", "phone", "address", "nation",
			"birthday", "remarks", "lnput", "create_time", "update_time").
		Values(m.NumberID, m.Name, m.Number, m.Phone, m.Address, m.Nation,
			m.Birthday, m.Remarks, m.Lnput, now, now).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, duplicate(err)
	}
	return res.LastInsertId()
}

// Update overwrites the editable columns of live member m.ID.
func (r *Repository) Update(ctx context.Context, m Member) error {
	q, args, err := sq.Update("member").
		SetMap(map[string]any{
			"number_id":   m.NumberID,
			"name":        m.Name,
			"number":      m.Number,
			"phone":       m.Phone,
			"address":     m.Address,
			"nation":      m.Nation,
			"birthday":    m.Birthday,
			"remarks":     m.Remarks,
			"lnput":       m.Lnput,
			"update_time": r.now(),
		}).
		Where(sq.Eq{"id": m.ID, "delete_time": nil}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return duplicate(err)
	}
	return expectRow(res)
}

// SoftDelete stamps delete_time on a live member.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE member SET delete_time = ? WHERE id = ? AND delete_time IS NULL`, r.now(), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Search lists live members matching f, newest first.
func (r *Repository) Search(ctx context.Context, f Filter) ([]Member, error) {
	b := applyFilter(sq.Select(columns...).From("member"), f).OrderBy("create_time DESC")
	if f.Count > 0 {
		b = b.Limit(uint64(f.Count)).Offset(uint64(f.Page * f.Count))
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	out := make([]Member, 0, 16)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByLnput totals live members per input clerk.  Paging fields of f are
// ignored.
func (r *Repository) CountByLnput(ctx context.Context, f Filter) ([]LnputCount, error) {
	q, args, err := applyFilter(sq.Select("lnput", "COUNT(*) AS total").From("member"), f).
		GroupBy("lnput").
		OrderBy("total DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	out := make([]LnputCount, 0, 8)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func applyFilter(b sq.SelectBuilder, f Filter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"delete_time": nil})
	if f.Keyword != "" {
		like := database.Contains(f.Keyword)
		b = b.Where(sq.Or{
			sq.Like{"name": like},
			sq.Like{"number_id": like},
			sq.Like{"phone": like},
		})
	}
	if f.Lnput != "" {
		b = b.Where(sq.Eq{"lnput": f.Lnput})
	}
	if f.Start != nil {
		b = b.Where(sq.GtOrEq{"create_time": *f.Start})
	}
	if f.End != nil {
		b = b.Where(sq.LtOrEq{"create_time": *f.End})
	}
	return b
}

// duplicate maps MySQL 1062 onto *DuplicateError.  The key name in the
// server message tells which column collided.
func duplicate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	if strings.Contains(me.Message, "phone") {
		return &DuplicateError{Field: "phone"}
	}
	return &DuplicateError{Field: "number_id"}
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
