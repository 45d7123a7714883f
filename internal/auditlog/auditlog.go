// Package auditlog records and queries the lin_log trail of admin actions.
//
//	lin_log (id PK, message, user_id, user_name, status_code, method, path,
//	         authority, time)
//
// Handlers call Record after a successful write; the log blueprint reads it
// back through Find and Users.
package auditlog

import (
	"context"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/auth"
	"github.com/yanizio/lincms/internal/database"
)

// Entry mirrors one row of lin_log.
type Entry struct {
	ID         int64     `db:"id"          json:"id"`
	Message    string    `db:"message"     json:"message"`
	UserID     int64     `db:"user_id"     json:"user_id"`
	UserName   string    `db:"user_name"   json:"user_name"`
	StatusCode int       `db:"status_code" json:"status_code"`
	Method     string    `db:"method"      json:"method"`
	Path       string    `db:"path"        json:"path"`
	Authority  string    `db:"authority"   json:"authority"`
	Time       time.Time `db:"time"        json:"time"`
}

// Query narrows Find.  Zero fields do not constrain.
type Query struct {
	Name    string
	Keyword string
	Start   *time.Time
	End     *time.Time
	Page    int
	Count   int
}

// Page is one page of entries.
type Page struct {
	Page  int     `json:"page"`
	Count int     `json:"count"`
	Total int64   `json:"total"`
	Items []Entry `json:"items"`
}

// Store reads and writes lin_log.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

// FromRequest starts an entry for the caller of r.
func FromRequest(r *http.Request, status int, message, authority string) Entry {
	uid, _ := auth.UserID(r.Context())
	return Entry{
		Message:    message,
		UserID:     uid,
		StatusCode: status,
		Method:     r.Method,
		Path:       r.URL.Path,
		Authority:  authority,
	}
}

// Record appends e, stamping Time when unset.  An empty UserName is filled
// from lin_user in the same statement.  Failures are logged, not returned:
// the action being logged already succeeded.
func (s *Store) Record(ctx context.Context, e Entry) {
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	var name any = e.UserName
	if e.UserName == "" {
		name = sq.Expr("(SELECT nickname FROM lin_user WHERE id = ?)", e.UserID)
	}
	q, args, err := sq.Insert("lin_log").
		Columns("message", "user_id", "user_name", "status_code", "method", "path", "authority", "time").
		Values(e.Message, e.UserID, name, e.StatusCode, e.Method, e.Path, e.Authority, e.Time).
		ToSql()
	if err == nil {
		_, err = s.db.ExecContext(ctx, q, args...)
	}
	if err != nil {
		zap.L().Warn("audit log write failed", zap.String("message", e.Message), zap.Error(err))
	}
}

// Find returns the newest entries matching q.
func (s *Store) Find(ctx context.Context, q Query) (*Page, error) {
	where := sq.And{}
	if q.Name != "" {
		where = append(where, sq.Eq{"user_name": q.Name})
	}
	if q.Keyword != "" {
		where = append(where, sq.Like{"message": database.Contains(q.Keyword)})
	}
	if q.Start != nil {
		where = append(where, sq.GtOrEq{"time": *q.Start})
	}
	if q.End != nil {
		where = append(where, sq.LtOrEq{"time": *q.End})
	}

	count := sq.Select("COUNT(*)").From("lin_log")
	list := sq.Select("id", "message", "user_id", "user_name", "status_code",
		"method", "path", "authority", "time").
		From("lin_log").
		OrderBy("time DESC").
		Limit(uint64(q.Count)).
		Offset(uint64(q.Page * q.Count))
	if len(where) > 0 {
		count = count.Where(where)
		list = list.Where(where)
	}

	out := &Page{Page: q.Page, Count: q.Count, Items: make([]Entry, 0, q.Count)}

	cq, cargs, err := count.ToSql()
	if err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &out.Total, cq, cargs...); err != nil {
		return nil, err
	}

	lq, largs, err := list.ToSql()
	if err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &out.Items, lq, largs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists every distinct user name that appears in the log.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	out := make([]string, 0, 16)
	err := s.db.SelectContext(ctx, &out,
		`SELECT DISTINCT user_name FROM lin_log WHERE user_name IS NOT NULL ORDER BY user_name`)
	if err != nil {
		return nil, err
	}
	return out, nil
}
