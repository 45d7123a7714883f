// Package book is the sample resource behind the test blueprint.
//
//	book (id PK, title, author, summary, image, create_time, update_time,
//	      delete_time)
package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/lincms/internal/database"
)

// ErrNotFound is returned when no live book matches.
var ErrNotFound = errors.New("book: not found")

// Book mirrors one row of the book table.
type Book struct {
	ID      int64  `db:"id"      json:"id"`
	Title   string `db:"title"   json:"title"`
	Author  string `db:"author"  json:"author"`
	Summary string `db:"summary" json:"summary"`
	Image   string `db:"image"   json:"image"`
}

var columns = []string{"id", "title", "author", "summary", "image"}

// Store reads and writes the book table.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

func live() sq.Eq { return sq.Eq{"delete_time": nil} }

// Get returns the live book with id.
func (s *Store) Get(ctx context.Context, id int64) (*Book, error) {
	return s.one(ctx, sq.Eq{"id": id})
}

// ByTitle returns the live book titled title.
func (s *Store) ByTitle(ctx context.Context, title string) (*Book, error) {
	return s.one(ctx, sq.Eq{"title": title})
}

func (s *Store) one(ctx context.Context, where sq.Eq) (*Book, error) {
	q, args, err := sq.Select(columns...).From("book").Where(where).Where(live()).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	var b Book
	err = s.db.GetContext(ctx, &b, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// All lists every live book.
func (s *Store) All(ctx context.Context) ([]Book, error) {
	return s.list(ctx, sq.Select(columns...).From("book").Where(live()).OrderBy("id"))
}

// Search lists live books whose title contains q.
func (s *Store) Search(ctx context.Context, q string) ([]Book, error) {
	return s.list(ctx, sq.Select(columns...).From("book").
		Where(live()).
		Where(sq.Like{"title": database.Contains(q)}).
		OrderBy("id"))
}

func (s *Store) list(ctx context.Context, b sq.SelectBuilder) ([]Book, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, 8)
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts b and returns its id.
func (s *Store) Create(ctx context.Context, b Book) (int64, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO book (title, author, summary, image, create_time, update_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, b.Summary, b.Image, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites live book b.ID.
func (s *Store) Update(ctx context.Context, b Book) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE book SET title = ?, author = ?, summary = ?, image = ?, update_time = ?
		  WHERE id = ? AND delete_time IS NULL`,
		b.Title, b.Author, b.Summary, b.Image, s.now(), b.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SoftDelete stamps delete_time on live book id.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE book SET delete_time = ? WHERE id = ? AND delete_time IS NULL`, s.now(), id)
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
