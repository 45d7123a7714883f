package lnput

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewStore(sqlx.NewDb(db, "mysql"))
	s.now = func() time.Time { return time.Unix(100, 0) }
	return s, mock
}

func TestList(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM lnput`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "position"}).
			AddRow(1, "李四", "前台").AddRow(2, "王五", ""))

	out, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(out) != 2 || out[0].Position != "前台" {
		t.Fatalf("unexpected clerks: %#v", out)
	}
}

func TestUpdate_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE lnput SET name = ?`)).
		WithArgs("李四", "", time.Unix(100, 0), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), Clerk{ID: 7, Name: "李四"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
