// internal/user/user_test.go
//
// Run: go test ./internal/user -v

package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewStore(sqlx.NewDb(db, "mysql"))
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

var userCols = []string{
	"id", "nickname", "group_id", "email", "password", "admin", "active",
	"create_time", "update_time",
}

func TestAuthenticate(t *testing.T) {
	s, mock := newMockStore(t)
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_user WHERE nickname = ? AND delete_time IS NULL`)).
			WithArgs("pedro").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(3, "pedro", 1, nil, hash, LevelCommon, 1, fixedNow, fixedNow))
	}

	u, err := s.Authenticate(context.Background(), "pedro", "123456")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if u.ID != 3 || u.IsSuper() {
		t.Fatalf("unexpected user: %#v", u)
	}
	if v := u.View(); v.GroupID == nil || *v.GroupID != 1 || v.Email != "" {
		t.Fatalf("unexpected view: %#v", v)
	}

	if _, err := s.Authenticate(context.Background(), "pedro", "654321"); !errors.Is(err, ErrPassword) {
		t.Fatalf("err = %v, want ErrPassword", err)
	}
}

func TestByID_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_user WHERE id = ?`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(userCols))

	if _, err := s.ByID(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate_DuplicateNickname(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO lin_user`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pedro'"})

	_, err := s.Create(context.Background(), NewUser{Nickname: "pedro", Password: "123456", GroupID: 1})
	if !errors.Is(err, ErrNicknameTaken) {
		t.Fatalf("err = %v, want ErrNicknameTaken", err)
	}
}

func TestUpdate_GroupOnly(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE lin_user SET update_time = ?, group_id = ? WHERE delete_time IS NULL AND id = ?`)).
		WithArgs(fixedNow, int64(2), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Update(context.Background(), 3, 2, nil); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSetPassword_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE lin_user SET password = ?`)).
		WithArgs(sqlmock.AnyArg(), fixedNow, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.SetPassword(context.Background(), 4, "abcdef"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
