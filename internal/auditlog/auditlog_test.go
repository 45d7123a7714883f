package auditlog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "mysql")), mock
}

func TestFind_Filters(t *testing.T) {
	s, mock := newMockStore(t)
	start := time.Date(2018, 11, 1, 9, 39, 35, 0, time.Local)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) FROM lin_log WHERE (user_name = ? AND time >= ?)`)).
		WithArgs("pedro", start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM lin_log WHERE (user_name = ? AND time >= ?) ORDER BY time DESC LIMIT 10 OFFSET 0`)).
		WithArgs("pedro", start).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "message", "user_id", "user_name", "status_code", "method", "path", "authority", "time",
		}).AddRow(1, "新增会员", 3, "pedro", 201, "POST", "/cms/member/", "新增会员", start))

	page, err := s.Find(context.Background(), Query{Name: "pedro", Start: &start, Count: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "新增会员", page.Items[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFind_NoFilter(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM lin_log`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_log ORDER BY time DESC LIMIT 5 OFFSET 10`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := s.Find(context.Background(), Query{Page: 2, Count: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestUsers(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT user_name FROM lin_log`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_name"}).AddRow("pedro").AddRow("super"))

	users, err := s.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pedro", "super"}, users)
}

func TestRecord(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO lin_log`)).
		WithArgs("删除会员", int64(3), "pedro", 201, "DELETE", "/cms/member/5", "删除会员", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s.Record(context.Background(), Entry{
		Message: "删除会员", UserID: 3, UserName: "pedro", StatusCode: 201,
		Method: "DELETE", Path: "/cms/member/5", Authority: "删除会员",
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_ResolvesUserName(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }

	mock.ExpectExec(regexp.QuoteMeta(`(SELECT nickname FROM lin_user WHERE id = ?)`)).
		WithArgs("新增会员", int64(3), int64(3), 201, "POST", "/cms/member/", "新增会员", at).
		WillReturnResult(sqlmock.NewResult(2, 1))

	s.Record(context.Background(), Entry{
		Message: "新增会员", UserID: 3, StatusCode: 201,
		Method: "POST", Path: "/cms/member/", Authority: "新增会员",
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFind_KeywordIsLiteral(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM lin_log WHERE (message LIKE ?)`)).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_log WHERE (message LIKE ?) ORDER BY time DESC`)).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Find(context.Background(), Query{Keyword: "50%_off", Count: 10})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
