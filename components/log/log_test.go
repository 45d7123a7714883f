package log

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/cmstest"
)

const super = int64(1)

var logColumns = []string{"id", "message", "user_id", "user_name", "status_code", "method", "path", "authority", "time"}

func newServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	return cmstest.Server(t, &Component{})
}

func TestSearch_EmptyIsNotFound(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM lin_log WHERE (user_name = ? AND message LIKE ?)`)).
		WithArgs("pedro", "%登录%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_log WHERE (user_name = ? AND message LIKE ?) ORDER BY time DESC LIMIT 10 OFFSET 0`)).
		WithArgs("pedro", "%登录%").
		WillReturnRows(sqlmock.NewRows(logColumns))

	q := url.Values{"name": {"pedro"}, "keyword": {"登录"}}
	rec, env := cmstest.Do(h, http.MethodGet, "/cms/log/search?"+q.Encode(), "", super)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeNotFound, env.Code)
	assert.Equal(t, "没有找到相关日志", env.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_IgnoresKeyword(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)
	at := time.Date(2018, 11, 1, 9, 39, 35, 0, time.Local)
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM lin_log$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_log ORDER BY time DESC LIMIT 5 OFFSET 5`)).
		WillReturnRows(sqlmock.NewRows(logColumns).
			AddRow(1, "登录成功", 5, "pedro", 200, "POST", "/cms/user/login", "登录", at))

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/log/?keyword=%E7%99%BB%E5%BD%95&page=1&count=5", "", super)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int64 `json:"total"`
		Items []struct {
			Message string `json:"message"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "登录成功", page.Items[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_BadDate(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)

	q := url.Values{"start": {"2018-13-01 00:00:00"}}
	rec, env := cmstest.Do(h, http.MethodGet, "/cms/log/search?"+q.Encode(), "", super)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeParameter, env.Code)
	msgs, ok := env.Msg.(map[string]any)
	require.True(t, ok, "msg = %v", env.Msg)
	assert.Contains(t, msgs["start"], "month out of range")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_NeedsPermission(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, 5, 2, false)
	cmstest.ExpectAllowed(mock, 2, "查询所有日志", false)

	rec, env := cmstest.Do(h, http.MethodGet, "/cms/log/", "", 5)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, api.CodeForbidden, env.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, 5, 2, false)
	cmstest.ExpectAllowed(mock, 2, "查询日志记录的用户", true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT user_name FROM lin_log`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_name"}).AddRow("pedro").AddRow("super"))

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/log/users", "", 5)
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"pedro", "super"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
