// Package cmstest drives blueprints through the real /cms router on top of
// sqlmock.  It is imported by component tests only.
package cmstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auth"
	"github.com/yanizio/lincms/internal/cms"
	"github.com/yanizio/lincms/internal/component"
)

// Server mounts comp under /cms on a mocked database.
func Server(t *testing.T, comp component.Component) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h, err := cms.Mount(component.NewEnv(sqlx.NewDb(db, "mysql"), nil), comp)
	require.NoError(t, err)
	return h, mock
}

// ExpectAccess answers the access lookup the acl middleware makes for uid.
func ExpectAccess(mock sqlmock.Sqlmock, uid, groupID int64, admin bool) {
	mock.ExpectQuery(regexp.QuoteMeta(`(admin = 2) AS admin`)).
		WithArgs(uid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "admin"}).AddRow(uid, groupID, admin))
}

// ExpectAllowed answers one permission check for groupID.
func ExpectAllowed(mock sqlmock.Sqlmock, groupID int64, name string, ok bool) {
	rows := sqlmock.NewRows([]string{"1"})
	if ok {
		rows.AddRow(1)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM lin_auth`)).
		WithArgs(groupID, name).
		WillReturnRows(rows)
}

// Do sends one request as uid (0 means anonymous) and decodes the envelope
// when the body is one.
func Do(h http.Handler, method, path, body string, uid int64) (*httptest.ResponseRecorder, api.Envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if uid > 0 {
		req.Header.Set(auth.Header, strconv.FormatInt(uid, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env api.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}
