package hotel

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/cmstest"
)

const super = int64(1)

func newServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	return cmstest.Server(t, &Component{})
}

func TestStats_SumsPerClerk(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT lnput, COUNT(*) AS total FROM member WHERE delete_time IS NULL GROUP BY lnput ORDER BY total DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"lnput", "total"}).AddRow("李四", 3).AddRow("王五", 2))

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/hotel/stats", "", super)
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 5, got.Total)
	require.Len(t, got.ByLnput, 2)
	assert.Equal(t, "李四", got.ByLnput[0].Lnput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_FilteredByClerk(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE delete_time IS NULL AND lnput = ? GROUP BY lnput`)).
		WithArgs("李四").
		WillReturnRows(sqlmock.NewRows([]string{"lnput", "total"}))

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/hotel/stats?lnput=%E6%9D%8E%E5%9B%9B", "", super)
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Zero(t, got.Total)
	assert.Empty(t, got.ByLnput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_BadKeyword(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, super, 0, true)

	rec, env := cmstest.Do(h, http.MethodGet, "/cms/hotel/stats?keyword=x", "", super)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeParameter, env.Code)
	assert.Equal(t, map[string]any{"keyword": "搜索关键字长度必须是2-11位数字或汉字"}, env.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_NeedsPermission(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, 5, 2, false)
	cmstest.ExpectAllowed(mock, 2, "会员统计", false)

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/hotel/stats", "", 5)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
