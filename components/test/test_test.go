package test

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

const caller = int64(5)

var bookColumns = []string{"id", "title", "author", "summary", "image"}

func newServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	return cmstest.Server(t, &Component{})
}

func bookBody() string {
	return `{"title":"深入理解计算机系统","author":"Randal E.Bryant","summary":"从程序员的视角","image":"https://img.example/csapp.png"}`
}

func TestIndex(t *testing.T) {
	h, _ := newServer(t)

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/test/", "", 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lincms is running", rec.Body.String())
}

func TestCreateBook_DuplicateTitle(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, caller, 2, false)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM book WHERE title = ? AND delete_time IS NULL LIMIT 1`)).
		WithArgs("深入理解计算机系统").
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(1, "深入理解计算机系统", "Randal E.Bryant", "", ""))

	rec, env := cmstest.Do(h, http.MethodPost, "/cms/test/book/", bookBody(), caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeParameter, env.Code)
	assert.Equal(t, map[string]any{"title": "图书已存在"}, env.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBook(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, caller, 2, false)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM book WHERE title = ?`)).
		WithArgs("深入理解计算机系统").
		WillReturnRows(sqlmock.NewRows(bookColumns))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO book`)).
		WillReturnResult(sqlmock.NewResult(2, 1))

	rec, env := cmstest.Do(h, http.MethodPost, "/cms/test/book/", bookBody(), caller)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "新建图书成功", env.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBook_MissingFields(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, caller, 2, false)

	rec, env := cmstest.Do(h, http.MethodPost, "/cms/test/book/", `{"title":"深入理解计算机系统"}`, caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{
		"author":  "必须传入图书作者",
		"summary": "必须传入图书综述",
		"image":   "必须传入图书插图",
	}, env.Msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBooks(t *testing.T) {
	h, mock := newServer(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM book WHERE delete_time IS NULL AND title LIKE ? ORDER BY id`)).
		WithArgs("%计算机%").
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(1, "深入理解计算机系统", "Randal E.Bryant", "", ""))

	rec, _ := cmstest.Do(h, http.MethodGet, "/cms/test/book/search?q=%E8%AE%A1%E7%AE%97%E6%9C%BA", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "深入理解计算机系统", books[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBooks_Empty(t *testing.T) {
	h, mock := newServer(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM book WHERE delete_time IS NULL AND title LIKE ?`)).
		WithArgs("%无此书%").
		WillReturnRows(sqlmock.NewRows(bookColumns))

	rec, env := cmstest.Do(h, http.MethodGet, "/cms/test/book/search?q=%E6%97%A0%E6%AD%A4%E4%B9%A6", "", 0)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "没有找到相关书籍", env.Msg)
}

func TestGetBook_Missing(t *testing.T) {
	h, mock := newServer(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM book WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(bookColumns))

	rec, env := cmstest.Do(h, http.MethodGet, "/cms/test/book/9", "", 0)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeNotFound, env.Code)
}

func TestDeleteBook_NeedsPermission(t *testing.T) {
	h, mock := newServer(t)
	cmstest.ExpectAccess(mock, caller, 2, false)
	cmstest.ExpectAllowed(mock, 2, "删除图书", false)

	rec, _ := cmstest.Do(h, http.MethodDelete, "/cms/test/book/1", "", caller)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
