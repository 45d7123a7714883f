// components/test/test.go
//
// lincms test component – liveness text and the sample book resource.
//
// Routes (mounted at /cms/test)
// -----------------------------
//
//	GET    /
//	GET    /book
//	GET    /book/search   BookSearchForm
//	GET    /book/{id}
//	POST   /book          CreateOrUpdateBookForm   logged in
//	PUT    /book/{id}     CreateOrUpdateBookForm   logged in
//	DELETE /book/{id}                              删除图书
//
//------------------------------------------------------------------------------

package test

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/book"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the test blueprint.
type Component struct {
	acl   *acl.Store
	books *book.Store
}

const msgBookNotFound = "没有找到相关书籍"

// Name returns the canonical component key.
func (c *Component) Name() string { return "test" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.books = book.NewStore(env.DB)
	return nil
}

// Routes builds and returns the router mounted at /cms/test.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.index)
	r.Route("/book", func(r chi.Router) {
		r.Get("/", c.listBooks)
		r.Get("/search", c.searchBooks)
		r.Get("/{id}", c.getBook)
		r.With(acl.RequireLogin(c.acl)).Post("/", c.createBook)
		r.With(acl.RequireLogin(c.acl)).Put("/{id}", c.updateBook)
		r.With(acl.RequireAuth(c.acl, "删除图书")).Delete("/{id}", c.deleteBook)
	})
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

func (c *Component) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("lincms is running"))
}

func (c *Component) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := c.books.All(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, books)
}

func (c *Component) searchBooks(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.BookSearchForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	books, err := c.books.Search(r.Context(), vals.String("q"))
	if err != nil {
		api.Error(w, r, err)
		return
	}
	if len(books) == 0 {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	api.JSON(w, http.StatusOK, books)
}

func (c *Component) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	b, err := c.books.Get(r.Context(), id)
	if errors.Is(err, book.ErrNotFound) {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, b)
}

func (c *Component) createBook(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateBookForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	b := fromValues(vals)

	_, err = c.books.ByTitle(r.Context(), b.Title)
	switch {
	case err == nil:
		api.Error(w, r, form.ConflictOn(form.CreateOrUpdateBookForm, "title", "图书已存在"))
		return
	case !errors.Is(err, book.ErrNotFound):
		api.Error(w, r, err)
		return
	}

	if _, err := c.books.Create(r.Context(), b); err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "新建图书成功")
}

func (c *Component) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateBookForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	b := fromValues(vals)
	b.ID = id

	err = c.books.Update(r.Context(), b)
	if errors.Is(err, book.ErrNotFound) {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "更新图书成功")
}

func (c *Component) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	err := c.books.SoftDelete(r.Context(), id)
	if errors.Is(err, book.ErrNotFound) {
		api.NotFound(w, r, msgBookNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "删除图书成功")
}

func fromValues(v form.Values) book.Book {
	return book.Book{
		Title:   v.String("title"),
		Author:  v.String("author"),
		Summary: v.String("summary"),
		Image:   v.String("image"),
	}
}
