// components/log/log.go
//
// lincms log component – read access to the audit trail.
//
// Routes (mounted at /cms/log)
// ----------------------------
//
//	GET /         LogFindForm             查询所有日志
//	GET /search   LogFindForm + keyword   搜索日志
//	GET /users                            查询日志记录的用户
//
//------------------------------------------------------------------------------

package log

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the log blueprint.
type Component struct {
	acl   *acl.Store
	audit *auditlog.Store
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "log" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.audit = env.Audit
	return nil
}

// Routes builds and returns the router mounted at /cms/log.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.RequireAuth(c.acl, "查询所有日志")).Get("/", c.find(false))
	r.With(acl.RequireAuth(c.acl, "搜索日志")).Get("/search", c.find(true))
	r.With(acl.RequireAuth(c.acl, "查询日志记录的用户")).Get("/users", c.users)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

// find serves both listing routes; only /search honours keyword.
func (c *Component) find(withKeyword bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vals, err := form.HandleSubmit(r, form.LogFindForm, nil)
		if err != nil {
			api.Error(w, r, err)
			return
		}

		q := auditlog.Query{Name: vals.String("name")}
		if t, ok := vals.Time("start"); ok {
			q.Start = &t
		}
		if t, ok := vals.Time("end"); ok {
			q.End = &t
		}
		if withKeyword {
			q.Keyword = strings.TrimSpace(r.URL.Query().Get("keyword"))
		}
		q.Page, q.Count = api.Page(r)

		page, err := c.audit.Find(r.Context(), q)
		if err != nil {
			api.Error(w, r, err)
			return
		}
		if len(page.Items) == 0 {
			api.NotFound(w, r, "没有找到相关日志")
			return
		}
		api.JSON(w, http.StatusOK, page)
	}
}

func (c *Component) users(w http.ResponseWriter, r *http.Request) {
	names, err := c.audit.Users(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, names)
}
