// components/lnput/lnput.go
//
// lincms lnput component – the roster of input clerks.
//
// Routes (mounted at /cms/lnput)
// ------------------------------
//
//	GET    /                                    logged in
//	POST   /       CreateOrUpdateLnputForm      新增输入人
//	PUT    /{id}   CreateOrUpdateLnputForm      更新输入人
//	DELETE /{id}                                删除输入人
//
//------------------------------------------------------------------------------

package lnput

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
	clerks "github.com/yanizio/lincms/internal/lnput"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the lnput blueprint.
type Component struct {
	acl    *acl.Store
	clerks *clerks.Store
	audit  *auditlog.Store
}

const msgClerkNotFound = "没有找到相关输入人"

// Name returns the canonical component key.
func (c *Component) Name() string { return "lnput" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.audit = env.Audit
	c.clerks = clerks.NewStore(env.DB)
	return nil
}

// Routes builds and returns the router mounted at /cms/lnput.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.RequireLogin(c.acl)).Get("/", c.list)
	r.With(acl.RequireAuth(c.acl, "新增输入人")).Post("/", c.create)
	r.With(acl.RequireAuth(c.acl, "更新输入人")).Put("/{id}", c.update)
	r.With(acl.RequireAuth(c.acl, "删除输入人")).Delete("/{id}", c.remove)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

func (c *Component) list(w http.ResponseWriter, r *http.Request) {
	out, err := c.clerks.List(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, out)
}

func (c *Component) create(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateLnputForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	clerk := clerks.Clerk{Name: vals.String("name"), Position: vals.String("position")}
	if _, err := c.clerks.Create(r.Context(), clerk); err != nil {
		api.Error(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "新增输入人 "+clerk.Name, "新增输入人"))
	api.Success(w, r, "新增输入人成功")
}

func (c *Component) update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgClerkNotFound)
		return
	}
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateLnputForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	err = c.clerks.Update(r.Context(), clerks.Clerk{ID: id, Name: vals.String("name"), Position: vals.String("position")})
	if errors.Is(err, clerks.ErrNotFound) {
		api.NotFound(w, r, msgClerkNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "更新输入人成功")
}

func (c *Component) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgClerkNotFound)
		return
	}
	err := c.clerks.SoftDelete(r.Context(), id)
	if errors.Is(err, clerks.ErrNotFound) {
		api.NotFound(w, r, msgClerkNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "删除输入人", "删除输入人"))
	api.Success(w, r, "删除输入人成功")
}
