// components/member/member.go
//
// lincms member component – registration and search of club members.
//
// Routes (mounted at /cms/member)
// -------------------------------
//
//	GET    /search   MemberSearchForm          查询会员
//	GET    /{id}                               查看会员
//	POST   /         CreateOrUpdateMemberForm  新增会员
//	PUT    /{id}     CreateOrUpdateMemberForm  更新会员
//	DELETE /{id}                               删除会员
//
// Uniqueness of number_id and phone is checked by the form hooks.  When two
// requests race past the check, the unique key rejects the second INSERT and
// the handler reports the same conflict message the hook would have.
//
//------------------------------------------------------------------------------

package member

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
	members "github.com/yanizio/lincms/internal/member"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the member blueprint.
type Component struct {
	acl     *acl.Store
	members *members.Repository
	audit   *auditlog.Store
	lookup  form.Lookup
}

// conflictMessages mirrors the hook messages of CreateOrUpdateMemberForm.
var conflictMessages = map[string]string{
	"number_id": "会员号已被注册",
	"phone":     "手机号已被注册",
}

const msgMemberNotFound = "没有找到相关会员"

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "member" }

// Init wires the shared stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.members = env.Members
	c.audit = env.Audit
	c.lookup = env.Lookup
	return nil
}

// Routes builds and returns the router mounted at /cms/member.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.RequireAuth(c.acl, "查询会员")).Get("/search", c.search)
	r.With(acl.RequireAuth(c.acl, "查看会员")).Get("/{id}", c.get)
	r.With(acl.RequireAuth(c.acl, "新增会员")).Post("/", c.create)
	r.With(acl.RequireAuth(c.acl, "更新会员")).Put("/{id}", c.update)
	r.With(acl.RequireAuth(c.acl, "删除会员")).Delete("/{id}", c.remove)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) search(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.MemberSearchForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	f := members.Filter{
		Keyword: vals.String("keyword"),
		Lnput:   vals.String("lnput"),
	}
	if t, ok := vals.Time("start"); ok {
		f.Start = &t
	}
	if t, ok := vals.Time("end"); ok {
		f.End = &t
	}
	f.Page, f.Count = api.Page(r)

	out, err := c.members.Search(r.Context(), f)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	if len(out) == 0 {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	api.JSON(w, http.StatusOK, out)
}

func (c *Component) get(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	m, err := c.members.Get(r.Context(), id)
	if errors.Is(err, members.ErrNotFound) {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, m)
}

func (c *Component) create(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateMemberForm, c.lookup)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if _, err := c.members.Create(r.Context(), fromValues(vals)); err != nil {
		c.writeFailed(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "新增会员", "新增会员"))
	api.Success(w, r, "新建会员成功")
}

func (c *Component) update(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	vals, err := form.HandleSubmit(r, form.CreateOrUpdateMemberForm, c.lookup, form.ExcludeMember(id))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	m := fromValues(vals)
	m.ID = id
	if err := c.members.Update(r.Context(), m); err != nil {
		c.writeFailed(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "更新会员", "更新会员"))
	api.Success(w, r, "更新会员成功")
}

func (c *Component) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	err := c.members.SoftDelete(r.Context(), id)
	if errors.Is(err, members.ErrNotFound) {
		api.NotFound(w, r, msgMemberNotFound)
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "删除会员", "删除会员"))
	api.Success(w, r, "删除会员成功")
}

// writeFailed maps repository errors of Create and Update.
func (c *Component) writeFailed(w http.ResponseWriter, r *http.Request, err error) {
	var dup *members.DuplicateError
	switch {
	case errors.As(err, &dup):
		api.Error(w, r, form.ConflictOn(form.CreateOrUpdateMemberForm, dup.Field, conflictMessages[dup.Field]))
	case errors.Is(err, members.ErrNotFound):
		api.NotFound(w, r, msgMemberNotFound)
	default:
		api.Error(w, r, err)
	}
}

func fromValues(v form.Values) members.Member {
	return members.Member{
		NumberID: v.String("number_id"),
		Name:     v.String("name"),
		Number:   v.String("number"),
		Phone:    v.String("phone"),
		Address:  v.String("address"),
		Nation:   v.String("nation"),
		Birthday: v.String("birthday"),
		Remarks:  v.String("remarks"),
		Lnput:    v.String("lnput"),
	}
}
