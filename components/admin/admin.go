// components/admin/admin.go
//
// lincms admin component – groups, permissions, and other users' accounts.
//
// Routes (mounted at /cms/admin, super administrators only)
// ----------------------------------------------------------
//
//	GET    /groups
//	POST   /group            NewGroup
//	GET    /group/{id}
//	PUT    /group/{id}       UpdateGroup
//	DELETE /group/{id}
//	POST   /dispatch         DispatchAuth
//	POST   /dispatch/patch   DispatchAuths
//	POST   /remove           RemoveAuths
//	PUT    /user/{id}        UpdateUserInfoForm
//	PUT    /password/{id}    ResetPasswordForm
//	POST   /events           EventsForm
//	PUT    /events           EventsForm
//
//------------------------------------------------------------------------------

package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
	"github.com/yanizio/lincms/internal/user"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the admin blueprint.
type Component struct {
	acl   *acl.Store
	users *user.Store
	audit *auditlog.Store
}

// groupView is a group together with its auths.
type groupView struct {
	acl.Group
	Auths []string `json:"auths"`
}

const msgGroupNotFound = "分组不存在"

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "admin" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.audit = env.Audit
	c.users = user.NewStore(env.DB)
	return nil
}

// Routes builds and returns the router mounted at /cms/admin.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(acl.RequireAdmin(c.acl))

	r.Get("/groups", c.listGroups)
	r.Post("/group", c.createGroup)
	r.Get("/group/{id}", c.getGroup)
	r.Put("/group/{id}", c.updateGroup)
	r.Delete("/group/{id}", c.deleteGroup)

	r.Post("/dispatch", c.dispatch)
	r.Post("/dispatch/patch", c.dispatchPatch)
	r.Post("/remove", c.removeAuths)

	r.Put("/user/{id}", c.updateUser)
	r.Put("/password/{id}", c.resetPassword)

	r.Post("/events", c.setEvents)
	r.Put("/events", c.setEvents)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Groups ───────────────────────────────────────*/

func (c *Component) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.acl.Groups(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, groups)
}

func (c *Component) createGroup(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.NewGroup, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	name := vals.String("name")
	_, err = c.acl.GroupByName(r.Context(), name)
	switch {
	case err == nil:
		api.Fail(w, r, http.StatusBadRequest, api.CodeRepeat, "分组已存在，不可创建同名分组")
		return
	case !errors.Is(err, acl.ErrNotFound):
		api.Error(w, r, err)
		return
	}

	if _, err := c.acl.CreateGroup(r.Context(), name, vals.String("info"), vals.Strings("auths")); err != nil {
		api.Error(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "新建分组 "+name, "新建分组"))
	api.Success(w, r, "新建分组成功")
}

func (c *Component) getGroup(w http.ResponseWriter, r *http.Request) {
	g, ok := c.group(w, r)
	if !ok {
		return
	}
	auths, err := c.acl.GroupAuths(r.Context(), g.ID)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.JSON(w, http.StatusOK, groupView{Group: *g, Auths: auths})
}

func (c *Component) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgGroupNotFound)
		return
	}
	vals, err := form.HandleSubmit(r, form.UpdateGroup, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	err = c.acl.UpdateGroup(r.Context(), id, vals.String("name"), vals.String("info"))
	if errors.Is(err, acl.ErrNotFound) {
		api.NotFound(w, r, "分组不存在，更新失败")
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "更新分组成功")
}

func (c *Component) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgGroupNotFound)
		return
	}

	err := c.acl.DeleteGroup(r.Context(), id)
	switch {
	case errors.Is(err, acl.ErrNotFound):
		api.NotFound(w, r, "分组不存在，删除失败")
	case errors.Is(err, acl.ErrGroupInUse):
		api.Fail(w, r, http.StatusForbidden, api.CodeForbidden, "分组下存在用户，不可删除")
	case err != nil:
		api.Error(w, r, err)
	default:
		c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "删除分组", "删除分组"))
		api.Success(w, r, "删除分组成功")
	}
}

// group loads the {id} group or writes a 404.
func (c *Component) group(w http.ResponseWriter, r *http.Request) (*acl.Group, bool) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, msgGroupNotFound)
		return nil, false
	}
	g, err := c.acl.GroupByID(r.Context(), id)
	if errors.Is(err, acl.ErrNotFound) {
		api.NotFound(w, r, msgGroupNotFound)
		return nil, false
	}
	if err != nil {
		api.Error(w, r, err)
		return nil, false
	}
	return g, true
}

// groupExists writes a 404 when the validated group_id has no group.
func (c *Component) groupExists(w http.ResponseWriter, r *http.Request, id int64) bool {
	_, err := c.acl.GroupByID(r.Context(), id)
	if errors.Is(err, acl.ErrNotFound) {
		api.NotFound(w, r, msgGroupNotFound)
		return false
	}
	if err != nil {
		api.Error(w, r, err)
		return false
	}
	return true
}

/*──────────────────────────── Permissions ──────────────────────────────────*/

func (c *Component) dispatch(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.DispatchAuth, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	c.grant(w, r, vals.Int("group_id"), []string{vals.String("auth")})
}

func (c *Component) dispatchPatch(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.DispatchAuths, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	c.grant(w, r, vals.Int("group_id"), vals.Strings("auths"))
}

func (c *Component) grant(w http.ResponseWriter, r *http.Request, groupID int64, auths []string) {
	if !c.groupExists(w, r, groupID) {
		return
	}
	if err := c.acl.DispatchAuths(r.Context(), groupID, auths); err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "添加权限成功")
}

func (c *Component) removeAuths(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.RemoveAuths, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	gid := vals.Int("group_id")
	if !c.groupExists(w, r, gid) {
		return
	}
	if err := c.acl.RemoveAuths(r.Context(), gid, vals.Strings("auths")); err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "删除权限成功")
}

func (c *Component) setEvents(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.EventsForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	gid := vals.Int("group_id")
	if !c.groupExists(w, r, gid) {
		return
	}
	if err := c.acl.SetEvents(r.Context(), gid, vals.Strings("events")); err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "设置推送项成功")
}

/*──────────────────────────── Users ────────────────────────────────────────*/

func (c *Component) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, "用户不存在")
		return
	}
	vals, err := form.HandleSubmit(r, form.UpdateUserInfoForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	gid := vals.Int("group_id")
	if !c.groupExists(w, r, gid) {
		return
	}

	var email *string
	if vals.Has("email") {
		e := vals.String("email")
		email = &e
	}
	err = c.users.Update(r.Context(), id, gid, email)
	if errors.Is(err, user.ErrNotFound) {
		api.NotFound(w, r, "用户不存在")
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "操作成功")
}

func (c *Component) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := api.IDParam(r)
	if !ok {
		api.NotFound(w, r, "用户不存在")
		return
	}
	vals, err := form.HandleSubmit(r, form.ResetPasswordForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	err = c.users.SetPassword(r.Context(), id, vals.String("new_password"))
	if errors.Is(err, user.ErrNotFound) {
		api.NotFound(w, r, "用户不存在")
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "密码修改成功")
}
