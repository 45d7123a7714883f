// components/user/user.go
//
// lincms user component – account registration and self-service.
//
// Routes (mounted at /cms/user)
// -----------------------------
//
//	POST /register          RegisterForm         super administrators only
//	POST /login             LoginForm
//	PUT  /                  UpdateInfoForm       logged in
//	PUT  /change_password   ChangePasswordForm   logged in
//	GET  /information                            logged in
//	GET  /auths                                  logged in
//
// Login verifies the password and returns the account.  Issuing tokens is
// the gateway's job, so no credential is minted here.
//
//------------------------------------------------------------------------------

package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/auth"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
	account "github.com/yanizio/lincms/internal/user"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the user blueprint.
type Component struct {
	acl    *acl.Store
	users  *account.Store
	audit  *auditlog.Store
	lookup form.Lookup
}

// authsView answers GET /auths.
type authsView struct {
	account.View
	Auths []string `json:"auths"`
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "user" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.audit = env.Audit
	c.lookup = env.Lookup
	c.users = account.NewStore(env.DB)
	return nil
}

// Routes builds and returns the router mounted at /cms/user.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.RequireAdmin(c.acl)).Post("/register", c.register)
	r.Post("/login", c.login)

	r.Group(func(r chi.Router) {
		r.Use(acl.RequireLogin(c.acl))
		r.Put("/", c.updateInfo)
		r.Put("/change_password", c.changePassword)
		r.Get("/information", c.information)
		r.Get("/auths", c.auths)
	})
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) register(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.RegisterForm, c.lookup)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	nickname := vals.String("nickname")
	_, err = c.users.ByNickname(r.Context(), nickname)
	switch {
	case err == nil:
		api.Fail(w, r, http.StatusBadRequest, api.CodeRepeat, "用户名重复，请重新输入")
		return
	case !errors.Is(err, account.ErrNotFound):
		api.Error(w, r, err)
		return
	}

	_, err = c.users.Create(r.Context(), account.NewUser{
		Nickname: nickname,
		Password: vals.String("password"),
		GroupID:  vals.Int("group_id"),
		Email:    vals.String("email"),
	})
	if errors.Is(err, account.ErrNicknameTaken) {
		api.Fail(w, r, http.StatusBadRequest, api.CodeRepeat, "用户名重复，请重新输入")
		return
	}
	if err != nil {
		api.Error(w, r, err)
		return
	}
	c.audit.Record(r.Context(), auditlog.FromRequest(r, http.StatusCreated, "创建用户 "+nickname, "注册"))
	api.Success(w, r, "用户创建成功")
}

func (c *Component) login(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.LoginForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	u, err := c.users.Authenticate(r.Context(), vals.String("nickname"), vals.String("password"))
	switch {
	case errors.Is(err, account.ErrNotFound):
		api.NotFound(w, r, "用户不存在")
		return
	case errors.Is(err, account.ErrPassword):
		api.Fail(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "密码错误，请输入正确密码")
		return
	case err != nil:
		api.Error(w, r, err)
		return
	}

	e := auditlog.FromRequest(r, http.StatusOK, "登录成功", "登录")
	e.UserID, e.UserName = u.ID, u.Nickname
	c.audit.Record(r.Context(), e)
	api.JSON(w, http.StatusOK, u.View())
}

func (c *Component) updateInfo(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.UpdateInfoForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	uid, _ := auth.UserID(r.Context())

	if vals.Has("email") {
		email := vals.String("email")
		if err := c.users.Update(r.Context(), uid, 0, &email); err != nil {
			api.Error(w, r, err)
			return
		}
	}
	api.Success(w, r, "操作成功")
}

func (c *Component) changePassword(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.ChangePasswordForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	u, ok := c.current(w, r)
	if !ok {
		return
	}
	if !u.CheckPassword(vals.String("old_password")) {
		api.Parameter(w, r, "原始密码错误")
		return
	}
	if err := c.users.SetPassword(r.Context(), u.ID, vals.String("new_password")); err != nil {
		api.Error(w, r, err)
		return
	}
	api.Success(w, r, "密码修改成功")
}

func (c *Component) information(w http.ResponseWriter, r *http.Request) {
	u, ok := c.current(w, r)
	if !ok {
		return
	}
	api.JSON(w, http.StatusOK, u.View())
}

func (c *Component) auths(w http.ResponseWriter, r *http.Request) {
	u, ok := c.current(w, r)
	if !ok {
		return
	}
	out := authsView{View: u.View(), Auths: []string{}}
	if !u.IsSuper() && u.GroupID.Valid {
		auths, err := c.acl.GroupAuths(r.Context(), u.GroupID.Int64)
		if err != nil {
			api.Error(w, r, err)
			return
		}
		out.Auths = auths
	}
	api.JSON(w, http.StatusOK, out)
}

// current loads the caller or writes the matching error.
func (c *Component) current(w http.ResponseWriter, r *http.Request) (*account.User, bool) {
	uid, _ := auth.UserID(r.Context())
	u, err := c.users.ByID(r.Context(), uid)
	if errors.Is(err, account.ErrNotFound) {
		api.NotFound(w, r, "用户不存在")
		return nil, false
	}
	if err != nil {
		api.Error(w, r, err)
		return nil, false
	}
	return u, true
}
