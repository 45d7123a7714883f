// internal/cms/cms.go
//
// Blueprint registrar.
//
// Context
// -------
// Every sub-API (admin, user, log, test, member, hotel, lnput) is a
// component.Component registered from its own package.  New initialises each
// one with the shared Env and mounts it at /cms/<name>, in name order, on a
// chi router carrying the common middleware chain:
//
//	RequestID → RealIP → AccessLog → Recoverer → Security → auth.FromHeader
//
// Notes
// -----
// • New fails when a component's Init fails; nothing is mounted half-way.
// • Oxford commas, two spaces after periods.

package cms

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auth"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/middleware"
)

// Prefix is where every blueprint lives.
const Prefix = "/cms"

// New builds the /cms router from the registered components.
func New(env component.Env) (chi.Router, error) {
	return Mount(env, component.All()...)
}

// Mount is New with an explicit component list.
func Mount(env component.Env, comps ...component.Component) (chi.Router, error) {
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, c.Name())
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.AccessLog(middleware.NewBlueprints(names...)),
		chimw.Recoverer, middleware.Security, auth.FromHeader)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		api.NotFound(w, req, "资源不存在")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		api.Fail(w, req, http.StatusMethodNotAllowed, api.CodeNotFound, "请求方法不允许")
	})

	for _, c := range comps {
		if err := c.Init(env); err != nil {
			return nil, fmt.Errorf("init component %s: %w", c.Name(), err)
		}
		r.Mount(Prefix+"/"+c.Name(), c.Routes())
		if env.Log != nil {
			env.Log.Infow("blueprint mounted", "name", c.Name(), "prefix", Prefix+"/"+c.Name())
		}
	}
	return r, nil
}
