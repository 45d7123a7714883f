// components/hotel/hotel.go
//
// lincms hotel component – registration statistics per input clerk.
//
// Routes (mounted at /cms/hotel)
// ------------------------------
//
//	GET /stats   MemberSearchForm bounds   会员统计
//
//------------------------------------------------------------------------------

package hotel

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/component"
	"github.com/yanizio/lincms/internal/form"
	"github.com/yanizio/lincms/internal/member"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the hotel blueprint.
type Component struct {
	acl     *acl.Store
	members *member.Repository
}

// statsView answers GET /stats.
type statsView struct {
	Total   int64               `json:"total"`
	ByLnput []member.LnputCount `json:"by_lnput"`
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "hotel" }

// Init wires the stores.
func (c *Component) Init(env component.Env) error {
	c.acl = env.ACL
	c.members = env.Members
	return nil
}

// Routes builds and returns the router mounted at /cms/hotel.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.RequireAuth(c.acl, "会员统计")).Get("/stats", c.stats)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

func (c *Component) stats(w http.ResponseWriter, r *http.Request) {
	vals, err := form.HandleSubmit(r, form.MemberSearchForm, nil)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	f := member.Filter{Keyword: vals.String("keyword"), Lnput: vals.String("lnput")}
	if t, ok := vals.Time("start"); ok {
		f.Start = &t
	}
	if t, ok := vals.Time("end"); ok {
		f.End = &t
	}

	counts, err := c.members.CountByLnput(r.Context(), f)
	if err != nil {
		api.Error(w, r, err)
		return
	}
	out := statsView{ByLnput: counts}
	for _, lc := range counts {
		out.Total += lc.Total
	}
	api.JSON(w, http.StatusOK, out)
}
