// internal/component/env.go
package component

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/auditlog"
	"github.com/yanizio/lincms/internal/form"
	"github.com/yanizio/lincms/internal/member"
)

// Env exposes shared resources to Components during Init.  Stores that more
// than one component needs are built once here.
type Env struct {
	DB      *sqlx.DB
	Log     *zap.SugaredLogger
	ACL     *acl.Store
	Members *member.Repository
	Audit   *auditlog.Store
	Lookup  form.Lookup
}

// NewEnv builds the shared stores on top of db.
func NewEnv(db *sqlx.DB, log *zap.SugaredLogger) Env {
	groups := acl.NewStore(db)
	members := member.NewRepository(db)
	return Env{
		DB:      db,
		Log:     log,
		ACL:     groups,
		Members: members,
		Audit:   auditlog.NewStore(db),
		Lookup:  form.NewLookup(groups, members),
	}
}
