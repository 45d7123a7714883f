// internal/acl/middleware.go
//
// Chi middleware helpers that enforce group permissions.

package acl

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/api"
	"github.com/yanizio/lincms/internal/auth"
)

// AccessReader is the slice of Store the middleware needs.
type AccessReader interface {
	UserAccess(ctx context.Context, userID int64) (*Access, error)
	Allowed(ctx context.Context, groupID int64, auth string) (bool, error)
}

// RequireLogin rejects requests without a known, active caller.
func RequireLogin(store AccessReader) func(http.Handler) http.Handler {
	return guard(store, func(*http.Request, *Access) (bool, error) { return true, nil })
}

// RequireAdmin only lets super administrators through.
func RequireAdmin(store AccessReader) func(http.Handler) http.Handler {
	return guard(store, func(_ *http.Request, a *Access) (bool, error) { return a.Admin, nil })
}

// RequireAuth lets through admins and members of a group holding name.
func RequireAuth(store AccessReader, name string) func(http.Handler) http.Handler {
	if name == "" {
		panic("acl.RequireAuth: auth name must be supplied")
	}
	return guard(store, func(r *http.Request, a *Access) (bool, error) {
		if a.Admin {
			return true, nil
		}
		if a.GroupID == 0 {
			return false, nil
		}
		return store.Allowed(r.Context(), a.GroupID, name)
	})
}

func guard(store AccessReader, allow func(*http.Request, *Access) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserID(r.Context())
			if !ok {
				api.Fail(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "认证失败")
				return
			}

			access, err := store.UserAccess(r.Context(), uid)
			if errors.Is(err, ErrNotFound) {
				api.Fail(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "用户不存在")
				return
			}
			if err != nil {
				zap.L().Error("acl user access", zap.Int64("user", uid), zap.Error(err))
				api.Fail(w, r, http.StatusInternalServerError, api.CodeUnknown, "服务器未知错误")
				return
			}

			allowed, err := allow(r, access)
			if err != nil {
				zap.L().Error("acl allowed", zap.Int64("user", uid), zap.Error(err))
				api.Fail(w, r, http.StatusInternalServerError, api.CodeUnknown, "服务器未知错误")
				return
			}
			if !allowed {
				api.Fail(w, r, http.StatusForbidden, api.CodeForbidden, "权限不够，请联系超级管理员获得权限")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
