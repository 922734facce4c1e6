package rbac

import (
	"context"
	"strings"
)

type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// Caller is the authenticated principal a service operation runs on behalf of.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) Authenticated() bool { return c.UserID != "" && c.Role != "" }

// IsStaff reports whether the caller manages content rather than consuming it.
func (c Caller) IsStaff() bool { return c.Role == RoleTeacher || c.Role == RoleAdmin }

// Can reports whether the caller's role grants perm under the default policy.
func (c Caller) Can(perm string) bool { return defaultChecker.Has(c.Role, perm) }

// ---- caller in context ----

type ctxKey struct{}

var ctxKeyCaller = ctxKey{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKeyCaller, c)
}

func CallerFromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(ctxKeyCaller).(Caller); ok {
		return c
	}
	return Caller{}
}

func RoleFromContext(ctx context.Context) string {
	return CallerFromContext(ctx).Role
}
