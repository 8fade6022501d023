package auth

import (
	"fmt"

	"wikiadmin/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Tier is the minimum role class required to invoke an endpoint.
type Tier string

const (
	// TierAuthenticated admits any active resolved session.
	TierAuthenticated Tier = "authenticated"
	// TierManagement admits SUPER_ADMIN and REVIEWER.
	TierManagement Tier = "management"
	// TierSuperAdmin admits SUPER_ADMIN only.
	TierSuperAdmin Tier = "super_admin"
)

const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// Policy answers tier checks for a role. SUPER_ADMIN inherits REVIEWER,
// which inherits USER.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the in-memory role hierarchy.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	grants := [][]string{
		{string(models.RoleUser), string(TierAuthenticated)},
		{string(models.RoleReviewer), string(TierManagement)},
		{string(models.RoleSuperAdmin), string(TierSuperAdmin)},
	}
	for _, g := range grants {
		if _, err := e.AddPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	inherits := [][]string{
		{string(models.RoleSuperAdmin), string(models.RoleReviewer)},
		{string(models.RoleReviewer), string(models.RoleUser)},
	}
	for _, g := range inherits {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	return &Policy{enforcer: e}, nil
}

// Allows reports whether role satisfies tier. Unknown roles are denied.
func (p *Policy) Allows(role models.Role, tier Tier) bool {
	if !role.Valid() {
		return false
	}
	ok, err := p.enforcer.Enforce(string(role), string(tier))
	return err == nil && ok
}
