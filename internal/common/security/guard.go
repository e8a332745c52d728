package security

import (
	"slices"

	"snippetbox/internal/common"
	"snippetbox/internal/domain/model"
)

// Guard allows a request when the verified role is in its set.
// There is no role hierarchy: admin does not imply user.
type Guard struct {
	roles map[model.Role]struct{}
}

func Require(roles ...model.Role) Guard {
	set := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Guard{roles: set}
}

// Check returns ErrUnauthorized without claims and ErrForbidden for a role
// outside the set.
func (g Guard) Check(claims *Claims) error {
	if claims == nil {
		return common.ErrUnauthorized
	}
	if _, ok := g.roles[claims.Role]; !ok {
		return common.ErrForbidden
	}
	return nil
}

func (g Guard) Roles() []model.Role {
	out := make([]model.Role, 0, len(g.roles))
	for r := range g.roles {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}
