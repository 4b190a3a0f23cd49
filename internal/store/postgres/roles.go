package postgres

import (
	"fmt"
	"strings"

	"github.com/agentvox/agentvox/internal/authz"
)

// Roles persist as text[] of "namespace/name" values.

func encodeRoles(roles []authz.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.String())
	}
	return out
}

func decodeRoles(raw []string) ([]authz.Role, error) {
	out := make([]authz.Role, 0, len(raw))
	for _, s := range raw {
		namespace, name, ok := strings.Cut(s, "/")
		if !ok {
			return nil, fmt.Errorf("malformed role %q", s)
		}
		role, ok := authz.ParseRole(namespace, name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", s)
		}
		out = append(out, role)
	}
	return out, nil
}
