// Copyright 2026 The AgentVox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Verifies that the role → permission mapping is total: every declared role resolves to a defined permission set.
// Scope: Unit Test
// Security: Fail-Closed Authorization (an unmapped role would silently grant nothing or everything depending on caller assumptions)
// Expected: Each role in CustomerRoles and AdminRoles has an entry; an undeclared role yields an empty, non-nil set.
func TestAuthz_Registry_MappingIsTotal(t *testing.T) {
	for _, role := range append(append([]Role{}, CustomerRoles...), AdminRoles...) {
		_, ok := rolePermissions[role]
		assert.True(t, ok, "role %s must have a permission mapping", role)
	}

	unknown := Role{NamespaceCustomer, "superuser"}
	perms := RolePermissions(unknown)
	require.NotNil(t, perms)
	assert.Empty(t, perms, "unknown role must resolve to an empty set, not an error")
}

// TestPurpose: Verifies that RolePermissions returns a defensive copy so callers cannot mutate the registry.
// Scope: Unit Test
// Security: Registry Integrity
// Expected: Mutating the returned slice does not change a subsequent lookup.
func TestAuthz_Registry_LookupReturnsCopy(t *testing.T) {
	perms := RolePermissions(RoleViewer)
	require.NotEmpty(t, perms)
	perms[0] = PermTenantDelete

	again := RolePermissions(RoleViewer)
	assert.NotContains(t, again, PermTenantDelete)
}

// TestPurpose: Verifies the permission union is commutative, idempotent, and duplicate-free.
// Scope: Unit Test (property-style over all declared role pairs)
// Security: Deterministic Authorization Decisions
// Expected: union(a,b) == union(b,a) == union(a,b,a); no permission appears twice.
func TestAuthz_Evaluator_UnionCommutativeAndIdempotent(t *testing.T) {
	all := append(append([]Role{}, CustomerRoles...), AdminRoles...)
	for _, a := range all {
		for _, b := range all {
			ab := PermissionUnion([]Role{a, b})
			ba := PermissionUnion([]Role{b, a})
			aba := PermissionUnion([]Role{a, b, a})

			assert.Equal(t, ab, ba, "union(%s,%s) must be order-independent", a, b)
			assert.Equal(t, ab, aba, "duplicate roles must not change the union")

			seen := map[Permission]bool{}
			for _, p := range ab {
				assert.False(t, seen[p], "permission %s duplicated in union", p)
				seen[p] = true
			}
		}
	}
}

// TestPurpose: Verifies that the union over a combined role set equals the set union of the individual unions.
// Scope: Unit Test
// Security: Authorization Composition
// Expected: union(R1 ∪ R2) contains exactly the permissions of union(R1) ∪ union(R2).
func TestAuthz_Evaluator_UnionDistributesOverRoleSets(t *testing.T) {
	r1 := []Role{RoleDeveloper, RoleBilling}
	r2 := []Role{RoleViewer, RoleAdminViewer}

	combined := PermissionUnion(append(append([]Role{}, r1...), r2...))

	want := map[Permission]bool{}
	for _, p := range PermissionUnion(r1) {
		want[p] = true
	}
	for _, p := range PermissionUnion(r2) {
		want[p] = true
	}

	assert.Len(t, combined, len(want))
	for _, p := range combined {
		assert.True(t, want[p], "unexpected permission %s in combined union", p)
	}
}

func TestAuthz_Evaluator_EmptyRoleSet(t *testing.T) {
	assert.Empty(t, PermissionUnion(nil))
	assert.False(t, HasPermission(nil, PermTeamView))
	assert.ErrorIs(t, Require(nil, PermTeamView), ErrAccessDenied)
}

func TestAuthz_Evaluator_HasPermissionMatchesUnion(t *testing.T) {
	roles := []Role{RoleDeveloper, RoleBilling}
	union := PermissionUnion(roles)

	for _, p := range union {
		assert.True(t, HasPermission(roles, p))
	}
	assert.False(t, HasPermission(roles, PermTeamManage))
	assert.False(t, HasPermission(roles, PermImpersonateUser))
}

// TestPurpose: Verifies the role hierarchy invariants: owner strictly dominates admin, super_admin dominates every admin role, and no customer role carries an admin-only permission.
// Scope: Unit Test
// Security: Privilege Escalation Prevention
// Expected: owner ⊋ admin; super_admin ⊇ each admin role; customer roles ∩ admin-only permissions = ∅.
func TestAuthz_Registry_HierarchyInvariants(t *testing.T) {
	ownerPerms := map[Permission]bool{}
	for _, p := range RolePermissions(RoleOwner) {
		ownerPerms[p] = true
	}
	for _, p := range RolePermissions(RoleAdmin) {
		assert.True(t, ownerPerms[p], "owner must hold admin permission %s", p)
	}
	assert.Greater(t, len(RolePermissions(RoleOwner)), len(RolePermissions(RoleAdmin)),
		"owner must be a strict superset of customer admin")

	superPerms := map[Permission]bool{}
	for _, p := range RolePermissions(RoleSuperAdmin) {
		superPerms[p] = true
	}
	for _, role := range AdminRoles {
		for _, p := range RolePermissions(role) {
			assert.True(t, superPerms[p], "super_admin must hold %s granted by %s", p, role)
		}
	}

	for _, role := range CustomerRoles {
		for _, p := range RolePermissions(role) {
			assert.NotContains(t, AdminOnlyPermissions, p,
				"customer role %s must not carry admin-only permission %s", role, p)
		}
	}
}

// TestPurpose: Verifies strict portal separation: customer roles never open admin routes, admin/viewer alone never opens admin routes, and public routes are open to all role sets.
// Scope: Unit Test
// Security: Route Separation (admin/customer portal isolation)
// Expected: Access matrix matches the three-way route classification.
func TestAuthz_Routes_PortalSeparation(t *testing.T) {
	adminRoutes := []string{"/admin", "/admin/tenants", "/admin/audit/entries"}
	customerRoutes := []string{"/dashboard", "/keys/abc123", "/team/invites"}
	publicRoutes := []string{"/", "/health", "/pricing", "/login", "/blog/launch"}

	customerOnly := [][]Role{
		{RoleOwner},
		{RoleViewer},
		{RoleOwner, RoleAdmin, RoleDeveloper, RoleBilling, RoleViewer},
	}
	adminGranting := [][]Role{
		{RoleSuperAdmin},
		{RoleTenantAdmin},
		{RoleSupportAgent},
		{RoleBillingAdmin},
		{RoleViewer, RoleSupportAgent}, // mixed namespaces: admin role still grants
	}

	for _, roles := range customerOnly {
		for _, route := range adminRoutes {
			assert.False(t, CanAccessRoute(roles, route),
				"customer roles %v must not access %s", roles, route)
		}
		for _, route := range customerRoutes {
			assert.True(t, CanAccessRoute(roles, route))
		}
	}

	for _, roles := range adminGranting {
		for _, route := range adminRoutes {
			assert.True(t, CanAccessRoute(roles, route),
				"roles %v must access %s", roles, route)
		}
	}

	// admin namespace viewer alone opens neither portal
	adminViewerOnly := []Role{RoleAdminViewer}
	for _, route := range append(adminRoutes, customerRoutes...) {
		assert.False(t, CanAccessRoute(adminViewerOnly, route),
			"admin/viewer alone must not access %s", route)
	}

	// public is public, even for the empty role set
	for _, route := range publicRoutes {
		assert.True(t, CanAccessRoute(nil, route))
		assert.True(t, CanAccessRoute([]Role{RoleSuperAdmin}, route))
	}
}

func TestAuthz_Routes_Classification(t *testing.T) {
	tests := []struct {
		route string
		class RouteClass
	}{
		{"/", RoutePublic},
		{"/pricing", RoutePublic},
		{"/administrator", RoutePublic}, // prefix match is segment-aware
		{"/admin", RouteAdmin},
		{"/admin/refunds", RouteAdmin},
		{"/dashboard", RouteCustomer},
		{"/billing/invoices/42", RouteCustomer},
		{"/teammates", RoutePublic},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.class, ClassifyRoute(tt.route))
		})
	}
}

func TestAuthz_ParseRole(t *testing.T) {
	r, ok := ParseRole("customer", "owner")
	require.True(t, ok)
	assert.Equal(t, RoleOwner, r)

	// same name, different namespace, different role
	a, ok := ParseRole("admin", "viewer")
	require.True(t, ok)
	c, ok2 := ParseRole("customer", "viewer")
	require.True(t, ok2)
	assert.NotEqual(t, a, c)

	_, ok = ParseRole("customer", "super_admin")
	assert.False(t, ok, "admin role names must not resolve in the customer namespace")
}
