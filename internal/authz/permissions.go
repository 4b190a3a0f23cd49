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

// Permission is a colon-delimited capability. The set below is closed: there
// is no runtime permission creation, and a typo'd permission is a compile
// error at the call site rather than a silent denial.
type Permission string

// Customer portal permissions.
const (
	PermTeamManage    Permission = "team:manage"
	PermTeamView      Permission = "team:view"
	PermBillingManage Permission = "billing:manage"
	PermBillingView   Permission = "billing:view"
	PermKeysManage    Permission = "keys:manage"
	PermKeysView      Permission = "keys:view"
	PermAgentsManage  Permission = "agents:manage"
	PermAgentsView    Permission = "agents:view"
	PermUsageView     Permission = "usage:view"
	PermThemeManage   Permission = "theme:manage"
)

// Admin portal permissions. These must never appear in a customer role's
// permission set.
const (
	PermTenantManage    Permission = "tenant:manage"
	PermTenantDelete    Permission = "tenant:delete"
	PermImpersonateUser Permission = "impersonate:user"
	PermSystemConfigure Permission = "system:configure"
	PermAuditView       Permission = "audit:view"
	PermRefundApprove   Permission = "refund:approve"
	PermSupportAccess   Permission = "support:access"
)

// AdminOnlyPermissions is the set a customer role is forbidden to carry.
var AdminOnlyPermissions = []Permission{
	PermTenantManage,
	PermTenantDelete,
	PermImpersonateUser,
	PermSystemConfigure,
}

// rolePermissions is the authoritative role → permission mapping. It is
// defined once at process start and never mutated. Every declared role has an
// entry, so the mapping is total over CustomerRoles and AdminRoles.
//
// Hierarchy constraints upheld here (and pinned by tests):
//   - RoleOwner is a strict superset of RoleAdmin.
//   - RoleSuperAdmin is a superset of every other admin role.
var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermTeamManage, PermTeamView,
		PermBillingManage, PermBillingView,
		PermKeysManage, PermKeysView,
		PermAgentsManage, PermAgentsView,
		PermUsageView, PermThemeManage,
	},
	RoleAdmin: {
		PermTeamManage, PermTeamView,
		PermKeysManage, PermKeysView,
		PermAgentsManage, PermAgentsView,
		PermUsageView, PermThemeManage,
	},
	RoleDeveloper: {
		PermKeysManage, PermKeysView,
		PermAgentsManage, PermAgentsView,
		PermUsageView,
	},
	RoleBilling: {
		PermBillingManage, PermBillingView,
		PermUsageView,
	},
	RoleViewer: {
		PermTeamView, PermAgentsView, PermUsageView,
	},

	RoleSuperAdmin: {
		PermTenantManage, PermTenantDelete,
		PermImpersonateUser, PermSystemConfigure,
		PermAuditView, PermRefundApprove, PermSupportAccess,
	},
	RoleTenantAdmin: {
		PermTenantManage, PermAuditView, PermSupportAccess,
	},
	RoleSupportAgent: {
		PermImpersonateUser, PermAuditView, PermSupportAccess,
	},
	RoleBillingAdmin: {
		PermRefundApprove, PermAuditView,
	},
	RoleAdminViewer: {
		PermAuditView,
	},
}

// RolePermissions returns the permission set for a role. Pure lookup: an
// unknown role yields an empty set, never an error. The returned slice is a
// copy; callers cannot mutate the registry through it.
func RolePermissions(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
