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

// -----------------------------------------------------------------------------
// Role Namespaces
//
// The customer portal and the admin portal define separate role vocabularies,
// and both contain names like "admin" and "viewer". A role is therefore always
// the (namespace, name) pair, never a bare string. Accepting an untagged role
// name and guessing its namespace is a latent privilege bug.
// -----------------------------------------------------------------------------

// Namespace identifies which portal a role belongs to.
type Namespace string

const (
	// NamespaceCustomer covers roles held by members of a customer tenant.
	NamespaceCustomer Namespace = "customer"

	// NamespaceAdmin covers roles held by operators of the admin portal.
	NamespaceAdmin Namespace = "admin"
)

// Role is a tagged role identifier. The zero value is not a valid role.
type Role struct {
	Namespace Namespace `json:"namespace"`
	Name      string    `json:"name"`
}

// String renders the role as namespace/name for logs and audit records.
func (r Role) String() string {
	return string(r.Namespace) + "/" + r.Name
}

// Customer portal roles.
var (
	RoleOwner     = Role{NamespaceCustomer, "owner"}
	RoleAdmin     = Role{NamespaceCustomer, "admin"}
	RoleDeveloper = Role{NamespaceCustomer, "developer"}
	RoleBilling   = Role{NamespaceCustomer, "billing"}
	RoleViewer    = Role{NamespaceCustomer, "viewer"}
)

// Admin portal roles.
var (
	RoleSuperAdmin   = Role{NamespaceAdmin, "super_admin"}
	RoleTenantAdmin  = Role{NamespaceAdmin, "tenant_admin"}
	RoleSupportAgent = Role{NamespaceAdmin, "support_agent"}
	RoleBillingAdmin = Role{NamespaceAdmin, "billing_admin"}
	RoleAdminViewer  = Role{NamespaceAdmin, "viewer"}
)

// CustomerRoles lists every declared customer portal role.
var CustomerRoles = []Role{RoleOwner, RoleAdmin, RoleDeveloper, RoleBilling, RoleViewer}

// AdminRoles lists every declared admin portal role.
var AdminRoles = []Role{RoleSuperAdmin, RoleTenantAdmin, RoleSupportAgent, RoleBillingAdmin, RoleAdminViewer}

// ParseRole resolves a (namespace, name) pair against the declared roles.
// Unknown pairs return false; they are not an error, they simply grant nothing.
func ParseRole(namespace, name string) (Role, bool) {
	r := Role{Namespace: Namespace(namespace), Name: name}
	if _, ok := rolePermissions[r]; ok {
		return r, true
	}
	return Role{}, false
}

// ActorType identifies the kind of actor behind a request.
type ActorType string

const (
	// ActorUser is a human user of either portal.
	ActorUser ActorType = "user"

	// ActorAPIKey is a programmatic caller authenticated with an API key.
	ActorAPIKey ActorType = "api_key"

	// ActorSystem is an internal system operation (bootstrap, cleanup jobs).
	ActorSystem ActorType = "system"
)
