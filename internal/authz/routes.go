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

import "strings"

// RouteClass partitions every route into exactly one of three classes.
type RouteClass string

const (
	// RoutePublic is accessible to everyone, including anonymous callers.
	RoutePublic RouteClass = "public"

	// RouteCustomer requires at least one customer namespace role.
	RouteCustomer RouteClass = "customer"

	// RouteAdmin requires an admin namespace role other than admin/viewer.
	RouteAdmin RouteClass = "admin"
)

// customerPrefixes are the customer portal surfaces. Everything under /admin
// is the admin portal; anything matching neither table is public.
var customerPrefixes = []string{
	"/dashboard",
	"/agents",
	"/keys",
	"/team",
	"/billing",
	"/settings",
	"/usage",
	"/themes",
}

const adminPrefix = "/admin"

// ClassifyRoute maps a route path to its class. The classification is a
// prefix table, not a role check: the same path always lands in the same
// class regardless of who asks.
func ClassifyRoute(route string) RouteClass {
	if route == adminPrefix || strings.HasPrefix(route, adminPrefix+"/") {
		return RouteAdmin
	}
	for _, p := range customerPrefixes {
		if route == p || strings.HasPrefix(route, p+"/") {
			return RouteCustomer
		}
	}
	return RoutePublic
}

// adminGrantingRoles can open the admin portal. The admin namespace viewer
// role deliberately cannot: holding only admin/viewer grants nothing here.
var adminGrantingRoles = map[Role]struct{}{
	RoleSuperAdmin:   {},
	RoleTenantAdmin:  {},
	RoleSupportAgent: {},
	RoleBillingAdmin: {},
}

// CanAccessRoute decides route eligibility for a role set. Customer roles
// never open admin routes and admin roles never open customer routes; the
// two namespaces are mutually exclusive at the portal boundary.
func CanAccessRoute(roles []Role, route string) bool {
	switch ClassifyRoute(route) {
	case RoutePublic:
		return true
	case RouteCustomer:
		return HasAnyNamespace(roles, NamespaceCustomer)
	case RouteAdmin:
		for _, role := range roles {
			if _, ok := adminGrantingRoles[role]; ok {
				return true
			}
		}
		return false
	}
	return false
}
