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
	"errors"
	"sort"
)

// Domain errors
var (
	ErrAccessDenied = errors.New("access denied")
)

// PermissionUnion computes the set union of permissions over a role set.
// The result is sorted and duplicate-free, so it is independent of role
// order and of duplicate roles in the input. Pure function, safe to call
// concurrently.
func PermissionUnion(roles []Role) []Permission {
	seen := make(map[Permission]struct{})
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			seen[p] = struct{}{}
		}
	}

	union := make([]Permission, 0, len(seen))
	for p := range seen {
		union = append(union, p)
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
	return union
}

// HasPermission reports whether any role in the set grants the permission.
func HasPermission(roles []Role, perm Permission) bool {
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// HasAnyNamespace reports whether the role set contains at least one declared
// role from the given namespace.
func HasAnyNamespace(roles []Role, ns Namespace) bool {
	for _, role := range roles {
		if role.Namespace != ns {
			continue
		}
		if _, ok := rolePermissions[role]; ok {
			return true
		}
	}
	return false
}

// Require returns ErrAccessDenied unless the role set grants the permission.
// Handlers use this so a denial is always distinct from not-found.
func Require(roles []Role, perm Permission) error {
	if !HasPermission(roles, perm) {
		return ErrAccessDenied
	}
	return nil
}
