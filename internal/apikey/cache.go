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

package apikey

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ValidityCache is a bounded cache of key records in front of the
// authoritative store, keyed by secret hash. It stores records, not
// authentication decisions: time-dependent checks (grace window, revocation)
// run against the record on every lookup, and lifecycle transitions
// invalidate the entry so a cached "active" record never outlives the
// store's state.
type ValidityCache struct {
	entries *lru.Cache[string, *Key]
}

// NewValidityCache creates a cache holding at most size records.
func NewValidityCache(size int) (*ValidityCache, error) {
	entries, err := lru.New[string, *Key](size)
	if err != nil {
		return nil, err
	}
	return &ValidityCache{entries: entries}, nil
}

// Get returns the cached record for a secret hash, or nil.
func (c *ValidityCache) Get(hash string) *Key {
	if key, ok := c.entries.Get(hash); ok {
		return key
	}
	return nil
}

// Put caches a record under its secret hash.
func (c *ValidityCache) Put(hash string, key *Key) {
	c.entries.Add(hash, key)
}

// Invalidate drops the record for a secret hash. Called on every revocation
// and rotation before the mutation is considered complete.
func (c *ValidityCache) Invalidate(hash string) {
	c.entries.Remove(hash)
}

// Len returns the number of cached records.
func (c *ValidityCache) Len() int {
	return c.entries.Len()
}
