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

// Package theme validates AgentSkin theme payloads before they are applied.
// Validation is pure: it never touches state, and applying a theme is a
// separate step gated on a valid result.
package theme

// Theme is an uploaded AgentSkin payload.
type Theme struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Author      string            `json:"author"`
	Description string            `json:"description,omitempty"`
	Variables   map[string]string `json:"variables"`
}

// RequiredVariables is the fixed set of 26 AgentSkin tokens every theme must
// define. The widget reads exactly these custom properties; a missing one
// falls through to the host page's styles, which is why absence is an error.
var RequiredVariables = []string{
	// background
	"--as-bg-primary",
	"--as-bg-secondary",
	"--as-bg-elevated",
	// glass surfaces
	"--as-glass-bg",
	"--as-glass-border",
	"--as-glass-blur",
	"--as-glass-opacity",
	// text
	"--as-text-primary",
	"--as-text-secondary",
	"--as-text-muted",
	"--as-text-inverse",
	// accent
	"--as-accent-primary",
	"--as-accent-hover",
	"--as-accent-active",
	"--as-accent-contrast",
	// shadow
	"--as-shadow-sm",
	"--as-shadow-md",
	"--as-shadow-lg",
	// radius
	"--as-radius-sm",
	"--as-radius-md",
	"--as-radius-lg",
	// spacing
	"--as-space-sm",
	"--as-space-md",
	"--as-space-lg",
	// typography
	"--as-font-family",
	"--as-font-size-base",
}

// contrastPair names two tokens whose resolved colors must meet a WCAG
// contrast ratio. Pairs whose values are not plain hex colors are skipped;
// glass surfaces composite at runtime and cannot be checked statically.
type contrastPair struct {
	fg, bg   string
	minRatio float64
}

var contrastPairs = []contrastPair{
	// normal text: WCAG AA 4.5:1
	{"--as-text-primary", "--as-bg-primary", 4.5},
	{"--as-text-secondary", "--as-bg-primary", 4.5},
	{"--as-text-primary", "--as-bg-elevated", 4.5},
	// large text / UI elements: 3:1
	{"--as-accent-contrast", "--as-accent-primary", 3.0},
	{"--as-text-muted", "--as-bg-primary", 3.0},
}
