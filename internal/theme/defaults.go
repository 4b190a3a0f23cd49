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

package theme

// Shipped default themes. These are the fallbacks when a tenant has no custom
// theme; every one of them must pass Validate, which the test suite pins.

// Light is the default light theme.
var Light = Theme{
	ID:      "default-light",
	Name:    "Light",
	Version: "1.0.0",
	Author:  "AgentVox",
	Variables: map[string]string{
		"--as-bg-primary":      "#ffffff",
		"--as-bg-secondary":    "#f4f5f9",
		"--as-bg-elevated":     "#fafbfe",
		"--as-glass-bg":        "rgba(255, 255, 255, 0.65)",
		"--as-glass-border":    "rgba(26, 26, 46, 0.12)",
		"--as-glass-blur":      "12px",
		"--as-glass-opacity":   "0.65",
		"--as-text-primary":    "#1a1a2e",
		"--as-text-secondary":  "#44475a",
		"--as-text-muted":      "#6b6e80",
		"--as-text-inverse":    "#ffffff",
		"--as-accent-primary":  "#4f46e5",
		"--as-accent-hover":    "#4338ca",
		"--as-accent-active":   "#3730a3",
		"--as-accent-contrast": "#ffffff",
		"--as-shadow-sm":       "0 1px 2px rgba(16, 18, 35, 0.08)",
		"--as-shadow-md":       "0 4px 12px rgba(16, 18, 35, 0.12)",
		"--as-shadow-lg":       "0 12px 32px rgba(16, 18, 35, 0.18)",
		"--as-radius-sm":       "6px",
		"--as-radius-md":       "10px",
		"--as-radius-lg":       "16px",
		"--as-space-sm":        "8px",
		"--as-space-md":        "16px",
		"--as-space-lg":        "24px",
		"--as-font-family":     "'Inter', system-ui, sans-serif",
		"--as-font-size-base":  "15px",
	},
}

// Dark is the default dark theme.
var Dark = Theme{
	ID:      "default-dark",
	Name:    "Dark",
	Version: "1.0.0",
	Author:  "AgentVox",
	Variables: map[string]string{
		"--as-bg-primary":      "#0f1117",
		"--as-bg-secondary":    "#171a23",
		"--as-bg-elevated":     "#1d212c",
		"--as-glass-bg":        "rgba(23, 26, 35, 0.7)",
		"--as-glass-border":    "rgba(242, 243, 247, 0.1)",
		"--as-glass-blur":      "14px",
		"--as-glass-opacity":   "0.7",
		"--as-text-primary":    "#f2f3f7",
		"--as-text-secondary":  "#c3c7d4",
		"--as-text-muted":      "#8b90a1",
		"--as-text-inverse":    "#0f1117",
		"--as-accent-primary":  "#818cf8",
		"--as-accent-hover":    "#a5b0fb",
		"--as-accent-active":   "#6470f0",
		"--as-accent-contrast": "#0f1117",
		"--as-shadow-sm":       "0 1px 2px rgba(0, 0, 0, 0.4)",
		"--as-shadow-md":       "0 4px 12px rgba(0, 0, 0, 0.5)",
		"--as-shadow-lg":       "0 12px 32px rgba(0, 0, 0, 0.6)",
		"--as-radius-sm":       "6px",
		"--as-radius-md":       "10px",
		"--as-radius-lg":       "16px",
		"--as-space-sm":        "8px",
		"--as-space-md":        "16px",
		"--as-space-lg":        "24px",
		"--as-font-family":     "'Inter', system-ui, sans-serif",
		"--as-font-size-base":  "15px",
	},
}

// HighContrast is the accessibility-first theme.
var HighContrast = Theme{
	ID:      "default-high-contrast",
	Name:    "High Contrast",
	Version: "1.0.0",
	Author:  "AgentVox",
	Variables: map[string]string{
		"--as-bg-primary":      "#000000",
		"--as-bg-secondary":    "#0a0a0a",
		"--as-bg-elevated":     "#121212",
		"--as-glass-bg":        "rgba(0, 0, 0, 0.9)",
		"--as-glass-border":    "rgba(255, 255, 255, 0.6)",
		"--as-glass-blur":      "0px",
		"--as-glass-opacity":   "0.9",
		"--as-text-primary":    "#ffffff",
		"--as-text-secondary":  "#e8e8e8",
		"--as-text-muted":      "#bdbdbd",
		"--as-text-inverse":    "#000000",
		"--as-accent-primary":  "#ffd500",
		"--as-accent-hover":    "#ffe34d",
		"--as-accent-active":   "#e6c000",
		"--as-accent-contrast": "#000000",
		"--as-shadow-sm":       "none",
		"--as-shadow-md":       "none",
		"--as-shadow-lg":       "none",
		"--as-radius-sm":       "2px",
		"--as-radius-md":       "4px",
		"--as-radius-lg":       "6px",
		"--as-space-sm":        "8px",
		"--as-space-md":        "16px",
		"--as-space-lg":        "24px",
		"--as-font-family":     "system-ui, sans-serif",
		"--as-font-size-base":  "16px",
	},
}

// Defaults lists the shipped themes in display order.
var Defaults = []Theme{Light, Dark, HighContrast}
