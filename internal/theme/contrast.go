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

import (
	"math"
	"strconv"
	"strings"
)

// color is an sRGB color with 8-bit channels.
type color struct {
	r, g, b uint8
}

// parseHexColor accepts #rgb and #rrggbb. Anything else (keywords, rgb(),
// gradients, lengths) returns false and is excluded from contrast checking.
func parseHexColor(s string) (color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "#") {
		return color{}, false
	}
	hex := s[1:]

	switch len(hex) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = hex[i]
			expanded[2*i+1] = hex[i]
		}
		hex = string(expanded)
	case 6:
	default:
		return color{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color{}, false
	}
	return color{
		r: uint8(v >> 16),
		g: uint8(v >> 8),
		b: uint8(v),
	}, true
}

// relativeLuminance implements the WCAG 2.x formula: each sRGB channel is
// linearized, then weighted 0.2126/0.7152/0.0722.
func relativeLuminance(c color) float64 {
	lin := func(ch uint8) float64 {
		v := float64(ch) / 255.0
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

// contrastRatio returns (L_lighter + 0.05) / (L_darker + 0.05), in [1, 21].
func contrastRatio(a, b color) float64 {
	la := relativeLuminance(a)
	lb := relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
