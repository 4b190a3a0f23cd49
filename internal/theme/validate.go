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
	"fmt"
	"strings"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	ErrMissingVariable   ErrorKind = "missing_variable"
	ErrSecurityViolation ErrorKind = "security_violation"
	ErrContrastFailure   ErrorKind = "contrast_failure"
)

// Error is one validation failure. Security rejections and contrast failures
// name the violating variable (and ratio) so theme authors can fix them.
type Error struct {
	Kind     ErrorKind `json:"kind"`
	Variable string    `json:"variable"`
	Message  string    `json:"message"`
}

// Result is the outcome of validating a theme payload.
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Error `json:"errors"`
}

// Validate checks a theme payload for completeness, injection safety, and
// WCAG contrast. One error per violation; a theme missing three variables
// gets three errors. Pure function, no side effects.
func Validate(t Theme) Result {
	var errs []Error

	for _, name := range RequiredVariables {
		if _, ok := t.Variables[name]; !ok {
			errs = append(errs, Error{
				Kind:     ErrMissingVariable,
				Variable: name,
				Message:  fmt.Sprintf("required variable %s is not defined", name),
			})
		}
	}

	// url( anywhere in a value can pull remote resources into the host page.
	for name, value := range t.Variables {
		if strings.Contains(strings.ToLower(value), "url(") {
			errs = append(errs, Error{
				Kind:     ErrSecurityViolation,
				Variable: name,
				Message:  fmt.Sprintf("variable %s contains url(), remote resources are not allowed", name),
			})
		}
	}

	for _, pair := range contrastPairs {
		fg, okFg := parseHexColor(t.Variables[pair.fg])
		bg, okBg := parseHexColor(t.Variables[pair.bg])
		if !okFg || !okBg {
			continue
		}
		if ratio := contrastRatio(fg, bg); ratio < pair.minRatio {
			errs = append(errs, Error{
				Kind:     ErrContrastFailure,
				Variable: pair.fg,
				Message: fmt.Sprintf("%s on %s has contrast %.2f:1, below the required %.1f:1",
					pair.fg, pair.bg, ratio, pair.minRatio),
			})
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
