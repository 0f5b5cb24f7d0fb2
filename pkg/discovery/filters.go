/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package discovery

import (
	"fmt"
	"regexp"

	"github.com/carverauto/autochecks/pkg/models"
)

// ServiceFilter decides by description whether a service may be changed.
type ServiceFilter func(description string) bool

// ServiceFilters restricts which new services are added and which vanished
// services are removed.
type ServiceFilters struct {
	New      ServiceFilter
	Vanished ServiceFilter
}

func acceptAll(string) bool { return true }

// AcceptAll returns filters letting every service through.
func AcceptAll() *ServiceFilters {
	return &ServiceFilters{New: acceptAll, Vanished: acceptAll}
}

// NewServiceFilters builds the filters configured in params. Without any
// filter configuration every service is accepted.
func NewServiceFilters(params *models.RediscoveryParams) (*ServiceFilters, error) {
	if params == nil {
		return AcceptAll(), nil
	}

	settings := params.ServiceFilters

	switch {
	case settings != nil && settings.Combined != nil:
		f, err := compileFilter(settings.Combined.ServiceWhitelist, settings.Combined.ServiceBlacklist)
		if err != nil {
			return nil, err
		}

		return &ServiceFilters{New: f, Vanished: f}, nil

	case settings != nil && settings.Dedicated != nil:
		d := settings.Dedicated

		newFilter, err := compileFilter(d.ServiceWhitelist, d.ServiceBlacklist)
		if err != nil {
			return nil, err
		}

		vanishedFilter, err := compileFilter(d.VanishedServiceWhitelist, d.VanishedServiceBlacklist)
		if err != nil {
			return nil, err
		}

		return &ServiceFilters{New: newFilter, Vanished: vanishedFilter}, nil

	case len(params.ServiceWhitelist) > 0 || len(params.ServiceBlacklist) > 0:
		f, err := compileFilter(params.ServiceWhitelist, params.ServiceBlacklist)
		if err != nil {
			return nil, err
		}

		return &ServiceFilters{New: f, Vanished: f}, nil
	}

	return AcceptAll(), nil
}

// compileFilter anchors every pattern at the start of the description.
func compileFilter(whitelist, blacklist []string) (ServiceFilter, error) {
	white, err := compilePatterns(whitelist)
	if err != nil {
		return nil, err
	}

	black, err := compilePatterns(blacklist)
	if err != nil {
		return nil, err
	}

	return func(description string) bool {
		if len(white) > 0 && !matchesAny(white, description) {
			return false
		}

		return !matchesAny(black, description)
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")")
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidFilterRegexp, p, err)
		}

		out = append(out, re)
	}

	return out, nil
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}

	return false
}
