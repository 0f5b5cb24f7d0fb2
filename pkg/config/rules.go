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

package config

import (
	"fmt"
	"regexp"

	"github.com/carverauto/autochecks/pkg/models"
)

// ParameterRule overlays check parameters of matching services.
type ParameterRule struct {
	Plugin    string      `json:"plugin" yaml:"plugin" toml:"plugin"`
	Hosts     []string    `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts"`
	HostRegex []string    `json:"host_regex,omitempty" yaml:"host_regex,omitempty" toml:"host_regex"`
	Items     []string    `json:"items,omitempty" yaml:"items,omitempty" toml:"items"`
	Value     interface{} `json:"value" yaml:"value" toml:"value"`
}

// DiscoveryRule supplies the discovery parameters of a plugin.
type DiscoveryRule struct {
	Plugin    string      `json:"plugin" yaml:"plugin" toml:"plugin"`
	Hosts     []string    `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts"`
	HostRegex []string    `json:"host_regex,omitempty" yaml:"host_regex,omitempty" toml:"host_regex"`
	Value     interface{} `json:"value" yaml:"value" toml:"value"`
}

// IgnoredServicesRule disables services by description pattern.
type IgnoredServicesRule struct {
	Hosts     []string `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts"`
	HostRegex []string `json:"host_regex,omitempty" yaml:"host_regex,omitempty" toml:"host_regex"`
	Services  []string `json:"services" yaml:"services" toml:"services"`
}

// IgnoredPluginsRule disables whole check plugins.
type IgnoredPluginsRule struct {
	Hosts     []string `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts"`
	HostRegex []string `json:"host_regex,omitempty" yaml:"host_regex,omitempty" toml:"host_regex"`
	Plugins   []string `json:"plugins" yaml:"plugins" toml:"plugins"`
}

// DiscoveryCheckRule configures the discovery check. A rule without a value
// disables the check for the matching hosts.
type DiscoveryCheckRule struct {
	Hosts     []string                     `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts"`
	HostRegex []string                     `json:"host_regex,omitempty" yaml:"host_regex,omitempty" toml:"host_regex"`
	Value     *models.DiscoveryCheckParams `json:"value,omitempty" yaml:"value,omitempty" toml:"value"`
}

// Rules are evaluated in order; the first matching rule wins unless noted.
type Rules struct {
	CheckParameters     []ParameterRule       `json:"check_parameters,omitempty" yaml:"check_parameters,omitempty" toml:"check_parameters"`
	DiscoveryParameters []DiscoveryRule       `json:"discovery_parameters,omitempty" yaml:"discovery_parameters,omitempty" toml:"discovery_parameters"`
	IgnoredServices     []IgnoredServicesRule `json:"ignored_services,omitempty" yaml:"ignored_services,omitempty" toml:"ignored_services"`
	IgnoredPlugins      []IgnoredPluginsRule  `json:"ignored_plugins,omitempty" yaml:"ignored_plugins,omitempty" toml:"ignored_plugins"`
	DiscoveryCheck      []DiscoveryCheckRule  `json:"discovery_check,omitempty" yaml:"discovery_check,omitempty" toml:"discovery_check"`
}

// patterns holds every compiled regular expression of the world, keyed by source.
type patterns map[string]*regexp.Regexp

func (p patterns) add(exprs ...string) error {
	for _, expr := range exprs {
		if _, ok := p[expr]; ok {
			continue
		}

		re, err := regexp.Compile("^(?:" + expr + ")")
		if err != nil {
			return fmt.Errorf("%w %q: %w", errInvalidPattern, expr, err)
		}

		p[expr] = re
	}

	return nil
}

// match reports whether s starts with a match of expr.
func (p patterns) match(expr, s string) bool {
	re, ok := p[expr]
	if !ok {
		var err error
		if re, err = regexp.Compile("^(?:" + expr + ")"); err != nil {
			return false
		}
	}

	return re.MatchString(s)
}

func (p patterns) any(exprs []string, s string) bool {
	for _, expr := range exprs {
		if p.match(expr, s) {
			return true
		}
	}

	return false
}

// hostMatches treats empty conditions as "all hosts".
func (p patterns) hostMatches(hosts, regexes []string, host string) bool {
	if len(hosts) == 0 && len(regexes) == 0 {
		return true
	}

	for _, h := range hosts {
		if h == host {
			return true
		}
	}

	return p.any(regexes, host)
}

func (r *Rules) compile(p patterns) error {
	for i := range r.CheckParameters {
		rule := &r.CheckParameters[i]
		if err := p.add(rule.HostRegex...); err != nil {
			return err
		}

		if err := p.add(rule.Items...); err != nil {
			return err
		}
	}

	for i := range r.DiscoveryParameters {
		if err := p.add(r.DiscoveryParameters[i].HostRegex...); err != nil {
			return err
		}
	}

	for i := range r.IgnoredServices {
		rule := &r.IgnoredServices[i]
		if err := p.add(rule.HostRegex...); err != nil {
			return err
		}

		if err := p.add(rule.Services...); err != nil {
			return err
		}
	}

	for i := range r.IgnoredPlugins {
		if err := p.add(r.IgnoredPlugins[i].HostRegex...); err != nil {
			return err
		}
	}

	for i := range r.DiscoveryCheck {
		if err := p.add(r.DiscoveryCheck[i].HostRegex...); err != nil {
			return err
		}
	}

	return nil
}
