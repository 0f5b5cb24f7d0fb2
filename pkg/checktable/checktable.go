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

// Package checktable builds the read-only table of configured services a
// check run executes for one host.
package checktable

import (
	"fmt"
	"sort"

	"github.com/carverauto/autochecks/pkg/models"
)

// FilterMode selects services by their cluster owner.
type FilterMode int

const (
	// FilterNone keeps services owned by the host itself.
	FilterNone FilterMode = iota
	// FilterOnlyClustered keeps services owned by a cluster of the host.
	FilterOnlyClustered
	// FilterIncludeClustered keeps everything. Cluster nodes use it to fetch
	// data for services they report on failover.
	FilterIncludeClustered
)

func (m FilterMode) String() string {
	switch m {
	case FilterNone:
		return "none"
	case FilterOnlyClustered:
		return "only-clustered"
	case FilterIncludeClustered:
		return "include-clustered"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// ParseFilterMode accepts the names produced by String.
func ParseFilterMode(s string) (FilterMode, error) {
	switch s {
	case "", "none":
		return FilterNone, nil
	case "only-clustered":
		return FilterOnlyClustered, nil
	case "include-clustered":
		return FilterIncludeClustered, nil
	default:
		return FilterNone, fmt.Errorf("%w: %q", ErrInvalidFilterMode, s)
	}
}

// CheckTable maps service IDs to configured services. It is never modified
// after construction.
type CheckTable struct {
	hostname string
	services map[models.ServiceID]models.ConfiguredService
}

func newCheckTable(hostname string, services map[models.ServiceID]models.ConfiguredService) *CheckTable {
	return &CheckTable{hostname: hostname, services: services}
}

// Hostname returns the host the table was built for.
func (t *CheckTable) Hostname() string {
	return t.hostname
}

func (t *CheckTable) Get(id models.ServiceID) (models.ConfiguredService, bool) {
	svc, ok := t.services[id]
	return svc, ok
}

func (t *CheckTable) Has(id models.ServiceID) bool {
	_, ok := t.services[id]
	return ok
}

func (t *CheckTable) Len() int {
	return len(t.services)
}

// Services returns the services sorted by ID.
func (t *CheckTable) Services() []models.ConfiguredService {
	out := make([]models.ConfiguredService, 0, len(t.services))
	for _, svc := range t.services {
		out = append(out, svc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })

	return out
}

// NeededCheckNames returns the distinct plugin names, sorted.
func (t *CheckTable) NeededCheckNames() []models.CheckPluginName {
	seen := make(map[models.CheckPluginName]struct{}, len(t.services))
	for id := range t.services {
		seen[id.CheckPluginName] = struct{}{}
	}

	out := make([]models.CheckPluginName, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
