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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/carverauto/autochecks/pkg/models"
)

// Monitoring states of a check result.
const (
	StateOK      = 0
	StateWarn    = 1
	StateCrit    = 2
	StateUnknown = 3
)

const rediscoveryScheduled = "rediscovery scheduled"

// CheckResult is the outcome of the periodic discovery check.
type CheckResult struct {
	State   int
	Summary string
	Details []string
}

func (c *CheckResult) String() string {
	return fmt.Sprintf("[%d] %s", c.State, c.Summary)
}

type transitionCheck struct {
	transition models.Transition
	title      string
	severity   func(*models.DiscoveryCheckParams) int
	filter     func(*ServiceFilters) ServiceFilter
	modes      []models.DiscoveryMode
}

//nolint:gochecknoglobals // read-only lookup table
var transitionChecks = []transitionCheck{
	{
		transition: models.TransitionNew,
		title:      "unmonitored",
		severity:   (*models.DiscoveryCheckParams).UnmonitoredSeverity,
		filter:     func(f *ServiceFilters) ServiceFilter { return f.New },
		modes:      []models.DiscoveryMode{models.ModeNew, models.ModeFixAll, models.ModeRefresh},
	},
	{
		transition: models.TransitionVanished,
		title:      "vanished",
		severity:   (*models.DiscoveryCheckParams).VanishedSeverity,
		filter:     func(f *ServiceFilters) ServiceFilter { return f.Vanished },
		modes:      []models.DiscoveryMode{models.ModeRemove, models.ModeFixAll, models.ModeRefresh},
	},
}

// CheckDiscovery compares the current state of hostname with its autochecks
// and, when configured, queues the host for unattended rediscovery.
func (r *Resolver) CheckDiscovery(ctx context.Context, hostname string) *CheckResult {
	result, err := r.checkDiscovery(ctx, hostname)
	if err != nil {
		return &CheckResult{State: StateUnknown, Summary: err.Error()}
	}

	return result
}

func (r *Resolver) checkDiscovery(ctx context.Context, hostname string) (*CheckResult, error) {
	params := r.cfg.DiscoveryCheckParameters(hostname)
	if params == nil {
		return nil, fmt.Errorf("%w for %s", ErrDiscoveryDisabled, hostname)
	}

	rediscovery := params.InventoryRediscovery

	filters, err := NewServiceFilters(rediscovery)
	if err != nil {
		return nil, err
	}

	opts := Options{OnError: models.OnErrorRaise, UseCachedSections: true}

	services, err := r.ServicesByTransition(ctx, hostname, opts)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{}
	needRediscovery := false

	var infotexts []string

	for _, tc := range transitionChecks {
		entries := services[tc.transition]
		if len(entries) == 0 {
			infotexts = append(infotexts, fmt.Sprintf("no %s services found", tc.title))
			continue
		}

		perPlugin := make(map[string]int)
		unfiltered := false
		accept := tc.filter(filters)

		for _, sn := range entries {
			perPlugin[string(sn.Service.CheckPluginName)]++

			if accept(sn.Service.Description) {
				unfiltered = true
			}

			result.Details = append(result.Details,
				fmt.Sprintf("%s service: %s: %s", tc.title, sn.Service.CheckPluginName, sn.Service.Description))
		}

		if unfiltered && rediscovery != nil && modeIn(rediscovery.EffectiveMode(), tc.modes) {
			needRediscovery = true
		}

		result.State = worst(result.State, tc.severity(params))
		infotexts = append(infotexts, fmt.Sprintf("%d %s services (%s)", len(entries), tc.title, pluginCounts(perPlugin)))
	}

	labels, err := r.DiscoverHostLabels(ctx, hostname, opts)
	if err != nil {
		return nil, err
	}

	if n := len(labels.New); n > 0 {
		result.State = worst(result.State, params.NewHostLabelSeverity())
		infotexts = append(infotexts, fmt.Sprintf("%d new host labels", n))

		if rediscovery != nil && modeIn(rediscovery.EffectiveMode(), transitionChecks[0].modes) {
			needRediscovery = true
		}
	} else {
		infotexts = append(infotexts, "no new host labels")
	}

	if needRediscovery && r.scheduleRediscovery(ctx, hostname) {
		infotexts = append(infotexts, rediscoveryScheduled)
	}

	result.Summary = strings.Join(infotexts, ", ")

	return result, nil
}

// scheduleRediscovery flags hostname, or every node of a cluster.
func (r *Resolver) scheduleRediscovery(ctx context.Context, hostname string) bool {
	if r.marker == nil {
		return false
	}

	hosts := []string{hostname}
	if r.cfg.IsCluster(hostname) {
		hosts = r.cfg.Nodes(hostname)
	}

	for _, h := range hosts {
		if err := r.marker.Add(h); err != nil {
			r.logger.Error().Err(err).Str("host", h).Msg("Failed to queue host for rediscovery")
			return false
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishRediscoveryScheduled(ctx, hostname, "discovery check found changes"); err != nil {
			r.logger.Warn().Err(err).Str("host", hostname).Msg("Failed to publish rediscovery event")
		}
	}

	return true
}

func pluginCounts(perPlugin map[string]int) string {
	names := make([]string, 0, len(perPlugin))
	for name := range perPlugin {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, perPlugin[name]))
	}

	return strings.Join(parts, ", ")
}

func modeIn(mode models.DiscoveryMode, modes []models.DiscoveryMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}

	return false
}

func worst(a, b int) int {
	if b > a {
		return b
	}

	return a
}
