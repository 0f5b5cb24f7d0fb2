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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/autochecks/pkg/models"
)

// Request parameterizes one DiscoverOnHost run.
type Request struct {
	Mode              models.DiscoveryMode
	Filters           *ServiceFilters // nil accepts everything
	OnError           models.OnError
	UseCachedSections bool
}

// transitionOrder fixes the order selection walks the transitions in.
//
//nolint:gochecknoglobals // read-only lookup table
var transitionOrder = []models.Transition{
	models.TransitionCustom,
	models.TransitionLegacy,
	models.TransitionActive,
	models.TransitionManual,
	models.TransitionVanished,
	models.TransitionOld,
	models.TransitionIgnored,
	models.TransitionNew,
	models.TransitionClusteredOld,
	models.TransitionClusteredNew,
	models.TransitionClusteredVanished,
}

// DiscoverOnHost rediscovers hostname and persists the outcome according to
// req.Mode. Failures are reported through the result's ErrorText.
func (r *Resolver) DiscoverOnHost(ctx context.Context, hostname string, req Request) *models.DiscoveryResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "discovery.DiscoverOnHost", trace.WithAttributes(
		attribute.String("host", hostname),
		attribute.String("mode", string(req.Mode)),
	))
	defer span.End()

	start := time.Now()
	result := &models.DiscoveryResult{}

	if !r.cfg.IsActive(hostname) {
		result.SetError("")
		return result
	}

	if req.Filters == nil {
		req.Filters = AcceptAll()
	}

	if err := r.discoverOnHost(ctx, hostname, req, result); err != nil {
		r.logger.Error().Err(err).Str("host", hostname).Str("mode", string(req.Mode)).Msg("Discovery failed")
		result.SetError(err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	recordDiscoverDuration(ctx, time.Since(start), string(req.Mode), result.Failed())

	if r.publisher != nil {
		if err := r.publisher.PublishHostDiscovered(ctx, hostname, req.Mode, result); err != nil {
			r.logger.Warn().Err(err).Str("host", hostname).Msg("Failed to publish discovery result")
		}
	}

	return result
}

func (r *Resolver) discoverOnHost(ctx context.Context, hostname string, req Request, result *models.DiscoveryResult) error {
	opts := Options{OnError: req.OnError, UseCachedSections: req.UseCachedSections}

	if req.Mode != models.ModeOnlyHostLabels {
		if err := r.rediscoverServices(ctx, hostname, req, opts, result); err != nil {
			return err
		}
	}

	if req.Mode == models.ModeRemove {
		return nil
	}

	q, err := r.DiscoverHostLabels(ctx, hostname, opts)
	if err != nil {
		return err
	}

	result.SelfNewHostLabels = len(q.New)
	result.SelfTotalHostLabels = len(q.Present)

	toSave := q.Present
	if req.Mode == models.ModeNew {
		toSave = append(append([]models.HostLabel{}, q.Present...), q.Vanished...)
	}

	return r.SaveHostLabels(hostname, toSave)
}

func (r *Resolver) rediscoverServices(ctx context.Context, hostname string, req Request, opts Options, result *models.DiscoveryResult) error {
	before, err := r.ownedAutochecks(hostname)
	if err != nil {
		return err
	}

	if req.Mode == models.ModeRefresh {
		removed, err := r.removeAutochecks(ctx, hostname)
		if err != nil {
			return err
		}

		result.SelfRemoved += removed
	}

	services, err := r.ServicesByTransition(ctx, hostname, opts)
	if err != nil {
		return err
	}

	selected, err := selectServices(services, req, result)
	if err != nil {
		return err
	}

	result.SelfTotal = result.SelfNew + result.SelfKept

	entries := make([]models.AutocheckEntry, 0, len(selected))
	for _, svc := range selected {
		entries = append(entries, svc.AutocheckEntry())
	}

	if r.cfg.IsCluster(hostname) {
		err = r.autochecks.SetAutochecksOfCluster(ctx, r.cfg.Nodes(hostname), hostname, entries,
			r.cfg.HostOfClusteredService, r.cfg.ServiceDescription)
	} else {
		err = r.autochecks.SetAutochecksOfRealHosts(ctx, hostname, entries)
	}

	if err != nil {
		return fmt.Errorf("write autochecks of %s: %w", hostname, err)
	}

	result.DiffText = diffText(before, selected)

	return nil
}

// selectServices decides which services are written back and fills the counters.
func selectServices(services models.ServicesByTransition, req Request, result *models.DiscoveryResult) ([]models.Service, error) {
	known := make(map[models.Transition]struct{}, len(transitionOrder))
	for _, t := range transitionOrder {
		known[t] = struct{}{}
	}

	for t := range services {
		if _, ok := known[t]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTransition, t)
		}
	}

	var selected []models.Service

	for _, t := range transitionOrder {
		for _, sn := range services[t] {
			svc := sn.Service

			switch t {
			case models.TransitionCustom, models.TransitionLegacy, models.TransitionActive, models.TransitionManual:
				// configured statically, never persisted
			case models.TransitionNew:
				if req.Mode.AddsNew() && req.Filters.New(svc.Description) {
					selected = append(selected, svc)
					result.SelfNew++
				}
			case models.TransitionOld, models.TransitionIgnored:
				selected = append(selected, svc)
				result.SelfKept++
			case models.TransitionVanished:
				if req.Mode.RemovesVanished() && req.Filters.Vanished(svc.Description) {
					result.SelfRemoved++
				} else {
					selected = append(selected, svc)
					result.SelfKept++
				}
			case models.TransitionClusteredOld:
				selected = append(selected, svc)
				result.ClusteredOld++
			case models.TransitionClusteredNew:
				selected = append(selected, svc)
				result.ClusteredNew++
			case models.TransitionClusteredVanished:
				selected = append(selected, svc)
				result.ClusteredVanished++
			}
		}
	}

	return selected, nil
}

// removeAutochecks drops what hostname owns from its own file, or from every
// node file when hostname is a cluster.
func (r *Resolver) removeAutochecks(ctx context.Context, hostname string) (int, error) {
	nodes := []string{hostname}
	if r.cfg.IsCluster(hostname) {
		nodes = r.cfg.Nodes(hostname)
	}

	total := 0

	for _, node := range nodes {
		n, err := r.autochecks.RemoveAutochecksOfHost(ctx, node, hostname, r.cfg.HostOfClusteredService, r.cfg.ServiceDescription)
		if err != nil {
			return total, fmt.Errorf("remove autochecks of %s from %s: %w", hostname, node, err)
		}

		total += n
	}

	return total, nil
}

// ownedAutochecks returns the persisted services attributed to hostname: its
// own file, or for a cluster the node entries the cluster owns.
func (r *Resolver) ownedAutochecks(hostname string) ([]models.Service, error) {
	if !r.cfg.IsCluster(hostname) {
		return r.persistedServices(hostname)
	}

	var out []models.Service

	for _, node := range r.cfg.Nodes(hostname) {
		services, err := r.persistedServices(node)
		if err != nil {
			return nil, err
		}

		for _, svc := range services {
			owner, err := r.cfg.HostOfClusteredService(node, svc.Description)
			if err != nil {
				return nil, err
			}

			if owner == hostname {
				out = append(out, svc)
			}
		}
	}

	return out, nil
}

func diffText(before, after []models.Service) string {
	beforeSet := descriptions(before)
	afterSet := descriptions(after)

	var lines []string

	for _, d := range sortedKeys(beforeSet) {
		if _, ok := afterSet[d]; !ok {
			lines = append(lines, "Removed service "+d)
		}
	}

	for _, d := range sortedKeys(afterSet) {
		if _, ok := beforeSet[d]; !ok {
			lines = append(lines, "Added service "+d)
		}
	}

	if len(lines) == 0 {
		return "Nothing was changed."
	}

	return strings.Join(lines, "\n")
}

func descriptions(services []models.Service) map[string]struct{} {
	out := make(map[string]struct{}, len(services))
	for _, svc := range services {
		out[svc.Description] = struct{}{}
	}

	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
