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
	"errors"
	"fmt"
	"sort"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/checktable"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

const (
	customPluginName models.CheckPluginName = "custom"
	activePluginName models.CheckPluginName = "active"
)

// Options control how services are discovered.
type Options struct {
	OnError           models.OnError
	UseCachedSections bool
}

// ResolverConfig wires a Resolver to its collaborators.
type ResolverConfig struct {
	Hosts         HostConfig
	Registry      *Registry
	Sections      SectionFetcher
	Autochecks    *autochecks.Manager
	CheckTable    CheckTableSource
	HostLabelsDir string
	Marker        Marker    // optional, receives hosts to rediscover
	Publisher     Publisher // optional
	Logger        logger.Logger
}

// Resolver computes the complete, classified service set of hosts and clusters.
type Resolver struct {
	cfg        HostConfig
	registry   *Registry
	sections   SectionFetcher
	autochecks *autochecks.Manager
	checkTable CheckTableSource
	labelsDir  string
	marker     Marker
	publisher  Publisher
	logger     logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(c ResolverConfig) *Resolver {
	return &Resolver{
		cfg:        c.Hosts,
		registry:   c.Registry,
		sections:   c.Sections,
		autochecks: c.Autochecks,
		checkTable: c.CheckTable,
		labelsDir:  c.HostLabelsDir,
		marker:     c.Marker,
		publisher:  c.Publisher,
		logger:     c.Logger,
	}
}

// entry is one row of a service table.
type entry struct {
	transition models.Transition
	service    models.Service
	nodes      []string
}

// serviceTable is a map keyed by ServiceID that remembers insertion order.
type serviceTable struct {
	keys []models.ServiceID
	rows map[models.ServiceID]*entry
}

func newServiceTable() *serviceTable {
	return &serviceTable{rows: make(map[models.ServiceID]*entry)}
}

func (t *serviceTable) get(id models.ServiceID) (*entry, bool) {
	e, ok := t.rows[id]
	return e, ok
}

func (t *serviceTable) set(id models.ServiceID, e *entry) {
	if _, ok := t.rows[id]; !ok {
		t.keys = append(t.keys, id)
	}

	t.rows[id] = e
}

func (t *serviceTable) each(fn func(id models.ServiceID, e *entry)) {
	for _, id := range t.keys {
		fn(id, t.rows[id])
	}
}

func (t *serviceTable) group() models.ServicesByTransition {
	out := make(models.ServicesByTransition)

	t.each(func(_ models.ServiceID, e *entry) {
		out[e.transition] = append(out[e.transition], models.ServiceWithNodes{Service: e.service, Nodes: e.nodes})
	})

	for _, services := range out {
		sort.SliceStable(services, func(i, j int) bool {
			return services[i].Service.ID().Less(services[j].Service.ID())
		})
	}

	return out
}

// ServicesByTransition resolves every service of hostname and groups them by
// their classification.
func (r *Resolver) ServicesByTransition(ctx context.Context, hostname string, opts Options) (models.ServicesByTransition, error) {
	var (
		table *serviceTable
		err   error
	)

	if r.cfg.IsCluster(hostname) {
		table, err = r.clusterServices(ctx, hostname, opts)
	} else {
		table, err = r.nodeServices(ctx, hostname, opts)
	}

	if err != nil {
		return nil, err
	}

	if err := r.mergeConfiguredServices(hostname, table); err != nil {
		return nil, err
	}

	r.reclassifyIgnored(hostname, table)

	grouped := table.group()

	counts := make(map[string]int, len(grouped))
	for transition, services := range grouped {
		counts[string(transition)] = len(services)
	}

	recordTransitions(ctx, counts)

	return grouped, nil
}

// nodeServices classifies the services of a real host.
func (r *Resolver) nodeServices(ctx context.Context, hostname string, opts Options) (*serviceTable, error) {
	q, err := r.qualifyServices(ctx, hostname, opts)
	if err != nil {
		return nil, err
	}

	table := newServiceTable()

	for _, qs := range q.Chain() {
		svc := qs.Value

		owner, err := r.cfg.HostOfClusteredService(hostname, svc.Description)
		if err != nil {
			return nil, fmt.Errorf("owner of %q on %s: %w", svc.Description, hostname, err)
		}

		transition := qs.Transition

		if owner != hostname {
			if r.cfg.ServiceIgnored(owner, svc.CheckPluginName, svc.Description) {
				transition = models.TransitionIgnored
			} else {
				transition = transition.Clustered()
			}
		}

		table.set(svc.ID(), &entry{transition: transition, service: svc, nodes: []string{hostname}})
	}

	return table, nil
}

// qualifyServices reconciles what the plugins find now with what is persisted.
func (r *Resolver) qualifyServices(ctx context.Context, hostname string, opts Options) (*QualifiedDiscovery[models.Service], error) {
	discovered, err := r.discoverServices(ctx, hostname, opts)
	if err != nil {
		return nil, err
	}

	persisted, err := r.persistedServices(hostname)
	if err != nil {
		return nil, err
	}

	return Qualify(persisted, discovered, models.Service.ID), nil
}

// discoverServices runs every candidate plugin against the sections of hostname.
func (r *Resolver) discoverServices(ctx context.Context, hostname string, opts Options) ([]models.Service, error) {
	hostSections, mgmtSections, err := r.fetchSections(ctx, hostname, opts.UseCachedSections)
	if err != nil {
		return nil, err
	}

	var services []models.Service

	for _, name := range r.registry.Candidates(hostSections, mgmtSections) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.cfg.CheckPluginIgnored(hostname, name) {
			continue
		}

		plugin, err := r.registry.Get(name)
		if err != nil {
			return nil, err
		}

		available := hostSections
		if name.IsManagement() {
			available = mgmtSections
		}

		params := r.cfg.DiscoveryParameters(hostname, name)

		candidates, err := plugin.Discover(ctx, sectionsFor(plugin, available), params)
		if err != nil {
			if err := r.handlePluginError(ctx, hostname, &PluginError{Plugin: name, Err: err}, opts.OnError); err != nil {
				return nil, err
			}

			continue
		}

		for _, c := range candidates {
			description, err := r.describe(hostname, name, c.Item)
			if err != nil {
				r.logger.Error().
					Err(err).
					Str("host", hostname).
					Str("plugin", string(name)).
					Str("item", c.Item.String()).
					Msg("Dropping discovered service without valid description")

				continue
			}

			services = append(services, models.Service{
				CheckPluginName: name,
				Item:            c.Item,
				Description:     description,
				Parameters:      c.Parameters,
				ServiceLabels:   c.ServiceLabels.Clone(),
			})
		}
	}

	return services, nil
}

func (r *Resolver) fetchSections(ctx context.Context, hostname string, useCache bool) (models.Sections, models.Sections, error) {
	hostSections, err := r.sections.FetchSections(ctx, hostname, models.SourceHost, useCache)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch sections of %s: %w", hostname, err)
	}

	mgmtSections := models.Sections{}

	if r.cfg.HasManagementBoard(hostname) {
		mgmtSections, err = r.sections.FetchSections(ctx, hostname, models.SourceManagement, useCache)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch management sections of %s: %w", hostname, err)
		}
	}

	return hostSections, mgmtSections, nil
}

func (r *Resolver) handlePluginError(ctx context.Context, hostname string, err *PluginError, policy models.OnError) error {
	recordPluginError(ctx, string(err.Plugin), string(policy))

	switch policy {
	case models.OnErrorRaise:
		return err
	case models.OnErrorWarn:
		r.logger.Warn().Err(err.Err).Str("host", hostname).Str("plugin", string(err.Plugin)).Msg("Discovery plugin failed")
	default:
		r.logger.Debug().Err(err.Err).Str("host", hostname).Str("plugin", string(err.Plugin)).Msg("Ignoring discovery plugin failure")
	}

	return nil
}

// describe computes a description and rejects empty ones.
func (r *Resolver) describe(hostname string, plugin models.CheckPluginName, item models.Item) (string, error) {
	description, err := r.cfg.ServiceDescription(hostname, plugin, item)
	if err != nil {
		return "", err
	}

	if description == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDescription, models.ServiceID{CheckPluginName: plugin, Item: item})
	}

	return description, nil
}

// persistedServices converts the stored autochecks of hostname into services.
func (r *Resolver) persistedServices(hostname string) ([]models.Service, error) {
	entries, err := r.autochecks.RawAutochecks(hostname)
	if err != nil {
		return nil, err
	}

	services := make([]models.Service, 0, len(entries))

	for _, e := range entries {
		description, err := r.describe(hostname, e.CheckPluginName, e.Item)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("host", hostname).
				Str("service_id", e.ID().String()).
				Msg("Ignoring persisted autocheck without valid description")

			continue
		}

		services = append(services, models.Service{
			CheckPluginName: e.CheckPluginName,
			Item:            e.Item,
			Description:     description,
			Parameters:      e.Parameters,
			ServiceLabels:   e.ServiceLabels.Clone(),
		})
	}

	return services, nil
}

// mergeConfiguredServices adds manual, custom and active checks. They replace
// discovered services with the same identity.
func (r *Resolver) mergeConfiguredServices(hostname string, table *serviceTable) error {
	if r.checkTable != nil {
		manual, err := r.checkTable.GetCheckTable(hostname, checktable.Options{
			FilterMode:     checktable.FilterNone,
			SkipAutochecks: true,
			SkipIgnored:    true,
			UseCache:       true,
		})
		if err != nil {
			return fmt.Errorf("manual checks of %s: %w", hostname, err)
		}

		for _, cs := range manual.Services() {
			svc := models.Service{
				CheckPluginName: cs.CheckPluginName,
				Item:            cs.Item,
				Description:     cs.Description,
				Parameters:      models.Literal(cs.Parameters),
				ServiceLabels:   cs.ServiceLabels.Clone(),
			}

			table.set(svc.ID(), &entry{transition: models.TransitionManual, service: svc, nodes: []string{hostname}})
		}
	}

	for _, cc := range r.cfg.CustomChecks(hostname) {
		svc := models.Service{
			CheckPluginName: customPluginName,
			Item:            models.SomeItem(cc.Description),
			Description:     cc.Description,
			Parameters: models.Literal(map[string]interface{}{
				"service_description": cc.Description,
				"command_line":        cc.CommandLine,
			}),
		}

		table.set(svc.ID(), &entry{transition: models.TransitionCustom, service: svc, nodes: []string{hostname}})
	}

	for _, ac := range r.cfg.ActiveChecks(hostname) {
		svc := models.Service{
			CheckPluginName: models.CheckPluginName(ac.Name),
			Item:            models.SomeItem(ac.Description),
			Description:     ac.Description,
			Parameters:      models.Literal(ac.Parameters),
		}

		id := models.ServiceID{CheckPluginName: activePluginName, Item: models.SomeItem(ac.Description)}

		table.set(id, &entry{transition: models.TransitionActive, service: svc, nodes: []string{hostname}})
	}

	return nil
}

// reclassifyIgnored applies the host's ignore rules to everything not
// configured as a legacy, active or custom check.
func (r *Resolver) reclassifyIgnored(hostname string, table *serviceTable) {
	table.each(func(_ models.ServiceID, e *entry) {
		switch e.transition {
		case models.TransitionLegacy, models.TransitionActive, models.TransitionCustom:
			return
		default:
		}

		if r.cfg.ServiceIgnored(hostname, e.service.CheckPluginName, e.service.Description) {
			e.transition = models.TransitionIgnored
		}
	})
}

// IsPluginError reports whether err came from a discovery plugin.
func IsPluginError(err error) bool {
	var pe *PluginError
	return errors.As(err, &pe)
}
