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
	"sort"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
	"github.com/carverauto/autochecks/pkg/params"
)

// PluginCatalog describes the check plugins known to the process.
type PluginCatalog interface {
	ServiceNameTemplate(name models.CheckPluginName) (string, bool)
	CheckDefaults(name models.CheckPluginName) map[string]interface{}
}

// StaticCheck is a manually configured service.
type StaticCheck struct {
	Plugin     string      `json:"plugin" yaml:"plugin" toml:"plugin"`
	Item       *string     `json:"item,omitempty" yaml:"item,omitempty" toml:"item"`
	Parameters interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters"`
}

func (s StaticCheck) item() models.Item {
	if s.Item == nil {
		return models.NoItem()
	}

	return models.SomeItem(*s.Item)
}

// SNMPHost overrides the SNMP defaults for one host.
type SNMPHost struct {
	Community string   `json:"community,omitempty" yaml:"community,omitempty" toml:"community"`
	Port      uint16   `json:"port,omitempty" yaml:"port,omitempty" toml:"port"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty" toml:"version"`
	Tables    []string `json:"tables,omitempty" yaml:"tables,omitempty" toml:"tables"`
}

// HostSpec configures one real host.
type HostSpec struct {
	Address         string               `json:"address,omitempty" yaml:"address,omitempty" toml:"address"`
	Disabled        bool                 `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled"`
	PingOnly        bool                 `json:"ping_only,omitempty" yaml:"ping_only,omitempty" toml:"ping_only"`
	ManagementBoard bool                 `json:"management_board,omitempty" yaml:"management_board,omitempty" toml:"management_board"`
	SNMP            *SNMPHost            `json:"snmp,omitempty" yaml:"snmp,omitempty" toml:"snmp"`
	StaticChecks    []StaticCheck        `json:"static_checks,omitempty" yaml:"static_checks,omitempty" toml:"static_checks"`
	CustomChecks    []models.CustomCheck `json:"custom_checks,omitempty" yaml:"custom_checks,omitempty" toml:"custom_checks"`
	ActiveChecks    []models.ActiveCheck `json:"active_checks,omitempty" yaml:"active_checks,omitempty" toml:"active_checks"`
}

// ClusterSpec configures a cluster and the services it takes over from its nodes.
type ClusterSpec struct {
	Nodes             []string             `json:"nodes" yaml:"nodes" toml:"nodes"`
	Disabled          bool                 `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled"`
	ClusteredServices []string             `json:"clustered_services,omitempty" yaml:"clustered_services,omitempty" toml:"clustered_services"`
	StaticChecks      []StaticCheck        `json:"static_checks,omitempty" yaml:"static_checks,omitempty" toml:"static_checks"`
	CustomChecks      []models.CustomCheck `json:"custom_checks,omitempty" yaml:"custom_checks,omitempty" toml:"custom_checks"`
	ActiveChecks      []models.ActiveCheck `json:"active_checks,omitempty" yaml:"active_checks,omitempty" toml:"active_checks"`
}

// World is the static monitoring configuration: hosts, clusters and rules.
// It must be bound to a plugin catalog before use.
type World struct {
	Hosts     map[string]*HostSpec    `json:"hosts" yaml:"hosts" toml:"hosts"`
	Clusters  map[string]*ClusterSpec `json:"clusters,omitempty" yaml:"clusters,omitempty" toml:"clusters"`
	Rules     Rules                   `json:"rules" yaml:"rules" toml:"rules"`
	Variables map[string]interface{}  `json:"variables,omitempty" yaml:"variables,omitempty" toml:"variables"`

	catalog   PluginCatalog
	evaluator params.Evaluator
	logger    logger.Logger
	patterns  patterns
	clusterOf map[string][]string // node -> sorted clusters
}

// Validate checks cluster membership and compiles every pattern.
func (w *World) Validate() error {
	for name, cluster := range w.Clusters {
		if _, ok := w.Hosts[name]; ok {
			return fmt.Errorf("%w: %s", errHostIsCluster, name)
		}

		for _, node := range cluster.Nodes {
			if _, ok := w.Hosts[node]; !ok {
				return fmt.Errorf("%w: %s in %s", errUnknownNode, node, name)
			}
		}
	}

	return w.compile()
}

func (w *World) compile() error {
	p := make(patterns)

	clusterOf := make(map[string][]string)

	for name, cluster := range w.Clusters {
		if err := p.add(cluster.ClusteredServices...); err != nil {
			return fmt.Errorf("cluster %s: %w", name, err)
		}

		for _, node := range cluster.Nodes {
			clusterOf[node] = append(clusterOf[node], name)
		}
	}

	for node := range clusterOf {
		sort.Strings(clusterOf[node])
	}

	if err := w.Rules.compile(p); err != nil {
		return err
	}

	w.patterns = p
	w.clusterOf = clusterOf

	return nil
}

// Bind attaches the plugin catalog and the parameter evaluator. A nil
// evaluator installs the CUE evaluator.
func (w *World) Bind(catalog PluginCatalog, evaluator params.Evaluator, log logger.Logger) error {
	if evaluator == nil {
		evaluator = params.NewCUEEvaluator()
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	w.catalog = catalog
	w.evaluator = evaluator
	w.logger = log

	return w.compile()
}

func (w *World) log() logger.Logger {
	if w.logger == nil {
		return logger.NewTestLogger()
	}

	return w.logger
}

// HostNames returns every configured host and cluster, sorted.
func (w *World) HostNames() []string {
	names := make([]string, 0, len(w.Hosts)+len(w.Clusters))
	for name := range w.Hosts {
		names = append(names, name)
	}

	for name := range w.Clusters {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Exists reports whether host is configured as host or cluster.
func (w *World) Exists(host string) bool {
	if _, ok := w.Hosts[host]; ok {
		return true
	}

	_, ok := w.Clusters[host]

	return ok
}

func (w *World) IsActive(host string) bool {
	if spec, ok := w.Hosts[host]; ok {
		return !spec.Disabled
	}

	if spec, ok := w.Clusters[host]; ok {
		return !spec.Disabled
	}

	return false
}

func (w *World) IsCluster(host string) bool {
	_, ok := w.Clusters[host]
	return ok
}

func (w *World) Nodes(cluster string) []string {
	if spec, ok := w.Clusters[cluster]; ok {
		return spec.Nodes
	}

	return nil
}

// Host returns the host specification, nil for clusters and unknown hosts.
func (w *World) Host(host string) *HostSpec {
	return w.Hosts[host]
}

func (w *World) HasManagementBoard(host string) bool {
	spec, ok := w.Hosts[host]
	return ok && spec.ManagementBoard
}

func (w *World) IsPingHost(host string) bool {
	spec, ok := w.Hosts[host]
	return ok && spec.PingOnly
}

func (w *World) CustomChecks(host string) []models.CustomCheck {
	if spec, ok := w.Hosts[host]; ok {
		return spec.CustomChecks
	}

	if spec, ok := w.Clusters[host]; ok {
		return spec.CustomChecks
	}

	return nil
}

func (w *World) ActiveChecks(host string) []models.ActiveCheck {
	if spec, ok := w.Hosts[host]; ok {
		return spec.ActiveChecks
	}

	if spec, ok := w.Clusters[host]; ok {
		return spec.ActiveChecks
	}

	return nil
}

// StaticChecks resolves the manually configured services of host. Services
// whose description cannot be computed are skipped.
func (w *World) StaticChecks(host string) ([]models.ConfiguredService, error) {
	var static []StaticCheck

	if spec, ok := w.Hosts[host]; ok {
		static = spec.StaticChecks
	} else if spec, ok := w.Clusters[host]; ok {
		static = spec.StaticChecks
	}

	out := make([]models.ConfiguredService, 0, len(static))

	for _, sc := range static {
		plugin := models.CheckPluginName(sc.Plugin)
		item := sc.item()

		description, err := w.ServiceDescription(host, plugin, item)
		if err != nil {
			w.log().Error().
				Err(err).
				Str("host", host).
				Str("plugin", sc.Plugin).
				Msg("Skipping static check without description")

			continue
		}

		effective, err := w.ComputeCheckParameters(host, plugin, item, models.Literal(sc.Parameters))
		if err != nil {
			return nil, fmt.Errorf("static check %s: %w", description, err)
		}

		out = append(out, models.ConfiguredService{
			CheckPluginName: plugin,
			Item:            item,
			Description:     description,
			Parameters:      effective,
		})
	}

	return out, nil
}

// HostOfClusteredService returns the cluster owning description on host,
// or host itself.
func (w *World) HostOfClusteredService(host, description string) (string, error) {
	for _, cluster := range w.clusterOf[host] {
		if w.patterns.any(w.Clusters[cluster].ClusteredServices, description) {
			return cluster, nil
		}
	}

	return host, nil
}

func (w *World) CheckPluginIgnored(host string, plugin models.CheckPluginName) bool {
	for _, rule := range w.Rules.IgnoredPlugins {
		if !w.patterns.hostMatches(rule.Hosts, rule.HostRegex, host) {
			continue
		}

		for _, name := range rule.Plugins {
			if models.CheckPluginName(name) == plugin || models.CheckPluginName(name) == plugin.BaseName() {
				return true
			}
		}
	}

	return false
}

func (w *World) ServiceIgnored(host string, plugin models.CheckPluginName, description string) bool {
	if w.CheckPluginIgnored(host, plugin) {
		return true
	}

	for _, rule := range w.Rules.IgnoredServices {
		if w.patterns.hostMatches(rule.Hosts, rule.HostRegex, host) && w.patterns.any(rule.Services, description) {
			return true
		}
	}

	return false
}

func (w *World) DiscoveryParameters(host string, plugin models.CheckPluginName) interface{} {
	for _, rule := range w.Rules.DiscoveryParameters {
		if models.CheckPluginName(rule.Plugin) != plugin.BaseName() {
			continue
		}

		if w.patterns.hostMatches(rule.Hosts, rule.HostRegex, host) {
			return rule.Value
		}
	}

	return nil
}

// DiscoveryCheckParameters returns the parameters of the first matching
// discovery check rule. It is nil when that rule has no value, and the
// defaults (severities 1/0/1, no rediscovery) when no rule matches.
func (w *World) DiscoveryCheckParameters(host string) *models.DiscoveryCheckParams {
	for _, rule := range w.Rules.DiscoveryCheck {
		if !w.patterns.hostMatches(rule.Hosts, rule.HostRegex, host) {
			continue
		}

		if rule.Value == nil {
			return nil
		}

		p := *rule.Value

		return &p
	}

	return &models.DiscoveryCheckParams{}
}
