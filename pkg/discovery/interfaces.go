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

//go:generate mockgen -destination=mock_discovery.go -package=discovery github.com/carverauto/autochecks/pkg/discovery SectionFetcher,Marker,Publisher

// Package discovery reconciles discovered services with the persisted
// autochecks and resolves the complete service set of a host.
package discovery

import (
	"context"

	"github.com/carverauto/autochecks/pkg/checktable"
	"github.com/carverauto/autochecks/pkg/models"
)

// HostConfig answers the configuration questions discovery asks about a host.
type HostConfig interface {
	// IsActive reports whether host is configured and monitored.
	IsActive(host string) bool
	IsCluster(host string) bool
	Nodes(cluster string) []string
	HasManagementBoard(host string) bool
	ServiceDescription(host string, plugin models.CheckPluginName, item models.Item) (string, error)
	HostOfClusteredService(host, description string) (string, error)
	ComputeCheckParameters(host string, plugin models.CheckPluginName, item models.Item, discovered models.Parameters) (interface{}, error)
	ServiceIgnored(host string, plugin models.CheckPluginName, description string) bool
	CheckPluginIgnored(host string, plugin models.CheckPluginName) bool
	// DiscoveryParameters returns the discovery rule value for plugin, nil if none matches.
	DiscoveryParameters(host string, plugin models.CheckPluginName) interface{}
	CustomChecks(host string) []models.CustomCheck
	ActiveChecks(host string) []models.ActiveCheck
	// DiscoveryCheckParameters returns nil when the discovery check is disabled
	// and the defaults when the host has no discovery check rule.
	DiscoveryCheckParameters(host string) *models.DiscoveryCheckParams
}

// SectionFetcher returns the parsed sections of a host for one source type.
type SectionFetcher interface {
	FetchSections(ctx context.Context, host string, source models.SourceType, useCache bool) (models.Sections, error)
}

// CheckTableSource provides statically configured services.
type CheckTableSource interface {
	GetCheckTable(host string, opts checktable.Options) (*checktable.CheckTable, error)
}

// Marker flags hosts for unattended rediscovery.
type Marker interface {
	Add(host string) error
}

// Publisher announces discovery outcomes.
type Publisher interface {
	PublishHostDiscovered(ctx context.Context, host string, mode models.DiscoveryMode, result *models.DiscoveryResult) error
	PublishRediscoveryScheduled(ctx context.Context, host string, reason string) error
}
