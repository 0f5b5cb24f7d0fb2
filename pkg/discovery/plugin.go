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

	"github.com/carverauto/autochecks/pkg/models"
)

// ServiceCandidate is one service emitted by a discovery function.
type ServiceCandidate struct {
	Item          models.Item
	Parameters    models.Parameters
	ServiceLabels models.ServiceLabels
}

// DiscoveryCapable is implemented by every plugin the resolver can run.
type DiscoveryCapable interface {
	Name() models.CheckPluginName
	// Sections lists the parsed sections the plugin consumes.
	Sections() []string
	// ServiceNameTemplate is the description template, "%s" marks the item.
	ServiceNameTemplate() string
	// CheckDefaults are the default check parameters merged under discovered ones.
	CheckDefaults() map[string]interface{}
	Discover(ctx context.Context, sections models.Sections, params interface{}) ([]ServiceCandidate, error)
}

// LegacyDiscoveryItem is what legacy inventory functions return. A string
// Parameters value is expression source evaluated when the service is configured.
type LegacyDiscoveryItem struct {
	Item       models.Item
	Parameters interface{}
}

// LegacyPlugin wraps an inventory function that reads a single section and
// takes no discovery parameters.
type LegacyPlugin struct {
	PluginName        models.CheckPluginName
	Section           string
	ServiceName       string
	DefaultParameters map[string]interface{}
	InventoryFunction func(info interface{}) ([]LegacyDiscoveryItem, error)
}

func (p *LegacyPlugin) Name() models.CheckPluginName          { return p.PluginName }
func (p *LegacyPlugin) Sections() []string                    { return []string{p.Section} }
func (p *LegacyPlugin) ServiceNameTemplate() string           { return p.ServiceName }
func (p *LegacyPlugin) CheckDefaults() map[string]interface{} { return p.DefaultParameters }

func (p *LegacyPlugin) Discover(_ context.Context, sections models.Sections, _ interface{}) ([]ServiceCandidate, error) {
	info, ok := sections[p.Section]
	if !ok {
		return nil, nil
	}

	items, err := p.InventoryFunction(info)
	if err != nil {
		return nil, err
	}

	out := make([]ServiceCandidate, 0, len(items))

	for _, it := range items {
		params := models.Literal(it.Parameters)
		if src, isExpr := it.Parameters.(string); isExpr {
			params = models.Deferred(src)
		}

		out = append(out, ServiceCandidate{Item: it.Item, Parameters: params, ServiceLabels: models.ServiceLabels{}})
	}

	return out, nil
}

// DiscoveryFunction is the discovery entry point of a ModernPlugin.
type DiscoveryFunction func(ctx context.Context, sections models.Sections, params interface{}) ([]ServiceCandidate, error)

// ModernPlugin consumes any number of sections and optional discovery parameters.
type ModernPlugin struct {
	PluginName                 models.CheckPluginName
	SectionNames               []string
	ServiceName                string
	DefaultParameters          map[string]interface{}
	DiscoveryDefaultParameters interface{}
	DiscoveryFunction          DiscoveryFunction
}

func (p *ModernPlugin) Name() models.CheckPluginName          { return p.PluginName }
func (p *ModernPlugin) Sections() []string                    { return p.SectionNames }
func (p *ModernPlugin) ServiceNameTemplate() string           { return p.ServiceName }
func (p *ModernPlugin) CheckDefaults() map[string]interface{} { return p.DefaultParameters }

func (p *ModernPlugin) Discover(ctx context.Context, sections models.Sections, params interface{}) ([]ServiceCandidate, error) {
	if params == nil {
		params = p.DiscoveryDefaultParameters
	}

	return p.DiscoveryFunction(ctx, sections, params)
}

// managementVariant runs a plugin against management board sections under
// the synthesized mgmt_ name.
type managementVariant struct {
	DiscoveryCapable
}

func (m managementVariant) Name() models.CheckPluginName {
	return m.DiscoveryCapable.Name().ManagementName()
}

// PluginError wraps the failure of one plugin's discovery function.
type PluginError struct {
	Plugin models.CheckPluginName
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("discovery of '%s' failed: %v", e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}
