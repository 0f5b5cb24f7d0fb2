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

// Package models holds the data model shared by the discovery, autochecks
// and check table packages.
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const managementPrefix = "mgmt_"

var validPluginName = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// CheckPluginName identifies a check plugin.
type CheckPluginName string

func (n CheckPluginName) String() string {
	return string(n)
}

// Validate reports whether the name is usable as a plugin identifier.
func (n CheckPluginName) Validate() error {
	if !validPluginName.MatchString(string(n)) {
		return fmt.Errorf("%w: %q", ErrInvalidPluginName, string(n))
	}

	return nil
}

// IsManagement reports whether the name is a synthesized management board variant.
func (n CheckPluginName) IsManagement() bool {
	return strings.HasPrefix(string(n), managementPrefix)
}

// ManagementName returns the management board variant of n.
func (n CheckPluginName) ManagementName() CheckPluginName {
	if n.IsManagement() {
		return n
	}

	return CheckPluginName(managementPrefix + string(n))
}

// BaseName strips the management prefix, if any.
func (n CheckPluginName) BaseName() CheckPluginName {
	return CheckPluginName(strings.TrimPrefix(string(n), managementPrefix))
}

// Item is the optional item of a service. The zero value means "no item".
type Item struct {
	Value string
	Valid bool
}

// SomeItem returns a set item.
func SomeItem(value string) Item {
	return Item{Value: value, Valid: true}
}

// NoItem returns the empty item.
func NoItem() Item {
	return Item{}
}

func (i Item) String() string {
	if !i.Valid {
		return "None"
	}

	return i.Value
}

// Less orders items with "no item" first.
func (i Item) Less(other Item) bool {
	if i.Valid != other.Valid {
		return !i.Valid
	}

	return i.Value < other.Value
}

func (i Item) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(i.Value)
}

func (i *Item) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*i = Item{}
		return nil
	}

	var value string
	if err := json.Unmarshal(b, &value); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	*i = SomeItem(value)

	return nil
}

// ServiceID is the stable identity of a service on a host.
type ServiceID struct {
	CheckPluginName CheckPluginName
	Item            Item
}

// Less orders service IDs by plugin name, then item.
func (id ServiceID) Less(other ServiceID) bool {
	if id.CheckPluginName != other.CheckPluginName {
		return id.CheckPluginName < other.CheckPluginName
	}

	return id.Item.Less(other.Item)
}

func (id ServiceID) String() string {
	if !id.Item.Valid {
		return string(id.CheckPluginName)
	}

	return fmt.Sprintf("%s[%s]", id.CheckPluginName, id.Item.Value)
}

// ServiceLabels maps label names to values.
type ServiceLabels map[string]string

// Clone returns an independent copy; nil stays nil.
func (l ServiceLabels) Clone() ServiceLabels {
	if l == nil {
		return nil
	}

	out := make(ServiceLabels, len(l))
	for k, v := range l {
		out[k] = v
	}

	return out
}

// AutocheckEntry is the persisted, unresolved record of a discovered service.
type AutocheckEntry struct {
	CheckPluginName CheckPluginName `json:"check_plugin_name"`
	Item            Item            `json:"item"`
	Parameters      Parameters      `json:"parameters"`
	ServiceLabels   ServiceLabels   `json:"service_labels"`
}

func (e AutocheckEntry) ID() ServiceID {
	return ServiceID{CheckPluginName: e.CheckPluginName, Item: e.Item}
}

// Service is a discovered service before it is configured for checking.
type Service struct {
	CheckPluginName CheckPluginName `json:"check_plugin_name"`
	Item            Item            `json:"item"`
	Description     string          `json:"description"`
	Parameters      Parameters      `json:"parameters"`
	ServiceLabels   ServiceLabels   `json:"service_labels,omitempty"`
}

func (s Service) ID() ServiceID {
	return ServiceID{CheckPluginName: s.CheckPluginName, Item: s.Item}
}

// AutocheckEntry drops the description for persistence.
func (s Service) AutocheckEntry() AutocheckEntry {
	return AutocheckEntry{
		CheckPluginName: s.CheckPluginName,
		Item:            s.Item,
		Parameters:      s.Parameters,
		ServiceLabels:   s.ServiceLabels.Clone(),
	}
}

// ConfiguredService is a fully resolved service as consumed by check execution.
type ConfiguredService struct {
	CheckPluginName      CheckPluginName `json:"check_plugin_name"`
	Item                 Item            `json:"item"`
	Description          string          `json:"description"`
	Parameters           interface{}     `json:"parameters"`                      // effective, rule-evaluated
	DiscoveredParameters *Parameters     `json:"discovered_parameters,omitempty"` // nil for manual/active/custom
	ServiceLabels        ServiceLabels   `json:"service_labels,omitempty"`
}

func (s ConfiguredService) ID() ServiceID {
	return ServiceID{CheckPluginName: s.CheckPluginName, Item: s.Item}
}

// HostLabel is a label discovered for a whole host.
type HostLabel struct {
	Name   string          `json:"name"`
	Value  string          `json:"value"`
	Plugin CheckPluginName `json:"plugin,omitempty"`
}

// HostLabelName is the identity used to reconcile host labels.
func HostLabelName(l HostLabel) string {
	return l.Name
}
