package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultSeverityUnmonitored  = 1
	defaultSeverityVanished     = 0
	defaultSeverityNewHostLabel = 1
)

// TimeOfDay is an hour/minute pair, encoded as [h, m].
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{t.Hour, t.Minute})
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("time of day must be [hour, minute]: %w", err)
	}

	*t = TimeOfDay{Hour: pair[0], Minute: pair[1]}

	return nil
}

func (t *TimeOfDay) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var pair [2]int
	if err := unmarshal(&pair); err != nil {
		return fmt.Errorf("time of day must be [hour, minute]: %w", err)
	}

	*t = TimeOfDay{Hour: pair[0], Minute: pair[1]}

	return nil
}

func (t *TimeOfDay) UnmarshalTOML(v interface{}) error {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return fmt.Errorf("time of day must be [hour, minute], got %v", v)
	}

	hour, okHour := pair[0].(int64)
	minute, okMinute := pair[1].(int64)

	if !okHour || !okMinute {
		return fmt.Errorf("time of day must be integers, got %v", v)
	}

	*t = TimeOfDay{Hour: int(hour), Minute: int(minute)}

	return nil
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}

	return t.Minute < other.Minute
}

// At returns t as a time of day.
func At(ts time.Time) TimeOfDay {
	return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}
}

// TimeWindow is a half-open [Start, End) range within a day, encoded as [[h, m], [h, m]].
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]TimeOfDay{w.Start, w.End})
}

func (w *TimeWindow) UnmarshalJSON(b []byte) error {
	var pair [2]TimeOfDay
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}

	*w = TimeWindow{Start: pair[0], End: pair[1]}

	return nil
}

func (w *TimeWindow) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var pair [2]TimeOfDay
	if err := unmarshal(&pair); err != nil {
		return err
	}

	*w = TimeWindow{Start: pair[0], End: pair[1]}

	return nil
}

func (w *TimeWindow) UnmarshalTOML(v interface{}) error {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return fmt.Errorf("time window must be [[h, m], [h, m]], got %v", v)
	}

	if err := w.Start.UnmarshalTOML(pair[0]); err != nil {
		return err
	}

	return w.End.UnmarshalTOML(pair[1])
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t TimeOfDay) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// FilterLists are regular expressions matched against service descriptions.
type FilterLists struct {
	ServiceWhitelist         []string `json:"service_whitelist,omitempty" yaml:"service_whitelist,omitempty" toml:"service_whitelist"`
	ServiceBlacklist         []string `json:"service_blacklist,omitempty" yaml:"service_blacklist,omitempty" toml:"service_blacklist"`
	VanishedServiceWhitelist []string `json:"vanished_service_whitelist,omitempty" yaml:"vanished_service_whitelist,omitempty" toml:"vanished_service_whitelist"`
	VanishedServiceBlacklist []string `json:"vanished_service_blacklist,omitempty" yaml:"vanished_service_blacklist,omitempty" toml:"vanished_service_blacklist"`
}

// ServiceFilterSettings selects one set of filters for new and vanished
// services ("combined") or separate sets ("dedicated").
type ServiceFilterSettings struct {
	Combined  *FilterLists `json:"combined,omitempty" yaml:"combined,omitempty" toml:"combined"`
	Dedicated *FilterLists `json:"dedicated,omitempty" yaml:"dedicated,omitempty" toml:"dedicated"`
}

// RediscoveryParams configures unattended rediscovery of a host.
type RediscoveryParams struct {
	Mode             DiscoveryMode          `json:"mode" yaml:"mode" toml:"mode"`
	GroupTime        *Duration              `json:"group_time,omitempty" yaml:"group_time,omitempty" toml:"group_time"`
	ExcludedTime     []TimeWindow           `json:"excluded_time" yaml:"excluded_time" toml:"excluded_time"`
	Activation       bool                   `json:"activation" yaml:"activation" toml:"activation"`
	ServiceWhitelist []string               `json:"service_whitelist,omitempty" yaml:"service_whitelist,omitempty" toml:"service_whitelist"` // legacy
	ServiceBlacklist []string               `json:"service_blacklist,omitempty" yaml:"service_blacklist,omitempty" toml:"service_blacklist"` // legacy
	ServiceFilters   *ServiceFilterSettings `json:"service_filters,omitempty" yaml:"service_filters,omitempty" toml:"service_filters"`
}

// Enabled reports whether both the time windows and the group time are set.
// An empty, non-nil ExcludedTime means "no excluded windows".
func (p *RediscoveryParams) Enabled() bool {
	return p != nil && p.GroupTime != nil && p.ExcludedTime != nil
}

// EffectiveMode defaults an unset mode to "new".
func (p *RediscoveryParams) EffectiveMode() DiscoveryMode {
	if p == nil || p.Mode == "" {
		return ModeNew
	}

	return p.Mode
}

// DiscoveryCheckParams configures the periodic discovery check of a host.
type DiscoveryCheckParams struct {
	CheckInterval        Duration           `json:"check_interval" yaml:"check_interval" toml:"check_interval"`
	SeverityUnmonitored  *int               `json:"severity_unmonitored,omitempty" yaml:"severity_unmonitored,omitempty" toml:"severity_unmonitored"`
	SeverityVanished     *int               `json:"severity_vanished,omitempty" yaml:"severity_vanished,omitempty" toml:"severity_vanished"`
	SeverityNewHostLabel *int               `json:"severity_new_host_label,omitempty" yaml:"severity_new_host_label,omitempty" toml:"severity_new_host_label"`
	InventoryRediscovery *RediscoveryParams `json:"inventory_rediscovery,omitempty" yaml:"inventory_rediscovery,omitempty" toml:"inventory_rediscovery"`
}

func (p *DiscoveryCheckParams) UnmonitoredSeverity() int {
	return severityOr(p.SeverityUnmonitored, defaultSeverityUnmonitored)
}

func (p *DiscoveryCheckParams) VanishedSeverity() int {
	return severityOr(p.SeverityVanished, defaultSeverityVanished)
}

func (p *DiscoveryCheckParams) NewHostLabelSeverity() int {
	return severityOr(p.SeverityNewHostLabel, defaultSeverityNewHostLabel)
}

func severityOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}

	return *v
}
