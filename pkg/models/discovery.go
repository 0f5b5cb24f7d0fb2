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

package models

import (
	"fmt"
)

// Transition classifies a service relative to the persisted autochecks.
type Transition string

const (
	TransitionNew               Transition = "new"
	TransitionOld               Transition = "old"
	TransitionVanished          Transition = "vanished"
	TransitionIgnored           Transition = "ignored"
	TransitionManual            Transition = "manual"
	TransitionActive            Transition = "active"
	TransitionCustom            Transition = "custom"
	TransitionLegacy            Transition = "legacy"
	TransitionClusteredNew      Transition = "clustered_new"
	TransitionClusteredOld      Transition = "clustered_old"
	TransitionClusteredVanished Transition = "clustered_vanished"
)

// Clustered maps new/old/vanished to the clustered_ variant.
func (t Transition) Clustered() Transition {
	switch t {
	case TransitionNew:
		return TransitionClusteredNew
	case TransitionOld:
		return TransitionClusteredOld
	case TransitionVanished:
		return TransitionClusteredVanished
	default:
		return t
	}
}

// IsConfigured reports whether the service comes from static configuration
// rather than from discovery.
func (t Transition) IsConfigured() bool {
	switch t {
	case TransitionManual, TransitionActive, TransitionCustom, TransitionLegacy:
		return true
	default:
		return false
	}
}

// ServiceWithNodes is a service plus the cluster nodes it was seen on.
type ServiceWithNodes struct {
	Service Service  `json:"service"`
	Nodes   []string `json:"nodes,omitempty"`
}

// ServicesByTransition groups a host's services by their classification.
type ServicesByTransition map[Transition][]ServiceWithNodes

// Count returns the number of services with the given transition.
func (s ServicesByTransition) Count(t Transition) int {
	return len(s[t])
}

// DiscoveryMode selects what discover_on_host is allowed to change.
type DiscoveryMode string

const (
	ModeNew            DiscoveryMode = "new"
	ModeRemove         DiscoveryMode = "remove"
	ModeFixAll         DiscoveryMode = "fixall"
	ModeRefresh        DiscoveryMode = "refresh"
	ModeOnlyHostLabels DiscoveryMode = "only-host-labels"
)

// ParseDiscoveryMode accepts the textual modes.
func ParseDiscoveryMode(s string) (DiscoveryMode, error) {
	switch m := DiscoveryMode(s); m {
	case ModeNew, ModeRemove, ModeFixAll, ModeRefresh, ModeOnlyHostLabels:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDiscoveryMode, s)
	}
}

// AddsNew reports whether the mode adds newly found services.
func (m DiscoveryMode) AddsNew() bool {
	return m == ModeNew || m == ModeFixAll || m == ModeRefresh
}

// RemovesVanished reports whether the mode drops vanished services.
func (m DiscoveryMode) RemovesVanished() bool {
	return m == ModeRemove || m == ModeFixAll
}

// OnError is the policy applied to discovery plugin failures.
type OnError string

const (
	OnErrorIgnore OnError = "ignore"
	OnErrorWarn   OnError = "warn"
	OnErrorRaise  OnError = "raise"
)

func ParseOnError(s string) (OnError, error) {
	switch o := OnError(s); o {
	case OnErrorIgnore, OnErrorWarn, OnErrorRaise:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOnError, s)
	}
}

// DiscoveryResult summarizes one discover_on_host run.
type DiscoveryResult struct {
	SelfNew             int     `json:"self_new"`
	SelfRemoved         int     `json:"self_removed"`
	SelfKept            int     `json:"self_kept"`
	SelfTotal           int     `json:"self_total"`
	SelfNewHostLabels   int     `json:"self_new_host_labels"`
	SelfTotalHostLabels int     `json:"self_total_host_labels"`
	ClusteredNew        int     `json:"clustered_new"`
	ClusteredOld        int     `json:"clustered_old"`
	ClusteredVanished   int     `json:"clustered_vanished"`
	ErrorText           *string `json:"error_text"` // nil: no error, "": host not monitored
	DiffText            string  `json:"diff_text,omitempty"`
}

// SomethingChanged reports whether the run modified anything a core reload must pick up.
func (r *DiscoveryResult) SomethingChanged() bool {
	return r.SelfNew != 0 ||
		r.SelfRemoved != 0 ||
		r.SelfKept != r.SelfTotal ||
		r.ClusteredNew != 0 ||
		r.ClusteredVanished != 0 ||
		r.SelfNewHostLabels != 0
}

// Failed reports whether the run recorded an error.
func (r *DiscoveryResult) Failed() bool {
	return r.ErrorText != nil
}

// SetError records an error message.
func (r *DiscoveryResult) SetError(text string) {
	r.ErrorText = &text
}
