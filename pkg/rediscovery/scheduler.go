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

package rediscovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/livestatus"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// DefaultDeadline bounds one sweep when no deadline is configured.
const DefaultDeadline = 120 * time.Second

// Outcome is what a sweep did with one flagged host.
type Outcome string

const (
	OutcomeRemoved   Outcome = "removed"   // host no longer configured, flag dropped
	OutcomeSkipped   Outcome = "skipped"   // flag kept for a later sweep
	OutcomeDeferred  Outcome = "deferred"  // not reached before the deadline
	OutcomeFailed    Outcome = "failed"    // discovery ran and failed, flag dropped
	OutcomeUnchanged Outcome = "unchanged" // discovery ran, nothing changed
	OutcomeChanged   Outcome = "changed"   // discovery ran and changed services or labels
)

// HostReport records the handling of one flagged host.
type HostReport struct {
	Host    string
	Outcome Outcome
	Reason  string
	Result  *models.DiscoveryResult
}

// SweepReport summarizes one sweep over the queue.
type SweepReport struct {
	RunID               string
	Hosts               []HostReport
	ActivationRequested bool
	ActivatedHosts      []string
}

// Count returns how many hosts ended with outcome.
func (r *SweepReport) Count(outcome Outcome) int {
	n := 0

	for _, h := range r.Hosts {
		if h.Outcome == outcome {
			n++
		}
	}

	return n
}

// Config wires a Scheduler. Core, Publisher and InvalidateHost are optional.
type Config struct {
	Queue             *Queue
	Hosts             HostConfig
	Discoverer        HostDiscoverer
	Core              CoreClient
	Publisher         ActivationPublisher
	InvalidateHost    func(hostname string)
	Clock             Clock
	Deadline          time.Duration
	CommandsPerSecond float64 // 0 disables limiting
	Logger            logger.Logger
}

// Scheduler sweeps the autodiscovery queue.
type Scheduler struct {
	cfg      Config
	limiter  *rate.Limiter
	newRunID func() string
}

func NewScheduler(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}

	limit := rate.Inf
	if cfg.CommandsPerSecond > 0 {
		limit = rate.Limit(cfg.CommandsPerSecond)
	}

	return &Scheduler{
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		newRunID: uuid.NewString,
	}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := s.cfg.Clock.Ticker(interval)
	defer ticker.Stop()

	s.cfg.Logger.Info().Dur("interval", interval).Msg("Starting rediscovery scheduler")

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.cfg.Logger.Error().Err(err).Msg("Rediscovery sweep failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// Sweep handles every flagged host once, within the configured deadline, and
// requests at most one activation for the whole run.
func (s *Scheduler) Sweep(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{RunID: s.newRunID()}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "rediscovery.Sweep", trace.WithAttributes(
		attribute.String("run_id", report.RunID),
	))
	defer span.End()

	log := logger.Wrap(s.cfg.Logger.With().Str("run_id", report.RunID).Logger())

	queued, err := s.cfg.Queue.QueuedHosts()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if len(queued) == 0 {
		log.Debug().Str("dir", s.cfg.Queue.Dir()).Msg("Nothing to do, no hosts marked by discovery check")
		return report, nil
	}

	hosts := make([]string, 0, len(queued))

	for _, host := range queued {
		if s.cfg.Hosts.Exists(host) {
			hosts = append(hosts, host)
			continue
		}

		log.Info().Str("host", host).Msg("Host does not exist in configuration, removing mark")
		s.removeFlag(log, host)
		s.add(ctx, report, HostReport{Host: host, Outcome: OutcomeRemoved, Reason: "host not configured"})
	}

	reference := s.cfg.Clock.Now()

	oldest, err := s.cfg.Queue.Oldest(reference)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	states := s.hostStates(ctx, log)
	deadline := reference.Add(s.cfg.Deadline)

	var activate []string

	for i, host := range hosts {
		if ctx.Err() != nil || !s.cfg.Clock.Now().Before(deadline) {
			for _, deferred := range hosts[i:] {
				s.add(ctx, report, HostReport{Host: deferred, Outcome: OutcomeDeferred, Reason: reasonDeadlineReached})
			}

			log.Warn().Int("deferred", len(hosts)-i).Msg("Rediscovery sweep stopped early, remaining hosts stay queued")

			break
		}

		if len(states) > 0 {
			if state, ok := states[host]; !ok || state != livestatus.HostUp {
				log.Debug().Str("host", host).Msg("Skipped, host is not up")
				s.add(ctx, report, HostReport{Host: host, Outcome: OutcomeSkipped, Reason: reasonHostNotUp})

				continue
			}
		}

		hr, needsActivation := s.processHost(ctx, log, host, reference, oldest, deadline)
		s.add(ctx, report, hr)

		if needsActivation {
			activate = append(activate, host)
		}
	}

	if len(activate) > 0 {
		s.activate(ctx, log, report, activate)
	}

	span.SetAttributes(
		attribute.Int("hosts", len(report.Hosts)),
		attribute.Int("changed", report.Count(OutcomeChanged)),
		attribute.Bool("activation", report.ActivationRequested),
	)

	log.Info().
		Int("queued", len(queued)).
		Int("changed", report.Count(OutcomeChanged)).
		Int("unchanged", report.Count(OutcomeUnchanged)).
		Int("failed", report.Count(OutcomeFailed)).
		Int("skipped", report.Count(OutcomeSkipped)).
		Int("deferred", report.Count(OutcomeDeferred)).
		Bool("activation", report.ActivationRequested).
		Msg("Rediscovery sweep finished")

	return report, nil
}

// processHost runs discovery for one flagged host. The flag stays when the
// host is not eligible yet and is removed once discovery ran, whatever the result.
// Discovery is cut off at the sweep deadline.
func (s *Scheduler) processHost(
	ctx context.Context, log logger.Logger, host string, reference, oldest, deadline time.Time) (HostReport, bool) {
	hr := HostReport{Host: host}

	params := s.cfg.Hosts.DiscoveryCheckParameters(host)
	if params == nil {
		log.Info().Str("host", host).Msg("Skipped, discovery check disabled")

		hr.Outcome, hr.Reason = OutcomeSkipped, reasonCheckDisabled

		return hr, false
	}

	if reason := MayRediscover(params, reference, oldest); reason != "" {
		log.Debug().Str("host", host).Str("reason", reason).Msg("Skipped")

		hr.Outcome, hr.Reason = OutcomeSkipped, reason

		return hr, false
	}

	rd := params.InventoryRediscovery

	filters, err := discovery.NewServiceFilters(rd)
	if err != nil {
		log.Error().Err(err).Str("host", host).Msg("Invalid service filters")
		s.removeFlag(log, host)

		hr.Outcome, hr.Reason = OutcomeFailed, err.Error()

		return hr, false
	}

	discoverCtx, cancel := context.WithDeadline(ctx, deadline)
	result := s.cfg.Discoverer.DiscoverOnHost(discoverCtx, host, discovery.Request{
		Mode:              rd.EffectiveMode(),
		Filters:           filters,
		OnError:           models.OnErrorIgnore,
		UseCachedSections: true,
	})
	cancel()

	hr.Result = result

	needsActivation := false

	switch {
	case result.ErrorText != nil:
		hr.Outcome, hr.Reason = OutcomeFailed, *result.ErrorText
		if hr.Reason == "" {
			hr.Reason = "host is offline"
		}

		log.Warn().Str("host", host).Str("reason", hr.Reason).Msg("Rediscovery failed")
	case !result.SomethingChanged():
		hr.Outcome = OutcomeUnchanged

		log.Debug().Str("host", host).Msg("Nothing changed")
	default:
		hr.Outcome = OutcomeChanged

		log.Info().
			Str("host", host).
			Int("new", result.SelfNew).
			Int("removed", result.SelfRemoved).
			Int("kept", result.SelfKept).
			Int("total", result.SelfTotal).
			Int("new_host_labels", result.SelfNewHostLabels).
			Int("clustered_new", result.ClusteredNew).
			Int("clustered_vanished", result.ClusteredVanished).
			Msg("Rediscovery changed services")

		needsActivation = rd.Activation

		if s.cfg.InvalidateHost != nil {
			s.cfg.InvalidateHost(host)
		}

		s.scheduleDiscoveryCheck(ctx, log, host)
	}

	s.removeFlag(log, host)

	return hr, needsActivation
}

// hostStates returns nil when the core cannot be asked; every host is then
// treated as up.
func (s *Scheduler) hostStates(ctx context.Context, log logger.Logger) map[string]int {
	if s.cfg.Core == nil {
		return nil
	}

	states, err := s.cfg.Core.HostStates(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Host states unavailable, processing all flagged hosts")
		return nil
	}

	return states
}

func (s *Scheduler) scheduleDiscoveryCheck(ctx context.Context, log logger.Logger, host string) {
	if s.cfg.Core == nil {
		return
	}

	if err := s.limiter.Wait(ctx); err != nil {
		log.Warn().Err(err).Str("host", host).Msg("Discovery check not rescheduled")
		return
	}

	err := s.cfg.Core.ScheduleForcedServiceCheck(ctx, host, livestatus.DiscoveryServiceDescription, s.cfg.Clock.Now())
	if err != nil {
		log.Warn().Err(err).Str("host", host).Msg("Failed to reschedule discovery check")
	}
}

func (s *Scheduler) activate(ctx context.Context, log logger.Logger, report *SweepReport, hosts []string) {
	report.ActivationRequested = true
	report.ActivatedHosts = hosts

	recordActivation(ctx)

	log.Info().Strs("hosts", hosts).Msg("Activating changed configuration")

	if s.cfg.Core != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			log.Error().Err(err).Msg("Core reload not sent")
		} else if err := s.cfg.Core.Reload(ctx, s.cfg.Clock.Now()); err != nil {
			log.Error().Err(err).Msg("Failed to reload monitoring core")
		}
	}

	if s.cfg.Publisher != nil {
		if err := s.cfg.Publisher.PublishActivationRequested(ctx, report.RunID, hosts); err != nil {
			log.Warn().Err(err).Msg("Failed to publish activation event")
		}
	}
}

func (s *Scheduler) removeFlag(log logger.Logger, host string) {
	if err := s.cfg.Queue.Remove(host); err != nil {
		log.Error().Err(err).Str("host", host).Msg("Failed to remove rediscovery flag")
	}
}

func (s *Scheduler) add(ctx context.Context, report *SweepReport, hr HostReport) {
	report.Hosts = append(report.Hosts, hr)
	recordOutcome(ctx, hr.Outcome)
}
