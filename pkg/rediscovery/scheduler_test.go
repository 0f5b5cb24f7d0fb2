package rediscovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/livestatus"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

var errCoreDown = errors.New("connection refused")

// fakeHosts maps configured hosts to their discovery check parameters.
type fakeHosts map[string]*models.DiscoveryCheckParams

func (f fakeHosts) Exists(hostname string) bool {
	_, ok := f[hostname]
	return ok
}

func (f fakeHosts) DiscoveryCheckParameters(hostname string) *models.DiscoveryCheckParams {
	return f[hostname]
}

func queueWith(t *testing.T, queuedAt time.Time, hosts ...string) *Queue {
	t.Helper()

	q := NewQueue(filepath.Join(t.TempDir(), "autodiscovery"))

	for _, h := range hosts {
		require.NoError(t, q.Add(h))
		require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), h), queuedAt, queuedAt))
	}

	return q
}

func strPtr(s string) *string { return &s }

func outcomes(report *SweepReport) map[string]Outcome {
	out := make(map[string]Outcome, len(report.Hosts))
	for _, h := range report.Hosts {
		out[h.Host] = h.Outcome
	}

	return out
}

func TestSweep(t *testing.T) {
	ctrl := gomock.NewController(t)

	now := time.Now()
	q := queueWith(t, now.Add(-time.Hour), "broken", "changed", "down", "ghost", "nocheck", "offline", "same")

	activating := checkParams(15 * time.Minute)
	activating.InventoryRediscovery.Activation = true

	hosts := fakeHosts{
		"broken":  checkParams(15 * time.Minute),
		"changed": activating,
		"down":    checkParams(15 * time.Minute),
		"nocheck": nil,
		"offline": checkParams(15 * time.Minute),
		"same":    checkParams(15 * time.Minute),
	}

	clock := NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	core := NewMockCoreClient(ctrl)
	core.EXPECT().HostStates(gomock.Any()).Return(map[string]int{
		"broken":  livestatus.HostUp,
		"changed": livestatus.HostUp,
		"down":    livestatus.HostDown,
		"nocheck": livestatus.HostUp,
		"offline": livestatus.HostUp,
		"same":    livestatus.HostUp,
	}, nil)
	core.EXPECT().ScheduleForcedServiceCheck(gomock.Any(), "changed", livestatus.DiscoveryServiceDescription, now).Return(nil)
	core.EXPECT().Reload(gomock.Any(), now).Return(nil)

	discoverer := NewMockHostDiscoverer(ctrl)
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "changed", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, req discovery.Request) *models.DiscoveryResult {
			assert.Equal(t, models.ModeFixAll, req.Mode)
			assert.Equal(t, models.OnErrorIgnore, req.OnError)
			assert.True(t, req.UseCachedSections)
			require.NotNil(t, req.Filters)

			return &models.DiscoveryResult{SelfNew: 1, SelfKept: 2, SelfTotal: 3}
		})
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "same", gomock.Any()).
		Return(&models.DiscoveryResult{SelfKept: 2, SelfTotal: 2})
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "broken", gomock.Any()).
		Return(&models.DiscoveryResult{ErrorText: strPtr("boom")})
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "offline", gomock.Any()).
		Return(&models.DiscoveryResult{ErrorText: strPtr("")})

	publisher := NewMockActivationPublisher(ctrl)
	publisher.EXPECT().PublishActivationRequested(gomock.Any(), "run-1", []string{"changed"}).Return(nil)

	var invalidated []string

	s := NewScheduler(Config{
		Queue:          q,
		Hosts:          hosts,
		Discoverer:     discoverer,
		Core:           core,
		Publisher:      publisher,
		InvalidateHost: func(h string) { invalidated = append(invalidated, h) },
		Clock:          clock,
		Logger:         logger.NewTestLogger(),
	})
	s.newRunID = func() string { return "run-1" }

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, map[string]Outcome{
		"ghost":   OutcomeRemoved,
		"broken":  OutcomeFailed,
		"changed": OutcomeChanged,
		"down":    OutcomeSkipped,
		"nocheck": OutcomeSkipped,
		"offline": OutcomeFailed,
		"same":    OutcomeUnchanged,
	}, outcomes(report))
	assert.Equal(t, "ghost", report.Hosts[0].Host, "unconfigured hosts are cleaned up first")

	for _, h := range report.Hosts {
		if h.Host == "offline" {
			assert.Equal(t, "host is offline", h.Reason)
		}
	}

	assert.True(t, report.ActivationRequested)
	assert.Equal(t, []string{"changed"}, report.ActivatedHosts)
	assert.Equal(t, []string{"changed"}, invalidated)

	remaining, err := q.QueuedHosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"down", "nocheck"}, remaining)
}

func TestSweepWithoutLivestatusProcessesAllHosts(t *testing.T) {
	ctrl := gomock.NewController(t)

	now := time.Now()
	q := queueWith(t, now.Add(-time.Hour), "a", "b")

	clock := NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	core := NewMockCoreClient(ctrl)
	core.EXPECT().HostStates(gomock.Any()).Return(nil, errCoreDown)
	core.EXPECT().ScheduleForcedServiceCheck(gomock.Any(), "b", livestatus.DiscoveryServiceDescription, now).Return(errCoreDown)

	discoverer := NewMockHostDiscoverer(ctrl)
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "a", gomock.Any()).Return(&models.DiscoveryResult{})
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "b", gomock.Any()).Return(&models.DiscoveryResult{SelfNewHostLabels: 1})

	s := NewScheduler(Config{
		Queue:      q,
		Hosts:      fakeHosts{"a": checkParams(time.Minute), "b": checkParams(time.Minute)},
		Discoverer: discoverer,
		Core:       core,
		Clock:      clock,
		Logger:     logger.NewTestLogger(),
	})

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]Outcome{"a": OutcomeUnchanged, "b": OutcomeChanged}, outcomes(report))
	assert.False(t, report.ActivationRequested, "activation is off for both hosts")

	remaining, err := q.QueuedHosts()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSweepKeepsFlagsWhileThrottled(t *testing.T) {
	ctrl := gomock.NewController(t)

	now := time.Now()
	q := queueWith(t, now.Add(-5*time.Minute), "a")

	clock := NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	s := NewScheduler(Config{
		Queue:      q,
		Hosts:      fakeHosts{"a": checkParams(time.Hour)},
		Discoverer: NewMockHostDiscoverer(ctrl),
		Clock:      clock,
		Logger:     logger.NewTestLogger(),
	})

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Hosts, 1)
	assert.Equal(t, OutcomeSkipped, report.Hosts[0].Outcome)
	assert.Equal(t, ReasonGroupTime, report.Hosts[0].Reason)
	assert.True(t, q.Has("a"))
}

func TestSweepDeadlineDefersRemainingHosts(t *testing.T) {
	ctrl := gomock.NewController(t)

	start := time.Now()
	q := queueWith(t, start.Add(-time.Hour), "a", "b", "c")

	calls := 0
	clock := NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time {
		calls++
		if calls <= 2 {
			return start
		}

		return start.Add(3 * time.Minute)
	}).AnyTimes()

	var discoverCtx context.Context

	discoverer := NewMockHostDiscoverer(ctrl)
	discoverer.EXPECT().DiscoverOnHost(gomock.Any(), "a", gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ discovery.Request) *models.DiscoveryResult {
			discoverCtx = ctx

			deadline, ok := ctx.Deadline()
			require.True(t, ok, "discovery runs under the sweep deadline")
			assert.True(t, deadline.Equal(start.Add(2*time.Minute)), "deadline %s", deadline)
			assert.NoError(t, ctx.Err())

			return &models.DiscoveryResult{}
		})

	s := NewScheduler(Config{
		Queue:      q,
		Hosts:      fakeHosts{"a": checkParams(time.Minute), "b": checkParams(time.Minute), "c": checkParams(time.Minute)},
		Discoverer: discoverer,
		Clock:      clock,
		Deadline:   2 * time.Minute,
		Logger:     logger.NewTestLogger(),
	})

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]Outcome{"a": OutcomeUnchanged, "b": OutcomeDeferred, "c": OutcomeDeferred}, outcomes(report))
	require.NotNil(t, discoverCtx)
	assert.ErrorIs(t, discoverCtx.Err(), context.Canceled, "the discovery context is released")

	remaining, err := q.QueuedHosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, remaining)
}

func TestSweepEmptyQueue(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := NewScheduler(Config{
		Queue:      NewQueue(filepath.Join(t.TempDir(), "missing")),
		Hosts:      fakeHosts{},
		Discoverer: NewMockHostDiscoverer(ctrl),
		Core:       NewMockCoreClient(ctrl),
		Clock:      NewMockClock(ctrl),
		Logger:     logger.NewTestLogger(),
	})

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Hosts)
	assert.NotEmpty(t, report.RunID)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)

	ticks := make(chan time.Time)

	ticker := NewMockTicker(ctrl)
	ticker.EXPECT().Chan().Return((<-chan time.Time)(ticks)).AnyTimes()
	ticker.EXPECT().Stop()

	clock := NewMockClock(ctrl)
	clock.EXPECT().Ticker(time.Minute).Return(ticker)

	s := NewScheduler(Config{
		Queue:      NewQueue(filepath.Join(t.TempDir(), "autodiscovery")),
		Hosts:      fakeHosts{},
		Discoverer: NewMockHostDiscoverer(ctrl),
		Clock:      clock,
		Logger:     logger.NewTestLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Run(ctx, time.Minute), context.Canceled)
}
