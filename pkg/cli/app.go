package cli

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/checkplugins"
	"github.com/carverauto/autochecks/pkg/checktable"
	"github.com/carverauto/autochecks/pkg/config"
	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/lifecycle"
	"github.com/carverauto/autochecks/pkg/livestatus"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/natsutil"
	"github.com/carverauto/autochecks/pkg/rediscovery"
	"github.com/carverauto/autochecks/pkg/sections"
)

// app is the object graph shared by the commands.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	autochecks *autochecks.Manager
	builder    *checktable.Builder
	queue      *rediscovery.Queue
	resolver   *discovery.Resolver
	core       *livestatus.Client       // nil without a livestatus socket
	events     *natsutil.EventPublisher // nil unless events are enabled
	nc         *nats.Conn
}

func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg := &config.Config{}
	if err := config.LoadAndValidate(ctx, opts.ConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errLoadConfig, opts.ConfigPath, err)
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = logger.DefaultConfig()
	}

	if opts.Debug {
		logCfg.Debug = true
		logCfg.Level = "debug"
	}

	log, err := lifecycle.CreateComponentLogger("discovery", logCfg)
	if err != nil {
		return nil, err
	}

	registry, err := checkplugins.NewRegistry()
	if err != nil {
		return nil, err
	}

	if err := cfg.World.Bind(registry, nil, log); err != nil {
		return nil, fmt.Errorf("%w: %w", errLoadConfig, err)
	}

	cache := sections.NewFileCache(cfg.Paths.SectionCacheDir, cfg.Paths.ManagementCacheDir)
	fetcher := sections.NewFetcher(cache, sections.NewSNMPProvider(log), &cfg.World, cfg.SNMP, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		autochecks: autochecks.NewManager(cfg.Paths.AutochecksDir, log),
		queue:      rediscovery.NewQueue(cfg.Paths.AutodiscoveryDir),
	}
	a.builder = checktable.NewBuilder(&cfg.World, a.autochecks, log)

	if cfg.Livestatus.Socket != "" {
		a.core = livestatus.NewClient(cfg.Livestatus.Socket, cfg.Livestatus.Timeout.Std(), log)
	}

	if cfg.Events != nil && cfg.Events.Enabled {
		publisher, nc, err := natsutil.Connect(ctx, cfg.Events, log)
		if err != nil {
			log.Warn().Err(err).Msg("Event publishing disabled")
		} else {
			a.events = publisher
			a.nc = nc
		}
	}

	resolverCfg := discovery.ResolverConfig{
		Hosts:         &cfg.World,
		Registry:      registry,
		Sections:      fetcher,
		Autochecks:    a.autochecks,
		CheckTable:    a.builder,
		HostLabelsDir: cfg.Paths.HostLabelsDir,
		Marker:        a.queue,
		Logger:        log,
	}

	if a.events != nil {
		resolverCfg.Publisher = a.events
	}

	a.resolver = discovery.NewResolver(resolverCfg)

	return a, nil
}

// invalidate drops everything cached about hostname after its autochecks changed.
func (a *app) invalidate(hostname string) {
	a.autochecks.Invalidate(hostname)
	a.builder.Cache().InvalidateHost(hostname)
}

func (a *app) scheduler() *rediscovery.Scheduler {
	cfg := rediscovery.Config{
		Queue:             a.queue,
		Hosts:             &a.cfg.World,
		Discoverer:        a.resolver,
		InvalidateHost:    a.invalidate,
		Deadline:          a.cfg.Rediscovery.Deadline.Std(),
		CommandsPerSecond: a.cfg.Livestatus.CommandsPerSecond,
		Logger:            a.log,
	}

	if a.core != nil {
		cfg.Core = a.core
	}

	if a.events != nil {
		cfg.Publisher = a.events
	}

	return rediscovery.NewScheduler(cfg)
}

func (a *app) Close() {
	if a.nc != nil {
		a.nc.Close()
	}
}
