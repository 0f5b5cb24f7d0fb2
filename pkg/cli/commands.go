package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/carverauto/autochecks/pkg/checktable"
	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
)

type discoverOptions struct {
	mode    string
	onError string
	cached  bool
	diff    bool
}

func newDiscoverCommand(root *RootOptions) *cobra.Command {
	opts := &discoverOptions{}

	cmd := &cobra.Command{
		Use:   "discover <host>...",
		Short: "Run service and host label discovery on hosts",
		Long: `Run discovery on each host and update its autochecks and host labels.

Modes:
  new               add unmonitored services and new host labels
  remove            drop vanished services
  fixall            add new and drop vanished services
  refresh           rewrite the autochecks from scratch
  only-host-labels  update host labels only`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(models.ModeNew), "Discovery mode")
	cmd.Flags().StringVar(&opts.onError, "on-error", string(models.OnErrorWarn), "Plugin error policy: ignore, warn or raise")
	cmd.Flags().BoolVar(&opts.cached, "cached", false, "Use cached sections instead of fetching")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Print the service changes of every host")

	return cmd
}

func runDiscover(cmd *cobra.Command, root *RootOptions, opts *discoverOptions, hosts []string) error {
	mode, err := models.ParseDiscoveryMode(opts.mode)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Err: err}
	}

	onError, err := models.ParseOnError(opts.onError)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Err: err}
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, root)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Err: err}
	}
	defer a.Close()

	req := discovery.Request{
		Mode:              mode,
		Filters:           discovery.AcceptAll(),
		OnError:           onError,
		UseCachedSections: opts.cached,
	}

	failed := 0

	for _, host := range hosts {
		result := a.resolver.DiscoverOnHost(ctx, host, req)
		if result.SomethingChanged() {
			a.invalidate(host)
		}

		printDiscoveryResult(cmd.OutOrStdout(), host, result, opts.diff)

		if result.ErrorText != nil && *result.ErrorText != "" {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w on %d of %d hosts", errDiscoveryFailed, failed, len(hosts))
	}

	return nil
}

func newAutodiscoveryCommand(root *RootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "autodiscovery",
		Short: "Rediscover the hosts queued by the discovery check",
		Long: `Sweep the autodiscovery queue once. With --interval the sweep repeats
until the process is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < 0 {
				return &ExitError{Code: ExitCommandError, Err: errNegativeInterval}
			}

			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Err: err}
			}
			defer a.Close()

			scheduler := a.scheduler()

			if interval > 0 {
				return scheduler.Run(cmd.Context(), interval)
			}

			report, err := scheduler.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			printSweepReport(cmd.OutOrStdout(), report)

			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat the sweep at this interval")

	return cmd
}

type checkTableOptions struct {
	filterMode     string
	skipAutochecks bool
	skipIgnored    bool
}

func newCheckTableCommand(root *RootOptions) *cobra.Command {
	opts := &checkTableOptions{}

	cmd := &cobra.Command{
		Use:   "check-table <host>",
		Short: "Print the services the monitoring core checks on a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckTable(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.filterMode, "filter-mode", "none", "Cluster filter: none, only-clustered or include-clustered")
	cmd.Flags().BoolVar(&opts.skipAutochecks, "skip-autochecks", false, "Leave out discovered services")
	cmd.Flags().BoolVar(&opts.skipIgnored, "skip-ignored", true, "Leave out services disabled by rules")

	return cmd
}

func runCheckTable(cmd *cobra.Command, root *RootOptions, opts *checkTableOptions, host string) error {
	mode, err := checktable.ParseFilterMode(opts.filterMode)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Err: err}
	}

	a, err := newApp(cmd.Context(), root)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Err: err}
	}
	defer a.Close()

	table, err := a.builder.GetCheckTable(host, checktable.Options{
		FilterMode:     mode,
		SkipAutochecks: opts.skipAutochecks,
		SkipIgnored:    opts.skipIgnored,
		UseCache:       true,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLUGIN\tITEM\tDESCRIPTION\tPARAMETERS")

	for _, svc := range table.Services() {
		parameters, err := json.Marshal(svc.Parameters)
		if err != nil {
			return fmt.Errorf("service %s: %w", svc.Description, err)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", svc.CheckPluginName, svc.Item, svc.Description, parameters)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d services on %s\n", table.Len(), bold(host))

	return nil
}

func newCheckDiscoveryCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-discovery <host>",
		Short: "Run the discovery check of a host",
		Long: `Compare the current services and host labels of a host with its
autochecks. The exit code is the monitoring state of the result. When
the host is configured for it, the host is queued for autodiscovery.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Err: err}
			}
			defer a.Close()

			result := a.resolver.CheckDiscovery(cmd.Context(), args[0])

			fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", stateName(result.State), result.Summary)

			for _, line := range result.Details {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if result.State != discovery.StateOK {
				return &ExitError{Code: result.State}
			}

			return nil
		},
	}
}
