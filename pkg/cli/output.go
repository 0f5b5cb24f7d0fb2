package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
	"github.com/carverauto/autochecks/pkg/rediscovery"
)

//nolint:gochecknoglobals // color printers
var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func printDiscoveryResult(w io.Writer, host string, result *models.DiscoveryResult, withDiff bool) {
	switch {
	case result.ErrorText != nil && *result.ErrorText == "":
		fmt.Fprintf(w, "%s: %s\n", bold(host), gray("skipped, host is not monitored"))

		return
	case result.ErrorText != nil:
		fmt.Fprintf(w, "%s: %s %s\n", bold(host), red("ERROR"), *result.ErrorText)

		return
	}

	fmt.Fprintf(w, "%s: %s new, %s removed, %d kept, %d total services; %s new, %d total host labels\n",
		bold(host),
		count(result.SelfNew, green),
		count(result.SelfRemoved, yellow),
		result.SelfKept,
		result.SelfTotal,
		count(result.SelfNewHostLabels, green),
		result.SelfTotalHostLabels,
	)

	if result.ClusteredNew+result.ClusteredOld+result.ClusteredVanished > 0 {
		fmt.Fprintf(w, "  clustered: %d new, %d old, %d vanished\n",
			result.ClusteredNew, result.ClusteredOld, result.ClusteredVanished)
	}

	if withDiff && result.DiffText != "" {
		for _, line := range strings.Split(result.DiffText, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func count(n int, paint func(a ...interface{}) string) string {
	if n == 0 {
		return "0"
	}

	return paint(n)
}

func paintOutcome(o rediscovery.Outcome) string {
	switch o {
	case rediscovery.OutcomeChanged:
		return green(string(o))
	case rediscovery.OutcomeFailed:
		return red(string(o))
	case rediscovery.OutcomeSkipped, rediscovery.OutcomeDeferred:
		return yellow(string(o))
	default:
		return gray(string(o))
	}
}

func printSweepReport(w io.Writer, report *rediscovery.SweepReport) {
	fmt.Fprintf(w, "%s %s\n", cyan("sweep"), report.RunID)

	if len(report.Hosts) == 0 {
		fmt.Fprintln(w, gray("  no hosts queued"))

		return
	}

	for _, h := range report.Hosts {
		if h.Reason != "" {
			fmt.Fprintf(w, "  %-24s %s (%s)\n", h.Host, paintOutcome(h.Outcome), h.Reason)
		} else {
			fmt.Fprintf(w, "  %-24s %s\n", h.Host, paintOutcome(h.Outcome))
		}
	}

	if report.ActivationRequested {
		fmt.Fprintf(w, "%s for %s\n", green("activation requested"), strings.Join(report.ActivatedHosts, ", "))
	}
}

func stateName(state int) string {
	switch state {
	case discovery.StateOK:
		return green("OK")
	case discovery.StateWarn:
		return yellow("WARN")
	case discovery.StateCrit:
		return red("CRIT")
	default:
		return red("UNKNOWN")
	}
}
