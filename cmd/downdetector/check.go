package main

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/excoffierleonard/downdetector/internal/config"
	"github.com/excoffierleonard/downdetector/internal/domain"
	"github.com/excoffierleonard/downdetector/internal/probe"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every configured site once and exit",
	Long: `Probe all configured sites concurrently, print one line per site and
exit non-zero if any site is down. Handy for cron jobs and smoke tests.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := config.ResolvePath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	targets := cfg.Targets()
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "⚠ no sites configured in "+path)
		return nil
	}

	type line struct {
		target  domain.Target
		outcome probe.Outcome
	}

	p := probe.NewHTTPProber()
	results := make([]line, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t domain.Target) {
			defer wg.Done()
			results[i] = line{target: t, outcome: p.Probe(cmd.Context(), t.URL, t.Timeout)}
		}(i, t)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].target.URL < results[j].target.URL })

	down := 0
	for _, r := range results {
		if r.outcome.Healthy() {
			fmt.Printf("✔ %s %s (%.0f ms)\n", r.target.URL, r.outcome.Reason, r.outcome.LatencyMS)
		} else {
			down++
			fmt.Printf("✖ %s %s\n", r.target.URL, r.outcome.Reason)
		}
	}

	if down > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d sites down\n", down, len(results))
		os.Exit(1)
	}
	return nil
}
