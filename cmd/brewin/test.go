package main

import (
	"brewin/internal/corpus"
	"brewin/internal/results"
	"brewin/internal/util"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"
)

func testCommand(config util.Configuration, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dialectName := fs.String("dialect", config.Dialect, "Dialect for cases that do not name one")
	globalScope := fs.Bool("global-scope", config.GlobalScope, "Enable global scope for every case")
	maxDepth := fs.Int("max-depth", config.MaxDepth, "Maximum call depth (0 for the default)")
	parallel := fs.Int("parallel", config.Parallelism, "Number of cases to run at once")
	dsn := fs.String("results", config.ResultsDSN, "Record outcomes in this database (sqlite3://, mysql://, postgres://)")
	label := fs.String("label", "", "Label stored with the recorded run")
	verbose := fs.Bool("verbose", false, "Print passing cases too")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: brewin test [flags] paths...")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cases, err := corpus.Load(fs.Args()...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	runner := &corpus.Runner{
		Parallelism: *parallel,
		Dialect:     *dialectName,
		GlobalScope: *globalScope,
		MaxDepth:    *maxDepth,
	}
	started := time.Now()
	summary, err := runner.Run(ctx, cases)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	printSummary(stdout, summary, *verbose)

	if *dsn != "" {
		if *label == "" {
			*label = strings.Join(fs.Args(), " ")
		}
		id, err := record(ctx, *dsn, *label, started, summary)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		slog.Info("run recorded", slog.Int64("id", id))
	}

	if summary.Failed > 0 {
		return exitError
	}
	return exitOK
}

func printSummary(w io.Writer, summary *corpus.Summary, verbose bool) {
	for _, res := range summary.Results {
		if res.Passed {
			if verbose {
				fmt.Fprintf(w, "PASS %s (%s)\n", res.Case.Name, res.Duration.Round(time.Microsecond))
			}
			continue
		}
		fmt.Fprintf(w, "FAIL %s [%s]\n", res.Case.Name, res.Case.Source)
		if res.Message != "" {
			fmt.Fprintf(w, "     %s\n", res.Message)
		}
		for _, line := range strings.Split(strings.TrimRight(res.Diff, "\n"), "\n") {
			fmt.Fprintf(w, "     %s\n", line)
		}
	}
	fmt.Fprintln(w, summary)
}

func record(ctx context.Context, dsn, label string, started time.Time, summary *corpus.Summary) (int64, error) {
	store, err := results.Open(ctx, dsn)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return 0, err
	}

	run := results.Run{
		Started:  started,
		Label:    label,
		Passed:   summary.Passed,
		Failed:   summary.Failed,
		Duration: summary.Duration,
	}
	cases := make([]results.CaseResult, 0, len(summary.Results))
	for _, res := range summary.Results {
		cases = append(cases, results.CaseResult{
			Name:     res.Case.Name,
			Source:   res.Case.Source,
			Dialect:  res.Dialect,
			Passed:   res.Passed,
			Error:    res.Error,
			Diff:     res.Diff,
			Duration: res.Duration,
		})
	}
	return store.Record(ctx, run, cases)
}

func historyCommand(config util.Configuration, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("results", config.ResultsDSN, "Results database (sqlite3://, mysql://, postgres://)")
	limit := fs.Int("n", 10, "Number of runs to list")
	runID := fs.Int64("run", 0, "Show the failed cases of this run instead")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *dsn == "" {
		fmt.Fprintln(stderr, "history needs -results or results_dsn in the configuration")
		return exitUsage
	}

	ctx := context.Background()
	store, err := results.Open(ctx, *dsn)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if *runID != 0 {
		failures, err := store.Failures(ctx, *runID)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		for _, c := range failures {
			fmt.Fprintf(stdout, "FAIL %s [%s] %s %s\n", c.Name, c.Source, c.Dialect, c.Error)
		}
		return exitOK
	}

	runs, err := store.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%4d  %s  %3d passed  %3d failed  %8s  %s\n",
			r.ID, r.Started.Format(time.RFC3339), r.Passed, r.Failed, r.Duration, r.Label)
	}
	return exitOK
}
