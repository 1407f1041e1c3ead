package corpus

import (
	"brewin/internal/console"
	"brewin/internal/evaluator"
	"brewin/internal/object"
	"brewin/internal/parser"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one case.
type Result struct {
	Case     *Case
	Dialect  string
	Passed   bool
	Output   []string
	Error    string // kind of the fatal error the program ended with, if any
	Message  string
	Diff     string
	Duration time.Duration
}

type Summary struct {
	Results  []Result
	Passed   int
	Failed   int
	Duration time.Duration
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed (%s)", s.Passed, s.Failed, s.Duration.Round(time.Millisecond))
}

// Runner executes cases concurrently, each on its own interpreter.
type Runner struct {
	Parallelism int
	// Dialect applies to cases that do not name one.
	Dialect     string
	GlobalScope bool
	MaxDepth    int
	Logger      *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes every case and returns results in input order. It stops
// scheduling new cases once ctx is cancelled.
func (r *Runner) Run(ctx context.Context, cases []*Case) (*Summary, error) {
	start := time.Now()
	results := make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	limit := r.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, c := range cases {
		if ctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.RunCase(c)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Results: results, Duration: time.Since(start)}
	for _, res := range results {
		if res.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	r.logger().Info("corpus finished", "passed", summary.Passed, "failed", summary.Failed, "duration", summary.Duration)
	return summary, nil
}

// RunCase runs one case to completion. The returned error is reserved for
// misconfigured cases, such as an unknown dialect; program failures are
// reported in the Result.
func (r *Runner) RunCase(c *Case) (Result, error) {
	name := c.Dialect
	if name == "" {
		name = r.Dialect
	}
	dialect, err := evaluator.LookupDialect(name)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	if r.GlobalScope {
		dialect.GlobalScope = true
	}

	start := time.Now()
	script := console.NewScript(c.Input...)
	runErr := r.execute(c, dialect, script)

	res := Result{
		Case:     c,
		Dialect:  dialect.Name,
		Output:   script.Lines(),
		Duration: time.Since(start),
	}
	if runErr != nil {
		res.Error, res.Message = classify(runErr)
	}

	res.Diff = cmp.Diff(c.Output, res.Output, cmpopts.EquateEmpty())
	if res.Error != c.Error {
		res.Diff += fmt.Sprintf("error: want %q, got %q\n", c.Error, res.Error)
	}
	res.Passed = res.Diff == ""

	log := r.logger().With("case", c.Name, "dialect", dialect.Name, "duration", res.Duration)
	if res.Passed {
		log.Info("case passed")
	} else {
		log.Warn("case failed", "error", res.Message, "diff", res.Diff)
	}
	return res, nil
}

func (r *Runner) execute(c *Case, dialect evaluator.Dialect, script *console.Script) error {
	program, err := parser.Parse(c.Program)
	if err != nil {
		return err
	}
	ev, err := evaluator.New(program,
		evaluator.WithDialect(dialect),
		evaluator.WithIO(script),
		evaluator.WithMaxDepth(r.MaxDepth),
		evaluator.WithLogger(r.logger()),
	)
	if err != nil {
		return err
	}
	return ev.Run()
}

// classify maps a run error to its expected-error kind and message.
func classify(err error) (string, string) {
	var re *object.RuntimeError
	if errors.As(err, &re) {
		return string(re.Kind), err.Error()
	}
	var pe parser.ErrorList
	if errors.As(err, &pe) {
		return SyntaxError, err.Error()
	}
	return "IO_ERROR", err.Error()
}
