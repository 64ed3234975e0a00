// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package rules

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pixivfe/i18ncheck/catalog"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

// Result is what a batch of calls produced.
type Result struct {
	Diagnostics []diagnostic.Diagnostic
	Used        []catalog.UsedRecord
}

// Runner applies checks to calls. The catalog must not change while it runs.
type Runner struct {
	Env    Env
	Checks []Check

	// Workers bounds parallelism. Zero means GOMAXPROCS.
	Workers int

	logger zerolog.Logger
}

// NewRunner returns a Runner for the checks enabled in opts.
func NewRunner(cat Catalog, opts Options, workers int) *Runner {
	return &Runner{
		Env:     Env{Catalog: cat, StrictLocales: opts.StrictLocales},
		Checks:  Select(opts),
		Workers: workers,
		logger:  log.With().Str("sys", "rules").Logger(),
	}
}

// Run checks every call. Each worker owns a contiguous run of calls and keeps
// its results per call, so the merged output follows the order of calls no
// matter how work was scheduled.
//
// A panicking check aborts the run with a *diagnostic.InternalError.
func (r *Runner) Run(ctx context.Context, calls []Call) (Result, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	workers = max(1, min(workers, len(calls)))
	chunk := (len(calls) + workers - 1) / workers

	diags := make([][]diagnostic.Diagnostic, len(calls))
	used := make([][]catalog.UsedRecord, len(calls))

	g, ctx := errgroup.WithContext(ctx)

	for start := 0; start < len(calls); start += chunk {
		end := min(start+chunk, len(calls))

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				d, err := r.check(calls[i])
				if err != nil {
					return err
				}

				diags[i] = d
				used[i] = calls[i].Used()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	for i := range calls {
		res.Diagnostics = append(res.Diagnostics, diags[i]...)
		res.Used = append(res.Used, used[i]...)
	}

	r.logger.Debug().
		Int("calls", len(calls)).
		Int("workers", workers).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("Checked translation calls")

	return res, nil
}

func (r *Runner) check(call Call) (diags []diagnostic.Diagnostic, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = diagnostic.Internal(
				fmt.Sprintf("checking call at %s:%d", call.File, call.Line),
				fmt.Errorf("%w: panic: %v", diagnostic.ErrInvariant, p),
			)
		}
	}()

	ts := call.Translations(r.Env.Catalog)

	for _, check := range r.Checks {
		diags = append(diags, check(r.Env, call, ts)...)
	}

	return diags, nil
}

// Collector accumulates used records across batches. It may be drained once.
type Collector struct {
	mu      sync.Mutex
	records []catalog.UsedRecord
	drained bool
}

// Add appends records. Adding after Drain is an internal error.
func (c *Collector) Add(records ...catalog.UsedRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drained {
		return diagnostic.Internalf("rules.Collector.Add", "records added after drain")
	}

	c.records = append(c.records, records...)

	return nil
}

// Drain returns every record added so far and closes the collector.
func (c *Collector) Drain() ([]catalog.UsedRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drained {
		return nil, diagnostic.Internalf("rules.Collector.Drain", "collector drained twice")
	}

	c.drained = true
	records := c.records
	c.records = nil

	return records, nil
}
