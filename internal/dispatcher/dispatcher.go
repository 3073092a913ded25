// Package dispatcher fans a list of URLs out to an extractor invoker through
// a fixed pool of workers.
package dispatcher

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/monsterinc/jshunter/internal/extractor"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Gate holds workers back before they start an item
type Gate interface {
	WaitForCapacity(ctx context.Context) error
}

// Config controls one dispatch
type Config struct {
	Stage       string
	Concurrency int
	// ItemTimeout bounds each invocation; zero means no deadline.
	ItemTimeout time.Duration
}

// ItemResult is the outcome of one per-URL invocation. A failed item
// carries Err and contributes no lines.
type ItemResult struct {
	Index    int
	URL      string
	Lines    []string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

func (r ItemResult) Succeeded() bool {
	return r.Err == nil
}

// ResultHandler receives every finished item. Calls never overlap. A
// returned error aborts the dispatch.
type ResultHandler func(ItemResult) error

// Dispatcher runs an invoker over many URLs with bounded concurrency
type Dispatcher struct {
	config  Config
	invoker extractor.Invoker
	gate    Gate
	logger  zerolog.Logger
}

// Option customizes a Dispatcher
type Option func(*Dispatcher)

// WithGate installs a resource gate consulted before every item
func WithGate(g Gate) Option {
	return func(d *Dispatcher) { d.gate = g }
}

func New(cfg Config, invoker extractor.Invoker, logger zerolog.Logger, opts ...Option) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	d := &Dispatcher{
		config:  cfg,
		invoker: invoker,
		logger:  logger.With().Str("component", "Dispatcher").Str("stage", cfg.Stage).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run invokes the collaborator once per URL with at most Concurrency
// invocations in flight and returns the finished items ordered by index.
//
// Per-item failures are recorded in the results and never abort the run.
// Run returns an error only when the invoker cannot be prepared, the
// handler fails or ctx ends; finished items are returned in every case.
// An empty URL list returns immediately without preparing the invoker.
func (d *Dispatcher) Run(ctx context.Context, urls []string, onResult ResultHandler) ([]ItemResult, error) {
	if len(urls) == 0 {
		d.logger.Info().Msg("No URLs to dispatch")
		return nil, nil
	}

	if err := d.invoker.Prepare(); err != nil {
		return nil, err
	}

	workers := min(d.config.Concurrency, len(urls))
	d.logger.Info().
		Int("urls", len(urls)).
		Int("workers", workers).
		Dur("item_timeout", d.config.ItemTimeout).
		Msg("Starting dispatch")

	queue := make(chan int, len(urls))
	for i := range urls {
		queue <- i
	}
	close(queue)

	var (
		mu       sync.Mutex
		results  = make([]ItemResult, 0, len(urls))
		failures int
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for idx := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				if d.gate != nil {
					if err := d.gate.WaitForCapacity(gctx); err != nil {
						return err
					}
				}

				res := d.runItem(gctx, idx, urls[idx])

				mu.Lock()
				results = append(results, res)
				if !res.Succeeded() {
					failures++
				}
				var handlerErr error
				if onResult != nil {
					handlerErr = onResult(res)
				}
				mu.Unlock()

				if handlerErr != nil {
					return handlerErr
				}
			}
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	d.logger.Info().
		Int("completed", len(results)).
		Int("failed", failures).
		Dur("duration", time.Since(start)).
		Msg("Dispatch finished")

	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

func (d *Dispatcher) runItem(ctx context.Context, idx int, url string) ItemResult {
	itemCtx := ctx
	if d.config.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, d.config.ItemTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := d.invoker.Invoke(itemCtx, url)
	res := ItemResult{
		Index:    idx,
		URL:      url,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("url", url).
			Int("exit_code", out.ExitCode).
			Str("stderr", firstLine(out.Stderr)).
			Dur("duration", res.Duration).
			Msg("Item failed")
		return res
	}

	res.Lines = out.Lines
	d.logger.Debug().
		Str("url", url).
		Int("lines", len(out.Lines)).
		Dur("duration", res.Duration).
		Msg("Item finished")
	return res
}

// Failed returns the failed items of results
func Failed(results []ItemResult) []ItemResult {
	var failed []ItemResult
	for _, r := range results {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Lines concatenates the lines of every successful item in index order
func Lines(results []ItemResult) []string {
	var lines []string
	for _, r := range results {
		if r.Succeeded() {
			lines = append(lines, r.Lines...)
		}
	}
	return lines
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
