// Package batch lints and formats many SQL documents concurrently.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlstyle/internal/cache"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Document is one unit of input.
type Document struct {
	Path   string
	Source string
}

// Result is the outcome for one document. Err holds a lex or parse failure,
// or the context error when the run was cancelled before the document was
// processed.
type Result struct {
	Path       string           `json:"path"`
	Violations []lint.Violation `json:"violations"`
	Formatted  string           `json:"formatted,omitempty"`
	Cached     bool             `json:"cached,omitempty"`
	Err        error            `json:"-"`
}

// Failed reports whether the document could not be processed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Processor runs a Linter over documents with a bounded worker pool.
type Processor struct {
	linter  *sqlstyle.Linter
	style   style.Config
	cache   *cache.Cache
	workers int
	format  bool
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithCache reuses lint results stored in c.
func WithCache(c *cache.Cache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithWorkers bounds concurrency. Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}

// WithFormat also renders the canonical form of every document.
func WithFormat(enabled bool) Option {
	return func(p *Processor) { p.format = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(linter *sqlstyle.Linter, cfg style.Config, opts ...Option) *Processor {
	if linter == nil {
		linter = sqlstyle.New()
	}
	p := &Processor{
		linter: linter,
		style:  cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p
}

// Run processes docs and returns one result per document in input order.
// Failures are recorded per document and never stop the run. Cancellation
// is observed between documents; the returned error is the context error
// when the run was cut short.
func (p *Processor) Run(ctx context.Context, docs []Document) ([]Result, error) {
	results := make([]Result, len(docs))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, doc := range docs {
		results[i].Path = doc.Path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i] = p.process(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Debug("batch complete",
		slog.Int("documents", len(docs)),
		slog.Int("workers", p.workers),
		slog.Duration("elapsed", time.Since(start)),
	)
	return results, ctx.Err()
}

func (p *Processor) process(ctx context.Context, doc Document) Result {
	res := Result{Path: doc.Path}

	if p.format {
		diag, err := p.linter.Diagnose(doc.Source, p.style)
		if err != nil {
			res.Err = err
			return res
		}
		res.Violations = diag.Violations
		res.Formatted = diag.Formatted
		p.store(ctx, doc, res.Violations)
		return res
	}

	if violations, ok := p.lookup(ctx, doc); ok {
		res.Violations = violations
		res.Cached = true
		return res
	}

	violations, err := p.linter.Lint(doc.Source, p.style)
	if err != nil {
		res.Err = err
		return res
	}
	if violations == nil {
		violations = []lint.Violation{}
	}
	res.Violations = violations
	p.store(ctx, doc, violations)
	return res
}

func (p *Processor) key(doc Document) (string, string) {
	return cache.ContentHash(doc.Source), cache.Fingerprint(p.linter.Config(), p.style)
}

func (p *Processor) lookup(ctx context.Context, doc Document) ([]lint.Violation, bool) {
	if p.cache == nil {
		return nil, false
	}
	hash, fp := p.key(doc)
	violations, err := p.cache.Get(ctx, hash, fp)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			p.logger.Warn("cache read failed", slog.String("path", doc.Path), slog.Any("error", err))
		}
		return nil, false
	}
	p.logger.Debug("cache hit", slog.String("path", doc.Path))
	return violations, true
}

func (p *Processor) store(ctx context.Context, doc Document, violations []lint.Violation) {
	if p.cache == nil {
		return
	}
	hash, fp := p.key(doc)
	if err := p.cache.Put(ctx, hash, fp, violations); err != nil {
		p.logger.Warn("cache write failed", slog.String("path", doc.Path), slog.Any("error", err))
	}
}
