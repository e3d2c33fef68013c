// Package preview turns markup and variables into rendered documents for
// display, keeping only the newest result.
//
// Each call to [Previewer.Preview] takes a token from a counter that only
// grows. Starting a request cancels the one in flight, and a result whose
// token is no longer the latest is discarded with [ErrSuperseded], so a
// slow response can never overwrite a newer one. Rendered artifacts are
// cached by a hash of markup and variables.
package preview

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/cache"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/observability"
)

// ErrSuperseded is returned for a request overtaken by a newer one.
var ErrSuperseded = errors.New("preview superseded by a newer request")

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = time.Hour

// Compiler renders markup with a variable map.
type Compiler interface {
	Compile(ctx context.Context, markup string, vars map[string]string) ([]byte, error)
}

// Options configures a Previewer.
type Options struct {
	Cache  cache.Cache   // defaults to no caching
	TTL    time.Duration // defaults to DefaultTTL
	Logger *log.Logger
}

// Result is a rendered document.
type Result struct {
	Token    uint64
	Document []byte
	Cached   bool
	Duration time.Duration
}

// Previewer issues compile requests with latest-wins semantics.
type Previewer struct {
	compiler Compiler
	cache    cache.Cache
	ttl      time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// New returns a Previewer that compiles with c.
func New(c Compiler, opts Options) *Previewer {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Previewer{compiler: c, cache: opts.Cache, ttl: opts.TTL, logger: opts.Logger}
}

// Latest returns the token of the most recent request, or 0.
func (p *Previewer) Latest() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Cancel aborts the request in flight, if any. Its caller receives
// ErrSuperseded.
func (p *Previewer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Preview renders markup with vars. It cancels any earlier request and
// returns ErrSuperseded if a later request starts before it finishes.
func (p *Previewer) Preview(ctx context.Context, markup string, vars map[string]string) (Result, error) {
	start := time.Now()
	token, ctx, done := p.begin(ctx)
	defer done()

	hooks := observability.Compile()
	key := cache.PreviewKey(markup, vars)

	if data, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, key, len(data))
		if !p.isLatest(token) {
			return Result{}, p.superseded(ctx, token)
		}
		p.logger.Debug("preview cache hit", "token", token)
		return Result{Token: token, Document: data, Cached: true, Duration: time.Since(start)}, nil
	} else if err != nil {
		p.logger.Warn("preview cache read failed", "err", err)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}

	hooks.OnCompileStart(ctx, token)
	data, err := p.compiler.Compile(ctx, markup, vars)
	elapsed := time.Since(start)
	hooks.OnCompileComplete(ctx, token, len(data), elapsed, err)

	if err == nil {
		if serr := p.cache.Set(context.WithoutCancel(ctx), key, data, p.ttl); serr != nil {
			p.logger.Warn("preview cache write failed", "err", serr)
		} else {
			observability.Cache().OnCacheStore(ctx, key, len(data), p.ttl)
		}
	}
	if !p.isLatest(token) {
		return Result{}, p.superseded(ctx, token)
	}
	if err != nil {
		p.logger.Warn("preview failed", "token", token, "err", err)
		return Result{}, err
	}
	p.logger.Debug("preview compiled", "token", token, "bytes", len(data), "duration", elapsed)
	return Result{Token: token, Document: data, Duration: elapsed}, nil
}

// begin takes a new token, cancels the previous request and returns a
// context cancelled by the next one.
func (p *Previewer) begin(parent context.Context) (uint64, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.latest++
	token := p.latest
	p.cancel = cancel
	p.mu.Unlock()

	return token, ctx, func() {
		p.mu.Lock()
		if p.latest == token {
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}
}

func (p *Previewer) isLatest(token uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest == token
}

func (p *Previewer) superseded(ctx context.Context, token uint64) error {
	observability.Compile().OnCompileSuperseded(ctx, token)
	p.logger.Debug("preview superseded", "token", token)
	return ErrSuperseded
}
