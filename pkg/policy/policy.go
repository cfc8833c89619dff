// Package policy is the public embedding facade: one host-facing API that
// wires config, telemetry, worldcache, the linker, and the evaluator
// together behind a small New/Link/Evaluate surface.
package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vectorpath/policyengine/internal/builtins"
	"github.com/vectorpath/policyengine/internal/compunit"
	"github.com/vectorpath/policyengine/internal/config"
	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/evaluator"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/linker"
	"github.com/vectorpath/policyengine/internal/telemetry"
	"github.com/vectorpath/policyengine/internal/world"
	"github.com/vectorpath/policyengine/internal/worldcache"
)

// Engine is a host's single entry point: register compilation units and
// function packages, Link once, then Evaluate/BatchEvaluate any number of
// times against the resulting World.
type Engine struct {
	cfg      config.EngineConfig
	log      *slog.Logger
	cache    *worldcache.Cache
	packages map[string]funcpkg.FunctionPackage
	world    *world.World
}

// Option configures a new Engine.
type Option func(*Engine)

// WithLogWriter directs the Engine's structured logging to w instead of
// os.Stderr.
func WithLogWriter(w io.Writer) Option {
	return func(e *Engine) { e.log = telemetry.New(w, e.cfg) }
}

// WithFunctionPackage registers an additional native function package
// under path, alongside (or overriding) the Standard() set.
func WithFunctionPackage(path string, pkg funcpkg.FunctionPackage) Option {
	return func(e *Engine) { e.packages[path] = pkg }
}

// WithoutStandardBuiltins drops the net/grpc/bits packages registered by
// default, for a host that wants a minimal, fully explicit registry.
func WithoutStandardBuiltins() Option {
	return func(e *Engine) { e.packages = map[string]funcpkg.FunctionPackage{} }
}

// New builds an Engine from cfg, with the standard net/grpc/bits function
// packages pre-registered (a host can remove them with
// WithoutStandardBuiltins, or add more with WithFunctionPackage).
func New(cfg config.EngineConfig, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:      cfg,
		packages: builtins.Standard(),
	}
	e.log = telemetry.New(os.Stderr, cfg)

	cache, err := worldcache.Open(cfg.WorldCachePath)
	if err != nil {
		return nil, fmt.Errorf("opening world cache: %w", err)
	}
	e.cache = cache

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewDefault builds an Engine from config.Default(), for hosts that don't
// need a config file.
func NewDefault(opts ...Option) (*Engine, error) {
	return New(config.Default(), opts...)
}

// Close releases the Engine's world cache handle, if one is open.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// Link builds a World from units and the Engine's registered function
// packages. It always runs the Linker; it does not read the world cache
// (see Digest and RecordLink for the host-driven cache bookkeeping).
func (e *Engine) Link(units []*compunit.CompilationUnit) []linker.BuildError {
	l := linker.New(units, e.packages, e.log)
	w, errs := l.Link()
	if len(errs) > 0 {
		return errs
	}
	e.world = w
	return nil
}

// Digest computes the world cache key for units and the Engine's current
// function package set, so a host can check worldcache itself before
// deciding whether a re-parse/re-link is worth doing at all.
func (e *Engine) Digest(unitSources []string) string {
	names := make([]string, 0, len(e.packages))
	for name := range e.packages {
		names = append(names, name)
	}
	return worldcache.Digest(unitSources, names)
}

// RecordLink stores bookkeeping about a successful Link under digest, so a
// later process can check whether its inputs already produced a known-good
// World without re-running the Linker's own validation (the host still
// must Link to get a live World back; this only informs "should I try").
func (e *Engine) RecordLink(ctx context.Context, digest string) error {
	if e.world == nil {
		return fmt.Errorf("policy: RecordLink called before a successful Link")
	}
	return e.cache.Store(ctx, worldcache.Entry{
		Digest:        digest,
		TypeNames:     e.world.TypeNames(),
		FunctionNames: functionNames(e.packages),
	})
}

// Evaluate evaluates qualifiedName against input. The Engine must have a
// successfully linked World (see Link).
func (e *Engine) Evaluate(ctx context.Context, qualifiedName string, input interface{}, ec evalctx.EvalContext) (evaluator.EvaluationResult, error) {
	if e.world == nil {
		return evaluator.EvaluationResult{}, fmt.Errorf("policy: Evaluate called before a successful Link")
	}
	rv, err := toRuntimeValue(input)
	if err != nil {
		return evaluator.EvaluationResult{}, err
	}
	return e.world.Evaluate(ctx, qualifiedName, rv, ec)
}

// BatchEvaluate runs jobs concurrently against the Engine's World (see
// evaluator.BatchEvaluate).
func (e *Engine) BatchEvaluate(ctx context.Context, jobs []evaluator.EvalJob, concurrency int) ([]evaluator.JobResult, error) {
	if e.world == nil {
		return nil, fmt.Errorf("policy: BatchEvaluate called before a successful Link")
	}
	return evaluator.BatchEvaluate(ctx, e.world, jobs, concurrency), nil
}

// Logger returns the Engine's structured logger, for a host that wants to
// share it with its own request-handling code.
func (e *Engine) Logger() *slog.Logger { return e.log }

func functionNames(packages map[string]funcpkg.FunctionPackage) []string {
	names := make([]string, 0, len(packages))
	for path, pkg := range packages {
		for _, fn := range pkg.FunctionNames() {
			names = append(names, path+"::"+fn)
		}
	}
	return names
}
