package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wiring/pkg/cache"
	werrors "github.com/matzehuels/wiring/pkg/errors"
	wio "github.com/matzehuels/wiring/pkg/io"
	"github.com/matzehuels/wiring/pkg/observability"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache       cache.Cache
	Keyer       cache.Keyer
	Logger      *log.Logger
	Concurrency int
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		Concurrency: DefaultConcurrency,
	}
}

// Execute runs the complete decode → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{InputHash: cache.Hash(input)}

	buildStart := time.Now()
	res, err := r.Build(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result.Build = res
	result.Stats.BuildTime = time.Since(buildStart)
	stats := res.Document.Stats()
	result.Stats.Devices = stats.Devices
	result.Stats.Connections = stats.Connections
	result.Stats.Diagnostics = len(res.Diagnostics)

	renderStart := time.Now()
	artifacts, info, err := r.Render(ctx, result.InputHash, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)
	seen := make(map[string]bool)
	for _, a := range artifacts {
		if a.Format != FormatJSON && !seen[a.Diagram] {
			seen[a.Diagram] = true
			result.Stats.Diagrams++
		}
	}

	r.Logger.Info("rendered outputs",
		"artifacts", len(artifacts),
		"cached", info.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build decodes input and builds the document under the policy of opts.
//
// Decoding failures and declarations that cannot be interpreted yield an
// INVALID_INPUT error. A strict abort yields VALIDATION_FAILED wrapping the
// [*wiring.FatalError].
func (r *Runner) Build(ctx context.Context, input []byte, opts Options) (*wiring.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	policy := opts.Policy()
	hooks.OnBuildStart(ctx, policy.String())
	start := time.Now()

	res, err := r.build(input, opts)
	devices, diags := 0, 0
	if res != nil {
		devices, diags = res.Document.DeviceCount(), len(res.Diagnostics)
	}
	hooks.OnBuildComplete(ctx, devices, diags, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("built document",
		"policy", policy,
		"devices", devices,
		"groups", len(res.Document.GroupNames()),
		"diagnostics", diags,
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) build(input []byte, opts Options) (*wiring.Result, error) {
	decls, err := wio.ParseYAML(input)
	if err != nil {
		return nil, err
	}
	res, err := wiring.Build(decls,
		wiring.WithPolicy(opts.Policy()),
		wiring.WithColorTable(opts.Colors))
	switch {
	case errors.Is(err, wiring.ErrAborted):
		return nil, werrors.Wrap(werrors.ErrCodeValidationFailed, err, "strict build aborted")
	case errors.Is(err, wiring.ErrInvalidDeclaration):
		return nil, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "invalid harness")
	case err != nil:
		return nil, werrors.Wrap(werrors.ErrCodeInternal, err, "build")
	}
	return res, nil
}

type job struct {
	diagram string
	dot     string
	format  string
}

// Render generates every requested artifact of res, reading and filling the
// cache. inputHash identifies the input the document was built from.
//
// Diagrams are rendered concurrently; the returned artifacts are ordered
// diagram by diagram, formats in request order, with the JSON model last.
func (r *Runner) Render(ctx context.Context, inputHash string, res *wiring.Result, opts Options) ([]Artifact, CacheInfo, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, CacheInfo{}, err
	}

	diagrams, err := SelectDiagrams(res.Document, opts)
	if err != nil {
		return nil, CacheInfo{}, err
	}

	var jobs []job
	for _, d := range diagrams {
		for _, f := range opts.Formats {
			if f != FormatJSON {
				jobs = append(jobs, job{diagram: d.Name, dot: d.DOT, format: f})
			}
		}
	}
	for _, f := range opts.Formats {
		if f == FormatJSON {
			jobs = append(jobs, job{format: f})
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, len(diagrams), opts.Formats)
	start := time.Now()

	artifacts := make([]Artifact, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for i, j := range jobs {
		g.Go(func() error {
			a, err := r.renderCached(gctx, inputHash, res, j, opts)
			if err != nil {
				return err
			}
			artifacts[i] = a
			return nil
		})
	}
	err = g.Wait()
	hooks.OnRenderComplete(ctx, len(diagrams), opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, CacheInfo{}, err
	}

	var info CacheInfo
	for _, a := range artifacts {
		if a.Cached {
			info.Hits++
		} else {
			info.Misses++
		}
	}
	return artifacts, info, nil
}

func (r *Runner) renderCached(ctx context.Context, inputHash string, res *wiring.Result, j job, opts Options) (Artifact, error) {
	hooks := observability.Cache()
	key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(j.format, j.diagram))
	a := Artifact{Diagram: j.diagram, Format: j.format}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, j.format)
			r.Logger.Debug("cache hit", "diagram", j.diagram, "format", j.format)
			a.Data, a.Cached = data, true
			return a, nil
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, j.format)
	}

	data, err := renderArtifact(ctx, res, j, opts)
	if err != nil {
		name := j.diagram
		if name == "" {
			name = "document"
		}
		return Artifact{}, fmt.Errorf("render %s %s: %w", name, j.format, err)
	}
	a.Data = data

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, j.format, len(data))
	}
	return a, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
