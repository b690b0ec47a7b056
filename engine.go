package routeprobe

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Engine ties RouteSpec discovery, TypeRegistry, Transport, Validator,
// and AuthDecorator together into one runnable unit, the top-level
// top-level object orchestrating the other components. Concurrency
// across routes is bounded with golang.org/x/sync/errgroup; each trial
// draws from its own *SplitRNG child (via Split(routeIndex, trial) on
// the shared root, which does not advance the root's stream), so no
// locking is needed between them; only the shared, read-only
// TypeRegistry and the result aggregator are touched from more than one
// goroutine.
type Engine struct {
	Registry  *TypeRegistry
	Transport Transport
	Validator Validator
	Auth      *AuthDecorator
	Logger    *slog.Logger
	Metrics   *Metrics

	Settings Settings
}

// NewEngine builds an Engine with sane component defaults: a plain
// TypeRegistry, an HTTPTransport, NewFailOn5xxValidator, no auth, and a
// default logger — callers override any field before calling Run.
func NewEngine(settings Settings) (*Engine, error) {
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return &Engine{
		Registry:  NewTypeRegistry(),
		Transport: NewHTTPTransport(settings.RequestTimeout),
		Validator: NewFailOn5xxValidator(),
		Logger:    slog.Default(),
		Metrics:   NoopMetrics(),
		Settings:  settings,
	}, nil
}

// Run discovers nothing on its own — routes is the already-normalized
// RouteSpec set (an extractor upstream of Engine is responsible for
// producing it from OpenAPI, a live router, or hand-written specs).
// Run filters routes per Settings, fans out TrialRunner.RunRoute calls
// bounded by Settings.Concurrency, and aggregates the results.
func (e *Engine) Run(ctx context.Context, routes []*RouteSpec) (*RunResult, error) {
	type task struct {
		route  *RouteSpec
		method string
		index  int
	}

	var taskMethods, taskPaths []string
	var tasks []task
	for _, r := range routes {
		for _, m := range r.Methods {
			taskMethods = append(taskMethods, m)
			taskPaths = append(taskPaths, r.Path)
			tasks = append(tasks, task{route: r, method: m})
		}
	}

	filter := NewFilter(e.Settings.Include, e.Settings.Exclude, e.Settings.Methods)
	filtered, err := Apply(filter, taskMethods, taskPaths, tasks)
	if err != nil {
		return nil, err
	}
	for i := range filtered {
		filtered[i].index = i
	}

	rootRNG := NewSplitRNG(e.Settings.Seed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Settings.Concurrency)

	var mu sync.Mutex
	result := &RunResult{}

	for _, tsk := range filtered {
		tsk := tsk
		g.Go(func() error {
			runner := &TrialRunner{
				Registry:        e.Registry,
				Transport:       e.Transport,
				Validator:       e.Validator,
				Auth:            e.Auth,
				Encoder:         NewPathEncoder(),
				Logger:          e.Logger,
				Metrics:         e.Metrics,
				TrialsPerRoute:  e.Settings.TrialsPerRoute,
				MaxShrinkRounds: e.Settings.MaxShrinkRounds,
				BaseURL:         e.Settings.BaseURL,
			}
			failures, err := runner.RunRoute(gctx, tsk.route, tsk.method, tsk.index, rootRNG)
			if err != nil {
				return err
			}

			mu.Lock()
			result.Counters.RoutesCovered++
			result.Counters.TrialsRun += e.Settings.TrialsPerRoute
			result.Counters.TrialsFailed += len(failures)
			result.Failures = append(result.Failures, failures...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// RunStateful runs stateful-mode sequences against rules, the §6
// counterpart of Run.
func (e *Engine) RunStateful(ctx context.Context, settings StatefulSettings, rules []OperationRule, links []ExplicitLink) (*RunResult, error) {
	if err := ValidateStatefulSettings(settings); err != nil {
		return nil, err
	}
	runner := &StateMachineRunner{
		Registry:          e.Registry,
		Transport:         e.Transport,
		Validator:         e.Validator,
		Auth:              e.Auth,
		Encoder:           NewPathEncoder(),
		Logger:            e.Logger,
		BaseURL:           settings.BaseURL,
		Rules:             rules,
		Links:             links,
		MaxSequenceLength: settings.MaxSequenceLength,
	}
	rootRNG := NewSplitRNG(settings.Seed)
	results, err := runner.RunSequences(ctx, settings.NumSequences, rootRNG)
	if err != nil {
		return nil, err
	}

	out := &RunResult{StateRuns: results}
	for _, r := range results {
		out.Counters.TrialsRun += len(r.Steps)
		if r.Failure != nil {
			out.Counters.TrialsFailed++
			out.Failures = append(out.Failures, r.Failure)
		}
	}
	return out, nil
}
