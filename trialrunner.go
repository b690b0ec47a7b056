package routeprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
)

// TrialRunner executes the per-route trial loop: draw inputs, build a
// Request, send it through Transport, validate the Response, and on
// failure shrink the draw down to a minimal reproduction.
type TrialRunner struct {
	Registry  *TypeRegistry
	Transport Transport
	Validator Validator
	Auth      *AuthDecorator
	Encoder   *PathEncoder
	Logger    *slog.Logger
	Metrics   *Metrics

	TrialsPerRoute int
	MaxShrinkRounds int
	BaseURL        string
}

// routeInputs is the in-memory shape drawn for one trial: every path,
// query, and header parameter plus an optional body, held as a single
// NodeRecord DrawTree so the whole trial shrinks as one unit.
type routeInputs struct {
	PathValues   map[string]any
	QueryValues  map[string]any
	HeaderValues map[string]any
	Body         any
}

// routeInputsGenerator composes a RouteSpec's declared parameters into
// a single Generator, the trial-level equivalent of RecordGen.
type routeInputsGenerator struct {
	order    []string
	kinds    []string // "path" | "query" | "header" | "body"
	gens     []Generator
}

// sortedKeys returns a map's keys in a fixed, deterministic order so
// that every composite generator built from a RouteSpec's parameter
// maps assigns the same RNG substream index and DrawTree field position
// to the same parameter name on every run, regardless of Go's
// unspecified map iteration order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newRouteInputsGenerator(r *RouteSpec, registry *TypeRegistry) (*routeInputsGenerator, error) {
	g := &routeInputsGenerator{}
	for _, name := range sortedKeys(r.PathParams) {
		gen, err := registry.Resolve(r.PathParams[name])
		if err != nil {
			return nil, err
		}
		g.order = append(g.order, name)
		g.kinds = append(g.kinds, "path")
		g.gens = append(g.gens, gen)
	}
	for _, name := range sortedKeys(r.QueryParams) {
		qp := r.QueryParams[name]
		t := qp.Type
		if !qp.Required {
			t = Optional(t)
		}
		gen, err := registry.Resolve(t)
		if err != nil {
			return nil, err
		}
		g.order = append(g.order, name)
		g.kinds = append(g.kinds, "query")
		g.gens = append(g.gens, gen)
	}
	for _, name := range sortedKeys(r.HeaderParams) {
		gen, err := registry.Resolve(Optional(r.HeaderParams[name]))
		if err != nil {
			return nil, err
		}
		g.order = append(g.order, name)
		g.kinds = append(g.kinds, "header")
		g.gens = append(g.gens, gen)
	}
	if r.Body != nil {
		gen, err := registry.Resolve(*r.Body)
		if err != nil {
			return nil, err
		}
		g.order = append(g.order, "")
		g.kinds = append(g.kinds, "body")
		g.gens = append(g.gens, gen)
	}
	return g, nil
}

func (g *routeInputsGenerator) Draw(rng *SplitRNG, size int) (any, *DrawTree) {
	children := make([]*DrawTree, len(g.gens))
	inputs := routeInputs{
		PathValues:   map[string]any{},
		QueryValues:  map[string]any{},
		HeaderValues: map[string]any{},
	}
	for i, gen := range g.gens {
		v, sub := gen.Draw(rng.Split(int64(i)), size)
		children[i] = sub
		switch g.kinds[i] {
		case "path":
			inputs.PathValues[g.order[i]] = v
		case "query":
			inputs.QueryValues[g.order[i]] = v
		case "header":
			inputs.HeaderValues[g.order[i]] = v
		case "body":
			inputs.Body = v
		}
	}
	return inputs, &DrawTree{NodeType: NodeRecord, Children: children, FieldNames: append([]string(nil), g.order...)}
}

func (g *routeInputsGenerator) Shrink(tree *DrawTree) []*DrawTree {
	var out []*DrawTree
	for i, gen := range g.gens {
		for _, sc := range gen.Shrink(tree.Children[i]) {
			cand := make([]*DrawTree, len(tree.Children))
			copy(cand, tree.Children)
			cand[i] = sc
			out = append(out, &DrawTree{NodeType: NodeRecord, FieldNames: tree.FieldNames, Children: cand})
		}
	}
	return out
}

func (g *routeInputsGenerator) Rebuild(tree *DrawTree) (any, error) {
	inputs := routeInputs{
		PathValues:   map[string]any{},
		QueryValues:  map[string]any{},
		HeaderValues: map[string]any{},
	}
	for i := range g.gens {
		v := treeToValue(tree.Children[i])
		switch g.kinds[i] {
		case "path":
			inputs.PathValues[g.order[i]] = v
		case "query":
			inputs.QueryValues[g.order[i]] = v
		case "header":
			inputs.HeaderValues[g.order[i]] = v
		case "body":
			inputs.Body = v
		}
	}
	return inputs, nil
}

// RunRoute runs TrialsPerRoute trials against one (route, method) pair,
// returning every FailureReport found (already shrunk).
func (t *TrialRunner) RunRoute(ctx context.Context, route *RouteSpec, method string, routeIndex int, rng *SplitRNG) ([]*FailureReport, error) {
	gen, err := newRouteInputsGenerator(route, t.Registry)
	if err != nil {
		return nil, err
	}

	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	identity := route.Identity(method)

	var failures []*FailureReport
	for trial := 0; trial < t.TrialsPerRoute; trial++ {
		trialRNG := rng.Split(int64(routeIndex), int64(trial))
		value, tree := gen.Draw(trialRNG, 10)
		inputs := value.(routeInputs)

		resp, req, sendErr := t.sendTrial(ctx, route, method, identity, inputs)
		if sendErr != nil {
			var missing *MissingCredentialError
			if errors.As(sendErr, &missing) {
				// A missing credential is a route-level configuration
				// problem, not a per-trial condition: it fails every
				// trial identically, so report it once and stop
				// instead of burning the rest of TrialsPerRoute.
				logger.Warn("missing credential, aborting route", slog.String("route", identity), slog.Any("error", missing))
				return []*FailureReport{{
					Route:    route.Path,
					Method:   method,
					SeedPath: []int64{int64(routeIndex), int64(trial)},
					Request:  req,
					Reason:   "missing credential: " + missing.Error(),
				}}, nil
			}
			var terr *TransportError
			if te, ok := sendErr.(*TransportError); ok {
				terr = te
			}
			logger.Warn("transport error", slog.String("route", identity), slog.Any("error", terr))
			continue
		}

		if t.Metrics != nil {
			t.Metrics.TrialsTotal.WithLabelValues(route.Path, method).Inc()
			t.Metrics.RequestDuration.WithLabelValues(route.Path, method).Observe(float64(resp.Elapsed) / 1000.0)
		}

		verdict := t.Validator.Validate(resp)
		if verdict.OK {
			continue
		}

		if t.Metrics != nil {
			t.Metrics.TrialFailures.WithLabelValues(route.Path, method).Inc()
		}

		isFailing := func(v any) bool {
			candInputs, ok := v.(routeInputs)
			if !ok {
				return false
			}
			candResp, _, err := t.sendTrial(ctx, route, method, identity, candInputs)
			if err != nil {
				return false
			}
			return !t.Validator.Validate(candResp).OK
		}

		shrinker := NewShrinker(gen, isFailing)
		if t.MaxShrinkRounds > 0 {
			shrinker.MaxRounds = t.MaxShrinkRounds
		}
		result := shrinker.Run(tree, inputs)
		if t.Metrics != nil {
			t.Metrics.ShrinkIterations.Observe(float64(result.Iterations))
		}

		minimized := result.Value.(routeInputs)
		finalResp, finalReq, _ := t.sendTrial(ctx, route, method, identity, minimized)

		failures = append(failures, &FailureReport{
			Route:       route.Path,
			Method:      method,
			SeedPath:    []int64{int64(routeIndex), int64(trial)},
			Value:       minimized,
			Request:     finalReq,
			Response:    finalResp,
			Reason:      verdict.Reason,
			ShrinkStats: result,
		})
		if finalReq == nil {
			failures[len(failures)-1].Request = req
		}
	}
	return failures, nil
}

func (t *TrialRunner) sendTrial(ctx context.Context, route *RouteSpec, method, identity string, inputs routeInputs) (*Response, *Request, error) {
	pathStrs := map[string]string{}
	for name, v := range inputs.PathValues {
		s, err := t.Encoder.RenderScalar(v)
		if err != nil {
			return nil, nil, err
		}
		pathStrs[name] = s
	}
	path := t.Encoder.RenderPath(route.Path, pathStrs)

	queryStrs := map[string]string{}
	for name, v := range inputs.QueryValues {
		if v == nil {
			continue
		}
		s, err := t.Encoder.RenderScalar(v)
		if err != nil {
			return nil, nil, err
		}
		queryStrs[name] = s
	}
	query := t.Encoder.RenderQuery(queryStrs)

	url := t.BaseURL + path
	if query != "" {
		url += "?" + query
	}

	headerStrs := map[string]string{}
	for name, v := range inputs.HeaderValues {
		if v == nil {
			continue
		}
		s, err := t.Encoder.RenderScalar(v)
		if err != nil {
			return nil, nil, err
		}
		headerStrs[name] = s
	}
	headers := t.Encoder.RenderHeaders(headerStrs)

	var body []byte
	if inputs.Body != nil && AllowsBody(method) {
		b, err := json.Marshal(inputs.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("routeprobe: encoding request body: %w", err)
		}
		body = b
	}

	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}
	if len(body) > 0 {
		header.Set("Content-Type", "application/json")
	}

	req := &Request{Method: method, URL: url, Header: header, Body: body}

	if t.Auth != nil {
		if err := t.Auth.Decorate(ctx, identity, req); err != nil {
			return nil, req, err
		}
	}

	resp, err := t.Transport.Send(ctx, req)
	if err != nil {
		return nil, req, err
	}
	return resp, req, nil
}
