package routeprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Bundle is a named pool of values produced by one operation and
// consumable by another: "users" might hold every user ID a POST /users
// call has returned so far, ready to be drawn from by GET /users/{id}.
type Bundle struct {
	Name   string
	values []any
}

func newBundle(name string) *Bundle { return &Bundle{Name: name} }

func (b *Bundle) push(v any) { b.values = append(b.values, v) }

func (b *Bundle) pick(rng *SplitRNG) (any, bool) {
	if len(b.values) == 0 {
		return nil, false
	}
	idx := rng.IntRange(0, int64(len(b.values)-1))
	return b.values[idx], true
}

// ExplicitLink names a (producer operation, producer field) ->
// (consumer operation, consumer parameter) data dependency supplied
// directly by the caller: a plain tuple, not a DSL — the caller already
// knows its own API's relationships better than any inference pass
// could. ProducerRoute and ConsumerRoute are "METHOD path" identities
// matching the OperationRule whose Route.Identity(Method)
// produces/consumes the value.
type ExplicitLink struct {
	ProducerRoute string
	ProducerField string
	ConsumerRoute string
	Parameter     string
}

// OperationRule describes how to turn a RouteSpec call into a
// consumes/produces step inside a StateMachineRunner sequence: which
// bundles it reads from (Consumes) and which bundle to push its result
// into (Produces).
type OperationRule struct {
	Route    *RouteSpec
	Method   string
	Consumes []string // bundle names, matched positionally to path params needing a prior value
	Produces string   // bundle name the response's extracted field feeds, "" if none
	// ExtractField names the JSON field in the response body to push
	// into Produces (e.g. "id").
	ExtractField string
}

// StateMachineResult is one executed sequence's outcome.
type StateMachineResult struct {
	Steps    []StepResult
	Failure  *FailureReport
}

// StepResult captures one executed step within a sequence.
type StepResult struct {
	Rule     *OperationRule
	Request  *Request
	Response *Response
}

// StateMachineRunner drives stateful sequence testing: it replays random
// sequences of OperationRules, threading Bundle values between them via
// user-supplied ExplicitLinks.
type StateMachineRunner struct {
	Registry  *TypeRegistry
	Transport Transport
	Validator Validator
	Auth      *AuthDecorator
	Encoder   *PathEncoder
	Logger    *slog.Logger
	BaseURL   string

	Rules []OperationRule
	Links []ExplicitLink

	MaxSequenceLength int
}

// RunSequences runs n independently-seeded sequences, each up to
// MaxSequenceLength steps, stopping a sequence early the first time a
// step fails validation.
func (s *StateMachineRunner) RunSequences(ctx context.Context, n int, rng *SplitRNG) ([]*StateMachineResult, error) {
	if len(s.Rules) == 0 {
		return nil, fmt.Errorf("routeprobe: StateMachineRunner has no rules configured")
	}

	var results []*StateMachineResult
	for seq := 0; seq < n; seq++ {
		seqRNG := rng.Split(int64(seq))
		bundles := make(map[string]*Bundle)
		result := &StateMachineResult{}

		for step := 0; step < s.MaxSequenceLength; step++ {
			ruleIdx := int(seqRNG.IntRange(0, int64(len(s.Rules)-1)))
			rule := s.Rules[ruleIdx]

			if !s.bundlesReady(&rule, bundles) {
				continue
			}

			stepRNG := seqRNG.Split(int64(step))
			stepResult, failure, err := s.runStep(ctx, &rule, bundles, stepRNG)
			if err != nil {
				if s.Logger != nil {
					s.Logger.Warn("stateful step transport error", slog.String("route", rule.Route.Identity(rule.Method)), slog.Any("error", err))
				}
				continue
			}
			result.Steps = append(result.Steps, *stepResult)
			if failure != nil {
				result.Failure = failure
				break
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// bundlesReady reports whether every bundle rule.Consumes names has at
// least one value available to draw from.
func (s *StateMachineRunner) bundlesReady(rule *OperationRule, bundles map[string]*Bundle) bool {
	for _, name := range rule.Consumes {
		b, ok := bundles[name]
		if !ok || len(b.values) == 0 {
			return false
		}
	}
	return true
}

func (s *StateMachineRunner) runStep(ctx context.Context, rule *OperationRule, bundles map[string]*Bundle, rng *SplitRNG) (*StepResult, *FailureReport, error) {
	gen, err := newRouteInputsGenerator(rule.Route, s.Registry)
	if err != nil {
		return nil, nil, err
	}
	value, _ := gen.Draw(rng, 10)
	inputs := value.(routeInputs)

	// Override path/query values the consumed bundles and ExplicitLinks
	// pin, rather than leaving them to random draw.
	s.applyLinks(rule, bundles, &inputs, rng.Split(999))

	runner := &TrialRunner{
		Registry:  s.Registry,
		Transport: s.Transport,
		Validator: s.Validator,
		Auth:      s.Auth,
		Encoder:   s.Encoder,
		Logger:    s.Logger,
		BaseURL:   s.BaseURL,
	}
	identity := rule.Route.Identity(rule.Method)
	resp, req, err := runner.sendTrial(ctx, rule.Route, rule.Method, identity, inputs)
	if err != nil {
		return nil, nil, err
	}

	step := &StepResult{Rule: rule, Request: req, Response: resp}

	verdict := s.Validator.Validate(resp)
	if verdict.OK {
		// Only a step that passed validation adds to its bundle.
		if rule.Produces != "" {
			if extracted, ok := extractField(resp.Body, rule.ExtractField); ok {
				b, ok := bundles[rule.Produces]
				if !ok {
					b = newBundle(rule.Produces)
					bundles[rule.Produces] = b
				}
				b.push(extracted)
			}
		}
		return step, nil, nil
	}
	return step, &FailureReport{
		Route:    rule.Route.Path,
		Method:   rule.Method,
		Value:    inputs,
		Request:  req,
		Response: resp,
		Reason:   verdict.Reason,
	}, nil
}

// applyLinks pins inputs.PathValues/QueryValues for every consumed
// bundle, drawing one value from that bundle at random, and for every
// ExplicitLink whose ConsumerRoute matches this rule.
func (s *StateMachineRunner) applyLinks(rule *OperationRule, bundles map[string]*Bundle, inputs *routeInputs, rng *SplitRNG) {
	identity := rule.Route.Identity(rule.Method)
	for i, link := range s.Links {
		if link.ConsumerRoute != identity {
			continue
		}
		bundleName := s.bundleNameForRoute(link.ProducerRoute)
		if bundleName == "" {
			continue
		}
		b, ok := bundles[bundleName]
		if !ok {
			continue
		}
		if v, ok := b.pick(rng.Split(int64(i))); ok {
			if _, isPath := rule.Route.PathParams[link.Parameter]; isPath {
				inputs.PathValues[link.Parameter] = v
			} else {
				inputs.QueryValues[link.Parameter] = v
			}
		}
	}
	// Consumes is matched positionally to the route's path params in
	// sorted-name order: Consumes[0] pins the first path param, and so
	// on. sortedKeys keeps that assignment stable across runs, rather
	// than depending on Go's randomized map iteration order.
	pathParamNames := sortedKeys(rule.Route.PathParams)
	for i, name := range rule.Consumes {
		b, ok := bundles[name]
		if !ok {
			continue
		}
		v, ok := b.pick(rng.Split(int64(1000 + i)))
		if !ok {
			continue
		}
		if i >= len(pathParamNames) {
			continue
		}
		inputs.PathValues[pathParamNames[i]] = v
	}
}

// bundleNameForRoute looks up which bundle the rule for producerRoute
// (a "METHOD path" identity) feeds its results into.
func (s *StateMachineRunner) bundleNameForRoute(producerRoute string) string {
	for _, r := range s.Rules {
		if r.Route.Identity(r.Method) == producerRoute {
			return r.Produces
		}
	}
	return ""
}

// extractField pulls a value out of a JSON response body. field is
// either a bare top-level key ("id") or a JSON-pointer-style expression
// of the form "$.body#/user/id", where everything after "#" is an
// RFC 6901 pointer navigated from the decoded body's root.
func extractField(body []byte, field string) (any, bool) {
	if field == "" || len(body) == 0 {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false
	}

	if _, pointer, ok := cutPointer(field); ok {
		return navigateJSONPointer(decoded, pointer)
	}

	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[field]
	return v, ok
}

// cutPointer splits a "$.body#/user/id"-style expression on its last
// "#" into (prefix, pointer), reporting ok=false for plain field names
// with no "#" at all.
func cutPointer(field string) (prefix, pointer string, ok bool) {
	idx := strings.LastIndex(field, "#")
	if idx < 0 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}

// navigateJSONPointer walks an RFC 6901 JSON pointer ("/user/id") from
// root, decoding "~1" as "/" and "~0" as "~" in each segment as the
// spec requires.
func navigateJSONPointer(root any, pointer string) (any, bool) {
	if pointer == "" {
		return root, true
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false
	}
	cur := root
	for _, raw := range strings.Split(pointer, "/")[1:] {
		seg := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
