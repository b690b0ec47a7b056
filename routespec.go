package routeprobe

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// QueryParam describes one query-string parameter.
type QueryParam struct {
	Type     TypeRef
	Required bool
}

// StatusContract names the schema a response of this status/content-type
// must conform to, consumed by SchemaValidator.
type StatusContract struct {
	Status      int
	ContentType string
	Schema      JSONSchema
}

// RouteSpec is the normalized, framework-agnostic description of one
// endpoint consumed by the core engine. It is immutable after
// NewRouteSpec validates it — extractors build one, the engine only
// ever reads it.
type RouteSpec struct {
	Path    string
	Methods []string

	PathParams   map[string]TypeRef
	QueryParams  map[string]QueryParam
	HeaderParams map[string]TypeRef
	Body         *TypeRef

	ResponseContract []StatusContract
	Schemas          SchemaTable

	Tags        map[string]struct{}
	Deprecated  bool
	Name        string
	Description string
}

// InvariantError reports a RouteSpec that violates one of its
// structural invariants. These are never swallowed — they always
// bubble to the caller rather than being silently corrected.
type InvariantError struct {
	Route string
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("routeprobe: invalid route %q: %s", e.Route, e.Msg)
}

// pathPlaceholders extracts the {name} / {name:type} placeholder names
// from a path pattern, in order of appearance. A single linear pass is
// enough since routeprobe encodes one path per trial rather than
// routing inbound requests through a trie.
func pathPlaceholders(pattern string) []string {
	var names []string
	i := 0
	for i < len(pattern) {
		if pattern[i] != '{' {
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			break
		}
		inner := pattern[i+1 : i+end]
		if colon := strings.IndexByte(inner, ':'); colon >= 0 {
			inner = inner[:colon]
		}
		names = append(names, inner)
		i += end + 1
	}
	return names
}

// NewRouteSpec validates placeholder/param invariants and returns a
// ready-to-use RouteSpec.
func NewRouteSpec(path string, methods []string, pathParams map[string]TypeRef, query map[string]QueryParam, headers map[string]TypeRef, body *TypeRef) (*RouteSpec, error) {
	rs := &RouteSpec{
		Path:         path,
		Methods:      append([]string(nil), methods...),
		PathParams:   pathParams,
		QueryParams:  query,
		HeaderParams: headers,
		Body:         body,
		Tags:         map[string]struct{}{},
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *RouteSpec) validate() error {
	if len(r.Methods) == 0 {
		return &InvariantError{Route: r.Path, Msg: "methods must be non-empty"}
	}
	names := pathPlaceholders(r.Path)
	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	for n, c := range seen {
		if c > 1 {
			return &InvariantError{Route: r.Path, Msg: fmt.Sprintf("placeholder %q appears %d times", n, c)}
		}
	}
	for n := range r.PathParams {
		if seen[n] == 0 {
			return &InvariantError{Route: r.Path, Msg: fmt.Sprintf("path param %q has no matching placeholder", n)}
		}
	}
	for n := range seen {
		if _, ok := r.PathParams[n]; !ok {
			slog.Warn("routeprobe: placeholder has no declared type, defaulting to str", "route", r.Path, "placeholder", n)
			params := make(map[string]TypeRef, len(r.PathParams)+1)
			for k, v := range r.PathParams {
				params[k] = v
			}
			params[n] = Str()
			r.PathParams = params
		}
	}
	for n := range r.QueryParams {
		if seen[n] > 0 {
			return &InvariantError{Route: r.Path, Msg: fmt.Sprintf("query param %q collides with path placeholder", n)}
		}
	}
	for n := range r.HeaderParams {
		if seen[n] > 0 {
			return &InvariantError{Route: r.Path, Msg: fmt.Sprintf("header param %q collides with path placeholder", n)}
		}
	}
	return nil
}

// AllowsBody reports whether method conventionally carries a request
// body; GET/HEAD/DELETE do not.
func AllowsBody(method string) bool {
	switch strings.ToUpper(method) {
	case "GET", "HEAD", "DELETE":
		return false
	default:
		return true
	}
}

// Identity returns a stable "METHOD pattern" string used for log lines,
// failure reports, and metrics labels.
func (r *RouteSpec) Identity(method string) string {
	return method + " " + r.Path
}

// SortedTags returns Tags in deterministic order, for reporting.
func (r *RouteSpec) SortedTags() []string {
	out := make([]string, 0, len(r.Tags))
	for t := range r.Tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
