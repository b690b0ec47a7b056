package routeprobe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PathEncoder renders generated values into their canonical string
// forms for path placeholders, query parameters, and header values. The
// same value must always render identically within one trial, since
// PathEncoder output is what actually crosses the wire and what
// StateMachineRunner's link extraction re-parses from captured
// responses.
type PathEncoder struct {
	// TimeFormat overrides the RFC3339 default for DateTime values.
	TimeFormat string
}

// NewPathEncoder returns a PathEncoder using RFC3339 timestamps.
func NewPathEncoder() *PathEncoder {
	return &PathEncoder{TimeFormat: time.RFC3339}
}

// RenderScalar converts one drawn value to its wire string form. Only
// scalar TypeRef kinds are valid here; composite values (Seq/Map/Record)
// have no single canonical scalar rendering and are an invariant
// violation if passed in.
func (p *PathEncoder) RenderScalar(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case []byte:
		return string(val), nil
	case uuid.UUID:
		return val.String(), nil
	case time.Time:
		format := p.TimeFormat
		if format == "" {
			format = time.RFC3339
		}
		return val.Format(format), nil
	default:
		return "", &InvariantError{Msg: fmt.Sprintf("RenderScalar: no canonical rendering for %T", v)}
	}
}

// PathSegmentEscape percent-encodes s for use as one path segment per
// RFC 3986, preserving none of the path-separator semantics (a drawn
// string containing "/" is encoded, not split), so a generated path
// parameter can never accidentally introduce extra route segments.
func PathSegmentEscape(s string) string {
	return url.PathEscape(s)
}

// RenderPath substitutes each {name} placeholder in pattern with the
// percent-encoded rendering of values[name], leaving any placeholder
// with no supplied value untouched (callers are expected to have
// validated full coverage beforehand via RouteSpec.validate).
func (p *PathEncoder) RenderPath(pattern string, values map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		if pattern[i] != '{' {
			b.WriteByte(pattern[i])
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			b.WriteString(pattern[i:])
			break
		}
		inner := pattern[i+1 : i+end]
		if colon := strings.IndexByte(inner, ':'); colon >= 0 {
			inner = inner[:colon]
		}
		if v, ok := values[inner]; ok {
			b.WriteString(PathSegmentEscape(v))
		} else {
			b.WriteString(pattern[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

// RenderQuery builds a canonically ordered query string (keys sorted,
// matching url.Values.Encode's own sort) from rendered scalar values,
// any of which may be absent (Optional drew None).
func (p *PathEncoder) RenderQuery(values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	return q.Encode()
}

// RenderHeaders returns a copy of values suitable for assignment into
// an http.Header; header values are not percent-encoded (HTTP header
// values carry their own escaping rules, handled by net/http), but
// control characters from a drawn string are stripped since no HTTP
// client can send them.
func (p *PathEncoder) RenderHeaders(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = stripControl(v)
	}
	return out
}

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
