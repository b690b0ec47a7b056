package routeprobe

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Verdict is one Validator's judgment on a single Response.
type Verdict struct {
	OK      bool
	Reason  string
	Details map[string]any
}

func passVerdict() Verdict { return Verdict{OK: true} }

func failVerdict(reason string, details map[string]any) Verdict {
	return Verdict{OK: false, Reason: reason, Details: details}
}

// Validator checks one property of a Response, returning a Verdict.
// TrialRunner runs every configured Validator on each Response and
// treats the trial as failing if any Verdict is !OK.
type Validator interface {
	Validate(resp *Response) Verdict
	Name() string
}

// statusValidator rejects any status code outside ranges.
type statusValidator struct {
	name   string
	ranges []StatusRange
}

// StatusRange is an inclusive [Low,High] HTTP status range.
type StatusRange struct {
	Low, High int
}

func inRange(status int, ranges []StatusRange) bool {
	for _, r := range ranges {
		if status >= r.Low && status <= r.High {
			return true
		}
	}
	return false
}

// NewStatusValidator accepts any response whose status falls in one of
// ranges, rejecting everything else.
func NewStatusValidator(name string, ranges ...StatusRange) Validator {
	return &statusValidator{name: name, ranges: ranges}
}

// NewFailOn5xxValidator returns the default status validator: it never
// guesses which non-5xx statuses are "acceptable" for a given route
// (that varies too much by API), so the default validator only ever
// rejects the server-error range 500-599 inclusive. Anything else —
// including 4xx, which a route may legitimately return for a
// randomly-generated value that happens to violate a business rule —
// passes by default. Callers that want a tighter contract compose their
// own StatusValidator from the route's declared ResponseContract.
func NewFailOn5xxValidator() Validator {
	return &statusValidator{name: "no_5xx", ranges: []StatusRange{{Low: math.MinInt, High: 499}, {Low: 600, High: math.MaxInt}}}
}

func (v *statusValidator) Name() string { return v.name }

func (v *statusValidator) Validate(resp *Response) Verdict {
	if inRange(resp.Status, v.ranges) {
		return passVerdict()
	}
	return failVerdict(fmt.Sprintf("status %d not in an allowed range", resp.Status), map[string]any{"status": resp.Status})
}

// contentTypeValidator rejects responses whose declared body type
// doesn't match what ResponseContract promised for this status.
type contentTypeValidator struct {
	contracts []StatusContract
}

// NewContentTypeValidator checks resp.Status against contracts and, if
// a matching contract exists, requires resp.Header("Content-Type") to
// have that contract's ContentType as its media-type prefix (ignoring
// any "; charset=..." suffix).
func NewContentTypeValidator(contracts []StatusContract) Validator {
	return &contentTypeValidator{contracts: contracts}
}

func (v *contentTypeValidator) Name() string { return "content_type" }

func (v *contentTypeValidator) Validate(resp *Response) Verdict {
	for _, c := range v.contracts {
		if c.Status != resp.Status {
			continue
		}
		got := resp.Header.Get("Content-Type")
		media := got
		if idx := strings.IndexByte(got, ';'); idx >= 0 {
			media = strings.TrimSpace(got[:idx])
		}
		if media != c.ContentType {
			return failVerdict(fmt.Sprintf("expected content-type %q, got %q", c.ContentType, got),
				map[string]any{"expected": c.ContentType, "actual": got})
		}
	}
	return passVerdict()
}

// schemaValidator checks a JSON response body against the contract for
// its status code.
type schemaValidator struct {
	contracts []StatusContract
}

// NewSchemaValidator checks resp's decoded JSON body against whichever
// StatusContract matches resp.Status, if any.
func NewSchemaValidator(contracts []StatusContract) Validator {
	return &schemaValidator{contracts: contracts}
}

func (v *schemaValidator) Name() string { return "schema" }

func (v *schemaValidator) Validate(resp *Response) Verdict {
	for _, c := range v.contracts {
		if c.Status != resp.Status {
			continue
		}
		if len(resp.Body) == 0 {
			continue
		}
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err != nil {
			return failVerdict("response body is not valid JSON", map[string]any{"error": err.Error()})
		}
		if errs := c.Schema.Check(decoded); len(errs) > 0 {
			details := make(map[string]any, len(errs))
			msgs := make([]string, len(errs))
			for i, e := range errs {
				details[e.Path] = e.Msg
				msgs[i] = e.Error()
			}
			return failVerdict(strings.Join(msgs, "; "), details)
		}
	}
	return passVerdict()
}

// CompositeValidator runs every child Validator and fails if any one
// fails, reporting the first failing Verdict's reason but recording
// every child's name that rejected the response in Details.
type CompositeValidator struct {
	Children []Validator
}

// NewCompositeValidator combines children into one Validator.
func NewCompositeValidator(children ...Validator) *CompositeValidator {
	return &CompositeValidator{Children: children}
}

func (c *CompositeValidator) Name() string { return "composite" }

func (c *CompositeValidator) Validate(resp *Response) Verdict {
	var failed []string
	var first Verdict
	for _, child := range c.Children {
		v := child.Validate(resp)
		if !v.OK {
			failed = append(failed, child.Name())
			if first.Reason == "" {
				first = v
			}
		}
	}
	if len(failed) == 0 {
		return passVerdict()
	}
	details := map[string]any{"failed_validators": failed}
	for k, v := range first.Details {
		details[k] = v
	}
	return failVerdict(first.Reason, details)
}
