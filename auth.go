package routeprobe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies a credential value for AuthDecorator to attach
// to a Request. A TokenSource may itself depend on context (e.g.
// refreshing a token close to expiry).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// EnvTokenSource reads a static credential from an environment
// variable once at construction time, for the common "export
// API_TOKEN=..." local-dev workflow.
type EnvTokenSource struct {
	value string
}

// NewEnvTokenSource reads envVar, returning a *MissingCredentialError
// if it is unset or empty.
func NewEnvTokenSource(envVar string) (*EnvTokenSource, error) {
	v, ok := os.LookupEnv(envVar)
	if !ok || v == "" {
		return nil, &MissingCredentialError{Route: "*", Reason: fmt.Sprintf("environment variable %q is not set", envVar)}
	}
	return &EnvTokenSource{value: v}, nil
}

func (e *EnvTokenSource) Token(ctx context.Context) (string, error) {
	return e.value, nil
}

// JWTTokenSource mints a fresh signed JWT on every call, using
// github.com/golang-jwt/jwt/v5. TTL controls how far in the
// future the "exp" claim is set from the moment Token is called, so
// long-running runs never send an expired bearer token.
type JWTTokenSource struct {
	Key    []byte
	Claims map[string]any
	TTL    time.Duration
}

// NewJWTTokenSource builds a JWTTokenSource signing with HS256.
func NewJWTTokenSource(key []byte, claims map[string]any, ttl time.Duration) *JWTTokenSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JWTTokenSource{Key: key, Claims: claims, TTL: ttl}
}

func (j *JWTTokenSource) Token(ctx context.Context) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(j.TTL).Unix(),
	}
	for k, v := range j.Claims {
		mapClaims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString(j.Key)
}

// AuthDecorator attaches credentials to outgoing Requests before
// they're sent. Route overrides use the longest matching glob pattern,
// a "most specific wins" convention for when two patterns both match a
// path.
type AuthDecorator struct {
	Default  TokenSource
	ByRoute  []routeOverride // glob pattern -> TokenSource, in registration order
	HeaderFn func(token string) (string, string)
	Skip     map[string]bool // glob pattern -> true means no auth at all
}

// routeOverride pairs a glob pattern with the TokenSource it selects.
// Keeping these in a slice (rather than a map) preserves registration
// order, which Decorate's tie-break relies on.
type routeOverride struct {
	Pattern string
	Source  TokenSource
}

// NewBearerAuthDecorator attaches "Authorization: Bearer <token>" using
// def as the default TokenSource.
func NewBearerAuthDecorator(def TokenSource) *AuthDecorator {
	return &AuthDecorator{
		Default: def,
		Skip:    map[string]bool{},
		HeaderFn: func(token string) (string, string) {
			return "Authorization", "Bearer " + token
		},
	}
}

// NewAPIKeyAuthDecorator attaches header=token using def as the default
// TokenSource.
func NewAPIKeyAuthDecorator(header string, def TokenSource) *AuthDecorator {
	return &AuthDecorator{
		Default: def,
		Skip:    map[string]bool{},
		HeaderFn: func(token string) (string, string) {
			return header, token
		},
	}
}

// WithRouteOverride registers src as the TokenSource for any route
// identity matching pattern, taking priority over Default. Later calls
// are later in registration order, which Decorate uses to break ties
// between equally-specific patterns.
func (a *AuthDecorator) WithRouteOverride(pattern string, src TokenSource) *AuthDecorator {
	a.ByRoute = append(a.ByRoute, routeOverride{Pattern: pattern, Source: src})
	return a
}

// WithSkip marks pattern as requiring no credential at all (e.g. a
// public health-check route living alongside authenticated ones).
func (a *AuthDecorator) WithSkip(pattern string) *AuthDecorator {
	a.Skip[pattern] = true
	return a
}

// Decorate attaches a credential header to req for the given route
// identity (e.g. "GET /users/{id}"), unless identity matches a Skip
// pattern. Override selection picks the longest matching pattern,
// breaking ties by registration order.
func (a *AuthDecorator) Decorate(ctx context.Context, identity string, req *Request) error {
	for pattern := range a.Skip {
		if globMatch(pattern, identity) {
			return nil
		}
	}

	src := a.Default
	bestLen := -1
	for _, override := range a.ByRoute {
		if globMatch(override.Pattern, identity) && len(override.Pattern) > bestLen {
			src = override.Source
			bestLen = len(override.Pattern)
		}
	}
	if src == nil {
		return &MissingCredentialError{Route: identity, Reason: "no default or route-specific TokenSource configured"}
	}

	token, err := src.Token(ctx)
	if err != nil {
		return &MissingCredentialError{Route: identity, Reason: err.Error()}
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	key, value := a.HeaderFn(token)
	req.Header.Set(key, value)
	return nil
}

// CompositeAuthDecorator applies multiple decorators in sequence (e.g.
// a bearer token plus a separate tenant-id API key header).
type CompositeAuthDecorator struct {
	Children []*AuthDecorator
}

func (c *CompositeAuthDecorator) Decorate(ctx context.Context, identity string, req *Request) error {
	var errs []string
	for _, child := range c.Children {
		if err := child.Decorate(ctx, identity, req); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return &MissingCredentialError{Route: identity, Reason: strings.Join(errs, "; ")}
	}
	return nil
}
