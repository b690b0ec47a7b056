package routeprobe

import (
	"context"
	"testing"
)

type staticTokenSource string

func (s staticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestBearerAuthDecoratorAttachesHeader(t *testing.T) {
	ad := NewBearerAuthDecorator(staticTokenSource("secret"))
	req := &Request{Method: "GET", URL: "http://example.com/x"}
	if err := ad.Decorate(context.Background(), "GET /x", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("got %q", got)
	}
}

func TestAuthDecoratorRouteOverrideWins(t *testing.T) {
	ad := NewBearerAuthDecorator(staticTokenSource("default")).
		WithRouteOverride("GET /admin/**", staticTokenSource("admin-token"))

	req := &Request{}
	if err := ad.Decorate(context.Background(), "GET /admin/users", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer admin-token" {
		t.Fatalf("got %q, want admin-token", got)
	}
}

func TestAuthDecoratorOverrideTieBreaksByRegistrationOrder(t *testing.T) {
	ad := NewBearerAuthDecorator(staticTokenSource("default")).
		WithRouteOverride("GET /admin/*", staticTokenSource("first")).
		WithRouteOverride("GET /admin/*", staticTokenSource("second"))

	req := &Request{}
	if err := ad.Decorate(context.Background(), "GET /admin/x", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer first" {
		t.Fatalf("got %q, want the first-registered override to win an equal-length tie", got)
	}
}

func TestAuthDecoratorSkipBypassesCredential(t *testing.T) {
	ad := NewBearerAuthDecorator(staticTokenSource("default")).
		WithSkip("GET /healthz")

	req := &Request{}
	if err := ad.Decorate(context.Background(), "GET /healthz", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Header != nil && req.Header.Get("Authorization") != "" {
		t.Fatalf("expected no Authorization header for skipped route")
	}
}

func TestAuthDecoratorMissingCredentialError(t *testing.T) {
	ad := &AuthDecorator{
		Skip: map[string]bool{},
		HeaderFn: func(token string) (string, string) {
			return "Authorization", "Bearer " + token
		},
	}
	req := &Request{}
	err := ad.Decorate(context.Background(), "GET /x", req)
	if err == nil {
		t.Fatalf("expected MissingCredentialError")
	}
	if _, ok := err.(*MissingCredentialError); !ok {
		t.Fatalf("expected *MissingCredentialError, got %T", err)
	}
}
