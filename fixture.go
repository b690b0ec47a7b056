package routeprobe

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// FixtureHandler builds a chi route handler for use with FixtureRouter,
// used by tests and the demo binary to stand up a small API in-process
// without a real network hop.
type FixtureHandler func(w http.ResponseWriter, r *http.Request)

// FixtureRouter wraps a chi.Mux, giving test code a concise way to
// stand up a fake API surface for TrialRunner/StateMachineRunner tests,
// built on github.com/go-chi/chi/v5.
type FixtureRouter struct {
	mux    *chi.Mux
	server *httptest.Server
}

// NewFixtureRouter creates an empty router; call Handle to register
// routes, then Start to bring up the backing httptest.Server.
func NewFixtureRouter() *FixtureRouter {
	return &FixtureRouter{mux: chi.NewRouter()}
}

// Handle registers fn for method and chi-style pattern (e.g.
// "/users/{id}").
func (f *FixtureRouter) Handle(method, pattern string, fn FixtureHandler) {
	f.mux.MethodFunc(method, pattern, fn)
}

// Start brings up the backing httptest.Server and returns its base URL.
func (f *FixtureRouter) Start() string {
	f.server = httptest.NewServer(f.mux)
	return f.server.URL
}

// Close shuts down the backing server.
func (f *FixtureRouter) Close() {
	if f.server != nil {
		f.server.Close()
	}
}

// Transport returns a fresh HTTPTransport with the default timeout,
// ready to hand to TrialRunner. It holds no base URL: the TrialRunner's
// BaseURL must be set to the URL Start returned.
func (f *FixtureRouter) Transport() Transport {
	return NewHTTPTransport(0)
}

// FixtureTransport is an in-process Transport that dispatches directly
// into a chi.Mux via httptest.NewRecorder, skipping the real network
// stack entirely — useful for tests that want deterministic timing with
// zero socket overhead.
type FixtureTransport struct {
	mux *chi.Mux
}

// NewFixtureTransport wraps mux as a Transport.
func NewFixtureTransport(mux *chi.Mux) *FixtureTransport {
	return &FixtureTransport{mux: mux}
}

func (t *FixtureTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &TransportError{Kind: TransportDial, Route: req.URL, Err: err}
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}
	rec := httptest.NewRecorder()
	t.mux.ServeHTTP(rec, httpReq)
	return &Response{
		Status: rec.Code,
		Header: rec.Header(),
		Body:   rec.Body.Bytes(),
	}, nil
}
