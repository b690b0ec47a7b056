package routeprobe

import (
	"context"
	"net/http"
)

// Request is the wire-level request one trial sends, already fully
// rendered by PathEncoder — Transport implementations never see a
// TypeRef or a DrawTree, only strings and bytes.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout int // milliseconds; 0 means Transport's own default
}

// Response is the wire-level result of sending a Request.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Elapsed int64 // milliseconds
}

// Transport sends a rendered Request and returns the Response, or a
// *TransportError if the call never produced one (dial failure,
// timeout, TLS failure). TrialRunner and StateMachineRunner depend only
// on this interface, never on net/http directly, so a test run can
// substitute FixtureTransport with no code changes elsewhere.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}
