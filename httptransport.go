package routeprobe

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// HTTPTransport is the reference Transport, sending requests over a
// real net/http.Client with an explicit per-request timeout rather than
// relying on a shared http.DefaultClient.
type HTTPTransport struct {
	Client         *http.Client
	DefaultTimeout time.Duration
}

// NewHTTPTransport builds an HTTPTransport with a sane default client
// timeout; individual Requests may override it via Request.Timeout.
func NewHTTPTransport(defaultTimeout time.Duration) *HTTPTransport {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &HTTPTransport{
		Client:         &http.Client{},
		DefaultTimeout: defaultTimeout,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	timeout := t.DefaultTimeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Kind: TransportDial, Route: req.URL, Err: err}
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	start := time.Now()
	resp, err := t.Client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		kind := TransportDial
		if ctx.Err() == context.DeadlineExceeded {
			kind = TransportTimeout
		}
		return nil, &TransportError{Kind: kind, Route: req.URL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: TransportDecode, Route: req.URL, Err: err}
	}

	return &Response{
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    data,
		Elapsed: elapsed.Milliseconds(),
	}, nil
}
