package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// bearerTransport is the outgoing-request hook: every request gets the
// current session token, read at send time.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	logger zerolog.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request
	out := req.Clone(req.Context())

	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, ulid.Make().String())
	}

	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			out.Header.Set(headerAuthorization, fmt.Sprintf("Bearer %s", token))
		}
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		t.logger.Debug().Err(err).
			Str("method", out.Method).
			Str("path", out.URL.Path).
			Str("request_id", out.Header.Get(headerRequestID)).
			Msg("Request failed")
		return nil, err
	}

	t.logger.Debug().
		Str("method", out.Method).
		Str("path", out.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", out.Header.Get(headerRequestID)).
		Msg("Request completed")

	return resp, nil
}
