package fetcher

import (
	"net/http"
	"time"
)

// userAgentTransport is an http.RoundTripper that stamps every outgoing
// request with a fixed User-Agent
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns the client used by HTTP-based backends. Redirects are
// followed (archive downloads are served from a redirected codeload host).
// A zero timeout means no client-side limit; the caller's context still
// applies.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}
