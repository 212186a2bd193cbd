package utils

import (
	"net/http"
	"time"
)

const (
	UserAgent = "TimeTunnelTV/0.1"
)

type UARoundtripper struct {
	RT        http.RoundTripper
	UserAgent string
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := uart.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	ua := uart.UserAgent
	if ua == "" {
		ua = UserAgent
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", ua)
	return rt.RoundTrip(req)
}

// NewHTTPClient returns a client that identifies itself as userAgent and gives
// up on any single request after timeout
func NewHTTPClient(userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &UARoundtripper{
			RT:        http.DefaultTransport,
			UserAgent: userAgent,
		},
	}
}
