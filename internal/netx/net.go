// Package netx contains HTTP plumbing shared by the feed client and the
// transfer engine.
package netx

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// MaxSnippet bounds how much of an error response body ends up in errors
// and logs.
const MaxSnippet = 512

// NewHTTPClient returns a client without an overall timeout: callers bound
// each request with a context deadline instead, so long uploads are not cut
// off. responseHeaderTimeout limits how long the server may think after the
// request body has been sent.
func NewHTTPClient(responseHeaderTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: responseHeaderTimeout,
	}
	return &http.Client{Transport: transport}
}

// Snippet reads at most MaxSnippet bytes of r and returns them trimmed.
func Snippet(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, MaxSnippet))
	return strings.TrimSpace(string(b))
}

// DrainAndClose discards what is left of a response body so the connection
// can be reused, then closes it.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// StatusIn reports whether code is one of the accepted status codes.
func StatusIn(code int, accepted ...int) bool {
	for _, c := range accepted {
		if code == c {
			return true
		}
	}
	return false
}
