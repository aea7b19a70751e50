package app

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// apiClientTimeout bounds whole requests to search APIs and the LLM endpoint.
// Per-search deadlines are tighter and come from the context.
const apiClientTimeout = 60 * time.Second

// newAPIClient returns the shared client for search APIs and the LLM endpoint.
// Page fetches do not use it: the fetcher builds per-proxy transports. With
// SSLVerify off, certificate checks are skipped for self-hosted endpoints.
func newAPIClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !cfg.SSLVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed endpoints
	}
	return &http.Client{Transport: transport, Timeout: apiClientTimeout}
}
