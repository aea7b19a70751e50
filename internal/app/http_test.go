package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func transportOf(t *testing.T, c *http.Client) *http.Transport {
	t.Helper()
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", c.Transport)
	}
	if tr == http.DefaultTransport {
		t.Fatalf("transport should not be the default one")
	}
	return tr
}

func TestNewAPIClient_VerifiesByDefault(t *testing.T) {
	c := newAPIClient(DefaultConfig())
	if c.Timeout != apiClientTimeout {
		t.Fatalf("Timeout=%s, want %s", c.Timeout, apiClientTimeout)
	}
	tr := transportOf(t, c)
	if tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected certificate verification with the default config")
	}
}

func TestNewAPIClient_SelfSignedSearx(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	if _, err := newAPIClient(cfg).Get(srv.URL); err == nil {
		t.Fatalf("expected certificate error with verification on")
	}
	cfg.SSLVerify = false
	resp, err := newAPIClient(cfg).Get(srv.URL)
	if err != nil {
		t.Fatalf("expected self-signed endpoint to be reachable, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}
