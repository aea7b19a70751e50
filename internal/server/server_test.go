package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/admitscan/internal/discover"
)

type fakeDiscoverer struct {
	got discover.Request
	res discover.Result
	err error
}

func (f *fakeDiscoverer) Discover(_ context.Context, req discover.Request) (discover.Result, error) {
	f.got = req
	return f.res, f.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestScrape_ReturnsResultShape(t *testing.T) {
	d := &fakeDiscoverer{res: discover.Result{
		DataFound:  true,
		SourceURLs: []string{"https://u.edu/a"},
		Snippets:   []string{"IELTS 6.5"},
	}}
	h := (&Server{Discoverer: d}).Handler()

	rec := post(t, h, `{"university": " Monash University ", "program": "Master of IT", "year": 2025}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["dataFound"])
	assert.Equal(t, []any{"https://u.edu/a"}, body["sourceURLs"])
	assert.Equal(t, []any{"IELTS 6.5"}, body["snippets"])
	v, ok := body["rawHTML"]
	assert.True(t, ok)
	assert.Nil(t, v)

	assert.Equal(t, "Monash University", d.got.University)
	assert.Equal(t, 5, d.got.MaxResults)
	assert.Equal(t, 2025, d.got.Year)
}

func TestScrape_Validation(t *testing.T) {
	h := (&Server{Discoverer: &fakeDiscoverer{}}).Handler()
	for name, body := range map[string]string{
		"missing university": `{"program": "Law"}`,
		"blank program":      `{"university": "U", "program": "  "}`,
		"zero results":       `{"university": "U", "program": "Law", "max_results": 0}`,
		"too many results":   `{"university": "U", "program": "Law", "max_results": 11}`,
		"malformed":          `{"university": `,
	} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "invalid request", name)
	}
}

func TestScrape_MaxResultsPassedThrough(t *testing.T) {
	d := &fakeDiscoverer{}
	h := (&Server{Discoverer: d}).Handler()
	rec := post(t, h, `{"university": "U", "program": "Law", "max_results": 10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, d.got.MaxResults)
}

func TestScrape_DiscoveryError(t *testing.T) {
	h := (&Server{Discoverer: &fakeDiscoverer{err: errors.New("boom")}}).Handler()
	rec := post(t, h, `{"university": "U", "program": "Law"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScrape_MethodNotAllowed(t *testing.T) {
	h := (&Server{Discoverer: &fakeDiscoverer{}}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scrape", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := (&Server{Discoverer: &fakeDiscoverer{}}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidate_ErrorsAreSentinel(t *testing.T) {
	_, err := ScrapeRequest{Program: "Law"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
