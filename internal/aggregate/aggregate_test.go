package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/admitscan/internal/search"
)

type fakeProvider struct {
	results map[string][]search.Result
	errs    map[string]error
	calls   []string
	limits  []int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, q string, limit int) ([]search.Result, error) {
	f.calls = append(f.calls, q)
	f.limits = append(f.limits, limit)
	if err := f.errs[q]; err != nil {
		return nil, err
	}
	return f.results[q], nil
}

func TestCollect_OrderAndDedup(t *testing.T) {
	p := &fakeProvider{results: map[string][]search.Result{
		"q1": {{URL: "https://a.edu/1"}, {URL: "https://a.edu/2"}},
		"q2": {{URL: "https://a.edu/2"}, {URL: ""}, {URL: "https://a.edu/3"}},
		"q3": {{URL: " https://a.edu/1 "}, {URL: "https://a.edu/4"}},
	}}
	c := &Collector{Provider: p, PerQuery: 7}
	got := c.Collect(context.Background(), []string{"q1", "q2", "q3"})
	assert.Equal(t, []string{"https://a.edu/1", "https://a.edu/2", "https://a.edu/3", "https://a.edu/4"}, got)
	assert.Equal(t, []string{"q1", "q2", "q3"}, p.calls)
	assert.Equal(t, []int{7, 7, 7}, p.limits)
}

func TestCollect_FailedQueryIsSkipped(t *testing.T) {
	p := &fakeProvider{
		results: map[string][]search.Result{"q2": {{URL: "https://b.edu/x"}}},
		errs:    map[string]error{"q1": errors.New("quota exceeded")},
	}
	c := &Collector{Provider: p, PerQuery: 5}
	got := c.Collect(context.Background(), []string{"q1", "q2"})
	assert.Equal(t, []string{"https://b.edu/x"}, got)
	assert.Len(t, p.calls, 2)
}

func TestCollect_AllFailuresYieldEmpty(t *testing.T) {
	boom := errors.New("network")
	p := &fakeProvider{errs: map[string]error{"q1": boom, "q2": boom}}
	got := (&Collector{Provider: p}).Collect(context.Background(), []string{"q1", "q2"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollect_NilProvider(t *testing.T) {
	var c *Collector
	assert.Empty(t, c.Collect(context.Background(), []string{"q"}))
}

func TestCollect_LimiterStopsOnCancelledContext(t *testing.T) {
	p := &fakeProvider{results: map[string][]search.Result{"q1": {{URL: "https://a.edu/1"}}}}
	c := &Collector{Provider: p, Limiter: NewLimiter(1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := c.Collect(ctx, []string{"q1", "q2"})
	assert.Empty(t, got)
	assert.Empty(t, p.calls)
}

func TestNewLimiter_DisabledForZero(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.NotNil(t, NewLimiter(2))
}
