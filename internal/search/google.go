package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// maxGoogleResults is the per-call ceiling of the Custom Search JSON API.
const maxGoogleResults = 10

// GoogleCSE implements Provider on the Google Custom Search JSON API.
type GoogleCSE struct {
	APIKey string
	CX     string
	// Endpoint overrides the API base URL. Used by tests.
	Endpoint string

	once    sync.Once
	svc     *customsearch.Service
	initErr error
}

func (g *GoogleCSE) Name() string { return "google" }

func (g *GoogleCSE) service(ctx context.Context) (*customsearch.Service, error) {
	g.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(g.APIKey)}
		if g.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(g.Endpoint))
		}
		g.svc, g.initErr = customsearch.NewService(ctx, opts...)
	})
	return g.svc, g.initErr
}

func (g *GoogleCSE) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(g.APIKey) == "" || strings.TrimSpace(g.CX) == "" {
		return nil, errors.New("google cse: api key and cx are required")
	}
	if limit <= 0 || limit > maxGoogleResults {
		limit = maxGoogleResults
	}
	svc, err := g.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("google cse client: %w", err)
	}
	res, err := svc.Cse.List().Q(query).Cx(g.CX).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google cse: %w", err)
	}
	out := make([]Result, 0, len(res.Items))
	for _, it := range res.Items {
		if it == nil || strings.TrimSpace(it.Link) == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Snippet: strings.TrimSpace(it.Snippet),
			Source:  g.Name(),
		})
	}
	return out, nil
}
