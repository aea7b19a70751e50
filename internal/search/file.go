package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileProvider serves search results from a local JSON file for offline runs
// and fixtures. The file is either an array of results returned for every
// query, or an object {"queries": {"<query>": [...]}, "default": [...]} where
// unknown queries fall back to "default".
type FileProvider struct {
	Path string
}

type fileIndex struct {
	Queries map[string][]Result `json:"queries"`
	Default []Result            `json:"default"`
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []Result
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("parse search file: %w", err)
		}
	} else {
		var idx fileIndex
		if err := json.Unmarshal(b, &idx); err != nil {
			return nil, fmt.Errorf("parse search file: %w", err)
		}
		var ok bool
		if raw, ok = idx.Queries[strings.TrimSpace(query)]; !ok {
			raw = idx.Default
		}
	}
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		r.Source = f.Name()
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
