package discover

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/admitscan/internal/aggregate"
	"github.com/hyperifyio/admitscan/internal/cache"
	"github.com/hyperifyio/admitscan/internal/extract"
	"github.com/hyperifyio/admitscan/internal/fetch"
	"github.com/hyperifyio/admitscan/internal/merge"
	"github.com/hyperifyio/admitscan/internal/normalize"
	"github.com/hyperifyio/admitscan/internal/planner"
	"github.com/hyperifyio/admitscan/internal/rules"
	selecter "github.com/hyperifyio/admitscan/internal/select"
)

// DefaultMaxResults is the per-query search budget when a request has none.
const DefaultMaxResults = 5

// Fetcher retrieves one page. An empty body means the page is unusable.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Request identifies the program to look up.
type Request struct {
	University string
	Program    string
	// Domain overrides the known-domain table when set.
	Domain string
	// Year is informational and currently does not change discovery.
	Year       int
	MaxResults int
}

// Snippet is one extracted fragment with where it came from.
type Snippet struct {
	Text     string         `json:"text"`
	URL      string         `json:"url"`
	Category rules.Category `json:"category"`
}

// Result is the outcome of a discovery run.
type Result struct {
	DataFound  bool      `json:"dataFound"`
	SourceURLs []string  `json:"sourceURLs"`
	Snippets   []string  `json:"snippets"`
	RawHTML    *string   `json:"rawHTML"`
	Details    []Snippet `json:"-"`
	Cached     bool      `json:"-"`
}

// Pipeline wires the discovery stages. Each Run is sequential: one search
// call and one fetch at a time.
type Pipeline struct {
	Planner   planner.Planner
	Collector *aggregate.Collector
	Fetcher   Fetcher
	Extractor extract.Extractor
	// Domains maps lower-cased university names to their site domain.
	Domains map[string]string
	// RankLimit caps the URLs fetched per branch. Zero means the request's
	// MaxResults.
	RankLimit int
	// MaxSnippets caps snippets per page. Zero uses the extractor default.
	MaxSnippets int
	// MaxOutput caps the merged list. Zero means max(10, 3*MaxResults).
	MaxOutput int
	// Cache, when set, is consulted before and filled after a run.
	Cache cache.Store
}

// KnownDomain returns the configured domain for a university, if any.
func (p *Pipeline) KnownDomain(university string) string {
	if p.Domains == nil {
		return ""
	}
	return p.Domains[strings.ToLower(strings.TrimSpace(university))]
}

// Run executes discovery for req. Stage failures degrade to fewer results;
// only planner errors and context cancellation are returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	budget := req.MaxResults
	if budget <= 0 {
		budget = DefaultMaxResults
	}
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		domain = p.KnownDomain(req.University)
	}
	logger := log.With().Str("request_id", uuid.NewString()).Str("university", req.University).Str("program", req.Program).Logger()
	ctx = logger.WithContext(ctx)

	key := cache.Key(req.University, req.Program, req.Domain)
	if p.Cache != nil {
		if e, ok, err := p.Cache.Get(ctx, key); err != nil {
			logger.Warn().Err(err).Msg("cache read failed")
		} else if ok {
			logger.Info().Time("saved_at", e.SavedAt).Msg("returning cached result")
			return Result{DataFound: e.DataFound, SourceURLs: e.SourceURLs, Snippets: e.Snippets, Cached: true}, nil
		}
	}

	start := time.Now()
	pl := p.Planner
	if pl == nil {
		pl = planner.NewBuilder()
	}
	plan, err := pl.Plan(ctx, planner.Input{University: req.University, Program: req.Program, Domain: domain, N: budget})
	if err != nil {
		return Result{}, err
	}
	logger.Debug().Str("level", plan.Level.String()).Strs("course_queries", planner.Texts(plan.Course)).Strs("english_queries", planner.Texts(plan.English)).Msg("planned queries")

	rankOpts := selecter.Options{University: req.University, Domain: domain, Limit: p.RankLimit}
	if rankOpts.Limit <= 0 {
		rankOpts.Limit = budget
	}

	var details []Snippet
	course := p.branch(ctx, plan.Course, budget, rankOpts, rules.CategoryCourse, &details)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	english := p.branch(ctx, plan.English, budget, rankOpts, rules.CategoryEnglish, &details)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out := merge.Merge(course, english, budget, p.MaxOutput)
	res := Result{
		DataFound:  out.DataFound,
		SourceURLs: out.SourceURLs,
		Snippets:   out.Snippets,
		Details:    attribute(out.Attributed, details),
	}
	if res.SourceURLs == nil {
		res.SourceURLs = []string{}
	}
	if res.Snippets == nil {
		res.Snippets = []string{}
	}
	logger.Info().Bool("data_found", res.DataFound).Int("snippets", len(res.Snippets)).Int("sources", len(res.SourceURLs)).Dur("elapsed", time.Since(start)).Msg("discovery done")

	if p.Cache != nil && res.DataFound {
		if err := p.Cache.Set(ctx, key, cache.Entry{DataFound: res.DataFound, SourceURLs: res.SourceURLs, Snippets: res.Snippets}); err != nil {
			logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return res, nil
}

// branch runs search, ranking, fetch and extraction for one query purpose.
// English pages are additionally normalized so only concrete thresholds stay.
func (p *Pipeline) branch(ctx context.Context, queries []planner.Query, budget int, opt selecter.Options, cat rules.Category, details *[]Snippet) []merge.Page {
	logger := zerolog.Ctx(ctx).With().Str("branch", string(cat)).Logger()
	col := aggregate.Collector{}
	if p.Collector != nil {
		col = *p.Collector
	}
	if col.PerQuery <= 0 {
		col.PerQuery = budget
	}
	urls := col.Collect(ctx, planner.Texts(queries))
	ranked := selecter.Rank(urls, opt)
	logger.Debug().Int("collected", len(urls)).Strs("ranked", selecter.URLs(ranked)).Msg("ranked candidates")

	ex := p.Extractor
	if ex == nil {
		ex = extract.BlockExtractor{}
	}
	var pages []merge.Page
	for _, c := range ranked {
		if ctx.Err() != nil {
			break
		}
		if p.Fetcher == nil {
			break
		}
		res := p.Fetcher.Fetch(ctx, c.URL)
		if !res.Usable() {
			continue
		}
		snippets := ex.Extract(res.Body, p.MaxSnippets)
		if cat == rules.CategoryEnglish {
			snippets = normalize.English(snippets)
		}
		logger.Debug().Str("url", c.URL).Int("score", c.Score).Int("snippets", len(snippets)).Msg("page processed")
		if len(snippets) == 0 {
			continue
		}
		pages = append(pages, merge.Page{URL: c.URL, Snippets: snippets})
		for _, s := range snippets {
			*details = append(*details, Snippet{Text: s, URL: c.URL, Category: cat})
		}
	}
	return pages
}

// attribute tags every merged snippet with the category of the branch that
// first produced it from that URL.
func attribute(merged []merge.Attributed, details []Snippet) []Snippet {
	type origin struct{ url, text string }
	category := make(map[origin]rules.Category, len(details))
	for _, d := range details {
		k := origin{d.URL, d.Text}
		if _, ok := category[k]; !ok {
			category[k] = d.Category
		}
	}
	out := make([]Snippet, 0, len(merged))
	for _, m := range merged {
		out = append(out, Snippet{Text: m.Text, URL: m.URL, Category: category[origin{m.URL, m.Text}]})
	}
	return out
}
