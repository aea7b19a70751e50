package merge

// Page is the snippet list extracted from one URL.
type Page struct {
	URL      string
	Snippets []string
}

// SourceMap is an insertion-ordered map from URL to its snippets.
type SourceMap struct {
	order []string
	byURL map[string][]string
	seen  map[string]map[string]struct{}
}

// Add unions snippets into the entry for url, skipping texts already present.
func (m *SourceMap) Add(url string, snippets ...string) {
	if m.byURL == nil {
		m.byURL = map[string][]string{}
		m.seen = map[string]map[string]struct{}{}
	}
	set, ok := m.seen[url]
	if !ok {
		set = map[string]struct{}{}
		m.seen[url] = set
		m.order = append(m.order, url)
		m.byURL[url] = nil
	}
	for _, s := range snippets {
		if _, dup := set[s]; dup {
			continue
		}
		set[s] = struct{}{}
		m.byURL[url] = append(m.byURL[url], s)
	}
}

// URLs returns the keys in insertion order.
func (m *SourceMap) URLs() []string {
	return append([]string(nil), m.order...)
}

// Get returns the snippets recorded for url.
func (m *SourceMap) Get(url string) []string {
	return m.byURL[url]
}

// Len is the number of URLs.
func (m *SourceMap) Len() int { return len(m.order) }

// Attributed is one merged snippet with the first URL that produced it.
type Attributed struct {
	URL  string
	Text string
}

// Output is the merged result of one discovery run.
type Output struct {
	Snippets []string
	// Attributed parallels Snippets.
	Attributed []Attributed
	SourceURLs []string
	Sources    SourceMap
	DataFound  bool
}

// Cap returns the snippet limit used for a request budget: at least 10,
// otherwise three per requested result.
func Cap(budget int) int {
	if c := budget * 3; c > 10 {
		return c
	}
	return 10
}

// Merge concatenates course snippets and English snippets, in page then
// extraction order, drops texts already taken from an earlier page or branch,
// and truncates the list to limit entries. A non-positive limit means
// Cap(budget). SourceURLs lists, in source map order, the URLs that still
// contribute at least one snippet after truncation.
func Merge(course, english []Page, budget, limit int) Output {
	if limit <= 0 {
		limit = Cap(budget)
	}
	var out Output
	seen := map[string]struct{}{}
	for _, pages := range [][]Page{course, english} {
		for _, p := range pages {
			out.Sources.Add(p.URL, p.Snippets...)
			for _, s := range p.Snippets {
				if _, dup := seen[s]; dup || len(out.Attributed) >= limit {
					continue
				}
				seen[s] = struct{}{}
				out.Attributed = append(out.Attributed, Attributed{URL: p.URL, Text: s})
			}
		}
	}
	contributing := map[string]bool{}
	for _, a := range out.Attributed {
		out.Snippets = append(out.Snippets, a.Text)
		contributing[a.URL] = true
	}
	for _, u := range out.Sources.URLs() {
		if contributing[u] {
			out.SourceURLs = append(out.SourceURLs, u)
		}
	}
	out.DataFound = len(out.Snippets) > 0
	return out
}
