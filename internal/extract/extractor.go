package extract

// Extractor turns a fetched page into requirement snippets.
// Implementations can swap scanning tactics without changing callers.
type Extractor interface {
	Extract(html string, max int) []string
}

// BlockExtractor uses Snippets.
type BlockExtractor struct{}

func (BlockExtractor) Extract(html string, max int) []string {
	return Snippets(html, max)
}
