package selecter

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/admitscan/internal/fetch"
)

// Options configures ranking.
type Options struct {
	University string
	// Domain is the institution's known site domain. When set, it replaces the
	// university-name check as the hard filter.
	Domain string
	// Limit truncates the ranked list. Zero or negative keeps everything.
	Limit int
}

// Candidate is a discovered link with its ranking attributes.
type Candidate struct {
	URL         string
	DomainMatch bool
	Score       int
	// Order is the first-seen index in the input list.
	Order int
}

const (
	domainBonus     = 5
	hintBonus       = 3
	denyPenalty     = 3
	insecurePenalty = 1
)

// PreferredHints are path tokens that usually mark official program content.
var PreferredHints = []string{"handbook", "study", "course", "courses", "program", "programs", "study-areas", "degrees"}

// DisallowedTokens mark pages that are never requirement pages.
var DisallowedTokens = []string{"login", "apply", "register", "contact", "privacy", "terms", "calendar"}

// Rank filters and scores urls, returning them best first. Equal scores keep
// their input order.
func Rank(urls []string, opt Options) []Candidate {
	domain := strings.ToLower(strings.TrimSpace(opt.Domain))
	name := NormalizeName(opt.University)

	out := make([]Candidate, 0, len(urls))
	seen := map[string]struct{}{}
	for i, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		if fetch.IsDocumentURL(raw) {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if domain != "" {
			if !strings.Contains(host, domain) {
				continue
			}
		} else if name != "" && !strings.Contains(squash(host+u.Path), name) {
			continue
		}
		out = append(out, Candidate{
			URL:         raw,
			DomainMatch: domain != "" && strings.Contains(host, domain),
			Score:       Score(raw, domain),
			Order:       i,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if opt.Limit > 0 && len(out) > opt.Limit {
		out = out[:opt.Limit]
	}
	return out
}

// Score applies the additive heuristics to a single URL.
func Score(raw, domain string) int {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.ToLower(strings.TrimSpace(domain))
	score := 0
	if domain != "" && strings.Contains(lowered, domain) {
		score += domainBonus
	}
	path := lowered
	if u, err := url.Parse(lowered); err == nil {
		path = u.Path
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	for _, hint := range PreferredHints {
		if hasHint(segments, path, hint) {
			score += hintBonus
		}
	}
	for _, tok := range DisallowedTokens {
		if strings.Contains(lowered, tok) {
			score -= denyPenalty
		}
	}
	if !strings.HasPrefix(lowered, "https://") {
		score -= insecurePenalty
	}
	return score
}

func hasHint(segments []string, path, hint string) bool {
	for _, s := range segments {
		if s == hint || strings.HasSuffix(s, "-"+hint) {
			return true
		}
	}
	return strings.HasSuffix(strings.TrimRight(path, "/"), "/"+hint)
}

// URLs returns the candidate links in ranked order.
func URLs(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.URL)
	}
	return out
}

// NormalizeName folds diacritics and case and strips whitespace, so
// "Université  de Montréal" becomes "universitedemontreal".
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// squash lower-cases a host+path and drops separators so that hyphenated or
// dotted slugs can match a normalized university name.
func squash(s string) string {
	s = NormalizeName(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.', '/':
			return -1
		}
		return r
	}, s)
}
