package normalize

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/admitscan/internal/rules"
)

// fallbackScores pairs an exam token with score tokens that commonly appear in
// loosely phrased English requirements. It trades precision for recall and is
// only consulted when no snippet passes the strict rules.
var fallbackScores = []struct {
	exam   string
	scores []string
}{
	{exam: "ielts", scores: []string{"6.5", "7.0"}},
	{exam: "toefl", scores: []string{"79", "80", "90", "100"}},
	{exam: "pte", scores: []string{"58", "60", "61"}},
}

var numberToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// English returns the snippets that state a concrete English-proficiency
// threshold, deduplicated in input order. The input is expected to come from
// one page found by an English-requirements query.
func English(snippets []string) []string {
	var strict []string
	for _, s := range snippets {
		if rules.MatchFamily(s, rules.FamilyEnglish) {
			strict = append(strict, s)
		}
	}
	if len(strict) > 0 {
		return dedupe(strict)
	}
	var loose []string
	for _, s := range snippets {
		if looseMatch(s) {
			loose = append(loose, s)
		}
	}
	return dedupe(loose)
}

func looseMatch(s string) bool {
	lower := strings.ToLower(s)
	nums := map[string]struct{}{}
	for _, n := range numberToken.FindAllString(lower, -1) {
		nums[n] = struct{}{}
	}
	for _, f := range fallbackScores {
		if !strings.Contains(lower, f.exam) {
			continue
		}
		for _, score := range f.scores {
			if _, ok := nums[score]; ok {
				return true
			}
		}
	}
	return false
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
