package rules

import (
	"regexp"
	"strings"
)

// Family groups rules that detect the same kind of admission fact.
type Family int

const (
	FamilyEnglish Family = iota
	FamilyExamScore
	FamilyWorkExperience
)

func (f Family) String() string {
	switch f {
	case FamilyEnglish:
		return "english"
	case FamilyExamScore:
		return "exam_score"
	case FamilyWorkExperience:
		return "work_experience"
	}
	return "unknown"
}

// Category tags a snippet with the discovery path that produced it.
type Category string

const (
	CategoryCourse  Category = "course"
	CategoryEnglish Category = "english"
)

// Rule is a single (pattern, family) entry of the classification table.
type Rule struct {
	Name    string
	Family  Family
	Pattern *regexp.Regexp
}

// Table is evaluated in order; the first match wins.
var Table = []Rule{
	{Name: "ielts", Family: FamilyEnglish, Pattern: regexp.MustCompile(`(?i)\bIELTS\b[^0-9]{0,40}\b([5-9](?:\.[05])?)\b`)},
	{Name: "toefl", Family: FamilyEnglish, Pattern: regexp.MustCompile(`(?i)\bTOEFL\b(?:\s*iBT)?[^0-9]{0,40}\b(\d{2,3})\b`)},
	{Name: "pte", Family: FamilyEnglish, Pattern: regexp.MustCompile(`(?i)\bPTE\b(?:\s*Academic)?[^0-9]{0,40}\b(\d{2})\b`)},
	{Name: "exam_score", Family: FamilyExamScore, Pattern: regexp.MustCompile(`(?i)\b(GRE|GMAT|SAT|ACT|LSAT|MCAT|GAMSAT|UCAT|ATAR|GPA)\b[^0-9]{0,30}\b(\d{1,3}(?:\.\d+)?)(?:\s*(?:-|–|to)\s*(\d{1,3}(?:\.\d+)?))?`)},
	{Name: "work_experience_years", Family: FamilyWorkExperience, Pattern: regexp.MustCompile(`(?i)\b\d+\+?\s*(?:years?|yrs?)\b[^.]{0,20}\b(?:professional|relevant|work|industry|managerial)\s+experience.{0,200}`)},
	{Name: "work_experience_required", Family: FamilyWorkExperience, Pattern: regexp.MustCompile(`(?i)\b(?:work|professional)\s+experience\s+(?:is\s+)?(?:required|essential|preferred).{0,200}`)},
	{Name: "professional_experience", Family: FamilyWorkExperience, Pattern: regexp.MustCompile(`(?i)\bprofessional\s+experience\b.{0,200}`)},
}

// Keywords flag general eligibility text. Matching is case-insensitive.
var Keywords = []string{
	"entry requirements",
	"admission requirement",
	"admissions requirement",
	"eligibility",
	"prerequisite",
	"gpa",
	"tuition",
	"intake",
	"english language",
	"minimum requirements",
	"academic requirements",
}

// HasKeyword reports whether text contains any general eligibility keyword.
func HasKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Match returns the first rule whose pattern matches text.
func Match(text string) (Rule, bool) {
	for _, r := range Table {
		if r.Pattern.MatchString(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// MatchFamily reports whether any rule of the given family matches text.
func MatchFamily(text string, f Family) bool {
	for _, r := range Table {
		if r.Family == f && r.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Relevant reports whether text should be kept as a snippet: it mentions a
// keyword or matches any rule.
func Relevant(text string) bool {
	if HasKeyword(text) {
		return true
	}
	_, ok := Match(text)
	return ok
}
