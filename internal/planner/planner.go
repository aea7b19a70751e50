package planner

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Purpose tags a query with the kind of page it is meant to discover.
type Purpose int

const (
	PurposeCourse Purpose = iota
	PurposeEnglish
)

func (p Purpose) String() string {
	if p == PurposeEnglish {
		return "english"
	}
	return "course"
}

// Query is a single search string. It is immutable once built.
type Query struct {
	Text    string
	Purpose Purpose
}

// Input is what the planner needs to know about the request.
type Input struct {
	University string
	Program    string
	// Domain is the institution's known site domain, e.g. "monash.edu". Optional.
	Domain string
	// N caps each query list. Zero or negative means DefaultN.
	N int
}

// Plan holds the ordered query lists for both discovery purposes.
type Plan struct {
	Course  []Query
	English []Query
	Level   StudyLevel
}

// DefaultN is used when Input.N is not positive.
const DefaultN = 5

// Planner produces search queries for a university/program pair.
type Planner interface {
	Plan(ctx context.Context, in Input) (Plan, error)
}

// Synonym adds program-family specific query templates. Every entry of Match
// must occur in the lower-cased program text for the templates to apply.
// Templates may use {program}, {university} and {scope} placeholders.
type Synonym struct {
	Match     []string
	Templates []string
}

// Builder is the deterministic Planner.
type Builder struct {
	Synonyms []Synonym
}

var courseSuffixes = []string{"handbook", "course", "study", `"entry requirements"`, "prerequisites"}

var englishTemplates = []string{
	"{scope} English language requirements",
	"{scope} English proficiency admission",
	"{scope} undergraduate IELTS TOEFL PTE requirements",
	"{scope} postgraduate IELTS TOEFL PTE requirements",
}

// DefaultSynonyms is the built-in registry.
func DefaultSynonyms() []Synonym {
	return []Synonym{
		{Match: []string{"computer science"}, Templates: []string{
			"bachelor computer science {scope}",
			"master computer science {scope}",
			"master information technology {scope}",
		}},
		{Match: []string{"biomedical", "engineer"}, Templates: []string{
			"bachelor biomedical engineering {scope}",
			"master biomedical engineering {scope}",
		}},
		{Match: []string{"data science"}, Templates: []string{
			"bachelor data science {scope}",
			"master data science {scope}",
			"master data analytics {scope}",
		}},
		{Match: []string{"business administration"}, Templates: []string{
			"master of business administration {scope}",
			"mba {scope} admission",
		}},
		{Match: []string{"mba"}, Templates: []string{
			"master of business administration {scope}",
			"mba {scope} admission",
		}},
		{Match: []string{"nursing"}, Templates: []string{
			"bachelor nursing {scope}",
			"master nursing {scope}",
		}},
	}
}

// NewBuilder returns a Builder with the default synonym registry.
func NewBuilder() *Builder {
	return &Builder{Synonyms: DefaultSynonyms()}
}

// Register appends a synonym entry. Existing entries are not touched.
func (b *Builder) Register(s Synonym) {
	b.Synonyms = append(b.Synonyms, s)
}

// Plan implements Planner. It never fails.
func (b *Builder) Plan(_ context.Context, in Input) (Plan, error) {
	return b.Build(in), nil
}

// Build produces the course and English query lists.
func (b *Builder) Build(in Input) Plan {
	n := in.N
	if n <= 0 {
		n = DefaultN
	}
	program := strings.TrimSpace(in.Program)
	uni := strings.TrimSpace(in.University)
	domain := strings.TrimSpace(in.Domain)
	level := ClassifyLevel(program)

	domainScope := ""
	if domain != "" {
		domainScope = "site:" + domain
	}
	uniScope := ""
	if uni != "" {
		uniScope = `"` + uni + `"`
	}
	// alternate between the domain restriction and the quoted name; without a
	// domain every template is name-scoped
	scopeAt := func(i int) string {
		if domainScope != "" && (i%2 == 0 || uniScope == "") {
			return domainScope
		}
		return uniScope
	}

	// base templates come first so truncation to n only ever drops the
	// registry's additions
	var course []string
	course = append(course, join(program, scopeAt(0)))
	for i, s := range courseSuffixes {
		scope := scopeAt(i)
		if scope == domainScope {
			course = append(course, join(program, scope, s))
		} else {
			course = append(course, join(scope, program, s))
		}
	}
	for _, t := range b.synonymTemplates(program, level) {
		course = append(course, expand(t, program, uni, scopeAt(0)))
	}

	english := make([]string, 0, len(englishTemplates))
	for _, t := range orderEnglish(englishTemplates, level) {
		english = append(english, expand(t, program, uni, scopeAt(0)))
	}

	return Plan{
		Course:  toQueries(sanitize(course, n), PurposeCourse),
		English: toQueries(sanitize(english, n), PurposeEnglish),
		Level:   level,
	}
}

func (b *Builder) synonymTemplates(program string, level StudyLevel) []string {
	text := lower(program)
	var out []string
	for _, syn := range b.Synonyms {
		if len(syn.Match) == 0 {
			continue
		}
		ok := true
		for _, m := range syn.Match {
			if !strings.Contains(text, lower(m)) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, syn.Templates...)
		}
	}
	// the level only reorders; every template survives
	prefer := level.qualifier()
	if prefer != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Contains(out[i], prefer) && !strings.Contains(out[j], prefer)
		})
	}
	return out
}

func orderEnglish(templates []string, level StudyLevel) []string {
	out := append([]string(nil), templates...)
	if level == LevelPostgraduate || level == LevelResearch {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Contains(out[i], "postgraduate") && !strings.Contains(out[j], "postgraduate")
		})
	}
	return out
}

// lower folds case with x/text; a Caser is stateful, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func expand(tmpl, program, uni, scope string) string {
	r := strings.NewReplacer("{program}", program, "{university}", uni, "{scope}", scope)
	return collapse(r.Replace(tmpl))
}

func join(parts ...string) string {
	return collapse(strings.Join(parts, " "))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sanitize drops empty and duplicate queries (case-insensitive) and caps the list.
func sanitize(in []string, n int) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, q := range in {
		s := strings.TrimSpace(q)
		if s == "" {
			continue
		}
		key := lower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func toQueries(in []string, p Purpose) []Query {
	out := make([]Query, 0, len(in))
	for _, s := range in {
		out = append(out, Query{Text: s, Purpose: p})
	}
	return out
}

// Texts returns the query strings in order.
func Texts(qs []Query) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Text)
	}
	return out
}
