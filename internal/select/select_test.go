package selecter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Examples(t *testing.T) {
	assert.Equal(t, 8, Score("https://handbook.monash.edu/course/abc", "monash.edu"))
	assert.Equal(t, 4, Score("http://monash.edu/apply/course", "monash.edu"))
}

func TestScore_MultipleHintsAllCount(t *testing.T) {
	// study +3, study-areas +3, courses +3, domain +5
	assert.Equal(t, 14, Score("https://www.monash.edu/study/study-areas/courses", "monash.edu"))
}

func TestScore_HintSuffixSegment(t *testing.T) {
	assert.Equal(t, 3, Score("https://uni.edu/postgraduate-course/x", ""))
}

func TestScore_DisallowedTokensAnywhere(t *testing.T) {
	// login -3, privacy -3
	assert.Equal(t, -6, Score("https://uni.edu/login?next=privacy", ""))
}

func TestRank_OrdersByScoreStable(t *testing.T) {
	in := []string{
		"http://monash.edu/apply/course",
		"https://handbook.monash.edu/course/abc",
		"https://www.monash.edu/news",
		"https://www.monash.edu/events",
	}
	got := Rank(in, Options{University: "Monash University", Domain: "monash.edu"})
	require.Len(t, got, 4)
	assert.Equal(t, []string{
		"https://handbook.monash.edu/course/abc",
		"https://www.monash.edu/news",
		"https://www.monash.edu/events",
		"http://monash.edu/apply/course",
	}, URLs(got))
	assert.Equal(t, 8, got[0].Score)
	assert.Equal(t, 1, got[0].Order)
	assert.True(t, got[0].DomainMatch)
	// news and events tie at 5 and keep input order
	assert.Equal(t, 2, got[1].Order)
	assert.Equal(t, 3, got[2].Order)
	assert.Equal(t, 4, got[3].Score)
}

func TestRank_Deterministic(t *testing.T) {
	in := []string{
		"https://a.monash.edu/x", "https://b.monash.edu/y", "https://c.monash.edu/course",
		"https://d.monash.edu/z", "https://e.monash.edu/handbook",
	}
	first := URLs(Rank(in, Options{Domain: "monash.edu"}))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, URLs(Rank(in, Options{Domain: "monash.edu"})))
	}
}

func TestRank_RejectsDocuments(t *testing.T) {
	in := []string{
		"https://monash.edu/guide.pdf",
		"https://monash.edu/GUIDE.PDF?download=1",
		"https://monash.edu/form.docx",
		"https://monash.edu/study",
	}
	got := URLs(Rank(in, Options{Domain: "monash.edu"}))
	assert.Equal(t, []string{"https://monash.edu/study"}, got)
}

func TestRank_RejectsForeignHostWithDomain(t *testing.T) {
	in := []string{
		"https://www.topuniversities.com/monash.edu/course",
		"https://www.monash.edu/it/course",
	}
	got := URLs(Rank(in, Options{Domain: "monash.edu"}))
	assert.Equal(t, []string{"https://www.monash.edu/it/course"}, got)
}

func TestRank_UniversityNameFilterWithoutDomain(t *testing.T) {
	in := []string{
		"https://www.universityofsydney.edu.au/study",
		"https://www.university-of-sydney.example/course",
		"https://www.unsw.edu.au/study",
	}
	got := URLs(Rank(in, Options{University: "University of  Sydney"}))
	assert.Equal(t, []string{
		"https://www.universityofsydney.edu.au/study",
		"https://www.university-of-sydney.example/course",
	}, got)
}

func TestRank_Limit(t *testing.T) {
	in := []string{"https://u.edu/a", "https://u.edu/b", "https://u.edu/course"}
	got := Rank(in, Options{Domain: "u.edu", Limit: 2})
	require.Len(t, got, 2)
	assert.Equal(t, "https://u.edu/course", got[0].URL)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "universitedemontreal", NormalizeName("Université  de Montréal"))
	assert.Equal(t, "monashuniversity", NormalizeName(" Monash\tUniversity "))
}
