package extract

import (
	"strings"
	"testing"
)

func TestSnippets_SelectsRequirementBlocksInOrder(t *testing.T) {
	page := `<!doctype html>
<html>
  <head><title>Master of Computer Science</title></head>
  <body>
    <nav><p>Entry requirements menu link</p></nav>
    <main>
      <h1>Master of Computer Science</h1>
      <section>
        <h2>Entry requirements</h2>
      </section>
      <p>Our campus has a great library.</p>
      <div><p>Applicants need a GRE quantitative score of 160 or above.</p></div>
      <ul>
        <li>IELTS overall 6.5 with no band below 6.0</li>
      </ul>
    </main>
    <footer><p>Tuition fees footer</p></footer>
  </body>
</html>`
	got := Snippets(page, 0)
	want := []string{
		"Entry requirements",
		"Applicants need a GRE quantitative score of 160 or above.",
		"IELTS overall 6.5 with no band below 6.0",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected snippets:\n got %q\nwant %q", got, want)
	}
}

func TestSnippets_AppendsShortSibling(t *testing.T) {
	page := `<html><body>
<h3>Admission requirements</h3>
<p>A bachelor degree in a related field with a credit average.</p>
</body></html>`
	got := Snippets(page, 0)
	if len(got) != 2 || got[1] != "A bachelor degree in a related field with a credit average." {
		t.Fatalf("expected heading followed by sibling context, got %q", got)
	}
}

func TestSnippets_SkipsLongSibling(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 100)
	page := "<html><body><h3>Eligibility</h3><p>" + long + "</p></body></html>"
	got := Snippets(page, 0)
	if len(got) != 1 || got[0] != "Eligibility" {
		t.Fatalf("expected only the heading, got %d snippets", len(got))
	}
}

func TestSnippets_FlattensInlineMarkupAndCollapsesWhitespace(t *testing.T) {
	page := `<html><body><p>Minimum   <strong>TOEFL iBT</strong>
	score of <em>90</em></p></body></html>`
	got := Snippets(page, 0)
	if len(got) != 1 || got[0] != "Minimum TOEFL iBT score of 90" {
		t.Fatalf("unexpected flattening: %q", got)
	}
}

func TestSnippets_TableCellsAndDefinitions(t *testing.T) {
	page := `<html><body>
<table><tr><th>Test</th><th>Score</th></tr><tr><td>GMAT score of 550</td></tr></table>
<dl><dt>Work experience</dt><dd>Two years of relevant professional experience is required.</dd></dl>
</body></html>`
	got := Snippets(page, 0)
	joined := strings.Join(got, "|")
	if !strings.Contains(joined, "GMAT score of 550") {
		t.Fatalf("expected table cell snippet, got %q", got)
	}
	if !strings.Contains(joined, "Two years of relevant professional experience is required.") {
		t.Fatalf("expected definition snippet, got %q", got)
	}
}

func TestSnippets_CapAndDedupe(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		b.WriteString("<div><p>Check the entry requirements.</p></div>")
	}
	for i := 0; i < 30; i++ {
		b.WriteString("<div><p>GPA of 3.")
		b.WriteString(string(rune('0' + i%10)))
		b.WriteString(" and intake ")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("</p></div>")
	}
	b.WriteString("</body></html>")

	got := Snippets(b.String(), 5)
	if len(got) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s] {
			t.Fatalf("duplicate snippet %q", s)
		}
		seen[s] = true
	}
	if got[0] != "Check the entry requirements." {
		t.Fatalf("expected first-seen order, got %q", got[0])
	}
	if len(Snippets(b.String(), 0)) != DefaultMaxSnippets {
		t.Fatalf("expected default cap %d", DefaultMaxSnippets)
	}
}

func TestSnippets_SkipsCookieBanner(t *testing.T) {
	page := `<html><body>
<div class="cookie-consent"><p>We use cookies; see eligibility for opt-out.</p></div>
<p>Eligibility: completed secondary school.</p>
</body></html>`
	got := Snippets(page, 0)
	if len(got) != 1 || got[0] != "Eligibility: completed secondary school." {
		t.Fatalf("expected banner to be skipped, got %q", got)
	}
}

func TestSnippets_NoMatchesOrEmpty(t *testing.T) {
	if got := Snippets("", 0); len(got) != 0 {
		t.Fatalf("expected nothing for empty input, got %q", got)
	}
	if got := Snippets("<html><body><p>Welcome to campus.</p></body></html>", 0); len(got) != 0 {
		t.Fatalf("expected nothing for irrelevant page, got %q", got)
	}
}

func TestBlockExtractor(t *testing.T) {
	var e Extractor = BlockExtractor{}
	if got := e.Extract("<p>PTE Academic 58</p>", 0); len(got) != 1 {
		t.Fatalf("expected one snippet, got %q", got)
	}
}
