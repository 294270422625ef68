package render

import (
	"strings"
	"testing"

	"github.com/starford/folio/internal/slug"
)

const body = "# Title\n\nIntro.\n\n## Getting Started\n\nText.\n\n### Use `foo` here\n\nMore.\n\n#### Too Deep\n\n## Getting Started\n"

func TestHTML_HeadingIDsFromSlug(t *testing.T) {
	r := New(Options{})
	html, err := r.HTML(body)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	s := string(html)
	for _, want := range []string{
		`<h2 id="getting-started">Getting Started</h2>`,
		`<h3 id="use-here">Use <code>foo</code> here</h3>`,
		`<h1 id="title">Title</h1>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %s", want, s)
		}
	}
	// Duplicates are not disambiguated.
	if strings.Count(s, `id="getting-started"`) != 2 {
		t.Errorf("expected duplicate ids, got %s", s)
	}
}

func TestTOC_LevelsAndIDs(t *testing.T) {
	r := New(Options{})
	toc := r.TOC(body)
	if len(toc) != 3 {
		t.Fatalf("len(toc) = %d, want 3: %+v", len(toc), toc)
	}
	want := []Heading{
		{Level: 2, Label: "Getting Started", ID: "getting-started"},
		{Level: 3, Label: "Use foo here", ID: "use-here"},
		{Level: 2, Label: "Getting Started", ID: "getting-started"},
	}
	for i, h := range want {
		if toc[i] != h {
			t.Errorf("toc[%d] = %+v, want %+v", i, toc[i], h)
		}
	}
}

func TestTOC_MatchesHTMLAnchors(t *testing.T) {
	r := New(Options{MinLevel: 1, MaxLevel: 6})
	html, err := r.HTML(body)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, h := range r.TOC(body) {
		if !strings.Contains(string(html), `id="`+h.ID+`"`) {
			t.Errorf("anchor %q not present in HTML", h.ID)
		}
	}
}

func TestTOC_IDIsSlugOfRawHeading(t *testing.T) {
	r := New(Options{})
	toc := r.TOC("## 2. Install `go` Tools\n")
	if len(toc) != 1 {
		t.Fatalf("len(toc) = %d", len(toc))
	}
	if want := slug.Make("2. Install `go` Tools"); toc[0].ID != want {
		t.Errorf("id = %q, want %q", toc[0].ID, want)
	}
}

func TestTOC_Empty(t *testing.T) {
	toc := New(Options{}).TOC("just a paragraph")
	if toc == nil || len(toc) != 0 {
		t.Errorf("toc = %#v, want empty non-nil", toc)
	}
}
