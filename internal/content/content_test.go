package content

import (
	"strings"
	"testing"
)

const doc = "---\ntitle: Images\n---\n" +
	"Intro\n\n![alt](/images/x.png)\n\nMiddle\n\n![alt](/images/x.png)\n"

func TestTransform_ProductionRewritesEveryImage(t *testing.T) {
	tr := &Transformer{Production: true, BasePath: "/blog"}
	got, err := tr.Transform([]byte(doc))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if n := strings.Count(got, "![alt](/blog/images/x.png)"); n != 2 {
		t.Errorf("rewritten images = %d, want 2; body = %q", n, got)
	}
	if strings.Contains(got, "](/images/") {
		t.Errorf("unrewritten image left: %q", got)
	}
	if strings.Contains(got, "title:") {
		t.Errorf("front matter not stripped: %q", got)
	}
}

func TestTransform_NonProductionLeavesBody(t *testing.T) {
	tr := &Transformer{Production: false, BasePath: "/blog"}
	got, err := tr.Transform([]byte(doc))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if strings.Count(got, "![alt](/images/x.png)") != 2 {
		t.Errorf("body changed: %q", got)
	}
	if strings.Contains(got, "title:") {
		t.Errorf("front matter not stripped: %q", got)
	}
}

func TestRewriteImages_AlreadyRooted(t *testing.T) {
	in := "![a](/blog/images/a.png) and ![b](/images/b.png)"
	want := "![a](/blog/images/a.png) and ![b](/blog/images/b.png)"
	if got := RewriteImages(in, "/blog"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteImages_NoValidationOfPath(t *testing.T) {
	in := "![remote](https://example.com/x.png)"
	want := "![remote](/bloghttps://example.com/x.png)"
	if got := RewriteImages(in, "/blog"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteImages_LeavesLinksAlone(t *testing.T) {
	in := "[not an image](/images/x.png)"
	if got := RewriteImages(in, "/blog"); got != in {
		t.Errorf("plain link rewritten: %q", got)
	}
}

func TestRewriteImages_EmptyBasePath(t *testing.T) {
	in := "![a](/images/a.png)"
	if got := RewriteImages(in, ""); got != in {
		t.Errorf("got %q", got)
	}
}
