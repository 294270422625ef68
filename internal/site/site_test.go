package site

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/storage"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testBuilder(t *testing.T, production bool) (*Builder, string, string) {
	t.Helper()
	contentDir := t.TempDir()
	outDir := t.TempDir()

	writeFile(t, contentDir, "hello-world.md", "---\ntitle: Hello World\ndate: '2023-01-01'\npublish: true\nexcerpt: First post\nauthor:\n  name: Jane\n---\n"+
		"Intro\n\n## Getting Started\n\n![shot](/images/a.png)\n\n### Use `foo` here\n")
	writeFile(t, contentDir, "older.md", "---\ntitle: Older Post\ndate: '2022-01-01'\npublish: true\n---\nOld body\n")
	writeFile(t, contentDir, "draft.md", "---\ntitle: Secret Draft\ndate: '2024-01-01'\n---\nDraft\n")

	src, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	out, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	tr := &content.Transformer{Production: production, BasePath: "/blog"}
	b, err := NewBuilder(posts.NewRepository(src, tr), render.New(render.Options{}), out,
		Config{Title: "Test Blog", BasePath: "/blog"}, nil, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b, contentDir, outDir
}

func readOut(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestBuild_WritesHomeAndPosts(t *testing.T) {
	b, _, outDir := testBuilder(t, true)
	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Posts != 2 || report.Pages != 4 {
		t.Errorf("report = %+v, want 2 posts / 4 pages", report)
	}

	home := readOut(t, outDir, "index.html")
	if !strings.Contains(home, "Hello World") || !strings.Contains(home, "Older Post") {
		t.Errorf("home missing posts: %s", home)
	}
	if strings.Contains(home, "Secret Draft") {
		t.Error("unpublished post listed on home page")
	}
	if strings.Index(home, "Hello World") > strings.Index(home, "Older Post") {
		t.Error("home page not ordered newest first")
	}
	if !strings.Contains(home, `href="/blog/posts/hello-world/"`) {
		t.Errorf("home missing post link: %s", home)
	}

	page := readOut(t, outDir, "posts/hello-world/index.html")
	for _, want := range []string{
		`<h2 id="getting-started">Getting Started</h2>`,
		`<a href="#getting-started">Getting Started</a>`,
		`<a href="#use-here">Use foo here</a>`,
		`src="/blog/images/a.png"`,
		"<title>Hello World | Test Blog</title>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("post page missing %q", want)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "posts", "draft")); !os.IsNotExist(err) {
		t.Error("draft page should not be written")
	}
}

func TestBuild_PostsJSON(t *testing.T) {
	b, _, outDir := testBuilder(t, false)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	var items []listItem
	if err := json.Unmarshal([]byte(readOut(t, outDir, "posts.json")), &items); err != nil {
		t.Fatalf("decode posts.json: %v", err)
	}
	if len(items) != 2 || items[0].Slug != "hello-world" || items[1].Slug != "older" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].URL != "/blog/posts/hello-world/" {
		t.Errorf("url = %q", items[0].URL)
	}
}

func TestBuild_RemovesStalePages(t *testing.T) {
	b, contentDir, outDir := testBuilder(t, false)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := os.Remove(filepath.Join(contentDir, "older.md")); err != nil {
		t.Fatal(err)
	}
	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if report.Removed != 1 {
		t.Errorf("removed = %d, want 1", report.Removed)
	}
	if _, err := os.Stat(filepath.Join(outDir, "posts", "older")); !os.IsNotExist(err) {
		t.Error("stale page still present")
	}
}

func TestBuild_BrokenPostFailsBuild(t *testing.T) {
	b, contentDir, _ := testBuilder(t, false)
	writeFile(t, contentDir, "broken.md", "---\ntitle: [oops\n---\n")
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
}

// failingList wraps a Provider and fails every List call with err.
type failingList struct {
	storage.Provider
	err error
}

func (f failingList) List(string) ([]models.Entry, error) { return nil, f.err }

func TestBuild_StaleListErrorFailsBuild(t *testing.T) {
	b, _, _ := testBuilder(t, false)
	b.out = failingList{Provider: b.out, err: fs.ErrPermission}
	_, err := b.Build(context.Background())
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("err = %v, want fs.ErrPermission", err)
	}
}

func TestBuild_MissingPostsDirIsNotStale(t *testing.T) {
	b, _, _ := testBuilder(t, false)
	b.out = failingList{Provider: b.out, err: fs.ErrNotExist}
	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Removed != 0 {
		t.Errorf("removed = %d", report.Removed)
	}
}

func TestBuild_CopiesStaticDir(t *testing.T) {
	b, _, outDir := testBuilder(t, true)
	staticDir := t.TempDir()
	writeFile(t, staticDir, "images/a.png", "png-bytes")
	writeFile(t, staticDir, "robots.txt", "User-agent: *")
	writeFile(t, staticDir, "index.html", "static home")
	b.cfg.StaticDir = staticDir

	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Assets != 3 {
		t.Errorf("assets = %d, want 3", report.Assets)
	}
	if got := readOut(t, outDir, "images/a.png"); got != "png-bytes" {
		t.Errorf("image = %q", got)
	}
	if got := readOut(t, outDir, "robots.txt"); got != "User-agent: *" {
		t.Errorf("robots = %q", got)
	}
	if home := readOut(t, outDir, "index.html"); !strings.Contains(home, "Test Blog") {
		t.Errorf("generated home page should win over static file: %q", home)
	}
	page := readOut(t, outDir, "posts/hello-world/index.html")
	if !strings.Contains(page, "/blog/images/a.png") {
		t.Errorf("post page should link the rewritten image path: %s", page)
	}
}

func TestBuild_MissingStaticDirFails(t *testing.T) {
	b, _, _ := testBuilder(t, false)
	b.cfg.StaticDir = filepath.Join(t.TempDir(), "missing")
	if _, err := b.Build(context.Background()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestPostPath(t *testing.T) {
	if got := PostPath("hello"); got != "posts/hello/index.html" {
		t.Errorf("PostPath = %q", got)
	}
}
