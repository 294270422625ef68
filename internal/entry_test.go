package internal

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	postsDir := filepath.Join(root, "_posts")
	testutil.WriteFile(t, postsDir, "hello.md", testutil.Post(
		"title: Hello\ndate: '2024-03-01'\npublish: true",
		"## Intro\n\n![img](/images/a.png)\n"))
	testutil.WriteFile(t, postsDir, "draft.md", testutil.Post("title: Draft", "draft"))

	cfg := NewDefaultConfig()
	cfg.Content.PostsDir = postsDir
	cfg.Site.OutputDir = filepath.Join(root, "public")
	cfg.Site.BasePath = "/blog"
	cfg.SQLite.Path = filepath.Join(root, "folio.db")
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.Production = true

	report, err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Posts != 1 {
		t.Errorf("posts = %d, want 1", report.Posts)
	}

	page, err := os.ReadFile(filepath.Join(cfg.Site.OutputDir, "posts", "hello", "index.html"))
	if err != nil {
		t.Fatalf("post page: %v", err)
	}
	if !strings.Contains(string(page), `src="/blog/images/a.png"`) {
		t.Errorf("production image path not rewritten:\n%s", page)
	}
	if strings.Contains(string(page), "EventSource") {
		t.Error("static build should not include live reload")
	}
	if _, err := os.Stat(filepath.Join(cfg.Site.OutputDir, "posts", "draft")); !os.IsNotExist(err) {
		t.Error("draft page written")
	}
}

func TestBuild_MissingPostsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.PostsDir = filepath.Join(t.TempDir(), "missing")
	if _, err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error for missing posts dir")
	}
}

func TestBuild_RequiresConfig(t *testing.T) {
	if _, err := Build(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.HTTP.Port = freePort(t)
	base := "http://127.0.0.1:" + strconv.Itoa(cfg.App.HTTP.Port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, WithConfig(cfg), WithLogOutput(io.Discard)) }()

	getBody := func(path string) (int, string) {
		resp, err := http.Get(base + path)
		if err != nil {
			return 0, ""
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if code, _ := getBody("/health/ready"); code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("server never became ready")
		}
		time.Sleep(50 * time.Millisecond)
	}

	if code, body := getBody("/blog/api/posts"); code != http.StatusOK || !strings.Contains(body, `"slug":"hello"`) {
		t.Errorf("api posts = %d %s", code, body)
	}
	if code, body := getBody("/blog/posts/hello/"); code != http.StatusOK || !strings.Contains(body, "EventSource") {
		t.Errorf("post page = %d", code)
	}
	if code, body := getBody("/metrics"); code != http.StatusOK || !strings.Contains(body, "folio_builds_total") {
		t.Errorf("metrics = %d", code)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
