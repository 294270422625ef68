// Package render converts Markdown bodies to HTML and extracts the table of
// contents from their headings.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/starford/folio/internal/slug"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Options configures a Renderer.
type Options struct {
	// MinLevel and MaxLevel bound the heading levels listed in the TOC.
	MinLevel int
	MaxLevel int
}

// Renderer wraps a goldmark instance whose heading ids come from slug.Make.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New creates a Renderer. Zero levels default to h2..h3.
func New(opts Options) *Renderer {
	if opts.MinLevel <= 0 {
		opts.MinLevel = 2
	}
	if opts.MaxLevel <= 0 {
		opts.MaxLevel = 3
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return &Renderer{md: md, opts: opts}
}

// HTML renders body to HTML with anchor ids on every heading.
func (r *Renderer) HTML(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf, parser.WithContext(newContext())); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // post bodies are trusted site content
}

// TOC lists the headings of body within the configured level range. Each id
// is the one HTML assigns to the same heading.
func (r *Renderer) TOC(body string) []Heading {
	src := []byte(body)
	root := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(newContext()))

	out := []Heading{}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level < r.opts.MinLevel || h.Level > r.opts.MaxLevel {
			return gmast.WalkSkipChildren, nil
		}
		out = append(out, Heading{
			Level: h.Level,
			Label: plainText(h, src),
			ID:    headingID(h),
		})
		return gmast.WalkSkipChildren, nil
	})
	return out
}

func headingID(h *gmast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	if b, isBytes := v.([]byte); isBytes {
		return string(b)
	}
	return fmt.Sprint(v)
}

// plainText concatenates the text leaves under n, dropping Markdown markup.
func plainText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}

// slugIDs feeds goldmark's auto heading ids through slug.Make. Duplicate
// headings get duplicate ids.
type slugIDs struct{}

func (slugIDs) Generate(value []byte, _ gmast.NodeKind) []byte {
	return []byte(slug.Make(string(value)))
}

func (slugIDs) Put(_ []byte) {}

func newContext() parser.Context {
	return parser.NewContext(parser.WithIDs(slugIDs{}))
}
