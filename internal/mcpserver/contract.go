package mcpserver

// PostFormatContract describes the Markdown post format folio reads, for LLM
// consumers drafting or reviewing posts.
const PostFormatContract = `# folio Post Format

Every post is one Markdown file directly in the content directory. The file
name without ` + "`.md`" + ` is the post slug and its URL: ` + "`hello-world.md`" + ` is
served at ` + "`/posts/hello-world/`" + `.

## Structure

` + "```" + `markdown
---
title: Hello World                 # shown on the home page and as the page title
date: '2024-03-01T09:00:00.000Z'   # ISO-8601; posts sort newest first by this string
excerpt: One-line summary.         # home page and search snippet
coverImage: /images/hello/cover.jpg
author:
  name: Jane Doe
  picture: /images/authors/jane.png
ogImage:
  url: /images/hello/cover.jpg
publish: true                      # only boolean true publishes the post
---

Body text in standard Markdown.
` + "```" + `

TOML front matter between ` + "`+++`" + ` lines is accepted as well.

## Rules

1. **publish must be the boolean ` + "`true`" + `.** Missing, ` + "`false`" + ` or the string
   ` + "`\"true\"`" + ` all leave the post unpublished.
2. **Dates share one layout.** Ordering compares the date text, so mixing
   ` + "`2024-03-01`" + ` and ` + "`2024-03-01T09:00:00Z`" + ` styles sorts unpredictably.
3. **Front matter is never the slug.** Rename the file to change the URL.
4. **Headings get anchors.** Level 2 and 3 headings form the table of contents.
   Anchor ids keep ASCII letters only, lower-cased, with spaces turned into
   hyphens, one per space: ` + "`## Getting Started`" + ` becomes ` + "`#getting-started`" + `
   and ` + "`## Go 2 Tips`" + ` becomes ` + "`#go--tips`" + `. Identical headings share one id.
5. **Images use site-rooted paths** such as ` + "`![shot](/images/a.png)`" + `. Production
   builds prefix the site base path automatically.
6. **Encoding** is UTF-8.
`
