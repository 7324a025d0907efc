package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/source"
)

func writeFile(t *testing.T, root, name, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestFetchHTMLVerbatim(t *testing.T) {
	root := t.TempDir()
	body := `<h2>Intro</h2><p onclick="x()">Raw <b>first-party</b> markup</p><script>track()</script>`
	writeFile(t, root, "posts/intro.html", body)

	frag, err := NewLoader(source.NewDir(root)).Fetch(context.Background(), "posts/intro.html")
	require.NoError(t, err)
	require.Equal(t, FormatHTML, frag.Format)
	require.Equal(t, body, string(frag.HTML))
	require.Equal(t, "Intro Raw first-party markup", frag.Description)
}

func TestFetchMarkdownWithFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/go.md", "---\ntitle: Go\ndescription: Notes on Go\n---\n\n# Heading\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")

	frag, err := NewLoader(source.NewDir(root)).Fetch(context.Background(), "posts/go.md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, frag.Format)
	require.Contains(t, string(frag.HTML), `<h1 id="heading">Heading</h1>`)
	require.Contains(t, string(frag.HTML), "<table>")
	require.NotContains(t, string(frag.HTML), "description:")
	require.Equal(t, "Notes on Go", frag.Description)
}

func TestFetchSanitizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/x.html", `<p onclick="x()">hi</p><script>alert(1)</script><a href="https://example.com">l</a>`)

	frag, err := NewLoader(source.NewDir(root), WithSanitize(true)).Fetch(context.Background(), "posts/x.html")
	require.NoError(t, err)
	out := string(frag.HTML)
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, `rel="nofollow"`)
}

func TestFetchMarkdownKeepsRawHTML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/embed.md", "Intro\n\n<figure class=\"wide\"><img src=\"a.png\" alt=\"a\"></figure>\n\n<iframe src=\"https://example.com/v\"></iframe>\n")

	frag, err := NewLoader(source.NewDir(root)).Fetch(context.Background(), "posts/embed.md")
	require.NoError(t, err)
	out := string(frag.HTML)
	require.Contains(t, out, `<figure class="wide">`)
	require.Contains(t, out, `<iframe src="https://example.com/v">`)
	require.NotContains(t, out, "raw HTML omitted")

	frag, err = NewLoader(source.NewDir(root), WithSanitize(true)).Fetch(context.Background(), "posts/embed.md")
	require.NoError(t, err)
	require.NotContains(t, string(frag.HTML), "<iframe")
	require.NotContains(t, string(frag.HTML), "raw HTML omitted")
}

func TestFetchMissingIsLoadError(t *testing.T) {
	l := NewLoader(source.NewDir(t.TempDir()))

	_, err := l.Fetch(context.Background(), "posts/none.html")
	require.True(t, catalog.IsLoadError(err))
	require.ErrorIs(t, err, source.ErrNotExist)

	_, err = l.Fetch(context.Background(), "")
	require.True(t, catalog.IsLoadError(err))
}

func TestFetchBadFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/bad.md", "---\ntitle: [unclosed\n---\nbody\n")

	_, err := NewLoader(source.NewDir(root)).Fetch(context.Background(), "posts/bad.md")
	require.True(t, catalog.IsLoadError(err))
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "Hello world", Excerpt("<p>Hello</p>\n<style>p{}</style><p>world</p>", 100))
	long := "<p>" + strings.Repeat("가", 20) + "</p>"
	require.Equal(t, strings.Repeat("가", 5)+"…", Excerpt(long, 5))
	require.Equal(t, "", Excerpt("<p>x</p>", 0))
}
