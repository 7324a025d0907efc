package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/source"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"

	descriptionLimit = 160
)

var tracer = otel.Tracer("finitefield.org/hanko-blog/internal/content")

// Fragment is a post body ready to be inserted into the detail page.
type Fragment struct {
	Name        string
	Format      string
	HTML        template.HTML
	Description string
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Summary     string `yaml:"summary"`
}

// Loader fetches content fragments. Fragments are first-party and inserted verbatim
// unless sanitising is enabled.
type Loader struct {
	src    source.Source
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option customises a Loader.
type Option func(*Loader)

// WithSanitize enables the UGC sanitising policy for rendered fragments.
func WithSanitize(enabled bool) Option {
	return func(l *Loader) {
		if enabled {
			l.policy = newFragmentPolicy()
		} else {
			l.policy = nil
		}
	}
}

// NewLoader builds a Loader reading from src.
func NewLoader(src source.Source, opts ...Option) *Loader {
	l := &Loader{
		src: src,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Raw HTML in first-party markdown passes through; WithSanitize filters it afterwards.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Fetch reads the fragment stored at name. Failures are reported as *catalog.LoadError.
func (l *Loader) Fetch(ctx context.Context, name string) (Fragment, error) {
	ctx, span := tracer.Start(ctx, "content.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("content.name", name))

	frag, err := l.fetch(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fragment fetch failed")
		return Fragment{}, err
	}
	span.SetAttributes(attribute.String("content.format", frag.Format))
	return frag, nil
}

func (l *Loader) fetch(ctx context.Context, name string) (Fragment, error) {
	if strings.TrimSpace(name) == "" {
		return Fragment{}, &catalog.LoadError{Op: "fragment", Err: fmt.Errorf("no file: %w", source.ErrNotExist)}
	}
	data, err := source.ReadAll(ctx, l.src, name)
	if err != nil {
		return Fragment{}, &catalog.LoadError{Op: "fragment", Path: name, Err: err}
	}

	frag := Fragment{Name: name, Format: formatFor(name)}
	body := string(data)
	if frag.Format == FormatMarkdown {
		fm, rest := splitFrontMatter(body)
		meta := frontMatter{}
		if strings.TrimSpace(fm) != "" {
			if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
				return Fragment{}, &catalog.LoadError{Op: "fragment", Path: name, Err: fmt.Errorf("front matter: %w", err)}
			}
		}
		var buf bytes.Buffer
		if err := l.md.Convert([]byte(rest), &buf); err != nil {
			return Fragment{}, &catalog.LoadError{Op: "fragment", Path: name, Err: err}
		}
		body = buf.String()
		frag.Description = firstNonEmpty(meta.Description, meta.Summary)
	}
	if l.policy != nil {
		body = l.policy.Sanitize(body)
	}
	frag.HTML = template.HTML(body)
	if frag.Description == "" {
		frag.Description = Excerpt(body, descriptionLimit)
	}
	return frag, nil
}

func formatFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

func newFragmentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "code", "pre")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
