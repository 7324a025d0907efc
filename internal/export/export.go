// Package export writes the catalog as a static tree with path-style links and no
// htmx attributes.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/handlers"
	"finitefield.org/hanko-blog/internal/site"
	"finitefield.org/hanko-blog/internal/view"
)

var tracer = otel.Tracer("finitefield.org/hanko-blog/internal/export")

// ErrNoCatalog is returned when the site holds no snapshot to export.
var ErrNoCatalog = errors.New("export: catalog not loaded")

// Options configures a build.
type Options struct {
	// Out is the output directory. It is created when missing.
	Out string
	// Public holds the assets/ directory copied next to the pages.
	Public string
	// Prefix is prepended to every generated link.
	Prefix string
	Lang   string
	Logger *zap.Logger
}

// Result lists what a build wrote.
type Result struct {
	Files []string
	// Degraded holds slugs whose page rendered a placeholder instead of content.
	Degraded []string
	Assets   int
}

// Build renders every index page, the archive and each post into opts.Out.
func Build(ctx context.Context, s *site.Site, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "export.Build")
	defer span.End()

	res, err := build(ctx, s, opts)
	span.SetAttributes(
		attribute.Int("export.files", len(res.Files)),
		attribute.Int("export.degraded", len(res.Degraded)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
	}
	return res, err
}

func build(ctx context.Context, s *site.Site, opts Options) (Result, error) {
	var res Result
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.Out) == "" {
		return res, errors.New("export: output directory is required")
	}
	snap := s.Holder().Load()
	if snap == nil {
		return res, ErrNoCatalog
	}
	lang := opts.Lang
	links := view.PathLinks{Prefix: opts.Prefix}
	renderer := s.Renderer(lang, links, nil)
	w := writer{root: opts.Out, site: s}

	c := view.NewController(snap, view.InitialState(), s.ViewOptions())
	last := c.TotalPages()
	if last < 1 {
		last = 1
	}
	for n := 1; n <= last; n++ {
		c.ShowPage(n)
		rel := "index.html"
		if n > 1 {
			rel = filepath.Join("page", strconv.Itoa(n), "index.html")
		}
		data, err := s.Index(lang, links.Page(n), renderer, c.View(), true)
		if err != nil {
			return res, fmt.Errorf("render page %d: %w", n, err)
		}
		if err := w.page(rel, data); err != nil {
			return res, err
		}
		res.Files = append(res.Files, rel)
	}

	c.ToggleArchive()
	data, err := s.Index(lang, links.Archive(), renderer, c.View(), true)
	if err != nil {
		return res, fmt.Errorf("render archive: %w", err)
	}
	rel := filepath.Join("archive", "index.html")
	if err := w.page(rel, data); err != nil {
		return res, err
	}
	res.Files = append(res.Files, rel)

	for _, rec := range snap.Records() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !safeSegment(rec.Slug) {
			logger.Warn("skip post with unsafe slug", zap.String("slug", rec.Slug))
			res.Degraded = append(res.Degraded, rec.Slug)
			continue
		}
		data := s.Post(ctx, lang, links.Post(rec.Slug), rec.Slug, links)
		if data.Post != nil && data.Post.Page.Err != nil {
			res.Degraded = append(res.Degraded, rec.Slug)
		}
		rel := filepath.Join("posts", rec.Slug, "index.html")
		if err := w.page(rel, data); err != nil {
			return res, err
		}
		res.Files = append(res.Files, rel)
	}

	if opts.Public != "" {
		n, err := copyTree(filepath.Join(opts.Public, "assets"), filepath.Join(opts.Out, "assets"))
		if err != nil {
			return res, fmt.Errorf("copy assets: %w", err)
		}
		res.Assets = n
	}
	logger.Info("static export complete",
		zap.String("out", opts.Out),
		zap.Int("pages", len(res.Files)),
		zap.Int("assets", res.Assets),
		zap.Strings("degraded", res.Degraded),
	)
	return res, nil
}

type writer struct {
	root string
	site *site.Site
}

func (w writer) page(rel string, data handlers.PageData) error {
	data.Interactive = false
	var buf bytes.Buffer
	if err := w.site.Render(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}
	dst := filepath.Join(w.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

func safeSegment(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`)
}

// copyTree copies regular files under src into dst. A missing src copies nothing.
func copyTree(src, dst string) (int, error) {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
