package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/catalog"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadWithDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(WithoutEnv())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, ".", cfg.Catalog.Root)
	require.Equal(t, catalog.DefaultPath, cfg.Catalog.Path)
	require.Equal(t, 4, cfg.Catalog.PageSize)
	require.Equal(t, catalog.DefaultCategoryOrder, cfg.Catalog.CategoryOrder)
	require.Equal(t, "기타", cfg.Catalog.Uncategorized)
	require.True(t, cfg.Catalog.GroupArchive)
	require.True(t, cfg.Catalog.GroupSidebar)
	require.False(t, cfg.Content.Sanitize)
	require.Equal(t, "ko", cfg.Site.Lang)
	require.Equal(t, "public_html", cfg.Export.Output)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "blog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
site:
  title: My Blog
  base_url: https://blog.example.com/
catalog:
  root: gs://bucket/site
  page_size: 6
  group_archive: false
tabs:
  - label_key: nav.works
    href: /works/
`), 0o644))
	t.Setenv("HANKO_BLOG_CATALOG_PAGE_SIZE", "8")
	t.Setenv("HANKO_BLOG_LOG_LEVEL", "debug")

	cfg, err := Load(WithConfigFile(file), WithOverrides(map[string]any{"server.addr": ":9090"}))
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)
	require.Equal(t, "https://blog.example.com", cfg.Site.BaseURL)
	require.Equal(t, "gs://bucket/site", cfg.Catalog.Root)
	require.Equal(t, 8, cfg.Catalog.PageSize)
	require.False(t, cfg.Catalog.GroupArchive)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, []TabConfig{{LabelKey: "nav.works", Href: "/works/"}}, cfg.Tabs)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "none.yaml")), WithoutEnv())
	require.Error(t, err)
}

func TestValidationCollectsFields(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(WithoutEnv(), WithOverrides(map[string]any{
		"catalog.page_size":     0,
		"catalog.path":          "../posts.json",
		"site.base_url":         "not a url",
		"catalog.uncategorized": " ",
		"log.format":            "xml",
	}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.ElementsMatch(t, []string{"catalog.page_size", "catalog.path", "site.base_url", "catalog.uncategorized", "log.format"}, verr.Fields())
}
