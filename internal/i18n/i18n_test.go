package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func loadBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load("../../locales", "ko", []string{"ko", "en"})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	b := loadBundle(t)
	require.Equal(t, "en", b.Resolve("ko;q=0.8, en;q=0.9"))
	require.Equal(t, "ko", b.Resolve("fr-FR, de"))
	require.Equal(t, "ko", b.Resolve("en;q=0"))
	require.Equal(t, "en", b.Resolve("en-US"))
}

func TestTranslateFallsBack(t *testing.T) {
	b := loadBundle(t)
	require.Equal(t, "포스트를 불러오지 못했어", b.T("ko", "catalog.load_failed"))
	require.Equal(t, "Could not load posts", b.T("en", "catalog.load_failed"))
	require.Equal(t, "포스트를 불러오지 못했어", b.T("fr", "catalog.load_failed"))
	require.Equal(t, "no.such.key", b.T("en", "no.such.key"))
	require.Equal(t, "글이 없어", b.Translator("ko")("post.not_found"))
}

func TestLocalesComplete(t *testing.T) {
	require.Empty(t, loadBundle(t).Missing("en"))
}

func TestLoadRequiresFallback(t *testing.T) {
	_, err := Load(t.TempDir(), "ko", nil)
	require.Error(t, err)
}

func TestLoadFSSkipsMissingOptionalLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"nav.home":"Home","nav.archive":"Archive"}`)},
	}
	b, err := LoadFS(fsys, "EN", []string{"ja", "en"})
	require.NoError(t, err)
	require.Equal(t, "en", b.Fallback())
	require.Equal(t, []string{"en", "ja"}, b.Supported())
	require.Equal(t, "Home", b.T("ja", "nav.home"))
	require.Equal(t, []string{"nav.archive", "nav.home"}, b.Missing("ja"))
	require.Equal(t, "ja", b.Resolve("ja-JP;q=0.9, en;q=0.5"))
}

func TestLoadFSRejectsBadJSON(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"ko.json": {Data: []byte("{")}}, "ko", nil)
	require.Error(t, err)
}
