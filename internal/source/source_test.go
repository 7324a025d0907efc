package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirOpen(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts", "posts.json"), []byte(`[]`), 0o644))

	src, err := Open(context.Background(), root)
	require.NoError(t, err)
	require.IsType(t, &Dir{}, src)

	data, err := ReadAll(context.Background(), src, "posts/posts.json")
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	_, err = ReadAll(context.Background(), src, "posts/missing.json")
	require.ErrorIs(t, err, ErrNotExist)
}

func TestDirRejectsEscapingNames(t *testing.T) {
	src := NewDir(t.TempDir())
	for _, name := range []string{"", "..", "../etc/passwd", "posts/../../x"} {
		_, err := src.Open(context.Background(), name)
		require.ErrorIs(t, err, ErrNotExist, "name %q", name)
	}
}

func TestHTTPOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blog/posts/posts.json":
			_, _ = w.Write([]byte(`[{"slug":"a"}]`))
		case "/blog/posts/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	src, err := Open(context.Background(), srv.URL+"/blog")
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	data, err := ReadAll(context.Background(), src, "posts/posts.json")
	require.NoError(t, err)
	require.Equal(t, `[{"slug":"a"}]`, string(data))

	_, err = ReadAll(context.Background(), src, "posts/nope.json")
	require.ErrorIs(t, err, ErrNotExist)

	_, err = ReadAll(context.Background(), src, "posts/broken.json")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotExist))
}

func TestParseGCSRoot(t *testing.T) {
	bucket, prefix, err := parseGCSRoot("gs://blog-content/site/v1/")
	require.NoError(t, err)
	require.Equal(t, "blog-content", bucket)
	require.Equal(t, "site/v1", prefix)

	_, _, err = parseGCSRoot("gs:///nobucket")
	require.Error(t, err)
}
