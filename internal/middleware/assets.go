package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// AssetsWithCache serves the stylesheet and scripts under dir. Mount it behind
// http.StripPrefix so request paths are relative to dir.
func AssetsWithCache(dir string) http.Handler {
	return Assets(os.DirFS(dir))
}

// Assets serves fsys with long-lived caching and content-hash ETags. Hashes are
// computed once; restart to pick up edited assets.
func Assets(fsys fs.FS) http.Handler {
	etags := AssetETags(fsys)
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Vary", "Accept-Encoding")
		h.Set("Cache-Control", assetCacheControl)
		if tag, ok := etags[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			h.Set("ETag", tag)
			if etagListed(r.Header.Get("If-None-Match"), tag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// AssetETags maps every regular file in fsys, by its slash path, to a quoted
// SHA-256 prefix of its content.
func AssetETags(fsys fs.FS) map[string]string {
	etags := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if tag, err := hashFile(fsys, name); err == nil {
			etags[name] = tag
		}
		return nil
	})
	return etags
}

func hashFile(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", err
	}
	return `"` + hex.EncodeToString(sum.Sum(nil)[:12]) + `"`, nil
}

// etagListed reports whether an If-None-Match header names tag. Comparison is weak.
func etagListed(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
