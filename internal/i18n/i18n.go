// Package i18n loads the UI message catalogs in locales/ and negotiates the page
// language.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultFallback is the language used when nothing else matches.
const DefaultFallback = "ko"

// Messages is one language's key to text table.
type Messages map[string]string

// Bundle holds the loaded languages. The fallback is always loaded and always
// listed first.
type Bundle struct {
	langs    []string
	messages map[string]Messages
	matcher  language.Matcher
}

// Load reads <dir>/<lang>.json for each supported language. Only the fallback
// language file is required.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), fallback, supported)
}

// LoadFS is Load over an arbitrary file system.
func LoadFS(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	fallback = normalize(fallback)
	if fallback == "" {
		fallback = DefaultFallback
	}
	if len(supported) == 0 {
		supported = []string{fallback, "en"}
	}

	langs := []string{fallback}
	for _, l := range supported {
		if l = normalize(l); l != "" && !slices.Contains(langs, l) {
			langs = append(langs, l)
		}
	}

	b := &Bundle{langs: langs, messages: make(map[string]Messages, len(langs))}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", l, err)
		}
		tags = append(tags, tag)

		msgs, err := readMessages(fsys, l)
		switch {
		case errors.Is(err, fs.ErrNotExist) && l != fallback:
			continue
		case err != nil:
			return nil, fmt.Errorf("load locale %s: %w", l, err)
		}
		b.messages[l] = msgs
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func readMessages(fsys fs.FS, lang string) (Messages, error) {
	raw, err := fs.ReadFile(fsys, path.Clean(lang+".json"))
	if err != nil {
		return nil, err
	}
	var msgs Messages
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("decode %s.json: %w", lang, err)
	}
	return msgs, nil
}

func normalize(lang string) string { return strings.ToLower(strings.TrimSpace(lang)) }

// Supported lists the configured languages, fallback first.
func (b *Bundle) Supported() []string { return slices.Clone(b.langs) }

func (b *Bundle) Fallback() string { return b.langs[0] }

func (b *Bundle) IsSupported(lang string) bool {
	return lang != "" && slices.Contains(b.langs, lang)
}

// T looks key up in lang, then in the fallback. Unknown keys render as the key.
func (b *Bundle) T(lang, key string) string {
	if msg, ok := b.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := b.messages[b.Fallback()][key]; ok {
		return msg
	}
	return key
}

// Translator binds lang for the "t" template function.
func (b *Bundle) Translator(lang string) func(key string) string {
	return func(key string) string { return b.T(lang, key) }
}

// Missing lists fallback keys that lang does not translate, sorted.
func (b *Bundle) Missing(lang string) []string {
	have := b.messages[lang]
	var out []string
	for key := range b.messages[b.Fallback()] {
		if _, ok := have[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve negotiates an Accept-Language header against the supported languages.
// Ranges with q=0 are refused; anything unparsable yields the fallback.
func (b *Bundle) Resolve(acceptLanguage string) string {
	tags, weights, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return b.Fallback()
	}
	wanted := tags[:0]
	for i, tag := range tags {
		if weights[i] > 0 {
			wanted = append(wanted, tag)
		}
	}
	if len(wanted) == 0 {
		return b.Fallback()
	}
	_, idx, conf := b.matcher.Match(wanted...)
	if conf == language.No {
		return b.Fallback()
	}
	return b.langs[idx]
}
