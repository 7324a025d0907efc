package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"finitefield.org/hanko-blog/internal/catalog"
)

// EnvPrefix namespaces environment overrides, e.g. HANKO_BLOG_CATALOG_ROOT.
const EnvPrefix = "HANKO_BLOG"

// Config captures all runtime configuration organised by concern.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Content   ContentConfig   `mapstructure:"content"`
	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Export    ExportConfig    `mapstructure:"export"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Tabs      []TabConfig     `mapstructure:"tabs"`
}

// AnalyticsConfig enables client instrumentation.
type AnalyticsConfig struct {
	GA4MeasurementID string `mapstructure:"ga4_measurement_id"`
	Debug            bool   `mapstructure:"debug"`
}

// TabConfig is an extra navigation tab after the posts tab.
type TabConfig struct {
	Label    string `mapstructure:"label"`
	LabelKey string `mapstructure:"label_key"`
	Href     string `mapstructure:"href"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title   string `mapstructure:"title"`
	BaseURL string `mapstructure:"base_url"`
	Lang    string `mapstructure:"lang"`
}

// ServerConfig configures the HTTP process and its file locations.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	Dev       bool   `mapstructure:"dev"`
	Templates string `mapstructure:"templates"`
	Public    string `mapstructure:"public"`
	Locales   string `mapstructure:"locales"`
}

// CatalogConfig locates the catalog document and shapes its presentation.
type CatalogConfig struct {
	Root          string   `mapstructure:"root"`
	Path          string   `mapstructure:"path"`
	PageSize      int      `mapstructure:"page_size"`
	CategoryOrder []string `mapstructure:"category_order"`
	Uncategorized string   `mapstructure:"uncategorized"`
	GroupArchive  bool     `mapstructure:"group_archive"`
	GroupSidebar  bool     `mapstructure:"group_sidebar"`
}

// ContentConfig controls fragment rendering.
type ContentConfig struct {
	Sanitize bool `mapstructure:"sanitize"`
}

// LogConfig sets the zap level and encoding ("json" or "console").
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig signs the visitor cookie.
type SessionConfig struct {
	SigningKey string `mapstructure:"signing_key"`
	Secure     bool   `mapstructure:"secure"`
}

// ExportConfig controls the static build.
type ExportConfig struct {
	Output string `mapstructure:"output"`
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file      string
	overrides map[string]any
	env       bool
}

// WithConfigFile reads path instead of searching for ./config.yaml.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.file = strings.TrimSpace(path) }
}

// WithOverrides sets keys with the highest precedence (flags use this).
func WithOverrides(values map[string]any) Option {
	return func(o *loaderOptions) {
		if o.overrides == nil {
			o.overrides = map[string]any{}
		}
		for k, v := range values {
			o.overrides[k] = v
		}
	}
}

// WithoutEnv ignores environment variables.
func WithoutEnv() Option {
	return func(o *loaderOptions) { o.env = false }
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.title", "hanko blog")
	v.SetDefault("site.base_url", "")
	v.SetDefault("site.lang", "ko")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("server.templates", "templates")
	v.SetDefault("server.public", "public")
	v.SetDefault("server.locales", "locales")
	v.SetDefault("catalog.root", ".")
	v.SetDefault("catalog.path", catalog.DefaultPath)
	v.SetDefault("catalog.page_size", catalog.DefaultPageSize)
	v.SetDefault("catalog.category_order", catalog.DefaultCategoryOrder)
	v.SetDefault("catalog.uncategorized", catalog.DefaultUncategorized)
	v.SetDefault("catalog.group_archive", true)
	v.SetDefault("catalog.group_sidebar", true)
	v.SetDefault("content.sanitize", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("session.signing_key", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("export.output", "public_html")
	v.SetDefault("analytics.ga4_measurement_id", "")
	v.SetDefault("analytics.debug", false)
}

// Load merges defaults, the optional config file, HANKO_BLOG_* environment variables
// and overrides, then validates the result.
func Load(opts ...Option) (Config, error) {
	o := loaderOptions{env: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	v := viper.New()
	setDefaults(v)
	if o.file != "" {
		v.SetConfigFile(o.file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if o.env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	for k, val := range o.overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalise() {
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	c.Site.Lang = strings.ToLower(strings.TrimSpace(c.Site.Lang))
	c.Catalog.Root = strings.TrimSpace(c.Catalog.Root)
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	c.Catalog.Uncategorized = strings.TrimSpace(c.Catalog.Uncategorized)
	order := make([]string, 0, len(c.Catalog.CategoryOrder))
	for _, name := range c.Catalog.CategoryOrder {
		if name = strings.TrimSpace(name); name != "" {
			order = append(order, name)
		}
	}
	c.Catalog.CategoryOrder = order
}

// Validate reports every missing or invalid field at once.
func (c Config) Validate() error {
	var fields []string
	if c.Server.Addr == "" {
		fields = append(fields, "server.addr")
	}
	if c.Catalog.Root == "" {
		fields = append(fields, "catalog.root")
	}
	if c.Catalog.Path == "" || strings.Contains(c.Catalog.Path, "..") {
		fields = append(fields, "catalog.path")
	}
	if c.Catalog.PageSize < 1 {
		fields = append(fields, "catalog.page_size")
	}
	if c.Catalog.Uncategorized == "" {
		fields = append(fields, "catalog.uncategorized")
	}
	if c.Site.BaseURL != "" {
		if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			fields = append(fields, "site.base_url")
		}
	}
	if c.Site.Lang == "" {
		fields = append(fields, "site.lang")
	}
	for i, tab := range c.Tabs {
		if strings.TrimSpace(tab.Href) == "" || (tab.Label == "" && tab.LabelKey == "") {
			fields = append(fields, fmt.Sprintf("tabs[%d]", i))
		}
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "console" {
		fields = append(fields, "log.format")
	}
	if c.Export.Output == "" {
		fields = append(fields, "export.output")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}
