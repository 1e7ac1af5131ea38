package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Site      SiteConfig        `yaml:"site"`
	Redirects RedirectsConfig   `yaml:"redirects"`
	Sitemap   SitemapConfig     `yaml:"sitemap"`
	LinkCheck LinkCheckConfig   `yaml:"linkcheck"`
	Index     IndexConfig       `yaml:"index"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Redirects.Validate(); err != nil {
		return err
	}
	if err := c.Sitemap.Validate(); err != nil {
		return err
	}
	if err := c.LinkCheck.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig describes the documentation tree being published.
type SiteConfig struct {
	Name      string   `yaml:"name"`
	Title     string   `yaml:"title"`
	BaseURL   string   `yaml:"base_url"`
	Version   string   `yaml:"version"`
	SourceDir string   `yaml:"source"`
	OutputDir string   `yaml:"output"`
	Exclude   []string `yaml:"exclude"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// RedirectsConfig holds the location of the persisted redirect table.
type RedirectsConfig struct {
	File string `yaml:"file"`
}

// Validate validates the redirects configuration.
func (c *RedirectsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required),
	)
}

// Sitemap change frequencies accepted by the sitemaps.org schema.
var sitemapChangeFreqs = []any{
	"always", "hourly", "daily", "weekly", "monthly", "yearly", "never",
}

// SitemapConfig controls sitemap.xml generation.
//
// URLScheme is applied to every page link before it is joined to the site
// base URL; the literal "{link}" is replaced with the page link. The
// published docs only index the latest version, hence the default scheme.
type SitemapConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Filename   string `yaml:"filename"`
	URLScheme  string `yaml:"url_scheme"`
	ChangeFreq string `yaml:"changefreq"`
	Priority   string `yaml:"priority"`
}

// Validate validates the sitemap configuration.
func (c *SitemapConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Filename, validation.Required),
		validation.Field(&c.URLScheme, validation.Required),
		validation.Field(&c.ChangeFreq, validation.In(sitemapChangeFreqs...)),
	); err != nil {
		return err
	}
	if !strings.Contains(c.URLScheme, "{link}") {
		return fmt.Errorf("sitemap: url_scheme %q must contain the {link} placeholder", c.URLScheme)
	}
	return nil
}

// LinkCheckConfig controls the link checker.
type LinkCheckConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	Workers       int           `yaml:"workers"`
	Retries       int           `yaml:"retries"`
	External      bool          `yaml:"external"`
	Ignore        []string      `yaml:"ignore"`
	AnchorsIgnore []string      `yaml:"anchors_ignore"`
	UserAgent     string        `yaml:"user_agent"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// Validate validates the linkcheck configuration. Ignore patterns are
// compiled here so that a bad regex fails at load time, not mid-check.
func (c *LinkCheckConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(128)),
		validation.Field(&c.Retries, validation.Min(0), validation.Max(10)),
	); err != nil {
		return err
	}
	_, err := c.IgnorePatterns()
	return err
}

// IgnorePatterns compiles the configured ignore regexes.
func (c *LinkCheckConfig) IgnorePatterns() ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(c.Ignore))
	for _, expr := range c.Ignore {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("linkcheck: bad ignore pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// IndexConfig holds SQLite index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds preview server authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Name:      "docs",
			SourceDir: "./site",
			OutputDir: "./public",
		},
		Redirects: RedirectsConfig{
			File: ".redirects/redirects.json",
		},
		Sitemap: SitemapConfig{
			Enabled:    true,
			Filename:   "sitemap.xml",
			URLScheme:  "latest/{link}",
			ChangeFreq: "weekly",
		},
		LinkCheck: LinkCheckConfig{
			Timeout:  20 * time.Second,
			Workers:  8,
			Retries:  2,
			External: true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			CacheTTL: 24 * time.Hour,
		},
		Index: IndexConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
