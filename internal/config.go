package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var basePathRe = regexp.MustCompile(`^(/[^/\s]+)*$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" toml:"app"`
	Content ContentConfig     `yaml:"content" toml:"content"`
	Site    SiteConfig        `yaml:"site" toml:"site"`
	SQLite  SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if filepath.Clean(c.Site.OutputDir) == filepath.Clean(c.Content.PostsDir) {
		return fmt.Errorf("site: output_dir must differ from content.posts_dir")
	}
	if c.Site.StaticDir != "" && filepath.Clean(c.Site.StaticDir) == filepath.Clean(c.Site.OutputDir) {
		return fmt.Errorf("site: static_dir must differ from output_dir")
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port               int      `yaml:"port" toml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig points at the directory holding the Markdown posts.
type ContentConfig struct {
	PostsDir string `yaml:"posts_dir" toml:"posts_dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PostsDir, validation.Required),
	)
}

// SiteConfig controls static generation.
//
// BasePath is the URL prefix the site is published under ("" or "/blog").
// Production enables rewriting of image paths with BasePath.
type SiteConfig struct {
	Title       string `yaml:"title" toml:"title"`
	BasePath    string `yaml:"base_path" toml:"base_path"`
	Production  bool   `yaml:"production" toml:"production"`
	OutputDir   string `yaml:"output_dir" toml:"output_dir"`
	TOCMaxLevel int    `yaml:"toc_max_level" toml:"toc_max_level"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
	StaticDir   string `yaml:"static_dir" toml:"static_dir"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.BasePath, validation.Match(basePathRe).Error("must be empty or /segment without a trailing slash")),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.TOCMaxLevel, validation.Min(2), validation.Max(6)),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(64)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the rebuild endpoint.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): anyone who can reach the server may trigger a rebuild.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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
		Content: ContentConfig{
			PostsDir: "./_posts",
		},
		Site: SiteConfig{
			Title:       "folio",
			OutputDir:   "./public",
			TOCMaxLevel: 3,
			Concurrency: 4,
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
