package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/polyroute/internal/errors"
	"github.com/vango-dev/polyroute/pkg/locale"
	"github.com/vango-dev/polyroute/pkg/messages"
	"github.com/vango-dev/polyroute/pkg/negotiate"
	"github.com/vango-dev/polyroute/pkg/routes"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "polyroute.json"

	// EnvFileName is the optional environment file next to the configuration.
	EnvFileName = ".env"

	// DefaultPort is the default dev preview server port.
	DefaultPort = 3100

	// DefaultHost is the default dev preview server host.
	DefaultHost = "localhost"
)

// DefaultCookieLifetime is the default locale cookie lifetime in seconds.
var DefaultCookieLifetime = int(negotiate.DefaultCookieMaxAge / time.Second)

// Config represents the complete polyroute.json configuration.
type Config struct {
	// ApplicationID is the first segment of every message key.
	ApplicationID string `json:"applicationId"`

	// Locales are the actual locales. The first one is the default locale.
	Locales []string `json:"locales"`

	// PagesDirectories are the candidate pages directories, relative to the
	// project root. The first existing one is used.
	PagesDirectories []string `json:"pagesDirectories,omitempty"`

	// Extensions are the page file extensions.
	Extensions []string `json:"extensions,omitempty"`

	Cookie CookieConfig `json:"cookie,omitempty"`

	Dev DevConfig `json:"dev,omitempty"`

	Publish PublishConfig `json:"publish,omitempty"`

	// Debug logs the built routes and compiled rules.
	Debug bool `json:"debug,omitempty" env:"POLYROUTE_DEBUG"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CookieConfig contains the locale cookie settings.
type CookieConfig struct {
	// Name is the cookie name (default: "L").
	Name string `json:"name,omitempty" env:"POLYROUTE_LOCALE_COOKIE_NAME"`

	// Lifetime is the cookie lifetime in seconds (default: ten years).
	Lifetime int `json:"lifetime,omitempty" env:"POLYROUTE_LOCALE_COOKIE_LIFETIME"`

	// Secure marks the cookie as HTTPS only.
	Secure bool `json:"secure,omitempty"`
}

// DevConfig contains the dev preview server settings.
type DevConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// TouchSources touches the page file of a changed label source so that
	// bundlers watching the page recompile it.
	TouchSources *bool `json:"touchSources,omitempty"`

	// PollInterval is how often the project is scanned (e.g. "100ms").
	PollInterval string `json:"pollInterval,omitempty"`
}

// PublishConfig contains the manifest publishing destination.
type PublishConfig struct {
	// Bucket is the S3 bucket. Empty disables S3 publishing.
	Bucket string `json:"bucket,omitempty" env:"POLYROUTE_PUBLISH_BUCKET"`

	// Key is the object key of the manifest.
	Key string `json:"key,omitempty"`

	// Region overrides the AWS region of the environment.
	Region string `json:"region,omitempty" env:"POLYROUTE_PUBLISH_REGION"`

	// File is a local path the manifest is written to.
	File string `json:"file,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	touch := true
	return &Config{
		PagesDirectories: append([]string(nil), routes.PagesDirectories...),
		Extensions:       append([]string(nil), routes.PageExtensions...),
		Cookie: CookieConfig{
			Name:     negotiate.DefaultCookieName,
			Lifetime: DefaultCookieLifetime,
		},
		Dev: DevConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			TouchSources: &touch,
			PollInterval: "100ms",
		},
	}
}

// Load reads the configuration of the project in dir, then applies the
// .env file and the environment overrides.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'polyroute init' to create one")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		if line, col, ok := offsetPosition(data, jsonErrorOffset(err)); ok {
			e.WithLocation(path, line, col)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if len(c.PagesDirectories) == 0 {
		c.PagesDirectories = append([]string(nil), routes.PagesDirectories...)
	}
	for i, d := range c.PagesDirectories {
		c.PagesDirectories[i] = strings.Trim(filepath.ToSlash(d), "/")
	}

	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), routes.PageExtensions...)
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}

	if c.Cookie.Name == "" {
		c.Cookie.Name = negotiate.DefaultCookieName
	}
	if c.Cookie.Lifetime == 0 {
		c.Cookie.Lifetime = DefaultCookieLifetime
	}

	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.TouchSources == nil {
		touch := true
		c.Dev.TouchSources = &touch
	}
	if c.Dev.PollInterval == "" {
		c.Dev.PollInterval = "100ms"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !messages.ValidKeySegment(c.ApplicationID) {
		return c.locate(errors.New("E100").
			WithDetailf("%q %s.", c.ApplicationID, messages.KeySegmentDescription).
			WithExample(`"applicationId": "shop"`), `"applicationId"`)
	}

	actual := c.ActualLocales()
	if len(actual) == 0 {
		return c.locate(errors.New("E104").
			WithExample(`"locales": ["en-US", "fr-CA"]`), `"locales"`)
	}
	for _, l := range actual {
		if !locale.IsLocale(l) {
			return c.locate(errors.New("E101").
				WithDetailf("%q is not a language-country identifier.", l).
				WithSuggestion("Use identifiers such as \"en-US\" or \"fr-CA\"."), fmt.Sprintf("%q", l))
		}
	}

	if c.Cookie.Lifetime < 0 {
		return c.locate(errors.New("E103").
			WithDetailf("cookie.lifetime must not be negative, got %d.", c.Cookie.Lifetime), `"lifetime"`)
	}
	if c.Publish.Bucket != "" && c.Publish.Key == "" {
		return c.locate(errors.New("E103").
			WithDetail("publish.bucket requires publish.key.").
			WithExample(`"publish": {"bucket": "my-site-config", "key": "polyroute/manifest.json"}`), `"publish"`)
	}
	if _, err := time.ParseDuration(c.Dev.PollInterval); err != nil {
		return c.locate(errors.New("E103").
			WithDetailf("dev.pollInterval %q is not a duration.", c.Dev.PollInterval).
			Wrap(err), `"pollInterval"`)
	}

	if c.Dir() != "" {
		if _, err := c.PagesDirectory(); err != nil {
			return err
		}
	}
	return nil
}

// locate points e at the first occurrence of needle in the config file.
func (c *Config) locate(e *errors.Error, needle string) *errors.Error {
	if c.configPath == "" {
		return e
	}
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return e
	}
	idx := strings.Index(string(data), needle)
	if idx < 0 {
		return e
	}
	if line, col, ok := offsetPosition(data, int64(idx)); ok {
		e.WithLocation(c.configPath, line, col)
	}
	return e
}

// ActualLocales returns the configured locales without the
// default-detection locale.
func (c *Config) ActualLocales() []string {
	return locale.ActualLocales(c.Locales, locale.DefaultDetection)
}

// LocaleSet returns the validated locale set.
func (c *Config) LocaleSet() (*locale.Set, error) {
	set, err := locale.NewSet(c.ActualLocales())
	if err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	return set, nil
}

// FS returns the project directory as a filesystem.
func (c *Config) FS() fs.FS {
	return os.DirFS(c.Dir())
}

// PagesDirectory returns the first configured pages directory that exists,
// relative to the project root.
func (c *Config) PagesDirectory() (string, error) {
	for _, d := range c.PagesDirectories {
		if info, err := os.Stat(filepath.Join(c.Dir(), filepath.FromSlash(d))); err == nil && info.IsDir() {
			return d, nil
		}
	}
	return "", errors.New("E102").
		WithDetailf("None of %s exists in %s.", strings.Join(c.PagesDirectories, ", "), c.Dir()).
		Wrap(routes.ErrNoPagesDirectory)
}

// PagesPath returns the absolute path of the pages directory.
func (c *Config) PagesPath() (string, error) {
	d, err := c.PagesDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Dir(), filepath.FromSlash(d)), nil
}

// CookieSettings returns the locale cookie settings.
func (c *Config) CookieSettings() negotiate.CookieConfig {
	cookies := negotiate.DefaultCookieConfig()
	cookies.Name = c.Cookie.Name
	cookies.MaxAge = time.Duration(c.Cookie.Lifetime) * time.Second
	cookies.Secure = c.Cookie.Secure
	return cookies
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// PollInterval returns the dev watcher poll interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Dev.PollInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// ShouldTouchSources reports whether the dev watcher touches page sources.
func (c *Config) ShouldTouchSources() bool {
	return c.Dev.TouchSources == nil || *c.Dev.TouchSources
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing polyroute.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'polyroute init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func jsonErrorOffset(err error) int64 {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntax):
		return syntax.Offset
	case stderrors.As(err, &typ):
		return typ.Offset
	}
	return -1
}

// offsetPosition converts a byte offset into a 1-based line and column.
func offsetPosition(data []byte, offset int64) (line, col int, ok bool) {
	if offset < 0 || offset > int64(len(data)) {
		return 0, 0, false
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col, true
}
