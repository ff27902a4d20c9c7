// Package config loads runtime settings for the storefront web server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultPort          = "8080"
	defaultSiteName      = "Cranks Bike Shop"
	defaultBaseURL       = "https://cranks-bike-shop.vercel.app"
	defaultSanityDataset = "production"
	defaultSanityVersion = "2024-01-01"
	defaultEcwidStoreID  = "129297501"
	defaultEcwidScript   = "https://app.business.shop/script.js"
	defaultEcwidAPI      = "https://app.ecwid.com/api/v3"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Site      SiteConfig      `yaml:"site" koanf:"site"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
	Sanity    SanityConfig    `yaml:"sanity" koanf:"sanity"`
	Ecwid     EcwidConfig     `yaml:"ecwid" koanf:"ecwid"`
	Analytics AnalyticsConfig `yaml:"analytics" koanf:"analytics"`
}

// ServerConfig configures the HTTP listener and on-disk assets.
type ServerConfig struct {
	Addr              string        `yaml:"addr" koanf:"addr"`
	Port              string        `yaml:"port" koanf:"port"`
	Dev               bool          `yaml:"dev" koanf:"dev"`
	TemplatesDir      string        `yaml:"templates_dir" koanf:"templates_dir"`
	PublicDir         string        `yaml:"public_dir" koanf:"public_dir"`
	ContentDir        string        `yaml:"content_dir" koanf:"content_dir"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" koanf:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// SiteConfig holds public identity used for canonical URLs and structured data.
type SiteConfig struct {
	Name    string `yaml:"name" koanf:"name"`
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
}

// SanityConfig points the content client at a project/dataset. An empty
// ProjectID disables remote fetches and the site runs on fallback content.
type SanityConfig struct {
	ProjectID  string        `yaml:"project_id" koanf:"project_id"`
	Dataset    string        `yaml:"dataset" koanf:"dataset"`
	APIVersion string        `yaml:"api_version" koanf:"api_version"`
	Token      string        `yaml:"token" koanf:"token"`
	UseCDN     bool          `yaml:"use_cdn" koanf:"use_cdn"`
	Timeout    time.Duration `yaml:"timeout" koanf:"timeout"`
	CacheTTL   time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
}

// EcwidConfig identifies the hosted store and its optional REST credentials.
type EcwidConfig struct {
	StoreID     string        `yaml:"store_id" koanf:"store_id"`
	PublicToken string        `yaml:"public_token" koanf:"public_token"`
	SecretToken string        `yaml:"secret_token" koanf:"secret_token"`
	ScriptBase  string        `yaml:"script_base" koanf:"script_base"`
	APIURL      string        `yaml:"api_url" koanf:"api_url"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
	CacheTTL    time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string `yaml:"ga4_measurement_id" koanf:"ga4_measurement_id"`
	GTMContainerID   string `yaml:"gtm_container_id" koanf:"gtm_container_id"`
}

// envKeys maps recognised environment variables onto koanf keys. Anything
// not listed is ignored.
var envKeys = map[string]string{
	"CRANKS_WEB_ADDR":              "server.addr",
	"PORT":                         "server.port",
	"CRANKS_WEB_DEV":               "server.dev",
	"CRANKS_WEB_TEMPLATES":         "server.templates_dir",
	"CRANKS_WEB_PUBLIC":            "server.public_dir",
	"CRANKS_WEB_CONTENT":           "server.content_dir",
	"CRANKS_WEB_REQUEST_TIMEOUT":   "server.request_timeout",
	"CRANKS_WEB_SITE_NAME":         "site.name",
	"CRANKS_WEB_BASE_URL":          "site.base_url",
	"LOG_LEVEL":                    "log.level",
	"SANITY_PROJECT_ID":            "sanity.project_id",
	"SANITY_DATASET":               "sanity.dataset",
	"SANITY_API_VERSION":           "sanity.api_version",
	"SANITY_API_TOKEN":             "sanity.token",
	"SANITY_USE_CDN":               "sanity.use_cdn",
	"SANITY_TIMEOUT":               "sanity.timeout",
	"SANITY_CACHE_TTL":             "sanity.cache_ttl",
	"ECWID_STORE_ID":               "ecwid.store_id",
	"ECWID_PUBLIC_TOKEN":           "ecwid.public_token",
	"ECWID_SECRET_TOKEN":           "ecwid.secret_token",
	"ECWID_SCRIPT_BASE":            "ecwid.script_base",
	"ECWID_API_URL":                "ecwid.api_url",
	"CRANKS_WEB_GA_MEASUREMENT_ID": "analytics.ga4_measurement_id",
	"CRANKS_WEB_GTM_CONTAINER_ID":  "analytics.gtm_container_id",
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              defaultPort,
			TemplatesDir:      "templates",
			PublicDir:         "public",
			ContentDir:        "content",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    10 * time.Second,
		},
		Site: SiteConfig{
			Name:    defaultSiteName,
			BaseURL: defaultBaseURL,
		},
		Log: LogConfig{Level: "info"},
		Sanity: SanityConfig{
			Dataset:    defaultSanityDataset,
			APIVersion: defaultSanityVersion,
			Timeout:    5 * time.Second,
			CacheTTL:   5 * time.Minute,
		},
		Ecwid: EcwidConfig{
			StoreID:    defaultEcwidStoreID,
			ScriptBase: defaultEcwidScript,
			APIURL:     defaultEcwidAPI,
			Timeout:    8 * time.Second,
			CacheTTL:   5 * time.Minute,
		},
	}
}

// Load starts from Default, applies the YAML file at path when it exists and
// then overlays recognised environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envValue(key, value string) (string, any) {
	k, ok := envKeys[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", nil
	}
	return k, strings.TrimSpace(value)
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		port := strings.TrimSpace(c.Server.Port)
		if port == "" {
			port = defaultPort
		}
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	c.Sanity.ProjectID = strings.TrimSpace(c.Sanity.ProjectID)
	if c.Sanity.Dataset == "" {
		c.Sanity.Dataset = defaultSanityDataset
	}
	if c.Sanity.APIVersion == "" {
		c.Sanity.APIVersion = defaultSanityVersion
	}
	c.Sanity.APIVersion = strings.TrimPrefix(c.Sanity.APIVersion, "v")
	c.Ecwid.StoreID = strings.TrimSpace(c.Ecwid.StoreID)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// SanityConfigured reports whether remote content fetches are possible.
func (c *Config) SanityConfigured() bool {
	return c.Sanity.ProjectID != "" && c.Sanity.Dataset != ""
}

// Validate rejects malformed values. Missing CMS settings are legal.
func (c *Config) Validate() error {
	var problems []string
	if c.Ecwid.StoreID == "" {
		problems = append(problems, "ecwid.store_id is required")
	}
	if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("site.base_url %q is not an absolute URL", c.Site.BaseURL))
	}
	if u, err := url.Parse(c.Ecwid.ScriptBase); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("ecwid.script_base %q is not an absolute URL", c.Ecwid.ScriptBase))
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"server.request_timeout": c.Server.RequestTimeout,
		"sanity.timeout":         c.Sanity.Timeout,
		"sanity.cache_ttl":       c.Sanity.CacheTTL,
		"ecwid.timeout":          c.Ecwid.Timeout,
	} {
		if d < 0 {
			problems = append(problems, name+" must be non-negative")
		}
	}
	if w, rt := c.Server.WriteTimeout, c.Server.RequestTimeout; w > 0 && rt > 0 && rt >= w {
		problems = append(problems, fmt.Sprintf("server.request_timeout %s must be shorter than server.write_timeout %s", rt, w))
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ValidationError{Problems: problems}
}

// ValidationError lists every invalid field found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed: " + strings.Join(e.Problems, "; ")
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
