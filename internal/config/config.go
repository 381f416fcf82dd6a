package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"warntrace/internal/filter"
	"warntrace/internal/fingerprint"
	"warntrace/internal/paths"
	"warntrace/internal/scope"
)

// CurrentVersion is the config schema version written by DefaultConfig.
const CurrentVersion = 1

// LogLevelEnv overrides logging.level.
const LogLevelEnv = "WARNTRACE_LOG_LEVEL"

// Config represents the complete warntrace configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Fingerprint FingerprintConfig `json:"fingerprint" mapstructure:"fingerprint"`
	Scopes      ScopesConfig      `json:"scopes" mapstructure:"scopes"`
	Filter      FilterConfig      `json:"filter" mapstructure:"filter"`
	Cache       CacheConfig       `json:"cache" mapstructure:"cache"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// FingerprintConfig controls how fingerprints are computed. Changing any of
// these values changes every fingerprint.
type FingerprintConfig struct {
	Algorithm     string `json:"algorithm" mapstructure:"algorithm"`
	Encoding      string `json:"encoding" mapstructure:"encoding"`
	IncludeModule bool   `json:"includeModule" mapstructure:"includeModule"`
	Workers       int    `json:"workers" mapstructure:"workers"`
}

// ScopesConfig locates the category declarations. A non-empty Default
// overrides the fallback variant of both the built-in and declared rules.
type ScopesConfig struct {
	DeclarationFile string `json:"declarationFile" mapstructure:"declarationFile"`
	Default         string `json:"default,omitempty" mapstructure:"default"`
}

// FilterConfig holds inline include/exclude patterns and an optional rules file.
type FilterConfig struct {
	Include   map[string][]string `json:"include,omitempty" mapstructure:"include"`
	Exclude   map[string][]string `json:"exclude,omitempty" mapstructure:"exclude"`
	RulesFile string              `json:"rulesFile,omitempty" mapstructure:"rulesFile"`
}

// CacheConfig contains fingerprint cache configuration
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// StorageConfig contains scan store configuration
type StorageConfig struct {
	Enabled   bool `json:"enabled" mapstructure:"enabled"`
	KeepScans int  `json:"keepScans" mapstructure:"keepScans"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Fingerprint: FingerprintConfig{
			Algorithm: string(fingerprint.SHA256),
			Encoding:  fingerprint.DefaultEncoding,
		},
		Scopes: ScopesConfig{
			DeclarationFile: scope.DeclarationFile,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     paths.CacheDirName,
		},
		Storage: StorageConfig{
			Enabled:   true,
			KeepScans: 20,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("fingerprint.algorithm", cfg.Fingerprint.Algorithm)
	v.SetDefault("fingerprint.encoding", cfg.Fingerprint.Encoding)
	v.SetDefault("fingerprint.includeModule", cfg.Fingerprint.IncludeModule)
	v.SetDefault("fingerprint.workers", cfg.Fingerprint.Workers)
	v.SetDefault("scopes.declarationFile", cfg.Scopes.DeclarationFile)
	v.SetDefault("scopes.default", cfg.Scopes.Default)
	v.SetDefault("filter.rulesFile", cfg.Filter.RulesFile)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("storage.enabled", cfg.Storage.Enabled)
	v.SetDefault("storage.keepScans", cfg.Storage.KeepScans)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from .warntrace/config.json. A missing file
// yields the defaults. WARNTRACE_LOG_LEVEL overrides logging.level.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName(strings.TrimSuffix(paths.ConfigFileName, filepath.Ext(paths.ConfigFileName)))
	v.SetConfigType("json")
	v.AddConfigPath(paths.StateDir(repoRoot))

	if err := v.BindEnv("logging.level", LogLevelEnv); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	return &cfg, nil
}

// Save writes the configuration to .warntrace/config.json
func (c *Config) Save(repoRoot string) error {
	if _, err := paths.EnsureStateDir(repoRoot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.ConfigPath(repoRoot), append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if _, err := fingerprint.NewHasher(c.Fingerprint.Algorithm); err != nil {
		return &ConfigError{Field: "fingerprint.algorithm", Message: err.Error()}
	}
	if c.Fingerprint.Workers < 0 {
		return &ConfigError{Field: "fingerprint.workers", Message: "must not be negative"}
	}
	if c.Scopes.Default != "" {
		if _, err := scope.ParseKind(c.Scopes.Default); err != nil {
			return &ConfigError{Field: "scopes.default", Message: err.Error()}
		}
	}
	if _, err := c.InlineFilterRules().Build(); err != nil {
		return &ConfigError{Field: "filter", Message: err.Error()}
	}
	if c.Storage.KeepScans < 0 {
		return &ConfigError{Field: "storage.keepScans", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// InlineFilterRules returns the patterns written directly in the config.
func (c *Config) InlineFilterRules() *filter.Rules {
	return &filter.Rules{Include: c.Filter.Include, Exclude: c.Filter.Exclude}
}

// FilterRules returns the inline patterns merged with the rules file, if any.
// A relative rules file is resolved against repoRoot.
func (c *Config) FilterRules(repoRoot string) (*filter.Rules, error) {
	rules := c.InlineFilterRules()
	if c.Filter.RulesFile == "" {
		return rules, nil
	}
	path := c.Filter.RulesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	fromFile, err := filter.LoadRules(path)
	if err != nil {
		return nil, err
	}
	return rules.Merge(fromFile), nil
}

// ScopeRules loads the category declarations for repoRoot.
func (c *Config) ScopeRules(repoRoot string) (*scope.Rules, error) {
	rules, err := scope.LoadDeclaredRules(repoRoot, c.Scopes.DeclarationFile)
	if err != nil {
		return nil, err
	}
	if c.Scopes.Default != "" {
		kind, err := scope.ParseKind(c.Scopes.Default)
		if err != nil {
			return nil, err
		}
		rules.Default = kind
	}
	return rules, nil
}

// CacheDir resolves the fingerprint cache directory, or "" when disabled.
func (c *Config) CacheDir(repoRoot string) string {
	if !c.Cache.Enabled {
		return ""
	}
	return paths.CachePath(repoRoot, c.Cache.Dir)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
