package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/common/yamlutil"
	"github.com/edgecomet/seometa/pkg/types"
)

const (
	defaultListen          = ":8080"
	defaultTimeout         = 10 * time.Second
	defaultMaxBodySize     = 4 * 1024 * 1024
	defaultLanguage        = "en"
	defaultMaxKeywords     = types.DefaultMaxKeywords
	defaultPreviewKeywords = types.DefaultPreviewKeywords
	defaultMetricsPath     = "/metrics"
	defaultNamespace       = "seometa"

	// maxKeywordsCeiling keeps responses bounded for pathological configs.
	maxKeywordsCeiling = 50
)

var namespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SEOConfigManager loads and holds the seo-service configuration.
type SEOConfigManager struct {
	config     *configtypes.SEOConfig
	configPath string
	logger     *zap.Logger
}

// NewSEOConfigManager loads configPath and fails on any invalid value.
func NewSEOConfigManager(configPath string, logger *zap.Logger) (*SEOConfigManager, error) {
	cm := &SEOConfigManager{
		configPath: configPath,
		logger:     logger,
	}

	if err := cm.LoadConfig(); err != nil {
		return nil, err
	}

	return cm, nil
}

// LoadConfig reads, defaults and validates the configuration file.
func (cm *SEOConfigManager) LoadConfig() error {
	cfg, err := LoadSEOConfig(cm.configPath)
	if err != nil {
		return err
	}
	cm.config = cfg

	for _, w := range Warnings(cfg) {
		cm.logger.Warn("Configuration warning", zap.String("warning", w))
	}
	return nil
}

// GetConfig returns the loaded configuration. Callers must not modify it.
func (cm *SEOConfigManager) GetConfig() *configtypes.SEOConfig {
	return cm.config
}

// GetConfigPath returns the absolute path the configuration was loaded from.
func (cm *SEOConfigManager) GetConfigPath() string {
	return cm.configPath
}

// LoadSEOConfig parses configPath strictly, applies defaults and validates.
func LoadSEOConfig(configPath string) (*configtypes.SEOConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := ParseSEOConfig(data)
	if err != nil {
		return nil, err
	}

	// Relative stopword files live next to the config file.
	if cfg.Engine.StopwordsFile != "" && !filepath.IsAbs(cfg.Engine.StopwordsFile) {
		cfg.Engine.StopwordsFile = filepath.Join(filepath.Dir(configPath), cfg.Engine.StopwordsFile)
	}
	return cfg, nil
}

// ParseSEOConfig is LoadSEOConfig for in-memory YAML.
func ParseSEOConfig(data []byte) (*configtypes.SEOConfig, error) {
	var cfg configtypes.SEOConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *configtypes.SEOConfig) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaultListen
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = types.Duration(defaultTimeout)
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = defaultMaxBodySize
	}

	if cfg.Engine.Language == "" {
		cfg.Engine.Language = defaultLanguage
	}
	if cfg.Engine.MaxKeywords == 0 {
		cfg.Engine.MaxKeywords = defaultMaxKeywords
	}
	if cfg.Engine.PreviewKeywords == 0 {
		cfg.Engine.PreviewKeywords = defaultPreviewKeywords
	}

	// If both outputs are disabled (zero values), enable console by default
	if !cfg.Log.Console.Enabled && !cfg.Log.File.Enabled {
		cfg.Log.Console.Enabled = true
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = configtypes.LogLevelInfo
	}
	if cfg.Log.Console.Format == "" {
		cfg.Log.Console.Format = configtypes.LogFormatConsole
	}
	if cfg.Log.File.Format == "" {
		cfg.Log.File.Format = configtypes.LogFormatText
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaultNamespace
	}
}

// Validate returns the first invalid value found.
func Validate(cfg *configtypes.SEOConfig) error {
	if err := configtypes.ValidateListenAddress(cfg.Server.Listen); err != nil {
		return fmt.Errorf("invalid server.listen: %w", err)
	}
	if cfg.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if cfg.Server.MaxBodySize < 0 {
		return fmt.Errorf("server.max_body_size must be >= 0, got %d", cfg.Server.MaxBodySize)
	}

	for i, header := range cfg.Server.ClientIPHeaders {
		if strings.TrimSpace(header) == "" {
			return fmt.Errorf("server.client_ip_headers[%d] must not be empty", i)
		}
	}

	if cfg.Engine.MaxKeywords < 1 || cfg.Engine.MaxKeywords > maxKeywordsCeiling {
		return fmt.Errorf("engine.max_keywords must be between 1 and %d, got %d", maxKeywordsCeiling, cfg.Engine.MaxKeywords)
	}
	if cfg.Engine.PreviewKeywords < 1 || cfg.Engine.PreviewKeywords > cfg.Engine.MaxKeywords {
		return fmt.Errorf("engine.preview_keywords must be between 1 and engine.max_keywords (%d), got %d",
			cfg.Engine.MaxKeywords, cfg.Engine.PreviewKeywords)
	}
	if cfg.Engine.StopwordsFile == "" && !strings.EqualFold(cfg.Engine.Language, defaultLanguage) {
		return fmt.Errorf("engine.stopwords_file is required for language %q (built-in list is English only)", cfg.Engine.Language)
	}

	if cfg.Site.BaseURL != "" {
		u, err := url.Parse(cfg.Site.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid site.base_url: %s (must be an absolute http(s) URL)", cfg.Site.BaseURL)
		}
	}

	if err := validateLog(cfg.Log); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := configtypes.ValidateListenAddress(cfg.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics.listen: %w", err)
		}
		if configtypes.SamePort(cfg.Metrics.Listen, cfg.Server.Listen) {
			return fmt.Errorf("metrics.listen (%s) must use a different port than server.listen (%s)", cfg.Metrics.Listen, cfg.Server.Listen)
		}
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("invalid metrics.path: %s (must start with /)", cfg.Metrics.Path)
	}
	if !namespacePattern.MatchString(cfg.Metrics.Namespace) {
		return fmt.Errorf("invalid metrics.namespace: %s (must match [a-zA-Z_][a-zA-Z0-9_]*)", cfg.Metrics.Namespace)
	}

	return nil
}

func validateLog(log configtypes.LogConfig) error {
	validLogLevels := map[string]bool{
		configtypes.LogLevelDebug:  true,
		configtypes.LogLevelInfo:   true,
		configtypes.LogLevelWarn:   true,
		configtypes.LogLevelError:  true,
		configtypes.LogLevelDPanic: true,
		configtypes.LogLevelPanic:  true,
		configtypes.LogLevelFatal:  true,
	}
	if !validLogLevels[log.Level] {
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, error, dpanic, panic, or fatal)", log.Level)
	}

	if log.Console.Enabled && log.Console.Format != configtypes.LogFormatJSON && log.Console.Format != configtypes.LogFormatConsole {
		return fmt.Errorf("invalid log.console.format: %s (must be json or console)", log.Console.Format)
	}

	if log.File.Enabled {
		if log.File.Path == "" {
			return fmt.Errorf("log.file.path must be specified when file logging is enabled")
		}
		if log.File.Format != configtypes.LogFormatJSON && log.File.Format != configtypes.LogFormatText {
			return fmt.Errorf("invalid log.file.format: %s (must be json or text)", log.File.Format)
		}
		r := log.File.Rotation
		if r.MaxSize < 0 || r.MaxAge < 0 || r.MaxBackups < 0 {
			return fmt.Errorf("log.file.rotation values must be >= 0")
		}
	}

	return nil
}

// Warnings lists settings that are valid but degrade the generated metadata.
func Warnings(cfg *configtypes.SEOConfig) []string {
	var warnings []string
	if cfg.Site.BaseURL == "" {
		warnings = append(warnings, "site.base_url is empty; canonical URLs will not be generated")
	}
	if cfg.Site.DefaultImage == "" {
		warnings = append(warnings, "site.default_image is empty; content without a cover image gets no Open Graph image")
	}
	if !cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics are disabled")
	}
	return warnings
}

// GetConfigPath resolves path to an absolute path of an existing file.
func GetConfigPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("config path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("config file does not exist: %s", absPath)
	}

	return absPath, nil
}
