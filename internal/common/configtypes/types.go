package configtypes

import (
	"github.com/edgecomet/seometa/pkg/types"
)

// Log level constants
const (
	LogLevelDebug  = "debug"
	LogLevelInfo   = "info"
	LogLevelWarn   = "warn"
	LogLevelError  = "error"
	LogLevelDPanic = "dpanic"
	LogLevelPanic  = "panic"
	LogLevelFatal  = "fatal"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
	LogFormatText    = "text"
)

// SEOConfig is the seo-service configuration file.
type SEOConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Site    SiteConfig    `yaml:"site"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Listen      string         `yaml:"listen"`
	Timeout     types.Duration `yaml:"timeout"`
	MaxBodySize int            `yaml:"max_body_size"`
	Compression bool           `yaml:"compression"`

	// ClientIPHeaders are checked in order for the client address logged
	// with each request, e.g. X-Forwarded-For behind a proxy.
	ClientIPHeaders []string `yaml:"client_ip_headers,omitempty"`
}

// EngineConfig configures keyword extraction. Stopwords are loaded once at
// startup and never re-read.
type EngineConfig struct {
	Language        string   `yaml:"language"`
	MaxKeywords     int      `yaml:"max_keywords"`
	PreviewKeywords int      `yaml:"preview_keywords"`
	StopwordsFile   string   `yaml:"stopwords_file,omitempty"`
	ExtraStopwords  []string `yaml:"extra_stopwords,omitempty"`
}

// SiteConfig feeds canonical URLs and social metadata.
type SiteConfig struct {
	BaseURL       string `yaml:"base_url"`
	Name          string `yaml:"name"`
	TwitterHandle string `yaml:"twitter_handle,omitempty"`
	DefaultImage  string `yaml:"default_image,omitempty"`
}

type LogConfig struct {
	Level   string           `yaml:"level"`
	Console ConsoleLogConfig `yaml:"console"`
	File    FileLogConfig    `yaml:"file"`
}

type ConsoleLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Level   string `yaml:"level,omitempty"`
}

type FileLogConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Path     string         `yaml:"path"`
	Format   string         `yaml:"format"`
	Level    string         `yaml:"level,omitempty"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`
	MaxAge     int  `yaml:"max_age"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}
