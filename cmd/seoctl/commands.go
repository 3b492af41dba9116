package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edgecomet/seometa/internal/common/config"
	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/common/htmlprocessor"
	"github.com/edgecomet/seometa/internal/common/logger"
	"github.com/edgecomet/seometa/internal/common/urlutil"
	"github.com/edgecomet/seometa/internal/seo/contenttest"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/pkg/types"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxFetchRedirects   = 5
	userAgent           = "seoctl/1.0"
)

// exitInvalid is returned when generated or supplied metadata fails validation.
const exitInvalid = 1

func newLogger(c *cli.Context) *zap.Logger {
	level := configtypes.LogLevelWarn
	if c.Bool("verbose") {
		level = configtypes.LogLevelDebug
	}
	dl, err := logger.NewLoggerTo(configtypes.LogConfig{
		Level:   level,
		Console: configtypes.ConsoleLogConfig{Enabled: true, Format: configtypes.LogFormatConsole},
	}, zapcore.Lock(os.Stderr))
	if err != nil {
		return zap.NewNop()
	}
	return dl.Logger
}

// loadConfig reads --config when given, otherwise starts from defaults, and
// applies the global flag overrides.
func loadConfig(c *cli.Context) (*configtypes.SEOConfig, error) {
	var cfg *configtypes.SEOConfig
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadSEOConfig(path)
	} else {
		cfg, err = config.ParseSEOConfig([]byte("{}"))
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("base-url") {
		cfg.Site.BaseURL = c.String("base-url")
	}
	if c.IsSet("max-keywords") {
		cfg.Engine.MaxKeywords = c.Int("max-keywords")
		if cfg.Engine.PreviewKeywords > cfg.Engine.MaxKeywords {
			cfg.Engine.PreviewKeywords = cfg.Engine.MaxKeywords
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newGenerator(c *cli.Context) (*generator.Generator, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return generator.FromConfig(cfg)
}

func generateAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("generate requires at least one file", 2)
	}
	log := newLogger(c)

	gen, err := newGenerator(c)
	if err != nil {
		return err
	}

	invalid := 0
	for _, path := range c.Args().Slice() {
		report, err := contenttest.Run(path, gen)
		if err != nil {
			return err
		}
		log.Debug("Generated metadata", zap.String("file", path), zap.Int("score", report.Metadata.Score))

		if err := printReport(c, report); err != nil {
			return err
		}
		if !report.Publishable() {
			invalid++
		}
	}

	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files produced invalid metadata", invalid, c.NArg()), exitInvalid)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("validate requires exactly one file", 2)
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read metadata file: %w", err)
	}

	var metadata types.SEOMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return fmt.Errorf("failed to parse metadata file: %w", err)
	}

	gen, err := newGenerator(c)
	if err != nil {
		return err
	}

	result := gen.Validate(&metadata)
	if err := writeJSON(result); err != nil {
		return err
	}
	if !result.Valid {
		return cli.Exit("metadata is not publishable", exitInvalid)
	}
	return nil
}

func importAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("import requires a URL or file", 2)
	}
	log := newLogger(c)
	target := c.Args().First()

	var body []byte
	pageURL := c.String("url")
	var err error
	if isRemote(target) {
		allowPrivate := c.Bool("allow-private")
		if !allowPrivate {
			if _, err := urlutil.CheckFetchURL(target); err != nil {
				return err
			}
		}
		pageURL = target
		body, err = fetchPage(target, c.Duration("timeout"), allowPrivate)
	} else {
		body, err = os.ReadFile(target)
	}
	if err != nil {
		return err
	}
	log.Debug("Loaded page", zap.String("target", target), zap.Int("bytes", len(body)))

	page, err := htmlprocessor.ExtractPage(body, pageURL)
	if err != nil {
		return err
	}
	if page.Noindex {
		log.Warn("Page is marked noindex", zap.String("target", target))
	}

	gen, err := newGenerator(c)
	if err != nil {
		return err
	}

	report, err := contenttest.Build(target, page.Source, gen)
	if err != nil {
		return err
	}
	if err := printReport(c, report); err != nil {
		return err
	}
	if !report.Publishable() {
		return cli.Exit("imported page produced invalid metadata", exitInvalid)
	}
	return nil
}

func printReport(c *cli.Context, report *contenttest.Report) error {
	if c.Bool("json") {
		return writeJSON(types.GenerateResponse{
			Metadata:   report.Metadata,
			Analysis:   report.Analysis,
			Validation: &report.Validation,
		})
	}
	contenttest.PrintReport(os.Stdout, report)
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// fetchPage downloads url following redirects and returns the body of a 200
// response. Unless allowPrivate is set every hop must resolve to a public address.
func fetchPage(url string, timeout time.Duration, allowPrivate bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetUserAgent(userAgent)
	req.Header.Set(fasthttp.HeaderAccept, "text/html,application/xhtml+xml")
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	client := &fasthttp.Client{
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
		MaxResponseBodySize: 16 * 1024 * 1024,
	}
	if !allowPrivate {
		client.Dial = urlutil.GuardedDial(timeout)
	}
	if err := client.DoRedirects(req, resp, maxFetchRedirects); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status code %d", url, resp.StatusCode())
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return append([]byte(nil), body...), nil
}
