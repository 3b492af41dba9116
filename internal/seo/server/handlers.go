package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/htmlprocessor"
	"github.com/edgecomet/seometa/internal/common/httputil"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/internal/seo/metrics"
	"github.com/edgecomet/seometa/pkg/types"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	MemoryUsedPct float64 `json:"memoryUsedPct,omitempty"`
}

func (s *Server) handleGenerate(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	var source types.SourceContent
	if err := json.Unmarshal(ctx.PostBody(), &source); err != nil {
		s.inputError(ctx, logger, "Invalid JSON body", err)
		return
	}

	s.generate(ctx, logger, source, metrics.SourceJSON, "")
}

// handleGenerateHTML extracts the article from a posted HTML page. The page
// URL comes from the url query parameter and resolves relative links.
func (s *Server) handleGenerateHTML(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	pageURL := string(ctx.QueryArgs().Peek("url"))

	page, err := htmlprocessor.ExtractPage(ctx.PostBody(), pageURL)
	if err != nil {
		s.metrics.RecordParseError()
		logger.Warn("Failed to extract page", zap.String("url", pageURL), zap.Error(err))
		httputil.JSONError(ctx, fmt.Sprintf("Failed to extract page: %v", err), fasthttp.StatusUnprocessableEntity)
		return
	}

	message := ""
	if page.Noindex {
		message = "page is marked noindex; metadata will not be indexed"
	}
	s.generate(ctx, logger, page.Source, metrics.SourceHTML, message)
}

func (s *Server) generate(ctx *fasthttp.RequestCtx, logger *zap.Logger, source types.SourceContent, label, message string) {
	if err := generator.CheckInput(source); err != nil {
		s.inputError(ctx, logger, inputMessage(err), err)
		return
	}

	start := time.Now()
	result := s.generator.Generate(source)
	validation := s.generator.Validate(result.Metadata)
	duration := time.Since(start)

	s.metrics.RecordGeneration(label, duration, result.Metadata, result.Analysis)
	s.metrics.RecordValidation(validation)

	logger.Info("Generated metadata",
		zap.String("source", label),
		zap.Int("score", result.Metadata.Score),
		zap.Int("words", result.Analysis.WordCount),
		zap.Bool("valid", validation.Valid),
		zap.Duration("duration", duration))

	httputil.JSONResponse(ctx, true, message, types.GenerateResponse{
		Metadata:   result.Metadata,
		Analysis:   result.Analysis,
		Validation: &validation,
	}, fasthttp.StatusOK)
}

func (s *Server) handlePreview(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	args := ctx.QueryArgs()
	source := types.SourceContent{
		Title:   string(args.Peek("title")),
		Body:    string(args.Peek("body")),
		Excerpt: string(args.Peek("excerpt")),
		Slug:    string(args.Peek("slug")),
	}
	if err := generator.CheckInput(source); err != nil {
		s.inputError(ctx, logger, inputMessage(err), err)
		return
	}

	start := time.Now()
	preview := s.generator.Preview(source)
	s.metrics.RecordGeneration(metrics.SourcePreview, time.Since(start), &types.SEOMetadata{Score: preview.Score}, nil)

	httputil.JSONData(ctx, preview, fasthttp.StatusOK)
	if httputil.CheckNotModified(ctx, ctx.Response.Body()) {
		logger.Debug("Preview not modified")
	}
}

func (s *Server) handleValidate(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	var metadata types.SEOMetadata
	if err := json.Unmarshal(ctx.PostBody(), &metadata); err != nil {
		s.inputError(ctx, logger, "Invalid JSON body", err)
		return
	}

	result := s.generator.Validate(&metadata)
	s.metrics.RecordValidation(result)

	httputil.JSONData(ctx, result, fasthttp.StatusOK)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemoryUsedPct = float64(int(vm.UsedPercent*10)) / 10
	}

	httputil.JSONData(ctx, resp, fasthttp.StatusOK)
}

func (s *Server) inputError(ctx *fasthttp.RequestCtx, logger *zap.Logger, message string, err error) {
	s.metrics.RecordInputError()
	logger.Debug("Rejected request", zap.String("reason", message), zap.Error(err))
	httputil.JSONError(ctx, message, fasthttp.StatusBadRequest)
}

func inputMessage(err error) string {
	switch {
	case errors.Is(err, generator.ErrMissingTitle):
		return "title is required"
	case errors.Is(err, generator.ErrMissingBody):
		return "body is required"
	default:
		return err.Error()
	}
}
