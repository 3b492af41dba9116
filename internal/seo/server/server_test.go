package server

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/common/requestid"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/internal/seo/metrics"
	"github.com/edgecomet/seometa/pkg/types"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, compression bool) (*Server, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	mc := metrics.NewMetricsCollectorWithRegistry("seometa", registry, zap.NewNop())
	gen := generator.New(generator.Options{
		Site: generator.Site{BaseURL: "https://fixit.example", Name: "Fixit"},
	})
	cfg := configtypes.ServerConfig{
		Listen:      ":0",
		Timeout:     types.Duration(0),
		MaxBodySize: 1 << 20,
		Compression: compression,
	}
	return New(gen, mc, cfg, zap.NewNop()), registry
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func doRequest(s *Server, method, uri string, body []byte, headers map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	for k, v := range headers {
		ctx.Request.Header.Set(k, v)
	}
	if body != nil {
		ctx.Request.SetBody(body)
	}
	s.Handler()(ctx)
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func sourceJSON(t *testing.T, source types.SourceContent) []byte {
	t.Helper()
	data, err := json.Marshal(source)
	require.NoError(t, err)
	return data
}

func TestHandleGenerate(t *testing.T) {
	s, registry := newTestServer(t, false)
	body := sourceJSON(t, types.SourceContent{
		Title: "OLED Screen Repair",
		Body:  string(readFixture(t, "oled_repair.md")),
		Slug:  "oled-screen-repair",
	})

	ctx := doRequest(s, fasthttp.MethodPost, PathGenerate, body, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.NotEmpty(t, ctx.Response.Header.Peek(requestid.HeaderName))

	var resp types.GenerateResponse
	env := decode(t, ctx, &resp)
	assert.True(t, env.Success)
	require.NotNil(t, resp.Metadata)
	require.NotNil(t, resp.Analysis)
	require.NotNil(t, resp.Validation)
	assert.True(t, resp.Validation.Valid)
	assert.GreaterOrEqual(t, resp.Metadata.Score, 85)
	assert.Contains(t, resp.Metadata.Keywords, "oled screen")
	assert.Equal(t, "https://fixit.example/oled-screen-repair", resp.Metadata.Canonical)

	assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_http_requests_total",
		map[string]string{"endpoint": PathGenerate, "status": "200"}))
	assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_generations_total",
		map[string]string{"source": metrics.SourceJSON}))
}

func TestHandleGenerate_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		message string
	}{
		{
			name:    "invalid json",
			body:    []byte(`{"title":`),
			message: "Invalid JSON body",
		},
		{
			name:    "missing title",
			body:    []byte(`{"title":"  ","body":"Some body text."}`),
			message: "title is required",
		},
		{
			name:    "missing body",
			body:    []byte(`{"title":"A title","body":""}`),
			message: "body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, registry := newTestServer(t, false)
			ctx := doRequest(s, fasthttp.MethodPost, PathGenerate, tt.body, nil)

			assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
			env := decode(t, ctx, nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_errors_total",
				map[string]string{"type": "input"}))
		})
	}
}

func TestHandleGenerateHTML(t *testing.T) {
	s, registry := newTestServer(t, false)
	uri := PathGenerateHTML + "?url=" + url.QueryEscape("https://fixit.example/guides/oled-screen-repair.html")

	ctx := doRequest(s, fasthttp.MethodPost, uri, readFixture(t, "article.html"), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp types.GenerateResponse
	env := decode(t, ctx, &resp)
	assert.True(t, env.Success)
	assert.Empty(t, env.Message)
	require.NotNil(t, resp.Metadata)
	assert.Contains(t, strings.ToLower(resp.Metadata.Title), "oled")
	assert.Contains(t, resp.Metadata.Keywords, "oled screen")
	require.NotNil(t, resp.Metadata.OpenGraph)
	assert.Equal(t, "https://fixit.example/img/oled-cover.jpg", resp.Metadata.OpenGraph.Image)

	assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_generations_total",
		map[string]string{"source": metrics.SourceHTML}))
}

func TestHandleGenerateHTML_Noindex(t *testing.T) {
	s, _ := newTestServer(t, false)
	page := strings.Replace(string(readFixture(t, "article.html")),
		`<meta charset="utf-8">`, `<meta charset="utf-8"><meta name="robots" content="noindex">`, 1)

	ctx := doRequest(s, fasthttp.MethodPost, PathGenerateHTML+"?url=https://fixit.example/a.html", []byte(page), nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	env := decode(t, ctx, nil)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "noindex")
}

func TestHandleGenerateHTML_BadURL(t *testing.T) {
	s, registry := newTestServer(t, false)

	ctx := doRequest(s, fasthttp.MethodPost, PathGenerateHTML+"?url="+url.QueryEscape("http://[::1"), readFixture(t, "article.html"), nil)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
	assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_errors_total",
		map[string]string{"type": "parse"}))
}

func TestHandlePreview(t *testing.T) {
	s, _ := newTestServer(t, false)
	query := url.Values{}
	query.Set("title", "OLED Screen Repair")
	query.Set("body", string(readFixture(t, "oled_repair.md")))
	uri := PathPreview + "?" + query.Encode()

	first := doRequest(s, fasthttp.MethodGet, uri, nil, nil)
	require.Equal(t, fasthttp.StatusOK, first.Response.StatusCode())

	var preview types.PreviewResponse
	decode(t, first, &preview)
	assert.LessOrEqual(t, len(preview.Keywords), types.DefaultPreviewKeywords)
	assert.NotEmpty(t, preview.Title)

	etag := string(first.Response.Header.Peek(fasthttp.HeaderETag))
	require.NotEmpty(t, etag)

	second := doRequest(s, fasthttp.MethodGet, uri, nil, map[string]string{fasthttp.HeaderIfNoneMatch: etag})
	assert.Equal(t, fasthttp.StatusNotModified, second.Response.StatusCode())
	assert.Empty(t, second.Response.Body())
}

func TestHandlePreview_MissingBody(t *testing.T) {
	s, _ := newTestServer(t, false)

	ctx := doRequest(s, fasthttp.MethodGet, PathPreview+"?title=Hello", nil, nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "body is required", decode(t, ctx, nil).Message)
}

func TestHandleValidate(t *testing.T) {
	s, registry := newTestServer(t, false)
	metadata := types.SEOMetadata{
		Title:       strings.Repeat("a", 80),
		Description: "A description that is comfortably longer than fifty characters in total.",
		Keywords:    []string{"oled"},
		Score:       70,
	}
	body, err := json.Marshal(metadata)
	require.NoError(t, err)

	ctx := doRequest(s, fasthttp.MethodPost, PathValidate, body, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var result types.ValidationResult
	decode(t, ctx, &result)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "title", result.Errors[0].Field)

	assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_validations_total",
		map[string]string{"result": "invalid"}))
}

func TestHandleValidate_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t, false)

	ctx := doRequest(s, fasthttp.MethodPost, PathValidate, []byte("not json"), nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, false)

	ctx := doRequest(s, fasthttp.MethodGet, PathHealth, nil, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var health HealthResponse
	decode(t, ctx, &health)
	assert.Equal(t, "ok", health.Status)
	assert.GreaterOrEqual(t, health.UptimeSeconds, int64(0))
	assert.Positive(t, health.Goroutines)
}

func TestRouting(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		endpoint string
	}{
		{"unknown path", fasthttp.MethodGet, "/nope", fasthttp.StatusNotFound, pathOther},
		{"wrong method on generate", fasthttp.MethodGet, PathGenerate, fasthttp.StatusMethodNotAllowed, PathGenerate},
		{"wrong method on health", fasthttp.MethodPost, PathHealth, fasthttp.StatusMethodNotAllowed, PathHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, registry := newTestServer(t, false)
			ctx := doRequest(s, tt.method, tt.path, nil, nil)

			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			assert.False(t, decode(t, ctx, nil).Success)
			assert.Equal(t, 1.0, counterValue(t, registry, "seometa_seo_http_requests_total",
				map[string]string{"endpoint": tt.endpoint, "status": strconv.Itoa(tt.status)}))
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s, _ := newTestServer(t, false)

	ctx := doRequest(s, fasthttp.MethodGet, PathHealth, nil, map[string]string{requestid.HeaderName: "client-42"})
	assert.True(t, strings.HasSuffix(string(ctx.Response.Header.Peek(requestid.HeaderName)), "-client-42"))
}

func TestCompression(t *testing.T) {
	body := sourceJSON(t, types.SourceContent{
		Title: "OLED Screen Repair",
		Body:  string(readFixture(t, "oled_repair.md")),
	})

	t.Run("enabled", func(t *testing.T) {
		s, _ := newTestServer(t, true)
		ctx := doRequest(s, fasthttp.MethodPost, PathGenerate, body, map[string]string{fasthttp.HeaderAcceptEncoding: "gzip"})

		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "gzip", string(ctx.Response.Header.Peek(fasthttp.HeaderContentEncoding)))

		plain, err := ctx.Response.BodyGunzip()
		require.NoError(t, err)
		assert.True(t, json.Valid(plain))
	})

	t.Run("disabled", func(t *testing.T) {
		s, _ := newTestServer(t, false)
		ctx := doRequest(s, fasthttp.MethodPost, PathGenerate, body, map[string]string{fasthttp.HeaderAcceptEncoding: "gzip"})

		assert.Empty(t, ctx.Response.Header.Peek(fasthttp.HeaderContentEncoding))
	})
}

func TestHTTPServerLimits(t *testing.T) {
	s, _ := newTestServer(t, false)
	srv := s.HTTPServer()

	assert.Equal(t, 1<<20, srv.MaxRequestBodySize)
	assert.Equal(t, "SEOMeta", srv.Name)
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	registry := prometheus.NewRegistry()
	mc := metrics.NewMetricsCollectorWithRegistry("seometa", registry, zap.NewNop())
	cfg := configtypes.ServerConfig{ClientIPHeaders: []string{"X-Forwarded-For"}}
	s := New(generator.New(generator.Options{}), mc, cfg, zap.New(core))

	doRequest(s, fasthttp.MethodGet, PathHealth, nil, map[string]string{
		"X-Forwarded-For":    "203.0.113.50, 10.0.0.1",
		requestid.HeaderName: "trace-1",
	})

	entries := logs.FilterMessage("Request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "203.0.113.50", fields["client_ip"])
	assert.True(t, strings.HasSuffix(fields["request_id"].(string), "-trace-1"))
	assert.Equal(t, int64(fasthttp.StatusOK), fields["status"])
}
