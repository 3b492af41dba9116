package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/internal/seo/metrics"
	"github.com/edgecomet/seometa/internal/seo/server"
	"github.com/edgecomet/seometa/pkg/types"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var _ = Describe("SEO service", func() {
	var (
		listener *fasthttputil.InmemoryListener
		srv      *fasthttp.Server
		client   *fasthttp.Client
		body     string
	)

	BeforeEach(func() {
		data, err := os.ReadFile(filepath.Join("testdata", "oled_repair.md"))
		Expect(err).ToNot(HaveOccurred())
		body = string(data)

		registry := prometheus.NewRegistry()
		mc := metrics.NewMetricsCollectorWithRegistry("seometa", registry, zap.NewNop())
		gen := generator.New(generator.Options{
			Site: generator.Site{BaseURL: "https://fixit.example", Name: "Fixit", TwitterHandle: "fixit"},
		})
		cfg := configtypes.ServerConfig{
			Timeout:     types.Duration(5 * time.Second),
			MaxBodySize: 1 << 20,
			Compression: true,
		}
		srv = server.New(gen, mc, cfg, zap.NewNop()).HTTPServer()

		listener = fasthttputil.NewInmemoryListener()
		go func() {
			defer GinkgoRecover()
			_ = srv.Serve(listener)
		}()

		client = &fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) {
				return listener.Dial()
			},
		}
	})

	AfterEach(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(srv.ShutdownWithContext(ctx)).To(Succeed())
	})

	call := func(method, uri string, payload []byte, headers map[string]string) (*fasthttp.Response, apiResponse) {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)
		req.Header.SetMethod(method)
		req.SetRequestURI("http://seo.test" + uri)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if payload != nil {
			req.SetBody(payload)
		}

		resp := &fasthttp.Response{}
		Expect(client.DoTimeout(req, resp, 10*time.Second)).To(Succeed())

		var env apiResponse
		if len(resp.Body()) > 0 {
			raw := resp.Body()
			if string(resp.Header.Peek(fasthttp.HeaderContentEncoding)) == "gzip" {
				var err error
				raw, err = resp.BodyGunzip()
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(json.Unmarshal(raw, &env)).To(Succeed())
		}
		return resp, env
	}

	generate := func(source types.SourceContent) (*fasthttp.Response, apiResponse) {
		payload, err := json.Marshal(source)
		Expect(err).ToNot(HaveOccurred())
		return call(fasthttp.MethodPost, server.PathGenerate, payload, map[string]string{
			fasthttp.HeaderAcceptEncoding: "gzip",
		})
	}

	Describe("generating metadata", func() {
		It("produces publishable metadata for a well written article", func() {
			published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
			resp, env := generate(types.SourceContent{
				Title:       "OLED Screen Repair",
				Body:        body,
				Slug:        "guides/OLED Screen Repair",
				CoverImage:  "https://fixit.example/img/oled.jpg",
				Author:      "Dana Reyes",
				PublishedAt: &published,
			})

			Expect(resp.StatusCode()).To(Equal(fasthttp.StatusOK))
			Expect(string(resp.Header.Peek(fasthttp.HeaderContentEncoding))).To(Equal("gzip"))
			Expect(env.Success).To(BeTrue())

			var result types.GenerateResponse
			Expect(json.Unmarshal(env.Data, &result)).To(Succeed())

			By("keeping title and description inside their limits")
			Expect(len([]rune(result.Metadata.Title))).To(BeNumerically("<=", types.TitleTargetLength))
			Expect(len([]rune(result.Metadata.Description))).To(BeNumerically("<=", types.DescriptionTarget))

			By("ranking the repeated phrase as a keyword")
			Expect(result.Metadata.Keywords).To(ContainElement("oled screen"))
			Expect(len(result.Metadata.Keywords)).To(BeNumerically("<=", types.DefaultMaxKeywords))

			By("scoring the article highly")
			Expect(result.Metadata.Score).To(BeNumerically(">=", 85))
			Expect(result.Validation.Valid).To(BeTrue())

			By("attaching social metadata")
			Expect(result.Metadata.Canonical).To(Equal("https://fixit.example/guides/oled-screen-repair"))
			Expect(result.Metadata.OpenGraph.PublishedTime).To(Equal("2024-03-01T09:00:00Z"))
			Expect(result.Metadata.Twitter.Card).To(Equal("summary_large_image"))
			Expect(result.Metadata.Twitter.Site).To(Equal("@fixit"))
			Expect(result.Metadata.StructuredData).To(HaveKeyWithValue("@type", "Article"))
		})

		It("returns identical metadata for identical input", func() {
			source := types.SourceContent{Title: "OLED Screen Repair", Body: body}
			_, first := generate(source)
			_, second := generate(source)

			Expect(string(first.Data)).To(MatchJSON(string(second.Data)))
		})

		It("suggests expanding thin content", func() {
			_, env := generate(types.SourceContent{
				Title: "Quick battery tip",
				Body:  "Keep your phone battery between twenty and eighty percent. It lasts longer that way.",
			})

			var result types.GenerateResponse
			Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
			Expect(result.Metadata.Score).To(BeNumerically("<", 85))
			Expect(result.Metadata.Suggestions).To(ContainElement(ContainSubstring("expand to at least 300 words")))
		})

		It("rejects content without a title", func() {
			resp, env := generate(types.SourceContent{Body: body})

			Expect(resp.StatusCode()).To(Equal(fasthttp.StatusBadRequest))
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(Equal("title is required"))
		})
	})

	Describe("validating metadata", func() {
		It("round-trips generated metadata through the validator", func() {
			_, env := generate(types.SourceContent{Title: "OLED Screen Repair", Body: body})
			var generated types.GenerateResponse
			Expect(json.Unmarshal(env.Data, &generated)).To(Succeed())

			payload, err := json.Marshal(generated.Metadata)
			Expect(err).ToNot(HaveOccurred())
			resp, validated := call(fasthttp.MethodPost, server.PathValidate, payload, nil)

			Expect(resp.StatusCode()).To(Equal(fasthttp.StatusOK))
			var result types.ValidationResult
			Expect(json.Unmarshal(validated.Data, &result)).To(Succeed())
			Expect(result.Valid).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
		})

		It("reports every blocking problem at once", func() {
			payload := []byte(`{"title":"","description":"` + strings.Repeat("d", 210) + `","keywords":[],"score":120}`)
			_, env := call(fasthttp.MethodPost, server.PathValidate, payload, nil)

			var result types.ValidationResult
			Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
			Expect(result.Valid).To(BeFalse())

			fields := make([]string, 0, len(result.Errors))
			for _, issue := range result.Errors {
				fields = append(fields, issue.Field)
			}
			Expect(fields).To(Equal([]string{"title", "description", "keywords", "score"}))
		})
	})

	Describe("previewing", func() {
		It("serves a conditional preview", func() {
			query := url.Values{}
			query.Set("title", "OLED Screen Repair")
			query.Set("body", body)
			uri := server.PathPreview + "?" + query.Encode()
			first, env := call(fasthttp.MethodGet, uri, nil, nil)
			Expect(first.StatusCode()).To(Equal(fasthttp.StatusOK))
			Expect(env.Success).To(BeTrue())

			etag := string(first.Header.Peek(fasthttp.HeaderETag))
			Expect(etag).ToNot(BeEmpty())

			second, _ := call(fasthttp.MethodGet, uri, nil, map[string]string{fasthttp.HeaderIfNoneMatch: etag})
			Expect(second.StatusCode()).To(Equal(fasthttp.StatusNotModified))
		})
	})

	Describe("health", func() {
		It("reports ok", func() {
			resp, env := call(fasthttp.MethodGet, server.PathHealth, nil, nil)
			Expect(resp.StatusCode()).To(Equal(fasthttp.StatusOK))

			var health server.HealthResponse
			Expect(json.Unmarshal(env.Data, &health)).To(Succeed())
			Expect(health.Status).To(Equal("ok"))
		})
	})
})
