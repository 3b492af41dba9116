package httputil

import (
	"bytes"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasthttp"
)

// MinCompressSize is the smallest body worth compressing.
const MinCompressSize = 1024

var gzipWriters = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	},
}

// AcceptsGzip reports whether the request allows a gzip-encoded response.
// An explicit q=0 refuses it.
func AcceptsGzip(ctx *fasthttp.RequestCtx) bool {
	for _, part := range strings.Split(string(ctx.Request.Header.Peek(fasthttp.HeaderAcceptEncoding)), ",") {
		coding, params, _ := strings.Cut(part, ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			weight, err := strconv.ParseFloat(q, 64)
			return err == nil && weight > 0
		}
		return true
	}
	return false
}

// GzipBody compresses the response body in place when the client accepts
// gzip and the body is at least MinCompressSize bytes.
func GzipBody(ctx *fasthttp.RequestCtx) error {
	body := ctx.Response.Body()
	if len(body) < MinCompressSize || !AcceptsGzip(ctx) {
		return nil
	}
	if len(ctx.Response.Header.Peek(fasthttp.HeaderContentEncoding)) > 0 {
		return nil
	}

	compressed, err := Gzip(body)
	if err != nil {
		return err
	}

	ctx.Response.Header.Set(fasthttp.HeaderContentEncoding, "gzip")
	ctx.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderAcceptEncoding)
	ctx.Response.SetBody(compressed)
	return nil
}

// Gzip compresses data with a pooled writer.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzipWriters.Get().(*gzip.Writer)
	defer gzipWriters.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
