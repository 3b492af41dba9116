package httputil

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/fasthttp"
)

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// CheckNotModified sets the ETag header for body and reports whether the
// request's If-None-Match already names it. On a match the response is
// turned into an empty 304.
func CheckNotModified(ctx *fasthttp.RequestCtx, body []byte) bool {
	tag := ETag(body)
	ctx.Response.Header.Set(fasthttp.HeaderETag, tag)

	ifNoneMatch := string(ctx.Request.Header.Peek(fasthttp.HeaderIfNoneMatch))
	if ifNoneMatch == "" || !matchesETag(ifNoneMatch, tag) {
		return false
	}

	ctx.SetStatusCode(fasthttp.StatusNotModified)
	ctx.ResetBody()
	return true
}

func matchesETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
