// Package requestid assigns the per-request correlation id logged with every
// request and echoed in the X-Request-ID response header.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	// HeaderName carries a caller-supplied id in and the final id out.
	HeaderName = "X-Request-ID"

	// MaxRequestIDLength matches the length of a UUID string.
	MaxRequestIDLength = 36
	// PrefixLength is the length of the random prefix added to caller ids.
	PrefixLength = 5
	// MaxCustomIDLength leaves room for the prefix and its hyphen.
	MaxCustomIDLength = MaxRequestIDLength - PrefixLength - 1
)

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateRequestID returns "{prefix}-{sanitized customID}" where prefix is 5
// random hex characters, or a new UUID when customID has nothing usable.
func GenerateRequestID(customID string) string {
	sanitized := Sanitize(customID)
	if sanitized == "" {
		return uuid.New().String()
	}
	if len(sanitized) > MaxCustomIDLength {
		sanitized = strings.TrimSuffix(sanitized[:MaxCustomIDLength], "-")
	}
	return randomPrefix() + "-" + sanitized
}

// Sanitize keeps [a-zA-Z0-9-], turns spaces into hyphens and collapses
// hyphen runs.
func Sanitize(customID string) string {
	s := strings.ReplaceAll(customID, " ", "-")
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Assign derives the id for ctx from its X-Request-ID header, sets it on the
// response and returns it.
func Assign(ctx *fasthttp.RequestCtx) string {
	id := GenerateRequestID(string(ctx.Request.Header.Peek(HeaderName)))
	ctx.Response.Header.Set(HeaderName, id)
	return id
}

func randomPrefix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:PrefixLength]
	}
	return hex.EncodeToString(buf)[:PrefixLength]
}
