// Package clientip resolves the address a request originated from, honouring
// proxy headers configured in server.client_ip_headers.
package clientip

import (
	"net"
	"strings"

	"github.com/valyala/fasthttp"
)

// FromRequest returns the first address found in headers, in order, and
// falls back to the connection's remote address. For list headers such as
// X-Forwarded-For the leftmost entry is the client.
func FromRequest(ctx *fasthttp.RequestCtx, headers []string) string {
	for _, header := range headers {
		if ip := firstListEntry(string(ctx.Request.Header.Peek(header))); ip != "" {
			return ip
		}
	}

	addr := ctx.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return canonical(addr)
}

func firstListEntry(value string) string {
	first, _, _ := strings.Cut(value, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	return canonical(first)
}

// canonical strips brackets and IPv6 zones and re-formats parseable
// addresses. Anything else is returned as given.
func canonical(raw string) string {
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	if zone := strings.IndexByte(raw, '%'); zone >= 0 {
		raw = raw[:zone]
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
