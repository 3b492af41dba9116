package urlutil

import (
	"net/url"
	"strings"
)

// SameSite reports whether two absolute URLs share a host, or one host is a
// subdomain of the other. Ports are ignored.
func SameSite(a, b string) bool {
	ha, hb := hostname(a), hostname(b)
	if ha == "" || hb == "" {
		return false
	}
	return ha == hb || strings.HasSuffix(ha, "."+hb) || strings.HasSuffix(hb, "."+ha)
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
