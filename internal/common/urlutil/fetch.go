// Package urlutil guards outbound page fetches and compares URL origins.
package urlutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrPrivateAddress is returned for fetch targets in loopback, private or
// otherwise reserved ranges.
var ErrPrivateAddress = errors.New("address is in a private or reserved range")

var privateRanges = mustParseCIDRs(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"100.64.0.0/10",
	"0.0.0.0/8",
	"224.0.0.0/4",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
	"ff00::/8",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR %q: %v", cidr, err))
		}
		nets = append(nets, ipNet)
	}
	return nets
}

// IsPrivateIP reports whether ip is in a private or reserved range.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, ipNet := range privateRanges {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckFetchURL parses a page URL supplied for import. Only absolute http(s)
// URLs are accepted, and IP literal hosts must be public. Host names are
// checked after resolution by GuardedDial.
func CheckFetchURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url has no host")
	}
	if ip := net.ParseIP(u.Hostname()); ip != nil && IsPrivateIP(ip) {
		return nil, fmt.Errorf("%s: %w", u.Hostname(), ErrPrivateAddress)
	}
	return u, nil
}

// GuardedDial returns a fasthttp dialer that resolves the target host and
// refuses to connect when any resolved address is private, which also
// covers redirects and DNS names pointing inside the network.
func GuardedDial(timeout time.Duration) fasthttp.DialFunc {
	return func(addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", host, err)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("no addresses for %s", host)
		}
		for _, a := range addrs {
			if IsPrivateIP(a.IP) {
				return nil, fmt.Errorf("%s resolves to %s: %w", host, a.IP, ErrPrivateAddress)
			}
		}

		return fasthttp.DialTimeout(net.JoinHostPort(addrs[0].IP.String(), port), timeout)
	}
}
