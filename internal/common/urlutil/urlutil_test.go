package urlutil

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"ff02::1", true},
		{"8.8.8.8", false},
		{"203.0.113.10", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.private, IsPrivateIP(net.ParseIP(tt.ip)))
		})
	}

	assert.False(t, IsPrivateIP(nil))
}

func TestCheckFetchURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "public https", raw: "https://example.com/post"},
		{name: "public ip literal", raw: "http://8.8.8.8/"},
		{name: "trimmed", raw: "  https://example.com  "},
		{name: "ftp rejected", raw: "ftp://example.com/file", wantErr: "unsupported url scheme"},
		{name: "relative rejected", raw: "/just/a/path", wantErr: "unsupported url scheme"},
		{name: "no host", raw: "http:///path", wantErr: "url has no host"},
		{name: "loopback literal", raw: "http://127.0.0.1:8080/", wantErr: "private or reserved"},
		{name: "metadata endpoint", raw: "http://169.254.169.254/latest", wantErr: "private or reserved"},
		{name: "ipv6 loopback", raw: "http://[::1]/", wantErr: "private or reserved"},
		{name: "unparseable", raw: "http://[::1", wantErr: "invalid url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := CheckFetchURL(tt.raw)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, u.Hostname())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckFetchURL_ErrPrivateAddress(t *testing.T) {
	_, err := CheckFetchURL("http://10.0.0.5/")
	assert.True(t, errors.Is(err, ErrPrivateAddress))
}

func TestGuardedDial_RejectsLoopback(t *testing.T) {
	dial := GuardedDial(time.Second)

	_, err := dial("127.0.0.1:80")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrivateAddress))

	_, err = dial("localhost:80")
	require.Error(t, err)

	_, err = dial("missing-port")
	require.Error(t, err)
}

func TestSameSite(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://example.com/a", "https://example.com/b", true},
		{"https://example.com:8443/a", "http://EXAMPLE.com/b", true},
		{"https://blog.example.com/a", "https://example.com/", true},
		{"https://example.com/", "https://www.example.com/", true},
		{"https://example.com/", "https://example.org/", false},
		{"https://notexample.com/", "https://example.com/", false},
		{"/relative", "https://example.com/", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSite(tt.a, tt.b))
		})
	}
}
