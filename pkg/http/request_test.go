package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/financefusion/api/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIPConfig(t *testing.T, cidrs ...string) *pkghttp.IPConfig {
	t.Helper()
	cfg, err := pkghttp.NewIPConfig(cidrs)
	require.NoError(t, err)
	return cfg
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		trusted []string
		want    string
	}{
		{
			name:    "untrusted peer ignores forwarding headers",
			remote:  "203.0.113.10:54321",
			xff:     "1.2.3.4",
			realIP:  "192.168.1.1",
			trusted: []string{"10.0.0.0/8"},
			want:    "203.0.113.10",
		},
		{
			name:    "trusted proxy uses first forwarded address",
			remote:  "10.0.0.5:54321",
			xff:     "203.0.113.42, 10.0.0.5",
			trusted: []string{"10.0.0.0/8"},
			want:    "203.0.113.42",
		},
		{
			name:    "trusted proxy skips garbage entries",
			remote:  "10.0.0.5:1",
			xff:     "not-an-ip, 198.51.100.7",
			trusted: []string{"10.0.0.0/8"},
			want:    "198.51.100.7",
		},
		{
			name:    "trusted proxy falls back to X-Real-IP",
			remote:  "10.0.0.5:1",
			realIP:  "198.51.100.8",
			trusted: []string{"10.0.0.0/8"},
			want:    "198.51.100.8",
		},
		{
			name:    "bare address is a single-host range",
			remote:  "127.0.0.1:1",
			xff:     "198.51.100.9",
			trusted: []string{"127.0.0.1"},
			want:    "198.51.100.9",
		},
		{
			name:    "ipv6 proxy",
			remote:  "[::1]:54321",
			xff:     "2001:db8::1",
			trusted: []string{"::1"},
			want:    "2001:db8::1",
		},
		{
			name:   "no trusted proxies",
			remote: "127.0.0.1:8080",
			xff:    "1.2.3.4",
			want:   "127.0.0.1",
		},
		{
			name:   "remote without port",
			remote: "203.0.113.10",
			want:   "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			got := pkghttp.ExtractClientIP(req, mustIPConfig(t, tt.trusted...))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractClientIP_NilConfig(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:1"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "10.0.0.5", pkghttp.ExtractClientIP(req, nil))
}

func TestNewIPConfig_InvalidCIDR(t *testing.T) {
	_, err := pkghttp.NewIPConfig([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"household"}`},
		{name: "empty", body: ``, wantErr: "empty"},
		{name: "unknown field", body: `{"name":"a","extra":1}`, wantErr: "invalid JSON"},
		{name: "trailing object", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", pkghttp.MaxBodyBytes) + `"}`, wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var p payload
			err := pkghttp.DecodeJSON(w, req, &p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "household", p.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
