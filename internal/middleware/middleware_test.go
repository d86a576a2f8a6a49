package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(ClientFromContext(r.Context())))
})

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"alpha", "beta"})(ok)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing header", "/v1/version", "", http.StatusUnauthorized, ""},
		{"wrong key", "/v1/version", "Bearer nope", http.StatusUnauthorized, ""},
		{"bearer", "/v1/version", "Bearer beta", http.StatusOK, "key-1"},
		{"bare key", "/v1/version", "alpha", http.StatusOK, "key-0"},
		{"public", "/health", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	h := APIKeyAuth(nil)(ok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	defer rl.Stop()
	h := rl.Middleware(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/scan/text", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoggingOmitsBody(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/scan/text", strings.NewReader(`{"content":"AKIASECRET"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.NotContains(t, buf.String(), "AKIASECRET")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	done := m.ScanStarted()
	assert.Equal(t, int64(1), m.Snapshot()["scans_running"])
	done(3, false, nil)
	m.ScanStarted()(0, true, nil)
	m.ScanStarted()(0, false, errors.New("boom"))

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s["scans_total"])
	assert.Equal(t, int64(0), s["scans_running"])
	assert.Equal(t, uint64(1), s["scans_failed"])
	assert.Equal(t, uint64(1), s["scans_timed_out"])
	assert.Equal(t, uint64(3), s["findings_total"])

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, uint64(1), m.Snapshot()["requests_failed"])
}

func TestHealthHandler(t *testing.T) {
	missing := &ExecutableHealthChecker{Name: "gitleaks", LookPath: func(string) (string, error) {
		return "", errors.New("not found")
	}}
	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"gitleaks": missing})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestValidators(t *testing.T) {
	kind, err := ValidateKind("")
	require.NoError(t, err)
	assert.Equal(t, "dir", kind)
	_, err = ValidateKind("docker")
	assert.Error(t, err)

	assert.NoError(t, ValidatePath("/home/me/src"))
	assert.NoError(t, ValidatePath("notes..txt"))
	assert.Error(t, ValidatePath("../etc/passwd"))
	assert.Error(t, ValidatePath("/proc/self/environ"))
	assert.Error(t, ValidatePath("/tmp/x; rm -rf /"))

	assert.Error(t, ValidateContent(""))
	assert.Error(t, ValidateContent(strings.Repeat("a", MaxContentBytes+1)))

	assert.Equal(t, "ab", SanitizeLabel(" a\x00\x01b "))
	assert.NoError(t, ValidateScanID("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.Error(t, ValidateScanID("nope"))
	assert.Equal(t, 100, ValidateLimit(500))
}

func TestSanitizeLabelKeepsValidUTF8(t *testing.T) {
	// 255 ASCII bytes followed by a 3-byte rune straddles the limit
	label := strings.Repeat("a", 255) + "€" + "tail"
	got := SanitizeLabel(label)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 255), got)

	short := "config-€.env"
	assert.Equal(t, short, SanitizeLabel(short))

	long := strings.Repeat("é", 200)
	got = SanitizeLabel(long)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 256)
}

func TestValidateOutput(t *testing.T) {
	repo := t.TempDir()
	elsewhere := t.TempDir()
	configured := filepath.Join(elsewhere, "baseline.json")

	assert.NoError(t, ValidateOutput("", repo, ""))
	assert.NoError(t, ValidateOutput(filepath.Join(repo, "baseline.json"), repo, ""))
	assert.NoError(t, ValidateOutput(filepath.Join(repo, "nested", "b.json"), repo, ""))
	assert.NoError(t, ValidateOutput(configured, repo, configured))

	assert.Error(t, ValidateOutput(filepath.Join(elsewhere, "x.json"), repo, configured))
	assert.Error(t, ValidateOutput(repo, repo, ""))
	assert.Error(t, ValidateOutput(filepath.Join(repo, "b.json"), "", configured))

	link := filepath.Join(repo, "escape")
	require.NoError(t, os.Symlink(elsewhere, link))
	assert.Error(t, ValidateOutput(filepath.Join(link, "x.json"), repo, ""))
}
