package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/remiblancher/cmsinfo/internal/api/metrics"
	"github.com/remiblancher/cmsinfo/internal/cmstest"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

func newTestRouter(t *testing.T, maxBody int64) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	return New(&Config{
		Version:      "test",
		Language:     describe.LangEN,
		MaxBodyBytes: maxBody,
		Metrics:      m,
	}), m
}

func do(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestF_Router_Health(t *testing.T) {
	h, _ := newTestRouter(t, 0)

	rec := do(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/ready", nil).Code)
}

func TestF_Router_OpenAPI(t *testing.T) {
	h, _ := newTestRouter(t, 0)

	rec := do(h, http.MethodGet, "/api/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/cms/info")
}

func TestF_Router_CMSInfo(t *testing.T) {
	h, _ := newTestRouter(t, 0)

	rec := do(h, http.MethodPost, "/api/v1/cms/info?format=text", cmstest.DigestedData(cmstest.OIDSHA256, cmstest.OIDData))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Type: DigestedData\n"))
}

func TestF_Router_MethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t, 0)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/api/v1/cms/info", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/api/v1/cms/sign", nil).Code)
}

func TestF_Router_MaxBody(t *testing.T) {
	h, _ := newTestRouter(t, 16)

	rec := do(h, http.MethodPost, "/api/v1/cms/info", bytes.Repeat([]byte{0x30}, 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "BODY_TOO_LARGE")
}

func TestF_Router_Metrics(t *testing.T) {
	h, _ := newTestRouter(t, 0)

	do(h, http.MethodPost, "/api/v1/cms/info", cmstest.DigestedData(cmstest.OIDSHA256, cmstest.OIDData))
	do(h, http.MethodPost, "/api/v1/cms/info", []byte("junk"))

	rec := do(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cmsinfo_inspections_total{content_type="DigestedData",result="success"} 1`)
	assert.Contains(t, body, `cmsinfo_inspections_total{content_type="unknown",result="malformed"} 1`)
	assert.Contains(t, body, `route="/api/v1/cms/info"`)
}

func TestF_Router_DefaultMetrics(t *testing.T) {
	h := New(&Config{Version: "test"})
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/metrics", nil).Code)
}
