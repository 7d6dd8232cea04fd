package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sample-app/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware(), RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/boom-err", func(c *gin.Context) { panic(errors.New("wrapped failure")) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	cases := map[string]string{
		"/boom":     "kaboom",
		"/boom-err": "wrapped failure",
	}
	r := newRouter()

	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusInternalServerError, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Internal server error", body["error"])
			assert.Equal(t, want, body["message"])
		})
	}
}

func TestLoggingRecordsMetrics(t *testing.T) {
	r := newRouter()
	okBefore := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/ok", http.MethodGet, "204"))
	missBefore := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(unmatchedEndpoint, http.MethodGet, "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing/1", nil))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/ok", http.MethodGet, "204")))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(unmatchedEndpoint, http.MethodGet, "404")))
}
