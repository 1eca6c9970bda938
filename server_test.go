package scanner

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerScanSuccess(t *testing.T) {
	srv := NewServer(newTestScanner(testLister(2), newFakeStore()), zerolog.Nop())

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/scan", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "6 items written")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	}
}

func TestServerScanPartialFailureStillOK(t *testing.T) {
	lister := testLister(3)
	lister.subnetErrs["net1"] = errors.New("transport error")
	srv := NewServer(newTestScanner(lister, newFakeStore()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 skipped")
	assert.Contains(t, rec.Body.String(), "failed net1")
}

func TestServerScanFatalError(t *testing.T) {
	lister := &fakeLister{listErr: errors.New("auth error")}
	srv := NewServer(newTestScanner(lister, newFakeStore()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "scan failed")
}

func TestServerHealth(t *testing.T) {
	srv := NewServer(newTestScanner(&fakeLister{}, newFakeStore()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
