package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	salesdashHttp "github.com/MrJamesThe3rd/salesdash/internal/http"
	"github.com/MrJamesThe3rd/salesdash/internal/http/health"
	"github.com/MrJamesThe3rd/salesdash/internal/http/product"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

func newRouter(t *testing.T, setupMock func(m *transaction.MockRepository)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	if setupMock != nil {
		setupMock(repo)
	}

	return salesdashHttp.New(
		product.NewHandler(transaction.NewService(repo), time.Second),
		health.NewHandler("test", nil),
		[]string{"http://localhost:5173"},
	)
}

func TestRouter_CORS(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/products/statistics?month=03", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/products/statistics?month=03", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouter(t, func(m *transaction.MockRepository) {
		m.EXPECT().CountByCategory(gomock.Any(), transaction.Filter{Month: time.March}).Return(nil, nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/pie-chart?month=03", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `salesdash_http_requests_total{method="GET",route="/api/products/pie-chart",status="200"}`)
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products/statistics?month=03", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
