package router_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetplanner/backend/internal/controllers"
	"github.com/budgetplanner/backend/internal/router"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/storage"
	"github.com/budgetplanner/backend/test"
)

func setup(t *testing.T) (*storage.Store, *controllers.Controller) {
	store, err := storage.Connect(test.TmpFile(t))
	require.Nil(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, controllers.NewController(store, source.NewDemo(), 0)
}

func TestPprofOn(t *testing.T) {
	os.Setenv("ENABLE_PPROF", "true")
	defer os.Unsetenv("ENABLE_PPROF")

	r, teardown, err := router.Router()
	defer teardown()
	require.Nil(t, err, "Error on router initialization")

	store, co := setup(t)
	router.AttachRoutes(co, store, r.Group("/"))

	var routes []string
	for _, route := range r.Routes() {
		routes = append(routes, route.Path)
	}
	assert.Contains(t, routes, "/debug/pprof/")
}

func TestPprofOff(t *testing.T) {
	r, teardown, err := router.Router()
	defer teardown()
	require.Nil(t, err, "Error on router initialization")

	store, co := setup(t)
	router.AttachRoutes(co, store, r.Group("/"))

	for _, route := range r.Routes() {
		assert.NotContains(t, route.Path, "pprof", "pprof routes are registered erroneously! Route: %s", route.Path)
	}
}

// TestCorsSetting checks that setting of CORS works.
// It does not check the actual headers as this is already done in testing of the module.
func TestCorsSetting(t *testing.T) {
	os.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000 https://example.com")
	defer os.Unsetenv("CORS_ALLOW_ORIGINS")

	_, teardown, err := router.Router()
	defer teardown()

	assert.Nil(t, err)
}

func TestGeneralEndpoints(t *testing.T) {
	r, teardown, err := router.Router()
	defer teardown()
	require.Nil(t, err)

	store, co := setup(t)
	router.AttachRoutes(co, store, r.Group("/"))

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/", http.StatusOK, `"v1":"/v1"`},
		{http.MethodOptions, "/", http.StatusNoContent, ""},
		{http.MethodGet, "/version", http.StatusOK, `"version":"0.0.0"`},
		{http.MethodOptions, "/version", http.StatusNoContent, ""},
		{http.MethodGet, "/healthz", http.StatusOK, ""},
		{http.MethodOptions, "/healthz", http.StatusNoContent, ""},
		{http.MethodGet, "/metrics", http.StatusOK, ""},
		{http.MethodGet, "/v1", http.StatusOK, `"budgets":"/v1/budgets"`},
		{http.MethodOptions, "/v1", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		request, err := http.NewRequest(tt.method, tt.path, nil)
		require.Nil(t, err)
		r.ServeHTTP(recorder, request)

		assert.Equal(t, tt.status, recorder.Code, "%s %s", tt.method, tt.path)
		if tt.body != "" {
			assert.Contains(t, recorder.Body.String(), tt.body, "%s %s", tt.method, tt.path)
		}
	}
}
