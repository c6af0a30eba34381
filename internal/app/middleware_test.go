package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/yearplan/yearplan/pkg/organization"
)

func TestOrganizationMiddleware(t *testing.T) {
	r := mux.NewRouter()
	SetupMiddleware(r)
	var seen int
	var seenErr error
	r.HandleFunc("/api/year", func(w http.ResponseWriter, req *http.Request) {
		seen, seenErr = organization.CurrentId(req.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("should put the organization into the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/year", nil)
		req.Header.Set(organization.Header, "42")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, seenErr)
		assert.Equal(t, 42, seen)
	})

	t.Run("should pass requests without header through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/year", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.ErrorIs(t, seenErr, organization.ErrNoOrganization)
	})

	for _, header := range []string{"abc", "0", "-3"} {
		t.Run("should refuse organization "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/year", nil)
			req.Header.Set(organization.Header, header)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
