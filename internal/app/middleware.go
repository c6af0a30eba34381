package app

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/pkg/organization"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(organizationMiddleware)
}

// organizationMiddleware propagates the organization header into the request context. Requests without
// the header pass through and are refused by the handlers that need an organization.
func organizationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get(organization.Header)
		if header == "" {
			log.Tracef("no %s header on %s %s", organization.Header, req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
			return
		}
		organizationId, err := organization.ParseId(header)
		if err != nil {
			log.Debugf("invalid organization header %q: %v", header, err)
			rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
				Error:   "Invalid organization",
				Details: organization.Header + " must be a positive integer",
			})
			return
		}
		next.ServeHTTP(w, req.WithContext(organization.WithId(req.Context(), organizationId)))
	})
}
