package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// writeError maps service layer errors to HTTP responses. Failures are logged
// with the request-scoped logger when the middleware attached one.
func writeError(w http.ResponseWriter, r *http.Request, fallback *logger.Logger, err error) {
	log := logger.FromContext(r.Context(), fallback)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Conflict - product was modified by another request")
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error("Dependency unavailable", err)
		response.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		log.Error("Internal error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
