package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
)

// withURLParams attaches chi route params to the request
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withIdentity(req *http.Request, identity domain.Identity) *http.Request {
	return req.WithContext(domain.WithIdentity(req.Context(), identity))
}
