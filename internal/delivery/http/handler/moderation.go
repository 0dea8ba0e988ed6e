package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// ModerationService is the admin path used by ModerationHandler
type ModerationService interface {
	ListAll(ctx context.Context) ([]domain.FlattenedReview, error)
	Delete(ctx context.Context, moderator domain.Identity, productID, reviewID uuid.UUID) (*domain.Aggregate, error)
}

// ModerationHandler handles admin HTTP requests for reviews
type ModerationHandler struct {
	service ModerationService
	logger  *logger.Logger
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(service ModerationService, log *logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		service: service,
		logger:  log,
	}
}

// ListAll handles GET /api/v1/admin/reviews
// @Summary List every review
// @Description Flattened list of all reviews across all products. Not paginated.
// @Tags Moderation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Flattened reviews"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 503 {object} map[string]string "Dependency unavailable"
// @Router /admin/reviews [get]
func (h *ModerationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.List(w, reviews, len(reviews))
}

// Delete handles DELETE /api/v1/admin/products/:id/reviews/:reviewId
// @Summary Delete a review
// @Description Removes the review and recomputes the product's rating aggregate
// @Tags Moderation
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param reviewId path string true "Review ID (UUID)"
// @Success 204 "Review deleted"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Product or review not found"
// @Router /admin/products/{id}/reviews/{reviewId} [delete]
func (h *ModerationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	reviewID, err := request.GetUUIDParam(r, "reviewId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	moderator, _ := domain.IdentityFromContext(r.Context())

	if _, err := h.service.Delete(r.Context(), moderator, productID, reviewID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.NoContent(w)
}
