package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/review"
)

// ReviewService is the submission path used by ReviewHandler
type ReviewService interface {
	Submit(ctx context.Context, identity domain.Identity, productID uuid.UUID, rating int, comment string) (*review.SubmitResult, error)
	GetForProduct(ctx context.Context, productID uuid.UUID) ([]domain.Review, error)
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service ReviewService
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// SubmitReviewRequest represents the request body for creating or updating the caller's review
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" example:"5"`
	Comment string `json:"comment" example:"Works as advertised"`
}

// SubmitReviewResponse is the review written together with the product's refreshed aggregate
type SubmitReviewResponse struct {
	Review       domain.Review `json:"review"`
	Ratings      float64       `json:"ratings"`
	NumOfReviews int           `json:"numOfReviews"`
}

// PublicReview is the shape of a review on the public product listing.
// Author ids and masked terms stay out of it.
type PublicReview struct {
	ReviewID   uuid.UUID `json:"reviewId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toPublicReviews(reviews []domain.Review) []PublicReview {
	out := make([]PublicReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, PublicReview{
			ReviewID:   r.ID,
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Comment:    r.Comment,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}

// Submit handles POST /api/v1/products/:id/reviews
// @Summary Create or update the caller's review
// @Description Requires a delivered order containing the product. A second submission by the same user overwrites the first. Profanity in the comment is masked.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID (UUID)"
// @Param review body SubmitReviewRequest true "Rating and comment"
// @Success 201 {object} map[string]interface{} "Review created"
// @Success 200 {object} map[string]interface{} "Review updated"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Must purchase before reviewing"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 503 {object} map[string]string "Dependency unavailable"
// @Router /products/{id}/reviews [post]
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SubmitReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.Submit(r.Context(), identity, productID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	body := SubmitReviewResponse{
		Review:       res.Review,
		Ratings:      res.Aggregate.Ratings,
		NumOfReviews: res.Aggregate.NumOfReviews,
	}
	if res.Created {
		response.Created(w, body)
		return
	}
	response.Success(w, body)
}

// GetByProductID handles GET /api/v1/products/:id/reviews
// @Summary Get reviews for a product
// @Description Get every review of a product in submission order. Results are cached.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {array} PublicReview "List of reviews"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/reviews [get]
func (h *ReviewHandler) GetByProductID(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	reviews, err := h.service.GetForProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.List(w, toPublicReviews(reviews), len(reviews))
}
