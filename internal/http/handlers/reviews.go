package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

type ReviewLister interface {
	ListAll(ctx context.Context) ([]store.Document, error)
}

type ReviewsHandler struct {
	repo ReviewLister
}

func NewReviewsHandler(repo ReviewLister) *ReviewsHandler {
	return &ReviewsHandler{repo: repo}
}

func (h *ReviewsHandler) ListReviews(ctx *gin.Context) {
	reviews, err := h.repo.ListAll(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, reviews)
}
