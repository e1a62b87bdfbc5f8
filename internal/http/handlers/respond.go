package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request.
type APIError struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, APIError{
		Message: message,
		Details: details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

// RespondStoreError maps a repository error to a response. Malformed ids are
// the client's fault; anything else is logged and reported as a 500.
func RespondStoreError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	if errors.Is(err, store.ErrInvalidID) {
		RespondBadRequest(ctx, "Invalid id", nil)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "store operation failed",
		"err", err,
		"route", ctx.FullPath(),
	)
	RespondInternal(ctx, "Internal server error")
}
