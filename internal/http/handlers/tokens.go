package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TokenIssuer interface {
	Issue(claims map[string]any) (string, error)
}

type TokensHandler struct {
	issuer TokenIssuer
}

func NewTokensHandler(issuer TokenIssuer) *TokensHandler {
	return &TokensHandler{issuer: issuer}
}

// Issue signs whatever object the client posts. Identity is asserted by the
// caller; there is no credential check at this endpoint.
func (h *TokensHandler) Issue(ctx *gin.Context) {
	claims, ok := BindDocument(ctx)
	if !ok {
		return
	}

	token, err := h.issuer.Issue(claims)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not issue token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}
