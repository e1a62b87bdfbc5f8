package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

type MenuStore interface {
	ListAll(ctx context.Context) ([]store.Document, error)
	Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error)
}

type MenuHandler struct {
	repo MenuStore
}

func NewMenuHandler(repo MenuStore) *MenuHandler {
	return &MenuHandler{repo: repo}
}

func (h *MenuHandler) ListMenu(ctx *gin.Context) {
	items, err := h.repo.ListAll(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *MenuHandler) CreateMenuItem(ctx *gin.Context) {
	item, ok := BindDocument(ctx)
	if !ok {
		return
	}

	res, err := h.repo.Insert(ctx.Request.Context(), item)
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
