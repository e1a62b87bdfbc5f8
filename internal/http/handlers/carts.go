package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/bistro/internal/domain/cart"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

type CartStore interface {
	ListWhere(ctx context.Context, filter store.Filter) ([]store.Document, error)
	Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error)
	DeleteByID(ctx context.Context, id string) (store.DeleteResult, error)
}

type CartsHandler struct {
	repo CartStore
}

func NewCartsHandler(repo CartStore) *CartsHandler {
	return &CartsHandler{repo: repo}
}

// ListCarts returns the items owned by ?email=. Without the parameter only
// items that have no owner match.
func (h *CartsHandler) ListCarts(ctx *gin.Context) {
	filter := store.Filter{cart.OwnerField: nil}
	if email, ok := ctx.GetQuery("email"); ok {
		filter[cart.OwnerField] = email
	}

	items, err := h.repo.ListWhere(ctx.Request.Context(), filter)
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *CartsHandler) AddToCart(ctx *gin.Context) {
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

// RemoveFromCart deletes by id without checking who owns the item.
func (h *CartsHandler) RemoveFromCart(ctx *gin.Context) {
	res, err := h.repo.DeleteByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
