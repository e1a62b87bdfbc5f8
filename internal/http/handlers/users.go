package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	ListAll(ctx context.Context) ([]store.Document, error)
	FindOne(ctx context.Context, filter store.Filter) (store.Document, error)
	Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error)
	UpdateOneWhere(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error)
	DeleteOneWhere(ctx context.Context, filter store.Filter) (store.DeleteResult, error)
}

type UsersHandler struct {
	repo UserStore
}

func NewUsersHandler(repo UserStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.repo.ListAll(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// CheckAdmin reports {admin: bool} for :email. The route guarantees the
// caller is asking about themselves.
func (h *UsersHandler) CheckAdmin(ctx *gin.Context) {
	u, err := h.repo.FindOne(ctx.Request.Context(), store.Filter{user.EmailField: ctx.Param("email")})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"admin": user.IsAdmin(u)})
}

// Register inserts the posted profile unless its email is already taken,
// in which case nothing is written and the conflict is reported with a 200.
func (h *UsersHandler) Register(ctx *gin.Context) {
	body, ok := BindDocument(ctx)
	if !ok {
		return
	}

	cctx := ctx.Request.Context()

	_, err := h.repo.FindOne(cctx, store.Filter{user.EmailField: body[user.EmailField]})
	switch {
	case err == nil:
		respondUserExists(ctx)
		return
	case !errors.Is(err, store.ErrNotFound):
		RespondStoreError(ctx, err)
		return
	}

	res, err := h.repo.Insert(cctx, user.ForRegistration(body))
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with a concurrent registration of the same email
		respondUserExists(ctx)
		return
	}
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *UsersHandler) MakeAdmin(ctx *gin.Context) {
	res, err := h.repo.UpdateOneWhere(ctx.Request.Context(),
		store.Filter{user.EmailField: ctx.Param("email")},
		store.Document{user.RoleField: user.RoleAdmin},
	)
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	res, err := h.repo.DeleteOneWhere(ctx.Request.Context(), store.Filter{user.EmailField: ctx.Param("email")})
	if err != nil {
		RespondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func respondUserExists(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message":    user.ExistsMessage,
		"insertedId": nil,
	})
}
