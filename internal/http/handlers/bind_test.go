package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/bistro/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestBindDocument_BodyTooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/menu", func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 16)
		if _, ok := handlers.BindDocument(ctx); !ok {
			return
		}
		ctx.Status(http.StatusOK)
	})

	w := doRequest(r, http.MethodPost, "/menu", `{"name":"`+strings.Repeat("a", 64)+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Details struct {
			JSON  string `json:"json"`
			Limit int64  `json:"limit"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Details.JSON != "body_too_large" || resp.Details.Limit != 16 {
		t.Fatalf("unexpected details %s", w.Body.String())
	}
}

func TestBindDocument_NullBody(t *testing.T) {
	r := gin.New()
	r.POST("/carts", func(ctx *gin.Context) {
		doc, ok := handlers.BindDocument(ctx)
		if !ok {
			return
		}
		ctx.JSON(http.StatusOK, doc)
	})

	w := doRequest(r, http.MethodPost, "/carts", `null`)
	if w.Code != http.StatusOK || w.Body.String() != `{}` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
