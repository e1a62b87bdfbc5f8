package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/bistro/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestHealthHandlers(t *testing.T) {
	tests := []struct {
		name           string
		ping           func(ctx context.Context) error
		path           string
		wantStatusCode int
		wantBody       string
	}{
		{name: "root", path: "/", wantStatusCode: http.StatusOK, wantBody: "Restaurant is running..."},
		{name: "healthz", path: "/healthz", wantStatusCode: http.StatusOK, wantBody: `{"status":"ok"}`},
		{
			name:           "ready",
			ping:           func(ctx context.Context) error { return nil },
			path:           "/readyz",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"status":"ready"}`,
		},
		{
			name:           "store unreachable",
			ping:           func(ctx context.Context) error { return errors.New("dial tcp: refused") },
			path:           "/readyz",
			wantStatusCode: http.StatusServiceUnavailable,
			wantBody:       `{"status":"not_ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.ping)
			r := gin.New()
			r.GET("/", h.Root)
			r.GET("/healthz", h.Healthz)
			r.GET("/readyz", h.Readyz)

			w := doRequest(r, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatusCode || w.Body.String() != tt.wantBody {
				t.Fatalf("got %d %s, want %d %s", w.Code, w.Body.String(), tt.wantStatusCode, tt.wantBody)
			}
		})
	}
}
