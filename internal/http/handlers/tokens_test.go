package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/bistro/internal/auth"
	"github.com/geocoder89/bistro/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type failingIssuer struct{}

func (failingIssuer) Issue(map[string]any) (string, error) {
	return "", errors.New("signing failed")
}

func TestIssueTokenHandler(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	h := handlers.NewTokensHandler(m)

	r := gin.New()
	r.POST("/jwt", h.Issue)

	w := doRequest(r, http.MethodPost, "/jwt", `{"email":"a@x.com","name":"A"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	claims, err := m.Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if email, _ := claims.Email(); email != "a@x.com" || claims["name"] != "A" {
		t.Fatalf("claims not carried through: %v", claims)
	}
}

func TestIssueTokenHandler_EmptyBody(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	r := gin.New()
	r.POST("/jwt", handlers.NewTokensHandler(m).Issue)

	w := doRequest(r, http.MethodPost, "/jwt", "")
	if w.Code != http.StatusOK {
		t.Fatalf("empty payload still gets a token, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestIssueTokenHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		issuer         handlers.TokenIssuer
		body           string
		wantStatusCode int
	}{
		{name: "malformed body", issuer: auth.NewManager("s", time.Hour), body: `{"email"`, wantStatusCode: http.StatusBadRequest},
		{name: "signing failure", issuer: failingIssuer{}, body: `{}`, wantStatusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/jwt", handlers.NewTokensHandler(tt.issuer).Issue)

			w := doRequest(r, http.MethodPost, "/jwt", tt.body)
			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
