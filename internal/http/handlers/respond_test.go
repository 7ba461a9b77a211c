package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/medihub/internal/http/handlers"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// The error envelope must echo the id stored by the request-id
// middleware, keyed through the shared context constant.
func TestRespondError_CarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/boom", func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "nothing here")
	})

	t.Run("caller_supplied_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		req.Header.Set("X-Request-Id", "req-12345")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp struct {
			Error struct {
				Code      string `json:"code"`
				RequestID string `json:"requestId"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v", err)
		}

		if resp.Error.RequestID != "req-12345" {
			t.Fatalf("got requestId %q, want the header value", resp.Error.RequestID)
		}
	})

	t.Run("generated_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp struct {
			Error struct {
				RequestID string `json:"requestId"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v", err)
		}

		if resp.Error.RequestID == "" {
			t.Fatalf("expected a generated requestId in the envelope")
		}
		if got := w.Header().Get("X-Request-Id"); got != resp.Error.RequestID {
			t.Fatalf("envelope id %q does not match response header %q", resp.Error.RequestID, got)
		}
	})
}
