package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/medihub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindTestRouter() *gin.Engine {
	r := gin.New()
	r.POST("/auth/register-patient", func(ctx *gin.Context) {
		var req handlers.RegisterPatientRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := bindTestRouter()

	body := `{"firstName":"Ada","email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register-patient", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	wantRules := map[string]string{
		"lastName":    "required",
		"email":       "email",
		"password":    "min",
		"dateOfBirth": "required",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/auth/register-doctor", func(ctx *gin.Context) {
		var req handlers.RegisterDoctorRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	body := `{
		"firstName":"Gregory",
		"lastName":"House",
		"email":"house@example.com",
		"password":"vicodin-123",
		"specialization":"Diagnostics",
		"licenseNumber":"MD-4031",
		"yearsOfExperience":"twenty"
	}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register-doctor", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "yearsOfExperience" {
		t.Fatalf("expected detail field to be yearsOfExperience, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Error.Details.Fields[0]
	if fieldErr.Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", fieldErr.Rule)
	}
	if fieldErr.Message == "" {
		t.Fatalf("expected non-empty fields[0].message")
	}
}

func TestBindJSON_MalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := bindTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/auth/register-patient", bytes.NewBufferString(`{"firstName": "Ada",}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %q", resp.Error.Details.JSON)
	}
}
