package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/gin-gonic/gin"
)

func putJSON(router *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fetchPatientProfile(t *testing.T, router *gin.Engine, token string) profile.Patient {
	t.Helper()

	w := getAuthed(router, "/patients/profile", token)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /patients/profile got %d, body=%s", w.Code, w.Body.String())
	}

	var p profile.Patient
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal profile: %v", err)
	}
	return p
}

// Fields absent from the update payload must keep their stored values,
// exercised against the real UPDATE statement: seed address+allergies,
// then overwrite only the address.
func TestPatientProfileUpdateIntegration_OmittedFieldsKeepStoredValues(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	reg := postJSON(router, "/auth/register-patient", patientRegistrationBody, "")
	if reg.Code != http.StatusOK {
		t.Fatalf("registration got %d, body=%s", reg.Code, reg.Body.String())
	}

	var auth authResponse
	if err := json.Unmarshal(reg.Body.Bytes(), &auth); err != nil {
		t.Fatalf("failed to unmarshal auth response: %v", err)
	}

	if w := putJSON(router, "/patients/profile", `{"address": "221B Baker Street", "allergies": "peanuts"}`, auth.Token); w.Code != http.StatusNoContent {
		t.Fatalf("seeding update got %d, body=%s", w.Code, w.Body.String())
	}

	if w := putJSON(router, "/patients/profile", `{"address": "10 Downing Street"}`, auth.Token); w.Code != http.StatusNoContent {
		t.Fatalf("partial update got %d, body=%s", w.Code, w.Body.String())
	}

	p := fetchPatientProfile(t, router, auth.Token)

	if p.Address != "10 Downing Street" {
		t.Fatalf("got address %q, want the updated value", p.Address)
	}
	if p.Allergies != "peanuts" {
		t.Fatalf("got allergies %q, the omitted field must keep its stored value", p.Allergies)
	}

	// seeded at 1, bumped once per update
	if p.Version != 3 {
		t.Fatalf("got version %d, want 3 after two updates", p.Version)
	}
}

// A zero-row update means either a stale version or a missing profile,
// and the two must map to different responses: 400 with a conflict code
// when the row exists, 404 once it is gone.
func TestPatientProfileUpdateIntegration_StaleVersionVsMissingProfile(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	reg := postJSON(router, "/auth/register-patient", patientRegistrationBody, "")
	if reg.Code != http.StatusOK {
		t.Fatalf("registration got %d, body=%s", reg.Code, reg.Body.String())
	}

	var auth authResponse
	if err := json.Unmarshal(reg.Body.Bytes(), &auth); err != nil {
		t.Fatalf("failed to unmarshal auth response: %v", err)
	}

	if w := putJSON(router, "/patients/profile", `{"allergies": "latex"}`, auth.Token); w.Code != http.StatusNoContent {
		t.Fatalf("first update got %d, body=%s", w.Code, w.Body.String())
	}

	current := fetchPatientProfile(t, router, auth.Token).Version

	stale := putJSON(router, "/patients/profile",
		`{"address": "should not land", "version": `+strconv.Itoa(current-1)+`}`, auth.Token)
	if stale.Code != http.StatusBadRequest {
		t.Fatalf("stale version got %d, want 400, body=%s", stale.Code, stale.Body.String())
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(stale.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	if apiErr.Error.Code != "concurrency_conflict" {
		t.Fatalf("got error code %q, want concurrency_conflict", apiErr.Error.Code)
	}

	if p := fetchPatientProfile(t, router, auth.Token); p.Address == "should not land" {
		t.Fatalf("stale update must not modify the row")
	}

	// the matching version goes through
	if w := putJSON(router, "/patients/profile",
		`{"address": "5 Conflict-Free Road", "version": `+strconv.Itoa(current)+`}`, auth.Token); w.Code != http.StatusNoContent {
		t.Fatalf("matching version got %d, body=%s", w.Code, w.Body.String())
	}

	// same zero-row outcome, different cause: no profile row at all
	if _, err := pool.Exec(context.Background(),
		`DELETE FROM patient_profiles WHERE user_id = $1`, auth.UserID); err != nil {
		t.Fatalf("failed to delete profile row: %v", err)
	}

	gone := putJSON(router, "/patients/profile", `{"address": "nowhere"}`, auth.Token)
	if gone.Code != http.StatusNotFound {
		t.Fatalf("missing profile got %d, want 404, body=%s", gone.Code, gone.Body.String())
	}
}
