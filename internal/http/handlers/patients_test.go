package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/http/handlers"
)

type fakePatientProfiles struct {
	getFn    func(ctx context.Context, userID string) (profile.Patient, error)
	updateFn func(ctx context.Context, userID string, upd profile.UpdatePatient) error
}

func (f *fakePatientProfiles) PatientByUserID(ctx context.Context, userID string) (profile.Patient, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return profile.Patient{}, profile.ErrNotFound
}

func (f *fakePatientProfiles) UpdatePatient(ctx context.Context, userID string, upd profile.UpdatePatient) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, upd)
	}
	return nil
}

func TestPatientGetMyProfileHandler(t *testing.T) {
	patientID := newUUID()
	dob := time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		userID         string
		setup          func(*fakePatientProfiles)
		wantStatusCode int
	}{
		{
			name:   "success",
			userID: patientID,
			setup: func(f *fakePatientProfiles) {
				f.getFn = func(ctx context.Context, userID string) (profile.Patient, error) {
					return profile.Patient{
						UserID:      userID,
						Email:       "ada@example.com",
						FirstName:   "Ada",
						LastName:    "Lovelace",
						DateOfBirth: dob,
						Version:     1,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no_identity",
			userID:         "",
			setup:          func(f *fakePatientProfiles) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "not_found",
			userID: patientID,
			setup: func(f *fakePatientProfiles) {
				f.getFn = func(ctx context.Context, userID string) (profile.Patient, error) {
					return profile.Patient{}, profile.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:   "repo_error",
			userID: patientID,
			setup: func(f *fakePatientProfiles) {
				f.getFn = func(ctx context.Context, userID string) (profile.Patient, error) {
					return profile.Patient{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePatientProfiles{}
			tt.setup(fake)

			h := handlers.NewPatientsHandler(fake)
			r := setupAuthedRouter(http.MethodGet, "/patients/profile", tt.userID, []string{user.RolePatient}, h.GetMyProfile)

			req := httptest.NewRequest(http.MethodGet, "/patients/profile", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// The response never carries a password hash, regardless of what the
// store returns.
func TestPatientGetMyProfileHandler_NoSensitiveFields(t *testing.T) {
	patientID := newUUID()

	fake := &fakePatientProfiles{
		getFn: func(ctx context.Context, userID string) (profile.Patient, error) {
			return profile.Patient{UserID: userID, Email: "ada@example.com"}, nil
		},
	}

	h := handlers.NewPatientsHandler(fake)
	r := setupAuthedRouter(http.MethodGet, "/patients/profile", patientID, []string{user.RolePatient}, h.GetMyProfile)

	req := httptest.NewRequest(http.MethodGet, "/patients/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	for _, key := range []string{"password", "passwordHash", "password_hash"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("response leaks %q", key)
		}
	}
}

func TestPatientUpdateMyProfileHandler(t *testing.T) {
	patientID := newUUID()

	tests := []struct {
		name           string
		body           string
		setup          func(*fakePatientProfiles)
		wantStatusCode int
	}{
		{
			name: "success_partial",
			body: `{"allergies": "penicillin"}`,
			setup: func(f *fakePatientProfiles) {
				f.updateFn = func(ctx context.Context, userID string, upd profile.UpdatePatient) error {
					if upd.Allergies == nil || *upd.Allergies != "penicillin" {
						return errors.New("allergies not passed through")
					}
					// everything else was omitted and must stay nil
					if upd.Address != nil || upd.MedicalHistorySummary != nil || upd.CurrentMedications != nil {
						return errors.New("omitted fields should stay nil")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "explicit_clear",
			body: `{"allergies": ""}`,
			setup: func(f *fakePatientProfiles) {
				f.updateFn = func(ctx context.Context, userID string, upd profile.UpdatePatient) error {
					// empty string is a deliberate clear, not an omission
					if upd.Allergies == nil || *upd.Allergies != "" {
						return errors.New("explicit empty string should arrive non-nil")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "stale_version",
			body: `{"address": "new address", "version": 3}`,
			setup: func(f *fakePatientProfiles) {
				f.updateFn = func(ctx context.Context, userID string, upd profile.UpdatePatient) error {
					return profile.ErrConflict
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			body: `{"address": "new address"}`,
			setup: func(f *fakePatientProfiles) {
				f.updateFn = func(ctx context.Context, userID string, upd profile.UpdatePatient) error {
					return profile.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			body: `{"address": "new address"}`,
			setup: func(f *fakePatientProfiles) {
				f.updateFn = func(ctx context.Context, userID string, upd profile.UpdatePatient) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePatientProfiles{}
			tt.setup(fake)

			h := handlers.NewPatientsHandler(fake)
			r := setupAuthedRouter(http.MethodPut, "/patients/profile", patientID, []string{user.RolePatient}, h.UpdateMyProfile)

			req := httptest.NewRequest(http.MethodPut, "/patients/profile", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
