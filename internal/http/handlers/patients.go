package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PatientProfileStore interface {
	PatientByUserID(ctx context.Context, userID string) (profile.Patient, error)
	UpdatePatient(ctx context.Context, userID string, upd profile.UpdatePatient) error
}

type PatientsHandler struct {
	profiles PatientProfileStore
}

func NewPatientsHandler(profiles PatientProfileStore) *PatientsHandler {
	return &PatientsHandler{profiles: profiles}
}

func (h *PatientsHandler) GetMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.profiles.PatientByUserID(cctx, userID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Patient profile not found")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PatientsHandler) UpdateMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var upd profile.UpdatePatient

	if !BindJSON(ctx, &upd) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.profiles.UpdatePatient(cctx, userID, upd)

	if err != nil {
		switch {
		case errors.Is(err, profile.ErrNotFound):
			RespondNotFound(ctx, "Patient profile not found")
		case errors.Is(err, profile.ErrConflict):
			RespondError(ctx, http.StatusBadRequest, "concurrency_conflict",
				"Profile was modified concurrently. Refresh and retry.", nil)
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
