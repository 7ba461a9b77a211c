package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/appointment"
	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/geocoder89/medihub/internal/utils"
	"github.com/gin-gonic/gin"
)

type AppointmentStore interface {
	Schedule(ctx context.Context, req appointment.ScheduleRequest) (appointment.Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]appointment.Appointment, error)
	Cancel(ctx context.Context, id, byUserID string, status appointment.Status) error
}

type AppointmentsHandler struct {
	repo AppointmentStore
}

func NewAppointmentsHandler(repo AppointmentStore) *AppointmentsHandler {
	return &AppointmentsHandler{repo: repo}
}

func (h *AppointmentsHandler) Schedule(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req appointment.ScheduleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the caller is always the patient, regardless of what the body says
	req.PatientID = userID

	if !req.StartsAt.After(time.Now()) {
		RespondBadRequest(ctx, "appointment must start in the future", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	appt, err := h.repo.Schedule(cctx, req)

	if err != nil {
		if errors.Is(err, appointment.ErrDoctorUnknown) {
			RespondNotFound(ctx, "Doctor not found")
			return
		}

		RespondInternal(ctx, "Could not schedule appointment")
		return
	}

	ctx.JSON(http.StatusCreated, appt)
}

func (h *AppointmentsHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListForUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list appointments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *AppointmentsHandler) Cancel(ctx *gin.Context) {
	apptID := ctx.Param("id")

	if !utils.IsUUID(apptID) {
		RespondBadRequest(ctx, "appointment id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	// who cancels determines the terminal status
	status := appointment.StatusCancelledByPatient

	if roles, ok := middlewares.RolesFromContext(ctx); ok {
		for _, r := range roles {
			if r == user.RoleDoctor {
				status = appointment.StatusCancelledByDoctor
				break
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Cancel(cctx, apptID, userID, status)

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrNotFound):
			RespondNotFound(ctx, "Appointment not found")
		case errors.Is(err, appointment.ErrNotScheduled):
			RespondConflict(ctx, "not_scheduled", "only scheduled appointments can be cancelled.")
		default:
			RespondInternal(ctx, "Could not cancel appointment")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
