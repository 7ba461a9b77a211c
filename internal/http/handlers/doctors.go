package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/medihub/internal/cache"
	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/geocoder89/medihub/internal/utils"
	"github.com/gin-gonic/gin"
)

type DoctorProfileStore interface {
	DoctorByUserID(ctx context.Context, userID string) (profile.Doctor, error)
	UpdateDoctor(ctx context.Context, userID string, upd profile.UpdateDoctor) error
	ListVerifiedDoctors(ctx context.Context) ([]profile.DoctorSummary, error)
}

type DoctorsHandler struct {
	profiles DoctorProfileStore
	listing  cache.DoctorList
}

func NewDoctorsHandler(profiles DoctorProfileStore, listing cache.DoctorList) *DoctorsHandler {
	return &DoctorsHandler{
		profiles: profiles,
		listing:  listing,
	}
}

func (h *DoctorsHandler) GetMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	d, err := h.profiles.DoctorByUserID(cctx, userID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Doctor profile not found")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, d)
}

func (h *DoctorsHandler) UpdateMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var upd profile.UpdateDoctor

	if !BindJSON(ctx, &upd) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.profiles.UpdateDoctor(cctx, userID, upd)

	if err != nil {
		switch {
		case errors.Is(err, profile.ErrNotFound):
			RespondNotFound(ctx, "Doctor profile not found")
		case errors.Is(err, profile.ErrConflict):
			RespondError(ctx, http.StatusBadRequest, "concurrency_conflict",
				"Profile was modified concurrently. Refresh and retry.", nil)
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	// listing shows clinic data, so a successful update stales the cache
	if h.listing != nil {
		h.listing.Invalidate(cctx)
	}

	ctx.Status(http.StatusNoContent)
}

// Available lists verified doctors for any authenticated user. Served
// from the listing cache when warm.
func (h *DoctorsHandler) Available(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.listing != nil {
		if items, ok := h.listing.Get(cctx); ok {
			ctx.JSON(http.StatusOK, gin.H{
				"items": items,
				"count": len(items),
			})
			return
		}
	}

	items, err := h.profiles.ListVerifiedDoctors(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list doctors")
		return
	}

	if h.listing != nil {
		h.listing.Set(cctx, items)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetByID is the public doctor view: any authenticated user, license
// number masked.
func (h *DoctorsHandler) GetByID(ctx *gin.Context) {
	doctorID := ctx.Param("doctorId")

	if !utils.IsUUID(doctorID) {
		RespondBadRequest(ctx, "doctor id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	d, err := h.profiles.DoctorByUserID(cctx, doctorID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "Doctor not found")
			return
		}

		RespondInternal(ctx, "Could not fetch doctor")
		return
	}

	ctx.JSON(http.StatusOK, d.MaskLicense())
}
