package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled          Status = "scheduled"
	StatusCompleted          Status = "completed"
	StatusCancelledByPatient Status = "cancelled_by_patient"
	StatusCancelledByDoctor  Status = "cancelled_by_doctor"
	StatusNoShow             Status = "no_show"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrNotScheduled  = errors.New("appointment is not in scheduled state")
	ErrDoctorUnknown = errors.New("doctor not found")
)

type Appointment struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patientId"`
	DoctorID        string    `json:"doctorId"`
	StartsAt        time.Time `json:"startsAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          Status    `json:"status"`
	Reason          string    `json:"reason"`
	DoctorNotes     string    `json:"doctorNotes"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ScheduleRequest struct {
	PatientID       string    `json:"-"`
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	StartsAt        time.Time `json:"startsAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,min=5,max=480"`
	Reason          string    `json:"reason" binding:"max=1000"`
}

func NewFromScheduleRequest(req ScheduleRequest) Appointment {
	return Appointment{
		ID:              uuid.NewString(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Status:          StatusScheduled,
		Reason:          req.Reason,
		CreatedAt:       time.Now().UTC(),
	}
}
