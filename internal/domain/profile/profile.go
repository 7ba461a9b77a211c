package profile

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrConflict = errors.New("profile was modified concurrently")
)

// Patient is the 1:1 extension record for a user holding the Patient role,
// joined with the identity fields the API exposes alongside it.
type Patient struct {
	UserID                string    `json:"userId"`
	Email                 string    `json:"email"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	DateOfBirth           time.Time `json:"dateOfBirth"`
	Address               string    `json:"address"`
	MedicalHistorySummary string    `json:"medicalHistorySummary"`
	Allergies             string    `json:"allergies"`
	CurrentMedications    string    `json:"currentMedications"`
	Version               int       `json:"version"`
}

type Doctor struct {
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Specialization    string `json:"specialization"`
	LicenseNumber     string `json:"licenseNumber"`
	YearsOfExperience int    `json:"yearsOfExperience"`
	ClinicAddress     string `json:"clinicAddress"`
	ProfessionalBio   string `json:"professionalBio"`
	IsVerified        bool   `json:"isVerified"`
	Version           int    `json:"version"`
}

// MaskLicense hides the license number for the public doctor view.
func (d Doctor) MaskLicense() Doctor {
	d.LicenseNumber = "********"
	return d
}

// DoctorSummary is the row shape of the available-doctors listing.
type DoctorSummary struct {
	DoctorUserID   string `json:"doctorUserId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

// PatientSeed and DoctorSeed carry the owner id explicitly, so the
// registration transaction never needs to inspect the profile shape to
// link it to its user.
type PatientSeed struct {
	UserID      string
	DateOfBirth time.Time
	Address     string
}

type DoctorSeed struct {
	UserID            string
	Specialization    string
	LicenseNumber     string
	YearsOfExperience int
}

// UpdatePatient is a partial update: nil means "keep the stored value".
// Clearing a field requires sending an empty string explicitly.
type UpdatePatient struct {
	Address               *string `json:"address"`
	MedicalHistorySummary *string `json:"medicalHistorySummary"`
	Allergies             *string `json:"allergies"`
	CurrentMedications    *string `json:"currentMedications"`
	// Version, when supplied, makes the update conditional on the stored
	// version. A stale value fails with ErrConflict instead of overwriting.
	Version *int `json:"version"`
}

type UpdateDoctor struct {
	ClinicAddress     *string `json:"clinicAddress"`
	ProfessionalBio   *string `json:"professionalBio"`
	YearsOfExperience *int    `json:"yearsOfExperience"`
	Version           *int    `json:"version"`
}
