package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/geocoder89/medihub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ProfilesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {

		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProfilesRepo) CreatePatientTx(ctx context.Context, tx pgx.Tx, seed profile.PatientSeed) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO patient_profiles (id, user_id, date_of_birth, address)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), seed.UserID, seed.DateOfBirth.UTC(), seed.Address)

	return err
}

func (r *ProfilesRepo) CreateDoctorTx(ctx context.Context, tx pgx.Tx, seed profile.DoctorSeed) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO doctor_profiles (id, user_id, specialization, license_number, years_of_experience)
		VALUES ($1,$2,$3,$4,$5)
	`, uuid.NewString(), seed.UserID, seed.Specialization, seed.LicenseNumber, seed.YearsOfExperience)

	return err
}

// PatientByUserID returns the joined user+profile row. A user without a
// patient profile and an unknown user id are indistinguishable on purpose.
func (r *ProfilesRepo) PatientByUserID(ctx context.Context, userID string) (profile.Patient, error) {
	var p profile.Patient

	err := r.observe("profiles.patient_by_user", func() error {
		return r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name,
		       p.date_of_birth, p.address, p.medical_history_summary,
		       p.allergies, p.current_medications, p.version
		FROM users u
		JOIN patient_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(
			&p.UserID,
			&p.Email,
			&p.FirstName,
			&p.LastName,
			&p.DateOfBirth,
			&p.Address,
			&p.MedicalHistorySummary,
			&p.Allergies,
			&p.CurrentMedications,
			&p.Version,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Patient{}, profile.ErrNotFound
		}

		return profile.Patient{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) DoctorByUserID(ctx context.Context, userID string) (profile.Doctor, error) {
	var d profile.Doctor

	err := r.observe("profiles.doctor_by_user", func() error {
		return r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name,
		       d.specialization, d.license_number, d.years_of_experience,
		       d.clinic_address, d.professional_bio, d.is_verified, d.version
		FROM users u
		JOIN doctor_profiles d ON d.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(
			&d.UserID,
			&d.Email,
			&d.FirstName,
			&d.LastName,
			&d.Specialization,
			&d.LicenseNumber,
			&d.YearsOfExperience,
			&d.ClinicAddress,
			&d.ProfessionalBio,
			&d.IsVerified,
			&d.Version,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Doctor{}, profile.ErrNotFound
		}

		return profile.Doctor{}, err
	}

	return d, nil
}

// UpdatePatient applies a partial update in a single statement. nil fields
// keep the stored value via COALESCE. When the request carries a version
// and it is stale, the statement matches zero rows and the update fails
// with ErrConflict so the caller can re-read and retry.
func (r *ProfilesRepo) UpdatePatient(ctx context.Context, userID string, upd profile.UpdatePatient) error {
	var tag int64

	err := r.observe("profiles.update_patient", func() error {
		t, e := r.pool.Exec(ctx, `
		UPDATE patient_profiles
		SET address = COALESCE($2, address),
		    medical_history_summary = COALESCE($3, medical_history_summary),
		    allergies = COALESCE($4, allergies),
		    current_medications = COALESCE($5, current_medications),
		    version = version + 1
		WHERE user_id = $1
		  AND ($6::int IS NULL OR version = $6)
	`, userID, upd.Address, upd.MedicalHistorySummary, upd.Allergies, upd.CurrentMedications, upd.Version)

		if e != nil {
			return e
		}

		tag = t.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return r.explainMiss(ctx, "patient_profiles", userID)
	}

	return nil
}

func (r *ProfilesRepo) UpdateDoctor(ctx context.Context, userID string, upd profile.UpdateDoctor) error {
	var tag int64

	err := r.observe("profiles.update_doctor", func() error {
		t, e := r.pool.Exec(ctx, `
		UPDATE doctor_profiles
		SET clinic_address = COALESCE($2, clinic_address),
		    professional_bio = COALESCE($3, professional_bio),
		    years_of_experience = COALESCE($4, years_of_experience),
		    version = version + 1
		WHERE user_id = $1
		  AND ($5::int IS NULL OR version = $5)
	`, userID, upd.ClinicAddress, upd.ProfessionalBio, upd.YearsOfExperience, upd.Version)

		if e != nil {
			return e
		}

		tag = t.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return r.explainMiss(ctx, "doctor_profiles", userID)
	}

	return nil
}

// explainMiss decides whether a zero-row update was a stale version or a
// missing profile.
func (r *ProfilesRepo) explainMiss(ctx context.Context, table, userID string) error {
	var exists bool

	q := `SELECT EXISTS(SELECT 1 FROM patient_profiles WHERE user_id = $1)`

	if table == "doctor_profiles" {
		q = `SELECT EXISTS(SELECT 1 FROM doctor_profiles WHERE user_id = $1)`
	}

	if err := r.pool.QueryRow(ctx, q, userID).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return profile.ErrConflict
	}

	return profile.ErrNotFound
}

// ListVerifiedDoctors powers /doctors/available: verified only, stable
// (last name, first name) ordering.
func (r *ProfilesRepo) ListVerifiedDoctors(ctx context.Context) (items []profile.DoctorSummary, err error) {
	var rows pgx.Rows

	err = r.observe("profiles.list_verified_doctors", func() error {
		rows, err = r.pool.Query(ctx, `
		SELECT u.id, u.first_name, u.last_name, d.specialization
		FROM users u
		JOIN doctor_profiles d ON d.user_id = u.id
		WHERE d.is_verified
		ORDER BY u.last_name ASC, u.first_name ASC
	`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	items = make([]profile.DoctorSummary, 0)

	for rows.Next() {
		var s profile.DoctorSummary

		e := rows.Scan(&s.DoctorUserID, &s.FirstName, &s.LastName, &s.Specialization)

		if e != nil {
			err = e
			return
		}
		items = append(items, s)
	}

	err = rows.Err()

	return
}
