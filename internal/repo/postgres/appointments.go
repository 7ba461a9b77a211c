package postgres

import (
	"context"

	"github.com/geocoder89/medihub/internal/domain/appointment"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentsRepo struct {
	pool *pgxpool.Pool
}

func NewAppointmentsRepo(pool *pgxpool.Pool) *AppointmentsRepo {
	return &AppointmentsRepo{pool: pool}
}

// Schedule inserts a new appointment after confirming the target user is
// actually a doctor.
func (r *AppointmentsRepo) Schedule(ctx context.Context, req appointment.ScheduleRequest) (appointment.Appointment, error) {
	var isDoctor bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctor_profiles WHERE user_id = $1)`,
		req.DoctorID,
	).Scan(&isDoctor)

	if err != nil {
		return appointment.Appointment{}, err
	}

	if !isDoctor {
		return appointment.Appointment{}, appointment.ErrDoctorUnknown
	}

	a := appointment.NewFromScheduleRequest(req)

	_, err = r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, starts_at, duration_minutes, status, reason, doctor_notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.PatientID, a.DoctorID, a.StartsAt, a.DurationMinutes, a.Status, a.Reason, a.DoctorNotes, a.CreatedAt)

	if err != nil {
		return appointment.Appointment{}, err
	}

	return a, nil
}

// ListForUser returns appointments where the user is either side, newest
// first.
func (r *AppointmentsRepo) ListForUser(ctx context.Context, userID string) ([]appointment.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, starts_at, duration_minutes, status, reason, doctor_notes, created_at
		FROM appointments
		WHERE patient_id = $1 OR doctor_id = $1
		ORDER BY starts_at DESC, id ASC
	`, userID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]appointment.Appointment, 0)

	for rows.Next() {
		var a appointment.Appointment

		err = rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.StartsAt, &a.DurationMinutes, &a.Status, &a.Reason, &a.DoctorNotes, &a.CreatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Cancel flips a scheduled appointment to the matching cancelled status.
// Only the involved patient or doctor may cancel, and only while the
// appointment is still scheduled.
func (r *AppointmentsRepo) Cancel(ctx context.Context, id, byUserID string, status appointment.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $3
		WHERE id = $1
		  AND (patient_id = $2 OR doctor_id = $2)
		  AND status = $4
	`, id, byUserID, status, appointment.StatusScheduled)

	if err != nil {
		return err
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	// zero rows: missing, not ours, or no longer cancellable
	var exists bool

	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE id = $1 AND (patient_id = $2 OR doctor_id = $2)
		)
	`, id, byUserID).Scan(&exists)

	if err != nil {
		return err
	}

	if exists {
		return appointment.ErrNotScheduled
	}

	return appointment.ErrNotFound
}
