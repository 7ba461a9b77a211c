package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied at startup. Every statement is idempotent so repeated
// boots against the same database are safe.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_uniq ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS roles (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	CONSTRAINT roles_name_uniq UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS patient_profiles (
	id                      TEXT PRIMARY KEY,
	user_id                 TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date_of_birth           TIMESTAMPTZ NOT NULL,
	address                 TEXT NOT NULL DEFAULT '',
	medical_history_summary TEXT NOT NULL DEFAULT '',
	allergies               TEXT NOT NULL DEFAULT '',
	current_medications     TEXT NOT NULL DEFAULT '',
	version                 INT NOT NULL DEFAULT 1,
	CONSTRAINT patient_profiles_user_uniq UNIQUE (user_id)
);

CREATE TABLE IF NOT EXISTS doctor_profiles (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	specialization      TEXT NOT NULL,
	license_number      TEXT NOT NULL,
	years_of_experience INT NOT NULL DEFAULT 0,
	clinic_address      TEXT NOT NULL DEFAULT '',
	professional_bio    TEXT NOT NULL DEFAULT '',
	is_verified         BOOLEAN NOT NULL DEFAULT FALSE,
	version             INT NOT NULL DEFAULT 1,
	CONSTRAINT doctor_profiles_user_uniq UNIQUE (user_id)
);

CREATE INDEX IF NOT EXISTS doctor_profiles_verified_name_idx
	ON doctor_profiles (is_verified);

CREATE TABLE IF NOT EXISTS appointments (
	id               TEXT PRIMARY KEY,
	patient_id       TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
	doctor_id        TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
	starts_at        TIMESTAMPTZ NOT NULL,
	duration_minutes INT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'scheduled',
	reason           TEXT NOT NULL DEFAULT '',
	doctor_notes     TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS appointments_doctor_idx
	ON appointments (doctor_id, status, starts_at);
CREATE INDEX IF NOT EXISTS appointments_patient_idx
	ON appointments (patient_id, status, starts_at);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	sender_id   TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
	receiver_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
	content     TEXT NOT NULL,
	sent_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_read     BOOLEAN NOT NULL DEFAULT FALSE,
	read_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS messages_receiver_unread_idx
	ON messages (receiver_id, is_read, sent_at);
CREATE INDEX IF NOT EXISTS messages_conversation_idx
	ON messages (sender_id, receiver_id, sent_at);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)

	return err
}
