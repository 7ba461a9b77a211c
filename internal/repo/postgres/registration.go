package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileSeedFunc persists the role-specific profile row inside the
// registration transaction. The caller picks the concrete shape; the seed
// already knows its owner id, so this repo never inspects the profile.
type ProfileSeedFunc func(ctx context.Context, tx pgx.Tx, userID string) error

type RegistrationRepo struct {
	pool  *pgxpool.Pool
	roles *RolesRepo
	prom  *observability.Prom
}

func NewRegistrationRepo(pool *pgxpool.Pool, roles *RolesRepo, prom *observability.Prom) *RegistrationRepo {
	return &RegistrationRepo{
		pool:  pool,
		roles: roles,
		prom:  prom,
	}
}

func (repo *RegistrationRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Register persists user + role membership + profile as one atomic unit.
// The identity record arrives fully formed (id and created-at included)
// so callers can commit to its id before anything is written. Any failure
// after BeginTx rolls everything back; the only write that survives a
// rollback is role provisioning, which is idempotent global state. The
// unique index on lower(email) is the final arbiter when two signups race
// past the existence check.
func (repo *RegistrationRepo) Register(ctx context.Context, newUser user.User, roleName string, seed ProfileSeedFunc) (u user.User, roles []string, err error) {
	// 1) fast duplicate check, still racy without the index below
	var exists bool

	err = repo.observe("signup.email_exists", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users WHERE LOWER(email) = LOWER($1)
		)`, newUser.Email).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = user.ErrEmailTaken
		return
	}

	// 2) role provisioning happens before the transaction on purpose
	roleID, err := repo.roles.Ensure(ctx, roleName)

	if err != nil {
		err = fmt.Errorf("ensure role %q: %w", roleName, err)
		return
	}

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// 3) identity record
	u = newUser

	err = repo.observe("signup.insert_user", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt)
		return e
	})

	if err != nil {
		// losing a concurrent signup race must look like a duplicate,
		// not an internal failure
		if IsUniqueViolation(err) {
			err = user.ErrEmailTaken
		}
		u = user.User{}
		return
	}

	// 4) role membership
	err = repo.observe("signup.assign_role", func() error {
		return repo.roles.AssignTx(ctx, tx, u.ID, roleID)
	})

	if err != nil {
		u = user.User{}
		return
	}

	// 5) role-specific profile
	err = repo.observe("signup.insert_profile", func() error {
		return seed(ctx, tx, u.ID)
	})

	if err != nil {
		u = user.User{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		u = user.User{}
		return
	}

	roles = []string{roleName}
	return
}
