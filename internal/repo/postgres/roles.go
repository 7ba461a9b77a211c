package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRoleNotFound = errors.New("role not found")

type RolesRepo struct {
	pool *pgxpool.Pool
}

func NewRolesRepo(pool *pgxpool.Pool) *RolesRepo {
	return &RolesRepo{pool: pool}
}

// Ensure creates the named role if it is missing and returns its id.
// It runs on the pool, not inside the registration transaction: a
// provisioned role is global state and intentionally survives a later
// rollback of the signup that triggered it.
func (r *RolesRepo) Ensure(ctx context.Context, name string) (string, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), name,
	)

	if err != nil {
		return "", err
	}

	var id string

	err = r.pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE name = $1`, name,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRoleNotFound
		}

		return "", err
	}

	return id, nil
}

func (r *RolesRepo) AssignTx(ctx context.Context, tx pgx.Tx, userID, roleID string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 VALUES ($1, $2)`,
		userID, roleID,
	)

	return err
}

// ForUser re-derives the role list from current store state.
func (r *RolesRepo) ForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.name
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY r.name ASC`,
		userID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	roles := make([]string, 0, 2)

	for rows.Next() {
		var name string

		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}
