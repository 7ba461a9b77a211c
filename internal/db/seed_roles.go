package db

import (
	"context"

	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureRoles provisions the well-known roles at startup. Registration also
// creates a missing role lazily; this seed just keeps fresh databases from
// depending on the first signup to do it.
func EnsureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range []string{user.RolePatient, user.RoleDoctor} {
		_, err := pool.Exec(ctx,
			`INSERT INTO roles (id, name)
			 VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), name,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
