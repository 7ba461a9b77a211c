package utils

import "github.com/google/uuid"

// IsUUID reports whether s is a valid UUID in canonical form.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
