package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient = "Patient"
	RoleDoctor  = "Doctor"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateRequest carries the fields persisted for a new identity record.
// The password is already hashed by the time it reaches the store.
type CreateRequest struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

func NewFromCreateRequest(req CreateRequest) User {
	return User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    time.Now().UTC(),
	}
}
