package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/profile"
	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/repo/postgres"
	"github.com/geocoder89/medihub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type Registrar interface {
	Register(ctx context.Context, u user.User, roleName string, seed postgres.ProfileSeedFunc) (user.User, []string, error)
}

type ProfileCreator interface {
	CreatePatientTx(ctx context.Context, tx pgx.Tx, seed profile.PatientSeed) error
	CreateDoctorTx(ctx context.Context, tx pgx.Tx, seed profile.DoctorSeed) error
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type RoleReader interface {
	ForUser(ctx context.Context, userID string) ([]string, error)
}

type TokenIssuer interface {
	Generate(userID, email, firstName, lastName string, roles []string) (string, time.Time, error)
}

type AuthHandler struct {
	registrar Registrar
	profiles  ProfileCreator
	users     UserReader
	roles     RoleReader
	jwt       TokenIssuer
	log       *slog.Logger
}

func NewAuthHandler(registrar Registrar, profiles ProfileCreator, users UserReader, roles RoleReader, jwt TokenIssuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		registrar: registrar,
		profiles:  profiles,
		users:     users,
		roles:     roles,
		jwt:       jwt,
		log:       log,
	}
}

type RegisterPatientRequest struct {
	FirstName   string    `json:"firstName" binding:"required,max=100"`
	LastName    string    `json:"lastName" binding:"required,max=100"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required,min=8"`
	DateOfBirth time.Time `json:"dateOfBirth" binding:"required"`
	Address     string    `json:"address" binding:"max=500"`
}

type RegisterDoctorRequest struct {
	FirstName         string `json:"firstName" binding:"required,max=100"`
	LastName          string `json:"lastName" binding:"required,max=100"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Specialization    string `json:"specialization" binding:"required,max=150"`
	LicenseNumber     string `json:"licenseNumber" binding:"required,max=100"`
	YearsOfExperience int    `json:"yearsOfExperience" binding:"min=0,max=80"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by both registration endpoints and login.
type AuthResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Roles     []string  `json:"roles"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

func (h *AuthHandler) RegisterPatient(ctx *gin.Context) {
	var req RegisterPatientRequest

	if !BindJSON(ctx, &req) {
		return
	}

	seed := func(c context.Context, tx pgx.Tx, userID string) error {
		return h.profiles.CreatePatientTx(c, tx, profile.PatientSeed{
			UserID:      userID,
			DateOfBirth: req.DateOfBirth,
			Address:     req.Address,
		})
	}

	h.register(ctx, req.Email, req.Password, req.FirstName, req.LastName, user.RolePatient, seed)
}

func (h *AuthHandler) RegisterDoctor(ctx *gin.Context) {
	var req RegisterDoctorRequest

	if !BindJSON(ctx, &req) {
		return
	}

	seed := func(c context.Context, tx pgx.Tx, userID string) error {
		return h.profiles.CreateDoctorTx(c, tx, profile.DoctorSeed{
			UserID:            userID,
			Specialization:    req.Specialization,
			LicenseNumber:     req.LicenseNumber,
			YearsOfExperience: req.YearsOfExperience,
		})
	}

	h.register(ctx, req.Email, req.Password, req.FirstName, req.LastName, user.RoleDoctor, seed)
}

func (h *AuthHandler) register(ctx *gin.Context, email, password, firstName, lastName, roleName string, seed postgres.ProfileSeedFunc) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.NewFromCreateRequest(user.CreateRequest{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})

	// The token is minted before anything is written. A signing failure
	// at this point costs nothing; minting after the commit would leave
	// a persisted account behind a 500.
	token, expiresAt, err := h.jwt.Generate(u.ID, u.Email, u.FirstName, u.LastName, []string{roleName})

	if err != nil {
		h.log.Error("token issuance failed", "user_id", u.ID, "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	u, roles, err := h.registrar.Register(cctx, u, roleName, seed)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already registered.", nil)
			return
		}

		h.log.Error("registration failed", "email", email, "role", roleName, "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusOK, AuthResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     token,
		ExpiresAt: expiresAt,
		Roles:     roles,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	// unknown email and wrong password must be indistinguishable
	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not sign in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	// roles come from current store state, never from an old token
	roles, err := h.roles.ForUser(cctx, foundUser.ID)

	if err != nil {
		h.log.Error("role lookup failed", "user_id", foundUser.ID, "err", err)
		RespondInternal(ctx, "Could not sign in")
		return
	}

	token, expiresAt, err := h.jwt.Generate(foundUser.ID, foundUser.Email, foundUser.FirstName, foundUser.LastName, roles)

	if err != nil {
		h.log.Error("token issuance failed", "user_id", foundUser.ID, "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, AuthResponse{
		UserID:    foundUser.ID,
		Email:     foundUser.Email,
		Token:     token,
		ExpiresAt: expiresAt,
		Roles:     roles,
		FirstName: foundUser.FirstName,
		LastName:  foundUser.LastName,
	})
}
