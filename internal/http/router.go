package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/medihub/internal/auth"
	"github.com/geocoder89/medihub/internal/cache"
	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/user"
	"github.com/geocoder89/medihub/internal/http/handlers"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/geocoder89/medihub/internal/observability"
	"github.com/geocoder89/medihub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps collects everything the router wires together. The caller owns
// the lifecycle of each dependency.
type Deps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	JWT     *auth.Manager
	Doctors cache.DoctorList
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("medihub-api"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(d.Pool)
	rolesRepo := postgres.NewRolesRepo(d.Pool)
	registrationRepo := postgres.NewRegistrationRepo(d.Pool, rolesRepo, prom)
	profilesRepo := postgres.NewProfilesRepo(d.Pool, prom)
	appointmentsRepo := postgres.NewAppointmentsRepo(d.Pool)
	messagesRepo := postgres.NewMessagesRepo(d.Pool)

	// handlers
	authHandler := handlers.NewAuthHandler(registrationRepo, profilesRepo, usersRepo, rolesRepo, d.JWT, d.Log)
	patientsHandler := handlers.NewPatientsHandler(profilesRepo)
	doctorsHandler := handlers.NewDoctorsHandler(profilesRepo, d.Doctors)
	appointmentsHandler := handlers.NewAppointmentsHandler(appointmentsRepo)
	messagesHandler := handlers.NewMessagesHandler(messagesRepo)

	authMW := middlewares.NewAuthMiddleware(d.JWT)

	// unauthenticated surface gets the tighter limiter
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RequireJSON())
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/register-patient", authHandler.RegisterPatient)
		authGroup.POST("/register-doctor", authHandler.RegisterDoctor)
		authGroup.POST("/login", authHandler.Login)
	}

	apiLimiter := middlewares.NewRateLimiter(120, time.Minute)

	api := r.Group("/")
	api.Use(authMW.RequireAuth())
	api.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		patients := api.Group("/patients")
		patients.Use(authMW.RequireRole(user.RolePatient))
		{
			patients.GET("/profile", patientsHandler.GetMyProfile)
			patients.PUT("/profile", middlewares.RequireJSON(), patientsHandler.UpdateMyProfile)
		}

		doctorsSelf := api.Group("/doctors")
		doctorsSelf.Use(authMW.RequireRole(user.RoleDoctor))
		{
			doctorsSelf.GET("/profile", doctorsHandler.GetMyProfile)
			doctorsSelf.PUT("/profile", middlewares.RequireJSON(), doctorsHandler.UpdateMyProfile)
		}

		// any signed-in user can browse the public doctor surface
		api.GET("/doctors/available", doctorsHandler.Available)
		api.GET("/doctors/:doctorId", doctorsHandler.GetByID)

		appointments := api.Group("/appointments")
		{
			appointments.POST("", middlewares.RequireJSON(), authMW.RequireRole(user.RolePatient), appointmentsHandler.Schedule)
			appointments.GET("", appointmentsHandler.ListMine)
			appointments.POST("/:id/cancel", appointmentsHandler.Cancel)
		}

		messages := api.Group("/messages")
		{
			messages.POST("", middlewares.RequireJSON(), messagesHandler.Send)
			messages.GET("/with/:userId", messagesHandler.ConversationWith)
			messages.POST("/:id/read", messagesHandler.MarkRead)
		}
	}

	return r
}
