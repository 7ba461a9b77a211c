package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/medihub/internal/auth"
	"github.com/geocoder89/medihub/internal/cache"
	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/db"
	httpx "github.com/geocoder89/medihub/internal/http"
	"github.com/geocoder89/medihub/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// refuse to start with a weak signing secret
	jwtMgr, err := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	if err != nil {
		log.Error("jwt setup failed", "err", err)
		os.Exit(1)
	}

	// tracing is opt-in per environment
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "medihub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer setup failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	{
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}

		if err := db.EnsureRoles(ctx, pool); err != nil {
			log.Error("role seeding failed", "err", err)
			os.Exit(1)
		}
	}

	// doctor listing cache: redis when configured, in-process otherwise
	var doctors cache.DoctorList

	if cfg.RedisAddr != "" {
		rdl := cache.NewRedisDoctorList(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.DoctorListCacheTTL)

		ctx, cancel := config.WithTimeout(2 * time.Second)
		pingErr := rdl.Ping(ctx)
		cancel()

		if pingErr != nil {
			log.Warn("redis unreachable, falling back to in-process cache", "err", pingErr)
			_ = rdl.Close()
			doctors = cache.NewMemoryDoctorList(cfg.DoctorListCacheTTL)
		} else {
			defer func() { _ = rdl.Close() }()
			doctors = rdl
		}
	} else {
		doctors = cache.NewMemoryDoctorList(cfg.DoctorListCacheTTL)
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:     cfg,
		Log:     log,
		Pool:    pool,
		JWT:     jwtMgr,
		Doctors: doctors,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
