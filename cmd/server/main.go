package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/netaxept-gateway/internal/config"
	"github.com/anyulbade/netaxept-gateway/internal/database"
	"github.com/anyulbade/netaxept-gateway/internal/handler"
	"github.com/anyulbade/netaxept-gateway/internal/middleware"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
	"github.com/anyulbade/netaxept-gateway/internal/repository"
	"github.com/anyulbade/netaxept-gateway/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	creds, err := cfg.NetaxeptCredentials()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid gateway configuration")
	}
	log.Info().Stringer("credentials", creds).Msg("gateway configured")

	client := netaxept.NewClient(creds,
		netaxept.WithHTTPClient(&http.Client{Timeout: cfg.GatewayTimeout}),
		netaxept.WithLogger(log.Logger),
	)

	var pool *pgxpool.Pool
	var journal service.Journal
	if cfg.JournalEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err = database.NewPool(ctx, cfg.DatabaseURL())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
				log.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
		journal = repository.NewOperationRepository(pool)
	} else {
		log.Info().Msg("operation journal disabled")
	}

	paymentService := service.NewPaymentService(client, journal, cfg.DefaultCurrency, cfg.StatusConcurrency)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool, creds.Environment().String())
	router.GET("/health", healthHandler.Health)

	handler.SetupSwagger(router, cfg.SwaggerSpec)
	handler.NewPaymentHandler(paymentService).Routes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.GatewayTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
