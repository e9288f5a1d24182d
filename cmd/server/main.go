package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/corebank/ledger/internal/database"
	"github.com/corebank/ledger/internal/ledger"
	"github.com/corebank/ledger/internal/logger"
	mW "github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/internal/services"
	"github.com/corebank/ledger/internal/storage"
)

func main() {
	// Initialize config: .env file with environment overrides.
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("server.port", "HTTP_PORT")
	viper.BindEnv("server.log_level", "LOG_LEVEL")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")

	log := logger.New(parseLevel(viper.GetString("server.log_level")))

	if err := viper.ReadInConfig(); err != nil {
		log.Info().Msg("config file not found, using environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := storage.NewPostgresStore(db)
	engine := ledger.NewEngine(store, log)

	accountService := services.NewAccountService(store, redisClient, log)
	transactionService := services.NewTransactionService(engine, redisClient, log)
	loanService := services.NewLoanService(engine, redisClient, log)

	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/accounts", accountService.CreateAccount)
			r.Get("/accounts/balance", accountService.BalanceEnquiry)

			r.Post("/transactions/deposit", transactionService.Deposit)
			r.Post("/transactions/withdraw", transactionService.Withdraw)
			r.Get("/transactions/report", transactionService.Report)

			r.Post("/loans", loanService.Request)
			r.Get("/loans", loanService.List)
			r.Put("/loans/{loanID}/approve", loanService.Approve)
			r.Post("/loans/{loanID}/pay", loanService.Pay)
		})
	})

	port := viper.GetString("server.port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	log.Info().Msg("server stopped")
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
