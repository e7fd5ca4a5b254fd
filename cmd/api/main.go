package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/parthg/splitwise/internal/config"
	"github.com/parthg/splitwise/internal/database"
	"github.com/parthg/splitwise/internal/expense"
	"github.com/parthg/splitwise/internal/group"
	"github.com/parthg/splitwise/internal/notification"
	"github.com/parthg/splitwise/internal/settlement"
	"github.com/parthg/splitwise/internal/user"
	"github.com/parthg/splitwise/pkg/auth"
	"github.com/parthg/splitwise/pkg/logger"
	"github.com/parthg/splitwise/pkg/metrics"
	mw "github.com/parthg/splitwise/pkg/middleware"
)

// @title        Splitwise API
// @version      1.0
// @description  Shared-expense tracking with split calculation and settlements
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("no .env file found, using environment variables")
	}

	logger.Init()
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.Log.Info("connected to database")

	if err := database.RunMigrations(db); err != nil {
		logger.Log.WithError(err).Fatal("failed to run migrations")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtManager)
	userHandler := user.NewHandler(userService)

	// Repositories the cross-feature wiring needs up front
	groupRepo := group.NewRepository(db)
	expenseRepo := expense.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)

	// Expense feature carries the balance engine; group and settlement use it
	// through their own interfaces.
	expenseService := expense.NewService(expenseRepo, groupRepo, userRepo, settlementRepo, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	settlementService := settlement.NewService(settlementRepo, groupRepo, userRepo, expenseService, notificationService)
	settlementHandler := settlement.NewHandler(settlementService)

	groupService := group.NewService(groupRepo, userRepo, expenseService, expenseRepo, settlementRepo)
	groupHandler := group.NewHandler(groupService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(jwtManager))
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	logger.Log.WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Log.WithError(err).Fatal("server failed")
	}
}
