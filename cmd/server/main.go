package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"villamarea/internal/api"
	"villamarea/internal/auth"
	"villamarea/internal/config"
	"villamarea/internal/repository"
	"villamarea/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	database, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(cfg.Database.MaxConnections)
	database.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	database.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	if err := database.Ping(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	reservationRepo := repository.NewReservationRepository(database)
	eventRepo := repository.NewEventRepository(database)
	staffRepo := repository.NewStaffRepository(database)
	guestRepo := repository.NewGuestRepository(database)
	roomRepo := repository.NewRoomRepository(database)
	jobRepo := repository.NewJobRepository(database, eventRepo)

	payments := service.NewPaymentService(cfg.Stripe)
	notifier := service.NewNotifyService()
	reservationSvc := service.NewReservationService(reservationRepo, eventRepo, payments, notifier, cfg.Booking)
	adminAuthSvc := service.NewAdminAuthService(staffRepo, tokens)
	guestSvc := service.NewGuestService(guestRepo)
	roomSvc := service.NewRoomService(roomRepo)
	jobSvc := service.NewJobService(jobRepo, cfg.Booking.PendingPaymentTTL)

	guestReservationHandler := api.NewGuestReservationHandler(reservationSvc)
	adminReservationHandler := api.NewAdminReservationHandler(reservationSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)
	guestUserHandler := api.NewGuestUserHandler(guestSvc)
	roomHandler := api.NewRoomHandler(roomSvc)
	jobHandler := api.NewJobHandler(jobSvc)
	stripeHandler := api.NewStripeWebhookHandler(cfg.Stripe.WebhookSecret, reservationSvc)

	r := mux.NewRouter()

	// Public endpoints
	public := r.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/availability", guestReservationHandler.CheckAvailability).Methods("POST")
	public.HandleFunc("/reservations", guestReservationHandler.CreateReservation).Methods("POST")
	public.HandleFunc("/reservations/{code}", guestReservationHandler.GetReservation).Methods("GET")
	public.HandleFunc("/reservations/{code}/rebooking", guestReservationHandler.RequestRebooking).Methods("POST")
	public.HandleFunc("/reservations/by-session", stripeHandler.GetReservationBySession).Methods("GET")
	public.HandleFunc("/auth/login", adminAuthHandler.Login).Methods("POST")

	// Stripe calls this directly; signature verification replaces auth.
	r.HandleFunc("/api/v1/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")

	// Job endpoints for an external scheduler, gated by the shared key.
	jobs := r.PathPrefix("/api/v1/jobs").Subrouter()
	jobs.Use(auth.APIKeyMiddleware(cfg.Jobs.APIKey))
	jobs.HandleFunc("/expire-reservations", jobHandler.ExpireReservations).Methods("POST")
	jobs.HandleFunc("/auto-complete-reservations", jobHandler.AutoCompleteReservations).Methods("POST")

	// Admin endpoints (JWT protected)
	admin := r.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(auth.Middleware(tokens))
	admin.HandleFunc("/me", adminAuthHandler.Me).Methods("GET")
	admin.HandleFunc("/reservations", adminReservationHandler.List).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminReservationHandler.Get).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminReservationHandler.Update).Methods("PUT")
	admin.HandleFunc("/reservations/{id}/verify-payment", adminReservationHandler.VerifyPayment).Methods("POST")
	admin.HandleFunc("/reservations/{id}/rebooking/approve", adminReservationHandler.ApproveRebooking).Methods("POST")
	admin.HandleFunc("/reservations/{id}/rebooking/reject", adminReservationHandler.RejectRebooking).Methods("POST")
	admin.HandleFunc("/reservations/{id}/check-in", adminReservationHandler.CheckIn).Methods("POST")
	admin.HandleFunc("/reservations/{id}/check-out", adminReservationHandler.CheckOut).Methods("POST")
	admin.HandleFunc("/reservations/{id}/no-show", adminReservationHandler.MarkNoShow).Methods("POST")
	admin.HandleFunc("/reservations/{id}/cancel", adminReservationHandler.Cancel).Methods("POST")
	admin.HandleFunc("/reservations/{id}/events", adminReservationHandler.ListEvents).Methods("GET")
	admin.HandleFunc("/guests", guestUserHandler.List).Methods("GET")
	admin.HandleFunc("/guests", guestUserHandler.Create).Methods("POST")
	admin.HandleFunc("/guests/{id}", guestUserHandler.Get).Methods("GET")
	admin.HandleFunc("/guests/{id}", guestUserHandler.Update).Methods("PUT")
	admin.HandleFunc("/guests/{id}", guestUserHandler.Deactivate).Methods("DELETE")
	admin.HandleFunc("/rooms", roomHandler.List).Methods("GET")

	// Admin-only management
	manage := admin.NewRoute().Subrouter()
	manage.Use(auth.RequireRole(auth.RoleAdmin))
	manage.HandleFunc("/staff", adminAuthHandler.ListStaff).Methods("GET")
	manage.HandleFunc("/staff", adminAuthHandler.CreateStaff).Methods("POST")
	manage.HandleFunc("/staff/{id}", adminAuthHandler.UpdateStaff).Methods("PUT")
	manage.HandleFunc("/staff/{id}", adminAuthHandler.DeactivateStaff).Methods("DELETE")
	manage.HandleFunc("/rooms", roomHandler.Create).Methods("POST")
	manage.HandleFunc("/rooms/{id}", roomHandler.Update).Methods("PUT")

	cron := service.NewCronService(jobSvc)
	if err := cron.Start(cfg.Jobs.ExpireSchedule, cfg.Jobs.AutoCompleteSchedule); err != nil {
		logrus.Fatalf("Failed to start cron service: %v", err)
	}

	handler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.CORS.AllowedHeaders),
	)(r)
	handler = handlers.LoggingHandler(os.Stdout, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	cron.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}
	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Server.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
