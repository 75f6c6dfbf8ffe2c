package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"car-hire/internal/config"
	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/adapters/driven/bm"
	"car-hire/internal/rental-service/adapters/driven/db"
	"car-hire/internal/rental-service/adapters/driven/mpesa"
	"car-hire/internal/rental-service/adapters/driver/myhttp/handle"
	"car-hire/internal/rental-service/core/ports"
	"car-hire/internal/rental-service/core/services"
)

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	mb     ports.IEventsBroker
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	s := &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}

	return s
}

// Run initializes routes and starts listening. It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	// Initialize database connection pool
	db, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	mylog.Info("Successful database connection")

	// Initialize RabbitMQ connection
	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	// Configure routes and handlers
	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.RentalServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.RentalServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	// callback reconciliation spawned by drained requests finishes before
	// the broker and database go away
	s.wg.Wait()

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("Failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure wires repositories, services and handlers onto the mux.
func (s *Server) Configure() {
	// Repositories
	bookingRepo := db.NewBookingRepo(s.db)
	paymentRepo := db.NewPaymentRepo(s.db)
	catalogRepo := db.NewCatalogRepo(s.db)

	// external payment provider
	provider := mpesa.New(s.cfg.Mpesa, s.mylog)

	// services
	bookingService := services.NewBookingService(s.appCtx, s.mylog, bookingRepo, catalogRepo, s.mb)
	paymentService := services.NewPaymentService(s.appCtx, s.mylog, paymentRepo, bookingRepo, catalogRepo, provider, s.mb)
	catalogService := services.NewCatalogService(s.appCtx, s.mylog, catalogRepo)

	// handlers
	bookingHandler := handle.NewBookingHandler(bookingService, s.mylog)
	paymentHandler := handle.NewPaymentHandler(paymentService, s.mylog, &s.wg)
	catalogHandler := handle.NewCatalogHandler(catalogService, s.mylog)

	// Register routes
	s.mux.Handle("POST /bookings/quote", bookingHandler.Quote())
	s.mux.Handle("POST /bookings", bookingHandler.Create())
	s.mux.Handle("POST /bookings/{booking_id}/confirm", bookingHandler.Confirm())
	s.mux.Handle("POST /bookings/{booking_id}/cancel", bookingHandler.Cancel())
	s.mux.Handle("POST /bookings/{booking_id}/close", bookingHandler.Close())
	s.mux.Handle("GET /bookings/by-code/{code}", bookingHandler.LookupByCode())
	s.mux.Handle("POST /bookings/{booking_id}/check-out", bookingHandler.CheckOut())
	s.mux.Handle("POST /bookings/{booking_id}/check-in", bookingHandler.CheckIn())

	s.mux.Handle("POST /payments/deposit/initiate", paymentHandler.InitiateDeposit())
	s.mux.Handle("POST /payments/provider/callback", paymentHandler.ProviderCallback())

	s.mux.Handle("GET /rate-plans", catalogHandler.ListRatePlans())
	s.mux.Handle("POST /rate-plans", catalogHandler.CreateRatePlan())
	s.mux.Handle("POST /rate-plans/{rate_plan_id}/toggle", catalogHandler.ToggleRatePlan())

	s.mux.Handle("GET /vehicles", catalogHandler.ListVehicles())
	s.mux.Handle("POST /vehicles", catalogHandler.CreateVehicle())
	s.mux.Handle("GET /vehicles/{vehicle_id}/availability", bookingHandler.CheckAvailability())

	s.mux.HandleFunc("GET /health", s.healthHandler)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.IsAlive(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
