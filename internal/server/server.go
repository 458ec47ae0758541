// Package server exposes the booking, pricing and coupon operations
// over a JSON HTTP API consumed by the website.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"seknuto-api/internal/availability"
	"seknuto-api/internal/catalog"
	"seknuto-api/internal/coupon"
	"seknuto-api/internal/email"
	"seknuto-api/internal/pricing"
	"seknuto-api/internal/storage"
)

// Store is the persistence surface the handlers depend on, implemented
// by storage.PostgresStorage and faked in tests.
type Store interface {
	CreateBooking(ctx context.Context, b storage.Booking) error
	GetBooking(ctx context.Context, id string) (*storage.Booking, error)
	ListBookings(ctx context.Context) ([]storage.Booking, error)
	ExportBookingsExcel(ctx context.Context) ([]byte, error)
	SubscribeEmail(ctx context.Context, email string) (code string, already bool, err error)
	CreateContactMessage(ctx context.Context, m storage.ContactMessage) error
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger

	catalog      *catalog.Catalog
	calculator   *pricing.Calculator
	validator    *coupon.Validator
	availability *availability.Provider
	store        Store
	notifier     email.Notifier

	shutdownTimeout time.Duration
}

type Options struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	Catalog      *catalog.Catalog
	Calculator   *pricing.Calculator
	Validator    *coupon.Validator
	Availability *availability.Provider
	Store        Store
	Notifier     email.Notifier
	Logger       *zap.Logger
}

func New(opts Options) *Server {
	s := &Server{
		logger:          opts.Logger,
		catalog:         opts.Catalog,
		calculator:      opts.Calculator,
		validator:       opts.Validator,
		availability:    opts.Availability,
		store:           opts.Store,
		notifier:        opts.Notifier,
		shutdownTimeout: opts.ShutdownTimeout,
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(opts.Logger))
	r.Use(CORS(opts.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/health", s.handleHealth)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/pricing/calculate", s.handleCalculatePrice)
		r.Get("/availability", s.handleAvailability)
		r.Post("/subscribe", s.handleSubscribe)
		r.Post("/coupons/validate", s.handleValidateCoupon)
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.handleCreateBooking)
			r.Get("/", s.handleListBookings)
			r.Get("/export", s.handleExportBookings)
			r.Get("/{id}", s.handleGetBooking)
		})
		r.Post("/contact", s.handleContact)
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
