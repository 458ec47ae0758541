package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"seknuto-api/internal/catalog"
	"seknuto-api/internal/coupon"
	"seknuto-api/internal/pricing"
	"seknuto-api/internal/storage"
)

var validate = validator.New()

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "SeknuTo.cz API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleCatalog serves the canonical price list. Display pages and
// the calculator both read from here, so shown and charged prices
// cannot diverge.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"services":              s.catalog.Services(),
		"additional_services":   s.catalog.AddOns(),
		"condition_multipliers": catalog.ConditionMultipliers,
	})
}

type calculateRequest struct {
	Service            string   `json:"service"`
	PropertySize       float64  `json:"property_size"`
	Condition          string   `json:"condition"`
	AdditionalServices []string `json:"additional_services"`
}

func (s *Server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	quote, err := s.calculator.Calculate(
		req.Service,
		req.PropertySize,
		catalog.Condition(req.Condition),
		req.AdditionalServices,
	)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrUnknownService):
			respondError(w, http.StatusBadRequest, "unknown service")
		case errors.Is(err, pricing.ErrInvalidArea):
			respondError(w, http.StatusUnprocessableEntity, "property size must be positive")
		default:
			s.logger.Error("Price calculation failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"available_dates": s.availability.Dates(),
	})
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid email address")
		return
	}

	code, already, err := s.store.SubscribeEmail(r.Context(), req.Email)
	if err != nil {
		s.logger.Error("Subscription failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"coupon_code":        code,
		"discount_percent":   coupon.DefaultDiscountPercent,
		"already_subscribed": already,
		"message":            fmt.Sprintf("Děkujeme za přihlášení! Váš slevový kupón: %s", code),
	})
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.validator.Validate(r.Context(), req.Code)
	if err != nil {
		// Store unreachable is "try again", not "bad code".
		s.logger.Warn("Coupon store unavailable", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "coupon validation temporarily unavailable")
		return
	}

	if !result.Valid {
		respondJSON(w, http.StatusNotFound, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type bookingRequest struct {
	Service            string   `json:"service" validate:"required"`
	PropertySize       int      `json:"property_size" validate:"gte=0"`
	Condition          string   `json:"condition"`
	AdditionalServices []string `json:"additional_services"`
	PreferredDate      string   `json:"preferred_date" validate:"required"`
	PreferredTime      string   `json:"preferred_time" validate:"required"`
	AlternativeDate    *string  `json:"alternative_date"`
	CustomerName       string   `json:"customer_name" validate:"required"`
	CustomerPhone      string   `json:"customer_phone" validate:"required"`
	CustomerEmail      string   `json:"customer_email" validate:"required,email"`
	PropertyAddress    string   `json:"property_address" validate:"required"`
	Notes              string   `json:"notes"`
	EstimatedPrice     int      `json:"estimated_price"`
	CouponCode         string   `json:"coupon_code"`
	GDPRConsent        bool     `json:"gdpr_consent"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	price, couponCode := s.finalizePrice(r.Context(), req)

	if req.AdditionalServices == nil {
		req.AdditionalServices = []string{}
	}

	booking := storage.Booking{
		ID:                 uuid.NewString(),
		Service:            req.Service,
		PropertySize:       req.PropertySize,
		Condition:          req.Condition,
		AdditionalServices: req.AdditionalServices,
		PreferredDate:      req.PreferredDate,
		PreferredTime:      req.PreferredTime,
		AlternativeDate:    req.AlternativeDate,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		CustomerEmail:      req.CustomerEmail,
		PropertyAddress:    req.PropertyAddress,
		Notes:              req.Notes,
		EstimatedPrice:     price,
		CouponCode:         couponCode,
		GDPRConsent:        req.GDPRConsent,
		Status:             "pending",
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.store.CreateBooking(r.Context(), booking); err != nil {
		s.logger.Error("Failed to create booking", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info("New booking created",
		zap.String("id", booking.ID),
		zap.String("customer", booking.CustomerName),
		zap.Int("estimated_price", booking.EstimatedPrice),
	)

	s.notifyAsync(booking)

	respondJSON(w, http.StatusOK, booking)
}

// finalizePrice recomputes the estimate server-side from the canonical
// catalog and applies the coupon. The client-sent figure is only
// trusted when the service has no computable quote. Pricing or coupon
// trouble never blocks the booking; it degrades to last-known-good.
func (s *Server) finalizePrice(ctx context.Context, req bookingRequest) (price int, couponCode string) {
	price = req.EstimatedPrice

	quote, err := s.calculator.Calculate(
		req.Service,
		float64(req.PropertySize),
		catalog.Condition(req.Condition),
		req.AdditionalServices,
	)
	switch {
	case err != nil:
		s.logger.Warn("Server-side price recalculation failed, keeping client estimate",
			zap.String("service", req.Service), zap.Error(err))
	case quote.PriceOnRequest:
		// Effort-billed work; final pricing is confirmed manually.
	default:
		price = quote.EstimatedPrice
	}

	if req.CouponCode == "" {
		return price, ""
	}

	result, err := s.validator.Validate(ctx, req.CouponCode)
	if err != nil {
		// Degrade to "no discount applied" but keep the code on the
		// booking so it can be honored manually.
		s.logger.Warn("Coupon check unavailable during booking", zap.Error(err))
		return price, coupon.Normalize(req.CouponCode)
	}
	if !result.Valid {
		return price, ""
	}

	return coupon.FinalPrice(price, result.DiscountPercent), coupon.Normalize(req.CouponCode)
}

// notifyAsync sends confirmation emails off the request path.
func (s *Server) notifyAsync(b storage.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.notifier.SendBookingConfirmation(ctx, b); err != nil {
			s.logger.Error("Failed to send customer confirmation",
				zap.String("booking_id", b.ID), zap.Error(err))
		}
		if err := s.notifier.SendBookingAlert(ctx, b); err != nil {
			s.logger.Error("Failed to send admin alert",
				zap.String("booking_id", b.ID), zap.Error(err))
		}
	}()
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to get booking", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if booking == nil {
		respondError(w, http.StatusNotFound, "Booking not found")
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.store.ListBookings(r.Context())
	if err != nil {
		s.logger.Error("Failed to list bookings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if bookings == nil {
		bookings = []storage.Booking{}
	}

	respondJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportBookingsExcel(r.Context())
	if err != nil {
		s.logger.Error("Failed to export bookings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().UTC().Format("20060102_1504"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	msg := storage.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Status:    "new",
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateContactMessage(r.Context(), msg); err != nil {
		s.logger.Error("Failed to save contact message", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.SendContactAlert(ctx, msg); err != nil {
			s.logger.Error("Failed to send contact alert", zap.Error(err))
		}
	}()

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Děkujeme za zprávu! Brzy se vám ozveme.",
		"id":      msg.ID,
	})
}
