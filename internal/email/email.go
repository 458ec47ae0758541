// Package email sends booking and contact notifications. Delivery is
// best-effort: a failed email never fails the request that triggered
// it.
package email

import (
	"context"

	"seknuto-api/internal/storage"
)

// Notifier is what the HTTP handlers depend on. The SMTP
// implementation is swapped for a no-op when mail is not configured.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b storage.Booking) error
	SendBookingAlert(ctx context.Context, b storage.Booking) error
	SendContactAlert(ctx context.Context, m storage.ContactMessage) error
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) SendBookingConfirmation(context.Context, storage.Booking) error { return nil }
func (Noop) SendBookingAlert(context.Context, storage.Booking) error        { return nil }
func (Noop) SendContactAlert(context.Context, storage.ContactMessage) error { return nil }
