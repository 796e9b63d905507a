package ports

import (
	"context"

	"github.com/possuite/backoffice/internal/core/domain"
)

// PaymentInput carries what the client submitted to pay for a plan.
type PaymentInput struct {
	Method    domain.PaymentMethod
	Reference string
}

// PaymentVerifier confirms that a payment for plan actually happened. It is
// only consulted for paid plans.
type PaymentVerifier interface {
	// Verify wraps domain.ErrPaymentRequired when the payment itself is
	// rejected. Any other error means verification could not be performed.
	Verify(ctx context.Context, ownerID string, plan *domain.Plan, payment PaymentInput) error
	// Release hands back a verified payment whose plan was never granted.
	Release(ctx context.Context, ownerID string, payment PaymentInput) error
}

// Email is one outgoing message.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers email synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// MailQueue accepts email for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg Email)
}
