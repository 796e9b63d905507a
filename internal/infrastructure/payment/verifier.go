package payment

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// Ledger records consumed payment references.
type Ledger interface {
	Claim(ctx context.Context, method, reference, ownerID string) (bool, error)
	Release(ctx context.Context, method, reference, ownerID string) error
}

// referenceFormat is the accepted shape of a gateway receipt reference per
// payment method.
var referenceFormat = map[domain.PaymentMethod]*regexp.Regexp{
	domain.PaymentCard:    regexp.MustCompile(`^(ch|pi)_[A-Za-z0-9]{8,}$`),
	domain.PaymentPayPal:  regexp.MustCompile(`^[A-Z0-9]{12,20}$`),
	domain.PaymentEWallet: regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`),
	domain.PaymentGCash:   regexp.MustCompile(`^[0-9]{10,16}$`),
	domain.PaymentMaya:    regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`),
	domain.PaymentGrabPay: regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`),
}

// ReferenceVerifier accepts a payment when the receipt reference is well
// formed for its method and has not paid for anything before.
type ReferenceVerifier struct {
	ledger Ledger
	log    zerolog.Logger
}

func NewReferenceVerifier(ledger Ledger, log zerolog.Logger) *ReferenceVerifier {
	return &ReferenceVerifier{ledger: ledger, log: log}
}

func (v *ReferenceVerifier) Verify(ctx context.Context, ownerID string, plan *domain.Plan, in ports.PaymentInput) error {
	format, ok := referenceFormat[in.Method]
	if !ok {
		return fmt.Errorf("%w: method %q cannot pay for %s", domain.ErrPaymentRequired, in.Method, plan.Name)
	}
	if !format.MatchString(in.Reference) {
		return fmt.Errorf("%w: malformed %s reference", domain.ErrPaymentRequired, in.Method)
	}

	fresh, err := v.ledger.Claim(ctx, string(in.Method), in.Reference, ownerID)
	if err != nil {
		return fmt.Errorf("claim %s reference: %w", in.Method, err)
	}
	if !fresh {
		return fmt.Errorf("%w: reference already used", domain.ErrPaymentRequired)
	}

	v.log.Info().
		Str("owner_id", ownerID).
		Str("plan", string(plan.Name)).
		Str("method", string(in.Method)).
		Msg("payment reference accepted")
	return nil
}

// Release frees the reference claimed by Verify.
func (v *ReferenceVerifier) Release(ctx context.Context, ownerID string, in ports.PaymentInput) error {
	if err := v.ledger.Release(ctx, string(in.Method), in.Reference, ownerID); err != nil {
		return err
	}
	v.log.Info().Str("owner_id", ownerID).Str("method", string(in.Method)).Msg("payment reference released")
	return nil
}
