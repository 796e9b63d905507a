package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type memLedger struct {
	claimed map[string]string
	err     error
}

func (l *memLedger) Claim(_ context.Context, method, reference, ownerID string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	key := method + ":" + reference
	if _, ok := l.claimed[key]; ok {
		return false, nil
	}
	l.claimed[key] = ownerID
	return true, nil
}

func (l *memLedger) Release(_ context.Context, method, reference, ownerID string) error {
	if l.err != nil {
		return l.err
	}
	key := method + ":" + reference
	if l.claimed[key] == ownerID {
		delete(l.claimed, key)
	}
	return nil
}

var premium = &domain.Plan{Name: domain.PlanPremium}

func TestReferenceVerifier_AcceptsFreshReference(t *testing.T) {
	v := NewReferenceVerifier(&memLedger{claimed: map[string]string{}}, zerolog.Nop())

	err := v.Verify(context.Background(), "owner_1", premium, ports.PaymentInput{Method: domain.PaymentCard, Reference: "ch_3MmlLrLkdIwHu7ix"})
	if err != nil {
		t.Fatalf("expected payment accepted, got %v", err)
	}
}

func TestReferenceVerifier_RejectsReplay(t *testing.T) {
	v := NewReferenceVerifier(&memLedger{claimed: map[string]string{}}, zerolog.Nop())
	in := ports.PaymentInput{Method: domain.PaymentGCash, Reference: "09171234567"}

	if err := v.Verify(context.Background(), "owner_1", premium, in); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := v.Verify(context.Background(), "owner_2", premium, in); !errors.Is(err, domain.ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired on replay, got %v", err)
	}
}

func TestReferenceVerifier_RejectsMalformed(t *testing.T) {
	v := NewReferenceVerifier(&memLedger{claimed: map[string]string{}}, zerolog.Nop())

	cases := []ports.PaymentInput{
		{Method: domain.PaymentCard, Reference: "nope"},
		{Method: domain.PaymentFree, Reference: "anything"},
		{Method: "barter", Reference: "goat-123456"},
	}
	for _, in := range cases {
		if err := v.Verify(context.Background(), "owner_1", premium, in); !errors.Is(err, domain.ErrPaymentRequired) {
			t.Errorf("%s/%s: expected ErrPaymentRequired, got %v", in.Method, in.Reference, err)
		}
	}
}

func TestReferenceVerifier_LedgerFailure(t *testing.T) {
	boom := errors.New("redis down")
	v := NewReferenceVerifier(&memLedger{err: boom}, zerolog.Nop())

	err := v.Verify(context.Background(), "owner_1", premium, ports.PaymentInput{Method: domain.PaymentPayPal, Reference: "ABCDEF123456"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if errors.Is(err, domain.ErrPaymentRequired) {
		t.Fatalf("ledger outage must not read as a rejected payment: %v", err)
	}
}

func TestReferenceVerifier_ReleaseAllowsReuse(t *testing.T) {
	ledger := &memLedger{claimed: map[string]string{}}
	v := NewReferenceVerifier(ledger, zerolog.Nop())
	in := ports.PaymentInput{Method: domain.PaymentMaya, Reference: "MAYA-0001-XYZ"}

	if err := v.Verify(context.Background(), "owner_1", premium, in); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := v.Release(context.Background(), "owner_2", in); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if len(ledger.claimed) != 1 {
		t.Fatal("another owner must not release the claim")
	}
	if err := v.Release(context.Background(), "owner_1", in); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if err := v.Verify(context.Background(), "owner_1", premium, in); err != nil {
		t.Fatalf("expected released reference accepted again, got %v", err)
	}
}
