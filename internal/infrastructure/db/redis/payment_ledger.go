package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const paymentLedgerTTL = 400 * 24 * time.Hour

// PaymentLedger remembers payment references that already paid for a plan so
// one receipt cannot be replayed.
// Key format: payment:<method>:<reference>
type PaymentLedger struct {
	client *redis.Client
}

func NewPaymentLedger(client *redis.Client) *PaymentLedger {
	return &PaymentLedger{client: client}
}

// Claim records reference for ownerID. It reports false when the reference
// was already claimed.
func (l *PaymentLedger) Claim(ctx context.Context, method, reference, ownerID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(method, reference), ownerID, paymentLedgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("payment ledger claim: %w", err)
	}
	return ok, nil
}

// releaseScript deletes a claim only while it still belongs to the owner
// that made it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release drops ownerID's claim on reference so it can be presented again.
func (l *PaymentLedger) Release(ctx context.Context, method, reference, ownerID string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(method, reference)}, ownerID).Err(); err != nil {
		return fmt.Errorf("payment ledger release: %w", err)
	}
	return nil
}

func (l *PaymentLedger) key(method, reference string) string {
	return fmt.Sprintf("payment:%s:%s", method, reference)
}
