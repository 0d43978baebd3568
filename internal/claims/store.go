// ABOUTME: Claim type and store interface for operator reply routing.
// ABOUTME: A claim is a short-lived mapping from an operator to the user they will answer next.

package claims

import (
	"context"
	"time"
)

// Claim records that an operator is expected to answer on behalf of a user.
// ExpiresAt travels with the value so readers can validate freshness even
// when the backing store has not yet purged the key.
type Claim struct {
	OperatorID   int64     `json:"operator_id"`
	TargetUserID int64     `json:"target_user_id"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the claim's deadline has passed at the given time.
func (c *Claim) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Store holds at most one active claim per operator. Puts for the same
// operator overwrite (last-writer-wins, no merge); Take is read-then-delete
// so each claim routes at most one message.
type Store interface {
	// Put writes a claim keyed by its operator, replacing any prior claim
	// for that operator. The entry expires after ttl.
	Put(ctx context.Context, claim *Claim, ttl time.Duration) error

	// Take retrieves and deletes the claim for the operator. Returns nil
	// when no claim exists. The claim is deleted even if it has already
	// expired, so callers must still check Expired before acting on it.
	Take(ctx context.Context, operatorID int64) (*Claim, error)

	// Close releases any resources held by the store.
	Close() error
}
