// ABOUTME: Escalation router connecting requesters to human operators.
// ABOUTME: Decides when to offer support, relays questions, and routes operator replies via claims.

package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/1e0cf/globustelecom-bot/internal/claims"
)

// Router errors
var (
	// ErrNotConfigured means no operator channel is configured, so support
	// questions have nowhere to go.
	ErrNotConfigured = errors.New("support relay is not configured")
)

// SessionTracker is what the router needs from the conversation state tracker.
type SessionTracker interface {
	RequestSupport(userID int64)
	SupportQuestionSubmitted(userID int64) error
}

// RelayEnvelope carries a support question to the operator channel. The
// reply affordance is tagged with TargetUserID so an operator can claim it.
type RelayEnvelope struct {
	ID           string
	TargetUserID int64
	DisplayName  string
	Question     string
	CreatedAt    time.Time
}

// Router owns the escalation flow: the one-shot offer policy, the relay of
// support questions to operators, and the claim-based routing of operator
// replies back to requesters.
type Router struct {
	tracker    SessionTracker
	claims     claims.Store
	claimTTL   time.Duration
	threshold  int
	configured bool
	logger     *slog.Logger
}

// NewRouter creates a Router. configured reports whether an operator channel
// exists; when false, RequestEscalation returns ErrNotConfigured instead of
// moving the session. Pass nil logger for default.
func NewRouter(tracker SessionTracker, store claims.Store, claimTTL time.Duration, threshold int, configured bool, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		tracker:    tracker,
		claims:     store,
		claimTTL:   claimTTL,
		threshold:  threshold,
		configured: configured,
		logger:     logger.With("component", "escalation"),
	}
}

// ShouldOffer reports whether the escalation offer is shown for this turn.
// The offer is a one-shot nudge: shown exactly when the post-increment turn
// count equals the threshold, never re-shown within the same session.
func (r *Router) ShouldOffer(turn int) bool {
	return r.threshold > 0 && turn == r.threshold
}

// RequestEscalation moves the user to the awaiting-support-question stage.
// Returns ErrNotConfigured when no operator channel exists; the session is
// left untouched in that case so the user stays in Q&A.
func (r *Router) RequestEscalation(userID int64) error {
	if !r.configured {
		return ErrNotConfigured
	}

	r.tracker.RequestSupport(userID)
	r.logger.Info("escalation requested", "user_id", userID)
	return nil
}

// SubmitSupportQuestion builds the relay envelope for the operator channel
// and returns the session to the Q&A stage. The state transition happens
// regardless of whether the caller manages to deliver the envelope; delivery
// failures are the transport's concern, not retried here.
func (r *Router) SubmitSupportQuestion(userID int64, username, question string) (*RelayEnvelope, error) {
	if err := r.tracker.SupportQuestionSubmitted(userID); err != nil {
		return nil, err
	}

	display := username
	if display == "" {
		display = "user " + strconv.FormatInt(userID, 10)
	}

	env := &RelayEnvelope{
		ID:           uuid.New().String(),
		TargetUserID: userID,
		DisplayName:  display,
		Question:     question,
		CreatedAt:    time.Now(),
	}

	r.logger.Info("support question submitted",
		"user_id", userID,
		"envelope_id", env.ID)
	return env, nil
}

// ClaimReply records that the operator's next message should be relayed to
// the target user. Any prior claim by the same operator is overwritten.
func (r *Router) ClaimReply(ctx context.Context, operatorID, targetUserID int64) error {
	now := time.Now()
	claim := &claims.Claim{
		OperatorID:   operatorID,
		TargetUserID: targetUserID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.claimTTL),
	}

	if err := r.claims.Put(ctx, claim, r.claimTTL); err != nil {
		return fmt.Errorf("storing reply claim: %w", err)
	}

	r.logger.Info("reply claimed",
		"operator_id", operatorID,
		"target_user_id", targetUserID,
		"expires_at", claim.ExpiresAt)
	return nil
}

// RouteOperatorMessage resolves where an operator's plain message should go.
// Returns (target, true) when a fresh claim existed; the claim is consumed
// either way, so a given claim routes at most one message. Absent or expired
// claims yield (0, false): the message is ordinary operator chatter.
func (r *Router) RouteOperatorMessage(ctx context.Context, operatorID int64) (int64, bool, error) {
	claim, err := r.claims.Take(ctx, operatorID)
	if err != nil {
		return 0, false, fmt.Errorf("taking reply claim: %w", err)
	}
	if claim == nil {
		return 0, false, nil
	}

	// The store is trusted to expire entries, but deletion is not assumed
	// synchronous: validate freshness here as well.
	if claim.Expired(time.Now()) {
		r.logger.Debug("dropping expired reply claim",
			"operator_id", operatorID,
			"expired_at", claim.ExpiresAt)
		return 0, false, nil
	}

	r.logger.Info("operator message routed",
		"operator_id", operatorID,
		"target_user_id", claim.TargetUserID)
	return claim.TargetUserID, true, nil
}
