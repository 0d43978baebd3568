// ABOUTME: Per-user conversation state tracking with explicit stage transitions.
// ABOUTME: Rejects out-of-order events with ErrInvalidTransition instead of silently correcting.

package session

import (
	"errors"
	"sync"
)

// ErrInvalidTransition is returned when an event arrives for a stage that
// does not permit it. The caller logs and drops the event; no state changes.
var ErrInvalidTransition = errors.New("invalid stage transition")

// Stage is the discrete phase of a user's dialogue.
type Stage string

const (
	StageChoosingLanguage        Stage = "choosing_language"
	StageAskingQuestion          Stage = "asking_question"
	StageAwaitingSupportQuestion Stage = "awaiting_support_question"
)

// Session holds the per-user conversational state.
type Session struct {
	UserID            int64
	Stage             Stage
	LanguageCode      string
	MessagesSinceStart int
}

// Tracker maintains sessions for all users. Safe for concurrent use across
// users; same-user event ordering is relied upon from the transport.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[int64]*Session),
	}
}

// Start begins a fresh session for the user. Always a hard reset: any prior
// session is replaced, never merged, and the turn counter returns to zero.
func (t *Tracker) Start(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[userID] = &Session{
		UserID: userID,
		Stage:  StageChoosingLanguage,
	}
}

// ChooseLanguage records the user's language and moves to the Q&A stage.
// Valid only while choosing_language.
func (t *Tracker) ChooseLanguage(userID int64, languageCode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok || s.Stage != StageChoosingLanguage {
		return ErrInvalidTransition
	}

	s.LanguageCode = languageCode
	s.Stage = StageAskingQuestion
	return nil
}

// QuestionAnswered records one completed Q&A turn and returns the new turn
// count so the caller can evaluate the escalation-offer policy.
// Valid only while asking_question; the stage does not change.
func (t *Tracker) QuestionAnswered(userID int64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok || s.Stage != StageAskingQuestion {
		return 0, ErrInvalidTransition
	}

	s.MessagesSinceStart++
	return s.MessagesSinceStart, nil
}

// RequestSupport moves the user to awaiting_support_question. Escalation
// intent always wins: the transition is permitted from any stage, and a
// session is created if none exists yet.
func (t *Tracker) RequestSupport(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok {
		s = &Session{UserID: userID}
		t.sessions[userID] = s
	}
	s.Stage = StageAwaitingSupportQuestion
}

// SupportQuestionSubmitted returns the user to the Q&A stage after their
// support question has been captured. Valid only while awaiting_support_question.
func (t *Tracker) SupportQuestionSubmitted(userID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok || s.Stage != StageAwaitingSupportQuestion {
		return ErrInvalidTransition
	}

	s.Stage = StageAskingQuestion
	return nil
}

// Language returns the session's stored language, or fallback when the user
// has no session or never chose one.
func (t *Tracker) Language(userID int64, fallback string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.sessions[userID]; ok && s.LanguageCode != "" {
		return s.LanguageCode
	}
	return fallback
}

// Current returns a copy of the user's session, or false when none exists.
func (t *Tracker) Current(userID int64) (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}
