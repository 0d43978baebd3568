// Package session tracks each user's place in the support dialogue.
//
// # State machine
//
// Every user moves through three stages:
//
//	choosing_language --(language selected)--> asking_question
//	asking_question   --(support requested)--> awaiting_support_question
//	awaiting_support_question --(support question submitted)--> asking_question
//	asking_question   --(new /start)--> choosing_language   [counter reset]
//
// All other (stage, event) pairs are rejected with ErrInvalidTransition.
// The tracker never silently corrects an invalid transition; the caller
// decides whether to log, drop, or surface the event.
//
// # Turn counter
//
// MessagesSinceStart counts successfully answered questions since the last
// /start and drives the one-shot escalation-offer policy. Start always
// resets it to zero.
//
// # Concurrency
//
// The tracker is safe for concurrent events across different users. Events
// for one user are expected to arrive in order (Telegram preserves per-sender
// ordering); concurrent double-submission for a single user is not serialized
// here and last-write-wins on the counter.
package session
