// Package dialogue orchestrates inbound chat events into conversation state
// changes and outbound replies.
//
// # Overview
//
// The Controller sits between the transport frontend and the core services:
//
//   - session.Tracker: per-user dialogue stage and turn counter
//   - answer client: LLM-generated answers (text-or-empty contract)
//   - escalation.Router: human-support offer, relay, and reply routing
//   - users store: persisted language preference
//
// # Event flow
//
//	/start            -> session reset, language keyboard
//	language pick     -> persist language, "send your question" prompt
//	user question     -> answer (chunked ≤ chunk size), offer support on the
//	                     threshold turn only
//	support button    -> "write your question" prompt (or not-configured notice)
//	support question  -> relay envelope to operator channel, back to Q&A
//	operator claim    -> reply claim with TTL
//	operator message  -> verbatim relay to the claimed user, identity suppressed
//
// # Error posture
//
// Invalid transitions (duplicate clicks, out-of-order events) are logged and
// dropped with no reply. Failed answer generation yields a localized apology
// without advancing the turn counter. Relay delivery failures never roll back
// state. Nothing in this package panics or propagates an error upward.
package dialogue
