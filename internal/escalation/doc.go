// Package escalation routes conversations from the assistant to human operators.
//
// # Flow
//
//  1. After a configurable number of answered questions, the user is offered
//     a "contact support" button (one-shot per session).
//  2. The user's next message is wrapped in a RelayEnvelope and posted to the
//     operator channel with a reply button tagged to the user.
//  3. An operator presses the reply button, creating a claim: their next
//     plain message in the operator channel is delivered verbatim to the
//     user, then the claim is consumed.
//
// The claim expires after a fixed TTL, so an operator who never replies
// requires no cleanup. At-most-once relay is preferred over at-least-once:
// the claim is deleted on read, even if downstream delivery fails.
package escalation
