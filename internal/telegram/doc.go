// Package telegram is the Bot API frontend.
//
// Bot long-polls for updates and translates them into dialogue events:
// /start, language-keyboard callbacks, plain private messages, the
// contact-support button, reply-button claims, and operator-chat messages.
// Sender implements the outbound effects, rendering affordances as inline
// keyboards and posting relay envelopes to the configured operator chat.
//
// The core never sees Telegram types; everything crosses the boundary as
// dialogue events and effects.
package telegram
