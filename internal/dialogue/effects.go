// ABOUTME: Outbound effect interface and collaborator contracts for the controller.
// ABOUTME: The Telegram frontend implements Transport; Gemini implements Answerer.

package dialogue

import (
	"context"

	"github.com/1e0cf/globustelecom-bot/internal/escalation"
)

// Affordance identifiers attached to outbound messages. The transport decides
// how each renders (inline keyboards on Telegram).
const (
	// AffordanceLanguageChoice renders the language-selection keyboard.
	AffordanceLanguageChoice = "choose_language"

	// AffordanceContactSupport renders the contact-support button.
	AffordanceContactSupport = "contact_support"
)

// Transport delivers outbound effects to the chat surface.
type Transport interface {
	// SendText delivers plain text to the user.
	SendText(ctx context.Context, userID int64, text string) error

	// SendTextWithAffordance delivers text with an interactive element
	// identified by affordanceID.
	SendTextWithAffordance(ctx context.Context, userID int64, text, affordanceID string) error

	// SendToOperatorChannel posts a relay envelope to the operator channel
	// with a reply affordance tagged to the envelope's target user.
	SendToOperatorChannel(ctx context.Context, env *escalation.RelayEnvelope) error

	// ClearAffordance removes the interactive element from a sent message.
	ClearAffordance(ctx context.Context, ref MessageRef) error
}

// Answerer generates an answer for a question in the given language.
// An empty result means generation failed after retries.
type Answerer interface {
	Answer(ctx context.Context, question, languageCode string) string
}

// LanguageStore persists user language preferences across restarts.
type LanguageStore interface {
	UpsertUser(ctx context.Context, id int64, username string) error
	SetLanguage(ctx context.Context, id int64, languageCode string) error
	GetLanguage(ctx context.Context, id int64) (string, error)
}
