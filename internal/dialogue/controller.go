// ABOUTME: Dialogue controller orchestrating tracker, answerer, and escalation router.
// ABOUTME: Consumes inbound events, updates conversation state, and emits transport effects.

package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1e0cf/globustelecom-bot/internal/escalation"
	"github.com/1e0cf/globustelecom-bot/internal/session"
	"github.com/1e0cf/globustelecom-bot/internal/users"
)

// Controller wires inbound events to the conversation tracker, the answer
// backend, and the escalation router. All error categories are handled here;
// nothing propagates as a crash.
type Controller struct {
	tracker        *session.Tracker
	escalation     *escalation.Router
	answerer       Answerer
	languages      LanguageStore
	transport      Transport
	operatorChatID int64
	chunkSize      int
	logger         *slog.Logger
}

// NewController creates a Controller. operatorChatID of zero means no
// operator channel is configured. Pass nil logger for default.
func NewController(
	tracker *session.Tracker,
	escRouter *escalation.Router,
	answerer Answerer,
	languages LanguageStore,
	transport Transport,
	operatorChatID int64,
	chunkSize int,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		tracker:        tracker,
		escalation:     escRouter,
		answerer:       answerer,
		languages:      languages,
		transport:      transport,
		operatorChatID: operatorChatID,
		chunkSize:      chunkSize,
		logger:         logger.With("component", "dialogue"),
	}
}

// HandleStart begins a fresh session and prompts for a language.
func (c *Controller) HandleStart(ctx context.Context, ev StartSession) {
	if err := c.languages.UpsertUser(ctx, ev.UserID, ev.Username); err != nil {
		c.logger.Error("failed to record user", "user_id", ev.UserID, "error", err)
	}

	c.tracker.Start(ev.UserID)

	prompt := localize(msgChooseLanguage, ev.ClientLocale)
	if err := c.transport.SendTextWithAffordance(ctx, ev.UserID, prompt, AffordanceLanguageChoice); err != nil {
		c.logger.Error("failed to send language prompt", "user_id", ev.UserID, "error", err)
	}
}

// HandleLanguageSelected persists the chosen language and moves to Q&A.
// Out-of-stage selections (duplicate clicks) are dropped without a reply.
func (c *Controller) HandleLanguageSelected(ctx context.Context, ev LanguageSelected) {
	if err := c.tracker.ChooseLanguage(ev.UserID, ev.LanguageCode); err != nil {
		c.logger.Info("dropping language selection",
			"user_id", ev.UserID,
			"event", "language_selected",
			"error", err)
		return
	}

	if err := c.languages.SetLanguage(ctx, ev.UserID, ev.LanguageCode); err != nil {
		// The tracker still has the language for this session
		c.logger.Error("failed to persist language", "user_id", ev.UserID, "error", err)
	}

	if err := c.transport.ClearAffordance(ctx, ev.Ref); err != nil {
		c.logger.Debug("failed to clear language keyboard", "user_id", ev.UserID, "error", err)
	}

	if err := c.transport.SendText(ctx, ev.UserID, localize(msgAskQuestion, ev.LanguageCode)); err != nil {
		c.logger.Error("failed to send ask-question prompt", "user_id", ev.UserID, "error", err)
	}
}

// HandleUserMessage dispatches a plain user message by the session's stage:
// a support question while one is awaited, otherwise a Q&A question.
// Messages outside both stages (mid-onboarding chatter) are dropped.
func (c *Controller) HandleUserMessage(ctx context.Context, userID int64, username, text, clientLocale string) {
	s, ok := c.tracker.Current(userID)
	switch {
	case ok && s.Stage == session.StageAwaitingSupportQuestion:
		c.HandleSupportQuestion(ctx, SupportQuestionSubmitted{
			UserID:       userID,
			Username:     username,
			Text:         text,
			ClientLocale: clientLocale,
		})
	case ok && s.Stage == session.StageAskingQuestion:
		c.HandleQuestion(ctx, QuestionAsked{
			UserID:       userID,
			Text:         text,
			ClientLocale: clientLocale,
		})
	default:
		c.logger.Info("dropping message outside Q&A stages",
			"user_id", userID,
			"event", "user_message")
	}
}

// HandleQuestion answers a Q&A question. The turn counter advances only when
// a non-empty answer was produced; a failed generation does not count toward
// the escalation-offer policy.
func (c *Controller) HandleQuestion(ctx context.Context, ev QuestionAsked) {
	lang := c.effectiveLanguage(ctx, ev.UserID, ev.ClientLocale)

	text := c.answerer.Answer(ctx, ev.Text, lang)
	if text == "" {
		if err := c.transport.SendText(ctx, ev.UserID, localize(msgAnswerFailed, lang)); err != nil {
			c.logger.Error("failed to send apology", "user_id", ev.UserID, "error", err)
		}
		return
	}

	turn, err := c.tracker.QuestionAnswered(ev.UserID)
	if err != nil {
		c.logger.Info("dropping answered question",
			"user_id", ev.UserID,
			"event", "question_asked",
			"error", err)
		return
	}

	chunks := chunkText(text, c.chunkSize)
	for i, chunk := range chunks {
		last := i == len(chunks)-1
		if last && c.escalation.ShouldOffer(turn) {
			chunk = chunk + "\n\n" + localize(msgEscalationOffer, lang)
			if err := c.transport.SendTextWithAffordance(ctx, ev.UserID, chunk, AffordanceContactSupport); err != nil {
				c.logger.Error("failed to send answer with offer", "user_id", ev.UserID, "error", err)
			}
			continue
		}
		if err := c.transport.SendText(ctx, ev.UserID, chunk); err != nil {
			c.logger.Error("failed to send answer chunk",
				"user_id", ev.UserID,
				"chunk", i,
				"error", err)
		}
	}
}

// HandleEscalationRequested moves the user into the support flow, or degrades
// to a notice when no operator channel is configured.
func (c *Controller) HandleEscalationRequested(ctx context.Context, ev EscalationRequested) {
	lang := c.effectiveLanguage(ctx, ev.UserID, ev.ClientLocale)

	err := c.escalation.RequestEscalation(ev.UserID)
	if errors.Is(err, escalation.ErrNotConfigured) {
		c.logger.Warn("escalation requested but no operator channel configured", "user_id", ev.UserID)
		if err := c.transport.SendText(ctx, ev.UserID, localize(msgSupportNotConfigured, lang)); err != nil {
			c.logger.Error("failed to send not-configured notice", "user_id", ev.UserID, "error", err)
		}
		return
	}

	if err := c.transport.SendText(ctx, ev.UserID, localize(msgSupportPrompt, lang)); err != nil {
		c.logger.Error("failed to send support prompt", "user_id", ev.UserID, "error", err)
	}
}

// HandleSupportQuestion relays the user's support question to the operator
// channel. The session returns to Q&A regardless of delivery outcome.
func (c *Controller) HandleSupportQuestion(ctx context.Context, ev SupportQuestionSubmitted) {
	env, err := c.escalation.SubmitSupportQuestion(ev.UserID, ev.Username, ev.Text)
	if err != nil {
		c.logger.Info("dropping support question",
			"user_id", ev.UserID,
			"event", "support_question_submitted",
			"error", err)
		return
	}

	if err := c.transport.SendToOperatorChannel(ctx, env); err != nil {
		// Fire-and-forget: the session already returned to Q&A
		c.logger.Error("failed to relay support question",
			"user_id", ev.UserID,
			"envelope_id", env.ID,
			"error", err)
	}

	lang := c.effectiveLanguage(ctx, ev.UserID, ev.ClientLocale)
	if err := c.transport.SendText(ctx, ev.UserID, localize(msgSupportForwarded, lang)); err != nil {
		c.logger.Error("failed to send forwarded notice", "user_id", ev.UserID, "error", err)
	}
}

// HandleOperatorClaim records the operator's intent to reply to a user.
// Claims from outside the operator channel are acknowledged but ignored.
func (c *Controller) HandleOperatorClaim(ctx context.Context, ev OperatorClaimedReply) {
	if !c.fromOperatorChannel(ev.OriginChatID) {
		c.logger.Warn("ignoring claim from outside operator channel",
			"operator_id", ev.OperatorID,
			"origin_chat_id", ev.OriginChatID)
		return
	}

	if err := c.escalation.ClaimReply(ctx, ev.OperatorID, ev.TargetUserID); err != nil {
		c.logger.Error("failed to store reply claim",
			"operator_id", ev.OperatorID,
			"target_user_id", ev.TargetUserID,
			"error", err)
		return
	}

	if err := c.transport.ClearAffordance(ctx, ev.Ref); err != nil {
		c.logger.Debug("failed to clear reply button", "operator_id", ev.OperatorID, "error", err)
	}
}

// HandleOperatorMessage relays a claimed operator message to its target user.
// Only the text travels; the operator's identity is never revealed. Messages
// without an active claim are ordinary operator chatter and are ignored.
func (c *Controller) HandleOperatorMessage(ctx context.Context, ev OperatorChannelMessage) {
	if !c.fromOperatorChannel(ev.OriginChatID) {
		return
	}

	target, routed, err := c.escalation.RouteOperatorMessage(ctx, ev.OperatorID)
	if err != nil {
		c.logger.Error("failed to route operator message",
			"operator_id", ev.OperatorID,
			"error", err)
		return
	}
	if !routed {
		return
	}

	if err := c.transport.SendText(ctx, target, ev.Text); err != nil {
		c.logger.Error("failed to deliver operator reply",
			"target_user_id", target,
			"error", err)
	}
}

// effectiveLanguage resolves the answer language: the session's choice, then
// the persisted preference, then the client-reported locale, then English.
func (c *Controller) effectiveLanguage(ctx context.Context, userID int64, clientLocale string) string {
	if lang := c.tracker.Language(userID, ""); lang != "" {
		return lang
	}

	lang, err := c.languages.GetLanguage(ctx, userID)
	if err == nil && lang != "" {
		return lang
	}
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		c.logger.Error("failed to load language preference", "user_id", userID, "error", err)
	}

	if clientLocale != "" {
		return clientLocale
	}
	return "en"
}

// fromOperatorChannel reports whether a chat is the configured operator channel.
func (c *Controller) fromOperatorChannel(chatID int64) bool {
	return c.operatorChatID != 0 && chatID == c.operatorChatID
}

// chunkText splits text into rune-safe pieces of at most size characters.
// Splits land mid-stream without regard to word boundaries.
func chunkText(text string, size int) []string {
	if size < 1 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
