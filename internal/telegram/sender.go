// ABOUTME: Telegram implementation of the dialogue transport effects.
// ABOUTME: Renders affordances as inline keyboards and posts relay envelopes to the operator chat.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/1e0cf/globustelecom-bot/internal/dialogue"
	"github.com/1e0cf/globustelecom-bot/internal/escalation"
)

// Callback-data formats for inline buttons.
const (
	callbackLangPrefix     = "set_lang:"
	callbackContactSupport = "contact_support"
	callbackReplyPrefix    = "reply_to:"
)

// languageKeyboard is the onboarding language picker, one row of three.
func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ES 🇪🇸", callbackLangPrefix+"es"),
			tgbotapi.NewInlineKeyboardButtonData("FR 🇫🇷", callbackLangPrefix+"fr"),
			tgbotapi.NewInlineKeyboardButtonData("DE 🇩🇪", callbackLangPrefix+"de"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("PT 🇵🇹", callbackLangPrefix+"pt"),
			tgbotapi.NewInlineKeyboardButtonData("RU 🇷🇺", callbackLangPrefix+"ru"),
			tgbotapi.NewInlineKeyboardButtonData("AR 🇸🇦", callbackLangPrefix+"ar"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("KO 🇰🇷", callbackLangPrefix+"ko"),
			tgbotapi.NewInlineKeyboardButtonData("ZH 🇨🇳", callbackLangPrefix+"zh"),
			tgbotapi.NewInlineKeyboardButtonData("JA 🇯🇵", callbackLangPrefix+"ja"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("EN 🇬🇧", callbackLangPrefix+"en"),
		),
	)
}

// Sender implements dialogue.Transport on the Telegram Bot API.
type Sender struct {
	api            *tgbotapi.BotAPI
	operatorChatID int64
	logger         *slog.Logger
}

// NewSender creates a Sender. Pass nil logger for default.
func NewSender(api *tgbotapi.BotAPI, operatorChatID int64, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		api:            api,
		operatorChatID: operatorChatID,
		logger:         logger.With("component", "telegram"),
	}
}

// SendText delivers plain text to the user's private chat.
func (s *Sender) SendText(_ context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending message to %d: %w", userID, err)
	}
	return nil
}

// SendTextWithAffordance delivers text with the inline keyboard matching the
// affordance identifier.
func (s *Sender) SendTextWithAffordance(_ context.Context, userID int64, text, affordanceID string) error {
	msg := tgbotapi.NewMessage(userID, text)

	switch affordanceID {
	case dialogue.AffordanceLanguageChoice:
		msg.ReplyMarkup = languageKeyboard()
	case dialogue.AffordanceContactSupport:
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💬 Contact support", callbackContactSupport),
			),
		)
	default:
		return fmt.Errorf("unknown affordance %q", affordanceID)
	}

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending message to %d: %w", userID, err)
	}
	return nil
}

// SendToOperatorChannel posts the envelope to the operator chat with a reply
// button tagged to the requester.
func (s *Sender) SendToOperatorChannel(_ context.Context, env *escalation.RelayEnvelope) error {
	if s.operatorChatID == 0 {
		return errors.New("operator chat is not configured")
	}

	text := fmt.Sprintf("📩 Support question from %s (id %d):\n\n%s",
		env.DisplayName, env.TargetUserID, env.Question)

	msg := tgbotapi.NewMessage(s.operatorChatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reply",
				callbackReplyPrefix+strconv.FormatInt(env.TargetUserID, 10)),
		),
	)

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("relaying envelope %s: %w", env.ID, err)
	}
	return nil
}

// ClearAffordance removes the inline keyboard from a sent message.
func (s *Sender) ClearAffordance(_ context.Context, ref dialogue.MessageRef) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(ref.ChatID, ref.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := s.api.Request(edit); err != nil {
		return fmt.Errorf("clearing keyboard on %d/%d: %w", ref.ChatID, ref.MessageID, err)
	}
	return nil
}

// sendTyping shows the typing indicator while an answer is being generated.
func (s *Sender) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := s.api.Request(action); err != nil {
		s.logger.Debug("failed to send typing action", "chat_id", chatID, "error", err)
	}
}
