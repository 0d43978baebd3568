// ABOUTME: Telegram long-polling frontend for globustelecom-bot.
// ABOUTME: Maps Bot API updates onto dialogue events and dispatches them concurrently.

package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/1e0cf/globustelecom-bot/internal/dialogue"
)

// Bot consumes Telegram updates and feeds the dialogue controller.
type Bot struct {
	api            *tgbotapi.BotAPI
	sender         *Sender
	controller     *dialogue.Controller
	operatorChatID int64
	logger         *slog.Logger
}

// NewBot creates the frontend. Pass nil logger for default.
func NewBot(api *tgbotapi.BotAPI, sender *Sender, controller *dialogue.Controller, operatorChatID int64, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:            api,
		sender:         sender,
		controller:     controller,
		operatorChatID: operatorChatID,
		logger:         logger.With("component", "telegram"),
	}
}

// Run long-polls for updates until the context is cancelled. Each update is
// handled on its own goroutine; per-chat ordering is preserved by Telegram's
// update sequence for a single sender and the handlers' idempotent drops.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("telegram frontend started", "bot", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	// Operator-channel traffic routes through the claim table
	if msg.Chat != nil && msg.Chat.ID == b.operatorChatID && b.operatorChatID != 0 {
		if msg.Text == "" || msg.IsCommand() {
			return
		}
		b.controller.HandleOperatorMessage(ctx, dialogue.OperatorChannelMessage{
			OperatorID:   msg.From.ID,
			Text:         msg.Text,
			OriginChatID: msg.Chat.ID,
		})
		return
	}

	// Everything else is the end-user surface: private chats only
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}

	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.controller.HandleStart(ctx, dialogue.StartSession{
				UserID:       msg.From.ID,
				Username:     msg.From.UserName,
				ClientLocale: msg.From.LanguageCode,
			})
		}
		return
	}

	if msg.Text == "" {
		return
	}

	b.sender.sendTyping(msg.Chat.ID)
	b.controller.HandleUserMessage(ctx, msg.From.ID, msg.From.UserName, msg.Text, msg.From.LanguageCode)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its spinner even when the event
	// is ultimately dropped.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Debug("failed to ack callback", "callback_id", cq.ID, "error", err)
	}

	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}

	ref := dialogue.MessageRef{
		ChatID:    cq.Message.Chat.ID,
		MessageID: cq.Message.MessageID,
	}

	switch {
	case strings.HasPrefix(cq.Data, callbackLangPrefix):
		b.controller.HandleLanguageSelected(ctx, dialogue.LanguageSelected{
			UserID:       cq.From.ID,
			LanguageCode: strings.TrimPrefix(cq.Data, callbackLangPrefix),
			Ref:          ref,
		})

	case cq.Data == callbackContactSupport:
		b.controller.HandleEscalationRequested(ctx, dialogue.EscalationRequested{
			UserID:       cq.From.ID,
			ClientLocale: cq.From.LanguageCode,
		})

	case strings.HasPrefix(cq.Data, callbackReplyPrefix):
		target, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, callbackReplyPrefix), 10, 64)
		if err != nil {
			b.logger.Warn("malformed reply callback", "data", cq.Data)
			return
		}
		b.controller.HandleOperatorClaim(ctx, dialogue.OperatorClaimedReply{
			OperatorID:   cq.From.ID,
			TargetUserID: target,
			OriginChatID: cq.Message.Chat.ID,
			Ref:          ref,
		})

	default:
		b.logger.Debug("ignoring unknown callback", "data", cq.Data)
	}
}
