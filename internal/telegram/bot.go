package telegram

import (
	"context"
	"fmt"

	"ai-catalog-admin-be/internal/dto"
	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the Telegram channel of the assistant. Each chat maps to one
// conversation session, so the dialogue survives across messages the same
// way it does for the widget.
type Bot struct {
	api       *tgbotapi.BotAPI
	assistant service.IAssistantService
	logger    logger.ILogger
}

func NewBot(token string, assistant service.IAssistantService, log logger.ILogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("telegram_bot", "authorized", map[string]interface{}{
		"username": api.Self.UserName,
	})

	return &Bot{
		api:       api,
		assistant: assistant,
		logger:    log,
	}, nil
}

// Start consumes updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				go b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	sessionId := fmt.Sprintf("tg-%d", msg.Chat.ID)

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "new":
			if err := b.assistant.ClearSession(ctx, sessionId); err != nil {
				b.logger.Warn("telegram_bot", "failed to clear session", map[string]interface{}{
					"session_id": sessionId,
					"error":      err.Error(),
				})
			}
			b.reply(msg.Chat.ID, "Hi! Let's create a product. What is the product name?", nil)
			return
		default:
			text = msg.CommandArguments()
		}
	}

	req := &dto.SendMessageRequest{
		SessionId: sessionId,
		Text:      text,
		Images:    b.imageRefs(msg),
	}
	if text == "" && len(req.Images) == 0 {
		return
	}

	res, err := b.assistant.SendMessage(ctx, req)
	if err != nil {
		b.logger.Error("telegram_bot", "failed to process message", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		b.reply(msg.Chat.ID, "Something went wrong on my side. Please try again.", nil)
		return
	}

	b.reply(msg.Chat.ID, res.Reply, res.SuggestedActions)
}

// imageRefs resolves attached photos to direct file URLs. Telegram sends
// each photo in several resolutions; the last entry is the largest.
func (b *Bot) imageRefs(msg *tgbotapi.Message) []dto.ImageRefDTO {
	if len(msg.Photo) == 0 {
		return nil
	}

	photo := msg.Photo[len(msg.Photo)-1]
	url, err := b.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		b.logger.Warn("telegram_bot", "failed to resolve photo url", map[string]interface{}{
			"file_id": photo.FileID,
			"error":   err.Error(),
		})
		return nil
	}

	return []dto.ImageRefDTO{{URL: url}}
}

func (b *Bot) reply(chatID int64, text string, actions []string) {
	out := tgbotapi.NewMessage(chatID, text)
	if len(actions) > 0 {
		buttons := make([][]tgbotapi.KeyboardButton, 0, len(actions))
		for _, action := range actions {
			buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(action)))
		}
		keyboard := tgbotapi.NewReplyKeyboard(buttons...)
		keyboard.OneTimeKeyboard = true
		out.ReplyMarkup = keyboard
	} else {
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("telegram_bot", "failed to send reply", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}
