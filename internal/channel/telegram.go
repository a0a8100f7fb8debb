package channel

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"wishbook/internal/logger"
	"wishbook/internal/render"
)

// TelegramAdapter sends through the Telegram Bot API. Without a bot token it
// runs in mock mode: the payload is logged and the send reports success.
type TelegramAdapter struct {
	Token string
}

func (a *TelegramAdapter) Send(ctx context.Context, msg render.RenderedMessage, destination string) (Result, error) {
	if a.Token == "" {
		logger.Info("[MOCK] telegram send", "chat_id", destination, "text", msg.Text)
		return Sent, nil
	}

	b, err := bot.New(a.Token)
	if err != nil {
		return Failed, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: destination,
		Text:   msg.Text,
	})
	if err != nil {
		return Failed, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	logger.Info("telegram sent", "chat_id", destination)
	return Sent, nil
}
