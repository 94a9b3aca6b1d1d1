package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot drives the Telegram long-polling update loop and dispatches each
// inbound message to the Handler. Messages are handled to completion, one
// at a time; there is no shared mutable state across messages beyond the
// persisted stores.
type Bot struct {
	messenger *TelegramMessenger
	handler   *Handler

	// UpdateTimeout is the long-poll timeout in seconds.
	UpdateTimeout int
}

// New constructs a Bot around an authenticated messenger and a handler.
func New(m *TelegramMessenger, h *Handler) *Bot {
	return &Bot{
		messenger:     m,
		handler:       h,
		UpdateTimeout: 30,
	}
}

// Run blocks, consuming updates until ctx is cancelled. A failure while
// handling a single message never stops the loop.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.UpdateTimeout
	updates := b.messenger.API().GetUpdatesChan(u)

	b.handler.Log.Info().Str("bot", b.messenger.API().Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.messenger.API().StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch routes one update to the matching handler path.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	in := Inbound{
		ChatID: msg.Chat.ID,
		UserID: msg.From.ID,
	}

	switch {
	case msg.Voice != nil:
		in.VoiceFileID = msg.Voice.FileID
		b.handler.HandleVoice(ctx, in)
	case msg.Text != "":
		in.Text = msg.Text
		b.handler.HandleText(ctx, in)
	}
}
