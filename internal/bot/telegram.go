package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger implements Messenger over the Telegram Bot API.
type TelegramMessenger struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

// NewTelegramMessenger authenticates against the Telegram Bot API.
func NewTelegramMessenger(token string) (*TelegramMessenger, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramMessenger{
		api:  api,
		http: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// API exposes the underlying client for the update loop.
func (m *TelegramMessenger) API() *tgbotapi.BotAPI { return m.api }

// Send posts a text reply to a chat.
func (m *TelegramMessenger) Send(_ context.Context, chatID int64, text string) error {
	_, err := m.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// VoiceFile resolves a voice-message file id and opens its content for
// download. The caller owns the returned reader.
func (m *TelegramMessenger) VoiceFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	file, err := m.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolve voice file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(m.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download voice file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download voice file: %s", resp.Status)
	}
	return resp.Body, nil
}
