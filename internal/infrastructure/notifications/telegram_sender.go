package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	"github.com/boicualexandru/scraping-calendis/pkg/retry"
)

var _ providers.Notifier = (*TelegramSender)(nil)

// TelegramSender sends messages through the Telegram Bot API
type TelegramSender struct {
	token      string
	chatID     string
	httpClient *http.Client
	baseURL    string
}

// NewTelegramSender creates a new Telegram sender
func NewTelegramSender(cfg config.NotifierConfig) (*TelegramSender, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	return &TelegramSender{
		token:  cfg.TelegramToken,
		chatID: cfg.TelegramChatID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(cfg.TelegramBaseURL, "/"),
	}, nil
}

// TelegramMessage is the sendMessage request body
type TelegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramResponse represents the Bot API envelope
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Channel identifies the sender in the notification log
func (s *TelegramSender) Channel() entities.NotificationChannel {
	return entities.ChannelTelegram
}

// Send posts text to the configured chat and returns the Telegram message id
func (s *TelegramSender) Send(ctx context.Context, text string) (string, error) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)

	jsonData, err := json.Marshal(TelegramMessage{ChatID: s.chatID, Text: text})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to marshal message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// the error carries the URL, and with it the bot token
		return "", fmt.Errorf("failed to send request: %s", strings.ReplaceAll(err.Error(), s.token, "***"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError("Telegram", resp.StatusCode, body)
	}

	var telegramResp TelegramResponse
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !telegramResp.OK {
		return "", retry.Permanent(fmt.Errorf("Telegram API rejected message: %s", telegramResp.Description))
	}

	return strconv.FormatInt(telegramResp.Result.MessageID, 10), nil
}
