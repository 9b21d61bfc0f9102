package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers a message to a linked chat. The OTP flow treats any
// failure as DeliveryFailed and keeps the stored code for a resend.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// BotClient talks to the Telegram Bot API over HTTPS
type BotClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewBotClient builds a client for the given bot token.
// The HTTP timeout bounds the external call so a slow Telegram API
// cannot hold a password-reset request open indefinitely.
func NewBotClient(token string, timeout time.Duration) *BotClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BotClient{
		baseURL: "https://api.telegram.org",
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *BotClient) Send(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	var body sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("telegram response malformed: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("telegram rejected message: %s", body.Description)
	}
	return nil
}

// WithBaseURL overrides the API host, used by tests
func (c *BotClient) WithBaseURL(url string) *BotClient {
	c.baseURL = url
	return c
}
