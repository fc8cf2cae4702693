// Package telegram is the Bot API client used both to deliver notifications
// and to receive subscriber commands.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const apiBaseURL = "https://api.telegram.org"

// BlockedError indicates the chat can no longer be reached through the bot:
// the user blocked it, deleted their account, or the chat is gone. Callers
// treat this as a permanent delivery failure and deactivate the subscriber.
type BlockedError struct {
	ChatID      int64
	Description string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("chat %d unreachable: %s", e.ChatID, e.Description)
}

// IsBlocked reports whether err marks a permanently unreachable chat.
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// Update is one incoming Telegram update carrying a command message.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the relevant subset of a Telegram message.
type Message struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	} `json:"from"`
	Text string `json:"text"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Client talks to the Telegram Bot API over plain HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given bot token.
func New(token string) *Client {
	return NewWithBaseURL(apiBaseURL, token)
}

// NewWithBaseURL creates a client against an alternate API host (tests).
func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			// Long-poll calls pass their own timeout; leave headroom here.
			Timeout: 65 * time.Second,
		},
	}
}

// SendMessage delivers a Markdown-formatted message to a chat. The returned
// error is a *BlockedError when the chat is permanently unreachable; any
// other failure is transient.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	var result apiResponse
	if err := c.call(ctx, "sendMessage", payload, &result); err != nil {
		return err
	}
	if !result.OK {
		if isBlockedResponse(result) {
			return &BlockedError{ChatID: chatID, Description: result.Description}
		}
		return fmt.Errorf("telegram sendMessage failed: %s (code %d)", result.Description, result.ErrorCode)
	}
	return nil
}

// isBlockedResponse maps the Bot API's forbidden responses to the permanent
// failure kind. This is the single place where upstream descriptions are
// inspected; everything downstream works with the typed error.
func isBlockedResponse(r apiResponse) bool {
	if r.ErrorCode == http.StatusForbidden {
		return true
	}
	desc := strings.ToLower(r.Description)
	return strings.Contains(desc, "bot was blocked") ||
		strings.Contains(desc, "user is deactivated") ||
		strings.Contains(desc, "chat not found")
}

// GetUpdates long-polls for incoming updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}

	var result apiResponse
	if err := c.call(ctx, "getUpdates", payload, &result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram getUpdates failed: %s (code %d)", result.Description, result.ErrorCode)
	}

	var updates []Update
	if err := json.Unmarshal(result.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload any, result *apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	// The Bot API reports errors in the JSON body alongside the HTTP status;
	// decode the body even on non-200 so the error kind can be classified.
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("telegram %s returned status %d", method, resp.StatusCode)
	}
	return nil
}
