package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrNotConfigured is returned by every send when the bot token or chat id is
// missing. Callers treat it like any other failed send.
var ErrNotConfigured = errors.New("telegram credentials not configured")

// Client sends messages to a single chat through the Telegram Bot API.
type Client struct {
	token       string
	chatID      string
	baseURL     string
	textClient  *http.Client
	photoClient *http.Client
	logger      *slog.Logger
}

// NewClient creates a Bot API client. Text and photo sends have separate
// timeouts since uploads take longer.
func NewClient(token, chatID string, textTimeout, photoTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:       token,
		chatID:      chatID,
		baseURL:     DefaultBaseURL,
		textClient:  &http.Client{Timeout: textTimeout},
		photoClient: &http.Client{Timeout: photoTimeout},
		logger:      logger,
	}
}

// WithBaseURL points the client at a different Bot API server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// SendText posts a plain text message.
func (c *Client) SendText(ctx context.Context, text string) error {
	if !c.configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(c.textClient, req, "sendMessage")
}

// SendPhoto uploads a PNG image with a caption.
func (c *Client) SendPhoto(ctx context.Context, photo []byte, caption string) error {
	if !c.configured() {
		return ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("chat_id", c.chatID); err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	part, err := mw.CreateFormFile("photo", "map.png")
	if err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(c.photoClient, req, "sendPhoto")
}

func (c *Client) configured() bool {
	return c.token != "" && c.chatID != ""
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *Client) do(hc *http.Client, req *http.Request, method string) error {
	resp, err := hc.Do(req)
	if err != nil {
		// The request URL embeds the bot token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var result apiResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, result.Description)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", method, decodeErr)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	c.logger.Debug("telegram message sent", "method", method)
	return nil
}

// Bot API request/response types.

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}
