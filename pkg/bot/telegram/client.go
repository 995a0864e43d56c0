// Package telegram connects a bot.Handler to the Telegram Bot API by long
// polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/japaniel/magistr/pkg/bot"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrNoToken is returned when the client is built without a bot token.
var ErrNoToken = errors.New("telegram token is not set")

// maxRetryAfter is the longest flood-control pause a send waits out.
const maxRetryAfter = 30 * time.Second

// Config configures a Client.
type Config struct {
	Token   string
	BaseURL string
	// SendRate caps outgoing requests per second across all chats.
	SendRate  float64
	SendBurst int
	// HTTPTimeout bounds every request, long polls included, so it must
	// exceed the poll timeout.
	HTTPTimeout time.Duration
}

// Client wraps tgbotapi.BotAPI with a send rate limit and one retry on
// flood control.
type Client struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zap.Logger
}

// contextDoer binds every Bot API request to ctx and drops the request URL,
// which carries the token, from transport errors.
type contextDoer struct {
	ctx  context.Context
	http *http.Client
}

func (d contextDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.http.Do(req.WithContext(d.ctx))
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return nil, uerr.Err
	}
	return resp, err
}

// NewClient validates the token with getMe and creates a Client. Requests
// stop when ctx is done.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SendRate <= 0 {
		cfg.SendRate = 25
	}
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = 5
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	doer := contextDoer{ctx: ctx, http: &http.Client{Timeout: cfg.HTTPTimeout}}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.BaseURL+"/bot%s/%s", doer)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	logger.Info("telegram bot authorised", zap.String("username", api.Self.UserName))

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst),
		logger:  logger,
	}, nil
}

// Username is the bot's own @name.
func (c *Client) Username() string { return c.api.Self.UserName }

// Markup converts bot buttons into an inline keyboard; nil for none.
func Markup(buttons [][]bot.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, len(buttons))
	for i, row := range buttons {
		rows[i] = make([]tgbotapi.InlineKeyboardButton, len(row))
		for j, b := range row {
			rows[i][j] = tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data)
		}
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

// GetUpdates long-polls for message and callback updates starting at offset.
func (c *Client) GetUpdates(offset int, timeout time.Duration) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(timeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	return c.api.GetUpdates(cfg)
}

// SendMessage posts text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return c.send(ctx, "sendMessage", msg)
}

// EditMessageText replaces the text and keyboard of a sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	return c.send(ctx, "editMessageText", edit)
}

// AnswerCallbackQuery stops the client-side spinner of a button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id string) error {
	return c.send(ctx, "answerCallbackQuery", tgbotapi.NewCallback(id, ""))
}

// send is a rate-limited request that retries once after flood control.
func (c *Client) send(ctx context.Context, method string, req tgbotapi.Chattable) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.api.Request(req)
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		if wait > maxRetryAfter {
			return fmt.Errorf("telegram %s: %w", method, err)
		}
		c.logger.Warn("telegram flood control", zap.String("method", method), zap.Duration("retry_after", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		_, err = c.api.Request(req)
	}
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	return nil
}

// IsUnauthorized reports a rejected bot token.
func IsUnauthorized(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "message is not modified")
}
