package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/japaniel/magistr/pkg/bot"
	"github.com/japaniel/magistr/pkg/render"
)

// MaxMessageLen is the Bot API limit on message text, in runes.
const MaxMessageLen = 4096

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Poller feeds updates from getUpdates into a handler. Chats run in
// parallel; the updates of one chat are handled one at a time, in update id
// order.
type Poller struct {
	client  *Client
	handler bot.Handler
	logger  *zap.Logger

	// PollTimeout is the long-poll timeout sent to Telegram.
	PollTimeout time.Duration

	wg sync.WaitGroup
	mu sync.Mutex
	// queues holds the pending updates of every chat with a running drain.
	queues map[int64][]tgbotapi.Update
}

// NewPoller creates a Poller.
func NewPoller(client *Client, handler bot.Handler, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:      client,
		handler:     handler,
		logger:      logger,
		PollTimeout: 30 * time.Second,
		queues:      make(map[int64][]tgbotapi.Update),
	}
}

// Run polls until ctx is cancelled, then waits for queued updates.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()
	p.logger.Info("telegram polling started", zap.String("bot", p.client.Username()))

	offset := 0
	backoff := minBackoff
	for {
		updates, err := p.client.GetUpdates(offset, p.PollTimeout)
		if ctx.Err() != nil {
			p.logger.Info("telegram polling stopped")
			return nil
		}
		if err != nil {
			if IsUnauthorized(err) {
				return err
			}
			p.logger.Warn("getUpdates failed", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		for _, u := range updates {
			offset = u.UpdateID + 1
			p.enqueue(ctx, u)
		}
	}
}

// enqueue appends u to its chat's queue and starts a drain when the chat
// has none running.
func (p *Poller) enqueue(ctx context.Context, u tgbotapi.Update) {
	chatID, ok := chatOf(u)
	if !ok {
		return
	}
	p.mu.Lock()
	pending, running := p.queues[chatID]
	p.queues[chatID] = append(pending, u)
	p.mu.Unlock()
	if running {
		return
	}
	p.wg.Add(1)
	go p.drain(ctx, chatID)
}

func (p *Poller) drain(ctx context.Context, chatID int64) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		pending := p.queues[chatID]
		if len(pending) == 0 {
			delete(p.queues, chatID)
			p.mu.Unlock()
			return
		}
		u := pending[0]
		p.queues[chatID] = pending[1:]
		p.mu.Unlock()

		p.dispatch(ctx, u)
	}
}

// chatOf picks the queue key of an update. Callbacks on messages too old to
// carry a chat are keyed by the user.
func chatOf(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message != nil && cq.Message.Chat != nil {
			return cq.Message.Chat.ID, true
		}
		if cq.From != nil {
			return cq.From.ID, true
		}
	case u.Message != nil && u.Message.Chat != nil && u.Message.Text != "":
		return u.Message.Chat.ID, true
	}
	return 0, false
}

func (p *Poller) dispatch(ctx context.Context, u tgbotapi.Update) {
	var (
		upd       bot.Update
		messageID int
	)
	if cq := u.CallbackQuery; cq != nil {
		if err := p.client.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			p.logger.Debug("answerCallbackQuery failed", zap.Error(err))
		}
		if cq.Message == nil || cq.Message.Chat == nil {
			return
		}
		upd = bot.Update{ChatID: cq.Message.Chat.ID, UserName: displayName(cq.From), Callback: cq.Data}
		messageID = cq.Message.MessageID
	} else {
		upd = bot.Update{ChatID: u.Message.Chat.ID, UserName: displayName(u.Message.From), Text: u.Message.Text}
	}

	log := p.logger.With(zap.Int64("chat_id", upd.ChatID), zap.Int("update_id", u.UpdateID))
	p.handler.Handle(ctx, upd, func(r bot.Reply) {
		text := render.Truncate(r.Text, MaxMessageLen-3)
		markup := Markup(r.Buttons)
		var err error
		if r.Edit && messageID != 0 {
			err = p.client.EditMessageText(ctx, upd.ChatID, messageID, text, markup)
		} else {
			err = p.client.SendMessage(ctx, upd.ChatID, text, markup)
		}
		if err != nil && !isNotModified(err) {
			log.Warn("reply failed", zap.Bool("edit", r.Edit), zap.Error(err))
		}
	})
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserName
}
