// Package bot holds the chat-bot logic shared by every transport. A front end
// turns its wire messages into Updates and sends back the Replies a Handler
// produces.
package bot

import (
	"context"
	"strings"
	"sync"
)

// DefaultUserName is used when a chat carries no name.
const DefaultUserName = "Игрок"

// Update is one incoming user action: either a typed message or a button press.
type Update struct {
	ChatID   int64
	UserName string
	Text     string
	// Callback is the data of the pressed button, empty for messages.
	Callback string
}

// IsCallback reports whether the update is a button press.
func (u Update) IsCallback() bool { return u.Callback != "" }

// Button is an inline keyboard button.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Reply is one outgoing message.
type Reply struct {
	Text    string     `json:"text"`
	Buttons [][]Button `json:"buttons,omitempty"`
	// Edit asks the front end to replace the message the button belonged to.
	Edit bool `json:"edit,omitempty"`
}

// ReplyFunc delivers a reply to the chat an update came from.
type ReplyFunc func(Reply)

// Handler reacts to updates. Handle may call reply any number of times and is
// safe for concurrent use across chats.
type Handler interface {
	Handle(ctx context.Context, u Update, reply ReplyFunc)
}

// Command splits "/cmd@botname args" into "cmd" and "args". ok is false for
// text that is not a command.
func Command(text string) (cmd, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func row(buttons ...Button) []Button { return buttons }

func column(buttons ...Button) [][]Button {
	out := make([][]Button, len(buttons))
	for i, b := range buttons {
		out[i] = row(b)
	}
	return out
}

// chatLocks serialises the updates of one chat.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (c *chatLocks) lock(chatID int64) func() {
	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[int64]*sync.Mutex)
	}
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
