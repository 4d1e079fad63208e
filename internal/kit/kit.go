// Package kit holds the transport-neutral contract between the bot core and
// the chat adapter. Everything the domain code needs from the chat platform
// goes through these types.
package kit

import "context"

type UpdateKind string

const (
	UpdateMessage UpdateKind = "message"
)

type Update struct {
	Kind    UpdateKind
	Message *Message
}

type Message struct {
	ID           int
	ChatID       int64
	ThreadID     int // telegram forum topic thread id (0 if none)
	FromID       int64
	FromUsername string
	Text         string
}

type ChatTarget struct {
	ChatID   int64
	ThreadID int
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Notification is one outbound broadcast. Fallback, when set, is a plain-text
// degraded rendering used for the single best-effort retry after a failed send.
type Notification struct {
	Target   ChatTarget
	Text     string
	Options  *SendOptions
	Fallback string
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, opt *SendOptions) error
}

// BotCommand is a single command menu entry.
type BotCommand struct {
	Command     string
	Description string
}

// CommandMenuUpdater is an optional adapter interface for platforms with a
// registrable command menu (Telegram setMyCommands).
type CommandMenuUpdater interface {
	UpdateMenuCommands(ctx context.Context, cmds []BotCommand) error
}
