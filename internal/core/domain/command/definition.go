package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const unknownServerError = "unknown error from server"

// Definition holds the name and arity of a command along with its help texts. Length counts the command name
// itself; with AllowOver set it is a minimum, otherwise the payload must have exactly Length tokens.
type Definition struct {
	Name      string
	Length    int
	AllowOver bool
	Args      string
	Desc      string
}

func (d Definition) GetCommand() string {
	return d.Name
}

func (d Definition) Usage() string {
	return d.Args
}

func (d Definition) Description() string {
	return d.Desc
}

func (d Definition) Accepts(payload []string) bool {
	if d.AllowOver {
		if len(payload) < d.Length {
			return false
		}
	} else if len(payload) != d.Length {
		return false
	}

	if len(payload) == 0 || payload[0] != d.Name {
		return false
	}

	return true
}

func requestLogger(message *domain.Message, command string) zerolog.Logger {
	return log.With().
		Str("requestId", message.RequestID).
		Str("channel", message.Channel).
		Str("user", message.User).
		Str("command", command).
		Logger()
}

func reply(ctx context.Context, sender port.TextSender, message *domain.Message, text string) error {
	err := sender.Reply(ctx, message, text)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}
