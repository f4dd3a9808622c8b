package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"fmt"
	"strings"
)

const bullet = "•"

type Help struct {
	Definition
	registry   port.CommandRegistry
	textSender port.TextSender
}

func NewHelp(registry port.CommandRegistry, sender port.TextSender, command string) *Help {
	return &Help{
		Definition: Definition{
			Name:      command,
			Length:    1,
			AllowOver: true,
			Args:      "[command]",
			Desc:      "List commands, or show how to use one of them",
		},
		registry:   registry,
		textSender: sender,
	}
}

func (h *Help) Respond(ctx context.Context, message *domain.Message) error {
	l := requestLogger(message, h.GetCommand())
	l.Info().Msg("handling request")

	if len(message.Payload) == 1 {
		return reply(ctx, h.textSender, message, h.list())
	}

	name := message.Payload[1]
	cmd, err := h.registry.Get(name)
	if err != nil {
		l.Debug().Str("topic", name).Msg("help requested for unknown command")
		return reply(ctx, h.textSender, message, "unknown command")
	}

	var nick string
	if message.Session != nil {
		nick = message.Session.Nickname
	}

	return reply(ctx, h.textSender, message, detail(nick, cmd))
}

func (h *Help) list() string {
	sb := &strings.Builder{}

	for _, name := range h.registry.ListCommands() {
		_, _ = fmt.Fprintf(sb, "\n%s %s", bullet, name)
	}

	return sb.String()
}

func detail(nick string, cmd port.Command) string {
	text := fmt.Sprintf("\nUsing: `%s %s %s`\n\n%s", nick, cmd.GetCommand(), cmd.Usage(), cmd.Description())

	return strings.TrimRight(text, " \t\r\n")
}
