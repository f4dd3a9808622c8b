package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"fmt"
	"time"
)

type Ping struct {
	Definition
	textSender port.TextSender
	now        func() time.Time
}

func NewPing(sender port.TextSender, command string) *Ping {
	return &Ping{
		Definition: Definition{
			Name:   command,
			Length: 1,
			Desc:   "Check bot alive",
		},
		textSender: sender,
		now:        time.Now,
	}
}

func (p *Ping) Respond(ctx context.Context, message *domain.Message) error {
	l := requestLogger(message, p.GetCommand())
	l.Info().Msg("handling request")

	text := "pong"
	if !message.Raw.Timestamp.IsZero() {
		delay := p.now().Sub(message.Raw.Timestamp).Milliseconds()
		text += fmt.Sprintf(" (%dms)", delay)
	}

	return reply(ctx, p.textSender, message, text)
}
