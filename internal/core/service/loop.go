package service

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const maintainerNotice = "something got error. please contact maintainer"

// Loop polls the transport, filters events down to addressed commands and dispatches them one at a time.
type Loop struct {
	transport port.Transport
	registry  port.Dispatcher
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
}

func NewLoop(transport port.Transport, registry port.Dispatcher, interval, timeout time.Duration) *Loop {
	return &Loop{
		transport: transport,
		registry:  registry,
		interval:  interval,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Run connects the transport and polls it until ctx is cancelled. Failing to connect or losing the
// transport is returned as an error.
func (l *Loop) Run(ctx context.Context) error {
	identity, err := l.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect transport: %w", err)
	}

	// telegram stamps messages with whole seconds
	session := &domain.Session{Identity: *identity, StartedAt: l.now().Truncate(time.Second)}

	log.Info().
		Str("userId", session.UserID).
		Strs("callSigns", session.CallSigns).
		Dur("interval", l.interval).
		Msg("bot listening")

	for {
		err = l.Poll(ctx, session)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("stopping message loop")
			return nil
		case <-time.After(l.interval):
		}
	}
}

// Poll reads one batch of events and dispatches the addressed ones in receipt order.
func (l *Loop) Poll(ctx context.Context, session *domain.Session) error {
	events, err := l.transport.ReadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	for _, event := range events {
		message, ok := Parse(session, event)
		if !ok {
			continue
		}

		l.handle(ctx, message)
	}

	return nil
}

func (l *Loop) handle(ctx context.Context, message *domain.Message) {
	logger := log.With().
		Str("requestId", message.RequestID).
		Str("channel", message.Channel).
		Str("user", message.User).
		Str("command", message.Command()).
		Logger()

	logger.Debug().Strs("payload", message.Payload).Msg("dispatching message")

	dispatchCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	err := l.registry.Dispatch(dispatchCtx, message)
	if err == nil {
		return
	}

	logger.Err(err).Msg("failed to respond to command")

	err = l.transport.Reply(ctx, message, maintainerNotice)
	if err != nil {
		logger.Err(err).Msg("failed to send error notice")
	}
}

// Parse turns an event into a message if it is a fresh text message addressed to the bot by one of its call
// signs and carrying a non-empty payload.
func Parse(session *domain.Session, event domain.Event) (*domain.Message, bool) {
	if event.Type == domain.EventHello {
		log.Info().Msg("bot started")
		return nil, false
	}

	if event.Type != domain.EventMessage {
		return nil, false
	}

	if event.Text == "" || event.User == "" || event.Channel == "" {
		return nil, false
	}

	if event.User == session.UserID {
		return nil, false
	}

	if !event.Timestamp.IsZero() && event.Timestamp.Before(session.StartedAt) {
		log.Debug().Time("timestamp", event.Timestamp).Msg("ignoring message sent before startup")
		return nil, false
	}

	tokens := domain.Tokenize(event.Text)
	if len(tokens) < 2 || !session.IsCallSign(tokens[0]) {
		return nil, false
	}

	return &domain.Message{
		RequestID: newRequestID(),
		Channel:   event.Channel,
		User:      event.User,
		Payload:   tokens[1:],
		Raw:       event,
		Session:   session,
	}, true
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate request id")
		return ""
	}

	return id.String()
}
