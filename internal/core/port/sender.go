package port

import (
	"cibot/internal/core/domain"
	"context"
)

type TextSender interface {
	// Reply sends text to the channel of the given message, addressed to its sender.
	Reply(ctx context.Context, message *domain.Message, text string) error
}

type Transport interface {
	TextSender
	// Connect establishes the connection and resolves the identity the bot answers to.
	Connect(ctx context.Context) (*domain.Identity, error)
	// ReadEvents returns the events received since the last call. It never waits for new events and may
	// return an empty batch.
	ReadEvents(ctx context.Context) ([]domain.Event, error)
}
