package port

import (
	"cibot/internal/core/domain"
	"context"
)

type Command interface {
	// Respond handles a dispatched message. Expected service failures are replied to the channel and not returned.
	Respond(ctx context.Context, message *domain.Message) error
	// GetCommand retrieves the command identifier associated with a specific command handler.
	GetCommand() string
	// Accepts reports whether the payload matches the command name and its arity rule.
	Accepts(payload []string) bool
	// Usage returns the argument synopsis shown by help.
	Usage() string
	// Description returns the human-readable description shown by help.
	Description() string
}

type Dispatcher interface {
	// Dispatch hands a message to the handler whose name and arity accept its payload.
	Dispatch(ctx context.Context, message *domain.Message) error
}

type CommandRegistry interface {
	Dispatcher
	// Register adds a new command handler to the command registry.
	Register(handler Command)
	// Get retrieves a registered Command based on its string identifier or returns an error if not found.
	Get(command string) (Command, error)
	// ListCommands returns all registered command identifiers, sorted alphabetically.
	ListCommands() []string
}
