package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
)

// Registry keeps command handlers in registration order and indexes them by name.
type Registry struct {
	commands []port.Command
	index    map[string]int
}

func (r *Registry) Register(handler port.Command) {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	name := handler.GetCommand()
	if i, ok := r.index[name]; ok {
		log.Warn().Str("handler", name).Msg("replacing command handler already in registry")
		r.commands[i] = handler
		return
	}

	log.Info().Str("handler", name).Msg("adding command handler to registry")
	r.index[name] = len(r.commands)
	r.commands = append(r.commands, handler)
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if r.index == nil {
		err := errors.New("can't fetch command, registry not initialized")
		return nil, err
	}

	i, ok := r.index[command]
	if !ok {
		return nil, errors.New("command not found")
	}

	return r.commands[i], nil
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.commands))

	for i, c := range r.commands {
		keys[i] = c.GetCommand()
	}

	sort.Strings(keys)

	return keys
}

// Dispatch passes the message to the handler named by its first payload token. Messages that name no
// registered command, or whose arity the handler rejects, are dropped without error.
func (r *Registry) Dispatch(ctx context.Context, message *domain.Message) error {
	handler, err := r.Get(message.Command())
	if err != nil {
		log.Debug().Str("command", message.Command()).Msg("no handler for command")
		return nil
	}

	if !handler.Accepts(message.Payload) {
		log.Debug().Str("command", message.Command()).Int("tokens", len(message.Payload)).
			Msg("payload does not match command arity")
		return nil
	}

	return handler.Respond(ctx, message)
}
