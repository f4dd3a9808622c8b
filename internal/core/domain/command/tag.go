package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"errors"
	"fmt"
)

type Tag struct {
	Definition
	repos      port.RepositoryService
	textSender port.TextSender
}

func NewTag(repos port.RepositoryService, sender port.TextSender, command string) *Tag {
	return &Tag{
		Definition: Definition{
			Name:   command,
			Length: 4,
			Args:   "<repo> <tag_name> <ref>",
			Desc:   "Create or update git repo tag",
		},
		repos:      repos,
		textSender: sender,
	}
}

func (t *Tag) Respond(ctx context.Context, message *domain.Message) error {
	l := requestLogger(message, t.GetCommand())
	l.Info().Msg("handling request")

	path, name, ref := message.Payload[1], message.Payload[2], message.Payload[3]

	repo, err := t.repos.Project(ctx, path)
	if errors.Is(err, domain.ErrUnknownRepo) {
		l.Debug().Str("repo", path).Msg("repository not found")
		return reply(ctx, t.textSender, message, "unknown repo")
	}
	if err != nil {
		l.Err(err).Str("repo", path).Msg("failed to resolve repository")
		return reply(ctx, t.textSender, message, unknownServerError)
	}

	err = t.repos.UpdateTag(ctx, repo, name, ref)
	if err != nil {
		l.Err(err).Str("repo", path).Str("tag", name).Str("ref", ref).Msg("failed to update tag")
		return reply(ctx, t.textSender, message, unknownServerError)
	}

	l.Info().Str("repo", path).Str("tag", name).Str("ref", ref).Msg("tag updated")

	return reply(ctx, t.textSender, message, fmt.Sprintf("create tag %s as %s", name, ref))
}
