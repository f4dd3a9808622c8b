package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"errors"
	"fmt"
)

const commitTemplate = "\nCommit: %s\nAuthor: %s\n\n%s"

type Commit struct {
	Definition
	repos      port.RepositoryService
	textSender port.TextSender
}

func NewCommit(repos port.RepositoryService, sender port.TextSender, command string) *Commit {
	return &Commit{
		Definition: Definition{
			Name:   command,
			Length: 3,
			Args:   "<repo> <ref>",
			Desc:   "Return commit reference information.",
		},
		repos:      repos,
		textSender: sender,
	}
}

func (c *Commit) Respond(ctx context.Context, message *domain.Message) error {
	l := requestLogger(message, c.GetCommand())
	l.Info().Msg("handling request")

	path, ref := message.Payload[1], message.Payload[2]

	repo, err := c.repos.Project(ctx, path)
	if errors.Is(err, domain.ErrUnknownRepo) {
		return reply(ctx, c.textSender, message, "unknown repo")
	}
	if err != nil {
		l.Err(err).Str("repo", path).Msg("failed to resolve repository")
		return reply(ctx, c.textSender, message, unknownServerError)
	}

	info, err := c.repos.CommitInfo(ctx, repo, ref)
	if err != nil {
		l.Debug().Err(err).Str("repo", path).Str("ref", ref).Msg("failed to fetch commit")
		return reply(ctx, c.textSender, message, "unknown ref")
	}

	return reply(ctx, c.textSender, message, fmt.Sprintf(commitTemplate, info.ID, info.Author, info.Message))
}
