package command

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/port"
	"context"
	"errors"
	"fmt"
	"strings"
)

const buildInfoTemplate = `
Number: %d
Commit: %s
Author: %s
Ref: %s
Event: %s

%s`

const buildHelp = "Drone CI build helper\n\n" +
	"Options:\n" +
	"* `repo`: repo name eg;`sulee/cleffa`\n" +
	"* `id`: target build number\n" +
	"* `r`: request rebuild\n\n" +
	"Options example:\n" +
	"* `sulee/cleffa`\n" +
	"* `sulee/cleffa 1`\n" +
	"* `sulee/cleffa 1 r`"

const rebuildFlag = "r"

type Build struct {
	Definition
	builds     port.BuildService
	textSender port.TextSender
}

func NewBuild(builds port.BuildService, sender port.TextSender, command string) *Build {
	return &Build{
		Definition: Definition{
			Name:      command,
			Length:    2,
			AllowOver: true,
			Args:      "<repo> [id [r]]",
			Desc:      buildHelp,
		},
		builds:     builds,
		textSender: sender,
	}
}

func (b *Build) Respond(ctx context.Context, message *domain.Message) error {
	l := requestLogger(message, b.GetCommand())
	l.Info().Msg("handling request")

	args := message.Payload[1:]
	repo := args[0]

	var (
		build  *domain.Build
		prefix string
		err    error
	)

	switch {
	case len(args) == 1:
		prefix = "Latest build\n"
		build, err = b.builds.LatestBuild(ctx, repo)
	case len(args) == 2:
		build, err = b.builds.Build(ctx, repo, args[1])
	case len(args) == 3 && args[2] == rebuildFlag:
		prefix = "Job enqueued\n"
		build, err = b.builds.Rebuild(ctx, repo, args[1])
	default:
		return reply(ctx, b.textSender, message, "unknown subcommand")
	}

	if err != nil {
		var serviceErr *domain.ServiceError
		switch {
		case errors.As(err, &serviceErr):
			l.Debug().Str("repo", repo).Str("error", serviceErr.Message).Msg("build service returned an error")
			return reply(ctx, b.textSender, message, serviceErr.Message)
		case errors.Is(err, domain.ErrNoBuilds):
			return reply(ctx, b.textSender, message, domain.ErrNoBuilds.Error())
		default:
			l.Err(err).Str("repo", repo).Msg("build request failed")
			return reply(ctx, b.textSender, message, unknownServerError)
		}
	}

	return reply(ctx, b.textSender, message, prefix+FormatBuild(build))
}

func FormatBuild(build *domain.Build) string {
	info := fmt.Sprintf(buildInfoTemplate,
		build.Number, build.Commit, build.AuthorEmail, build.Branch, build.Event, build.Message)

	return strings.TrimRight(info, " \t\r\n")
}
