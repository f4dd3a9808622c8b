package main

import (
	"cibot/internal/adapters/ci"
	"cibot/internal/adapters/transport"
	"cibot/internal/adapters/vcs"
	"cibot/internal/config"
	"cibot/internal/core/domain/command"
	"cibot/internal/core/port"
	"cibot/internal/core/service"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the config file (default ./config.toml)")
	pflag.Parse()

	log.Info().Msg("starting cibot...")

	log.Info().Msg("reading config file...")
	cfg, err := config.Load(viper.GetViper(), *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var chat port.Transport

	switch cfg.Transport {
	case config.TransportTelegram:
		chat, err = transport.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed initializing telegram transport")
		}
	default:
		chat = transport.NewSlack(cfg.SlackToken, cfg.SlackNickname)
	}

	gitLab, err := vcs.NewGitLab(cfg.GitLabHost, cfg.GitLabToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing gitlab client")
	}

	drone := ci.NewDrone(cfg.DroneHost, cfg.DroneToken)

	commandRegistry := &command.Registry{}

	commandRegistry.Register(command.NewPing(chat, "ping"))
	commandRegistry.Register(command.NewTag(gitLab, chat, "tag"))
	commandRegistry.Register(command.NewCommit(gitLab, chat, "commit"))
	commandRegistry.Register(command.NewBuild(drone, chat, "build"))
	commandRegistry.Register(command.NewHelp(commandRegistry, chat, "help"))

	loop := service.NewLoop(chat, commandRegistry, cfg.PollInterval, cfg.HandlerTimeout)

	err = loop.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("transport", cfg.Transport).Msg("message loop stopped")
	}

	log.Info().Msg("bot stopped")
}
