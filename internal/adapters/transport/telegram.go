package transport

import (
	"cibot/internal/core/domain"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const updateBuffer = 100

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	GetMe(ctx context.Context) (*models.User, error)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	Start(ctx context.Context)
}

// Telegram receives updates through long polling and buffers them until they are read.
type Telegram struct {
	bot     TelegramBot
	updates chan *models.Update
}

func NewTelegram(token string) (*Telegram, error) {
	t := &Telegram{updates: make(chan *models.Update, updateBuffer)}

	b, err := bot.New(token, bot.WithDefaultHandler(t.handleUpdate), bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	t.bot = b

	return t, nil
}

func (t *Telegram) Connect(ctx context.Context) (*domain.Identity, error) {
	me, err := t.bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w", err)
	}

	if me.Username == "" {
		return nil, errors.New("telegram bot has no username")
	}

	go t.bot.Start(ctx)

	return &domain.Identity{
		UserID:    strconv.FormatInt(me.ID, 10),
		Nickname:  me.Username,
		CallSigns: []string{me.Username, "@" + me.Username},
	}, nil
}

func (t *Telegram) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	select {
	case t.updates <- update:
	case <-ctx.Done():
	}
}

func (t *Telegram) ReadEvents(_ context.Context) ([]domain.Event, error) {
	var events []domain.Event

	for {
		select {
		case update := <-t.updates:
			if event, ok := convertTelegramUpdate(update); ok {
				events = append(events, event)
			}
		default:
			return events, nil
		}
	}
}

func convertTelegramUpdate(update *models.Update) (domain.Event, bool) {
	if update == nil || update.Message == nil {
		return domain.Event{}, false
	}

	msg := update.Message

	event := domain.Event{
		Type:      domain.EventMessage,
		ID:        strconv.Itoa(msg.ID),
		Channel:   strconv.FormatInt(msg.Chat.ID, 10),
		Text:      msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0),
	}

	if msg.From != nil {
		event.User = strconv.FormatInt(msg.From.ID, 10)
		event.UserName = msg.From.Username
	}

	return event, true
}

// Reply answers the originating message, mentioning its sender when they have a username.
func (t *Telegram) Reply(ctx context.Context, message *domain.Message, text string) error {
	chatID, err := strconv.ParseInt(message.Channel, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", message.Channel, err)
	}

	if message.Raw.UserName != "" {
		text = "@" + message.Raw.UserName + " " + text
	}

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}

	if messageID, err := strconv.Atoi(message.Raw.ID); err == nil {
		params.ReplyParameters = &models.ReplyParameters{MessageID: messageID, ChatID: chatID}
	}

	_, err = t.bot.SendMessage(ctx, params)
	if err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("failed to send telegram reply")
		return err
	}

	return nil
}
