package transport

import (
	"cibot/internal/core/domain"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

const (
	unknownUserID = "unknown"
	microDigits   = 6
)

var ErrInvalidAuth = errors.New("slack rejected the bot token")

type slackAPI interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
}

type rtmSender interface {
	NewOutgoingMessage(text string, channelID string, options ...slack.RTMsgOption) *slack.OutgoingMessage
	SendMessage(msg *slack.OutgoingMessage)
}

// Slack reads events from and replies over the Slack real time messaging API.
type Slack struct {
	client   *slack.Client
	api      slackAPI
	nickname string
	rtm      rtmSender
	incoming <-chan slack.RTMEvent
}

func NewSlack(token, nickname string, options ...slack.Option) *Slack {
	client := slack.New(token, options...)

	return &Slack{client: client, api: client, nickname: nickname}
}

// Connect verifies the token, resolves the bot's own user and starts the RTM connection in the background.
func (s *Slack) Connect(ctx context.Context) (*domain.Identity, error) {
	identity, err := s.resolveIdentity(ctx)
	if err != nil {
		return nil, err
	}

	rtm := s.client.NewRTM()
	go rtm.ManageConnection()

	s.rtm = rtm
	s.incoming = rtm.IncomingEvents

	return identity, nil
}

func (s *Slack) resolveIdentity(ctx context.Context) (*domain.Identity, error) {
	auth, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack auth test failed: %w", err)
	}

	userID := unknownUserID

	users, err := s.api.GetUsersContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list slack users")
	}

	for _, user := range users {
		if user.Name == s.nickname {
			userID = user.ID
			break
		}
	}

	if userID == unknownUserID && auth.UserID != "" {
		log.Debug().Str("nickname", s.nickname).Str("user", auth.User).
			Msg("nickname not found in user list, using authenticated user")
		userID = auth.UserID
	}

	return &domain.Identity{
		UserID:    userID,
		Nickname:  s.nickname,
		CallSigns: []string{s.nickname, "<@" + userID + ">"},
	}, nil
}

// ReadEvents drains the events buffered by the RTM connection without waiting for new ones.
func (s *Slack) ReadEvents(_ context.Context) ([]domain.Event, error) {
	if s.incoming == nil {
		return nil, errors.New("slack transport not connected")
	}

	var events []domain.Event

	for {
		select {
		case rtmEvent, ok := <-s.incoming:
			if !ok {
				return events, errors.New("slack rtm connection closed")
			}

			event, ok, err := convertSlackEvent(rtmEvent)
			if err != nil {
				return events, err
			}
			if ok {
				events = append(events, event)
			}
		default:
			return events, nil
		}
	}
}

func convertSlackEvent(rtmEvent slack.RTMEvent) (domain.Event, bool, error) {
	switch data := rtmEvent.Data.(type) {
	case *slack.HelloEvent:
		return domain.Event{Type: domain.EventHello}, true, nil
	case *slack.MessageEvent:
		return domain.Event{
			Type:      domain.EventType(data.Type),
			ID:        data.Timestamp,
			Channel:   data.Channel,
			User:      data.User,
			Text:      data.Text,
			Timestamp: parseSlackTimestamp(data.Timestamp),
		}, true, nil
	case *slack.InvalidAuthEvent:
		return domain.Event{}, false, ErrInvalidAuth
	case *slack.ConnectionErrorEvent:
		log.Warn().Err(data.ErrorObj).Int("attempt", data.Attempt).Msg("slack connection error")
	case *slack.RTMError:
		log.Warn().Int("code", data.Code).Str("msg", data.Msg).Msg("slack rtm error")
	default:
		log.Debug().Str("type", rtmEvent.Type).Msg("skipping slack event")
	}

	return domain.Event{}, false, nil
}

// parseSlackTimestamp converts a Slack "seconds.micros" timestamp. Unparseable input yields the zero time.
func parseSlackTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}

	secPart, fracPart, _ := strings.Cut(ts, ".")

	seconds, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		log.Debug().Str("ts", ts).Msg("invalid slack timestamp")
		return time.Time{}
	}

	var micros int64
	if fracPart != "" {
		if len(fracPart) > microDigits {
			fracPart = fracPart[:microDigits]
		}
		fracPart += strings.Repeat("0", microDigits-len(fracPart))

		micros, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			log.Debug().Str("ts", ts).Msg("invalid slack timestamp")
			return time.Time{}
		}
	}

	return time.Unix(seconds, micros*int64(time.Microsecond))
}

func (s *Slack) Reply(_ context.Context, message *domain.Message, text string) error {
	if s.rtm == nil {
		return errors.New("slack transport not connected")
	}

	s.rtm.SendMessage(s.rtm.NewOutgoingMessage(fmt.Sprintf("<@%s> %s", message.User, text), message.Channel))

	return nil
}
