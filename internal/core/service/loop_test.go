package service

import (
	"cibot/internal/core/domain"
	"cibot/internal/core/domain/command"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	identity   *domain.Identity
	connectErr error
	batches    [][]domain.Event
	readErr    error
	replyErr   error
	replies    []string
	onDrained  func()
}

func (m *mockTransport) Connect(_ context.Context) (*domain.Identity, error) {
	return m.identity, m.connectErr
}

func (m *mockTransport) ReadEvents(_ context.Context) ([]domain.Event, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}

	if len(m.batches) == 0 {
		if m.onDrained != nil {
			m.onDrained()
		}
		return nil, nil
	}

	batch := m.batches[0]
	m.batches = m.batches[1:]

	return batch, nil
}

func (m *mockTransport) Reply(_ context.Context, _ *domain.Message, text string) error {
	m.replies = append(m.replies, text)
	return m.replyErr
}

type mockRegistry struct {
	dispatched []*domain.Message
	err        error
}

func (m *mockRegistry) Dispatch(_ context.Context, message *domain.Message) error {
	m.dispatched = append(m.dispatched, message)
	return m.err
}

var startedAt = time.Unix(1700000000, 0)

func testSession() *domain.Session {
	return &domain.Session{
		Identity: domain.Identity{
			UserID:    "UBOT",
			Nickname:  "cibot",
			CallSigns: []string{"cibot", "<@UBOT>"},
		},
		StartedAt: startedAt,
	}
}

func messageEvent(text string) domain.Event {
	return domain.Event{
		Type:      domain.EventMessage,
		Channel:   "C1",
		User:      "U2",
		Text:      text,
		Timestamp: startedAt.Add(time.Second),
	}
}

func TestParse(t *testing.T) {
	stale := messageEvent("cibot ping")
	stale.Timestamp = startedAt.Add(-time.Second)

	own := messageEvent("cibot ping")
	own.User = "UBOT"

	noTimestamp := messageEvent("cibot ping")
	noTimestamp.Timestamp = time.Time{}

	noUser := messageEvent("cibot ping")
	noUser.User = ""

	typing := messageEvent("cibot ping")
	typing.Type = "user_typing"

	tests := []struct {
		name        string
		event       domain.Event
		wantOK      bool
		wantPayload []string
	}{
		{name: "bare name call sign", event: messageEvent("cibot ping"), wantOK: true, wantPayload: []string{"ping"}},
		{name: "mention call sign", event: messageEvent("<@UBOT> tag group/app v1 main"), wantOK: true,
			wantPayload: []string{"tag", "group/app", "v1", "main"}},
		{name: "extra spaces are dropped", event: messageEvent("  cibot   commit  group/app main "), wantOK: true,
			wantPayload: []string{"commit", "group/app", "main"}},
		{name: "missing timestamp is accepted", event: noTimestamp, wantOK: true, wantPayload: []string{"ping"}},
		{name: "not addressed", event: messageEvent("ping")},
		{name: "call sign not first", event: messageEvent("hey cibot ping")},
		{name: "other mention", event: messageEvent("<@U3> ping")},
		{name: "call sign only", event: messageEvent("cibot")},
		{name: "empty text", event: messageEvent("")},
		{name: "missing sender", event: noUser},
		{name: "own message", event: own},
		{name: "sent before startup", event: stale},
		{name: "not a message", event: typing},
		{name: "hello", event: domain.Event{Type: domain.EventHello}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Parse(testSession(), tt.event)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, msg)
				return
			}

			require.NotNil(t, msg)
			assert.Equal(t, tt.wantPayload, msg.Payload)
			assert.Equal(t, "C1", msg.Channel)
			assert.Equal(t, "U2", msg.User)
			assert.NotEmpty(t, msg.RequestID)
			assert.Equal(t, tt.event, msg.Raw)
		})
	}
}

func TestPollDispatchesAddressedMessagesInOrder(t *testing.T) {
	transport := &mockTransport{batches: [][]domain.Event{{
		messageEvent("cibot ping"),
		messageEvent("just chatting"),
		messageEvent("<@UBOT> help tag"),
	}}}
	registry := &mockRegistry{}

	loop := NewLoop(transport, registry, time.Millisecond, time.Second)

	err := loop.Poll(t.Context(), testSession())
	require.NoError(t, err)
	require.Len(t, registry.dispatched, 2)
	assert.Equal(t, []string{"ping"}, registry.dispatched[0].Payload)
	assert.Equal(t, []string{"help", "tag"}, registry.dispatched[1].Payload)
	assert.Empty(t, transport.replies)
}

func TestPollEmptyBatch(t *testing.T) {
	transport := &mockTransport{}
	registry := &mockRegistry{}

	err := NewLoop(transport, registry, time.Millisecond, time.Second).Poll(t.Context(), testSession())
	require.NoError(t, err)
	assert.Empty(t, registry.dispatched)
}

func TestPollReportsHandlerErrorAndContinues(t *testing.T) {
	transport := &mockTransport{batches: [][]domain.Event{{
		messageEvent("cibot tag group/app v1 main"),
		messageEvent("cibot ping"),
	}}}
	registry := &mockRegistry{err: errors.New("unexpected")}

	err := NewLoop(transport, registry, time.Millisecond, time.Second).Poll(t.Context(), testSession())
	require.NoError(t, err)
	assert.Len(t, registry.dispatched, 2)
	assert.Equal(t, []string{maintainerNotice, maintainerNotice}, transport.replies)
}

func TestPollErrorNoticeSendFails(t *testing.T) {
	transport := &mockTransport{
		batches:  [][]domain.Event{{messageEvent("cibot ping")}},
		replyErr: errors.New("closed"),
	}
	registry := &mockRegistry{err: errors.New("unexpected")}

	err := NewLoop(transport, registry, time.Millisecond, time.Second).Poll(t.Context(), testSession())
	require.NoError(t, err)
	assert.Len(t, transport.replies, 1)
}

func TestPollReadFails(t *testing.T) {
	transport := &mockTransport{readErr: errors.New("invalid_auth")}

	err := NewLoop(transport, &mockRegistry{}, time.Millisecond, time.Second).Poll(t.Context(), testSession())
	require.ErrorContains(t, err, "invalid_auth")
}

func TestRunConnectFails(t *testing.T) {
	transport := &mockTransport{connectErr: errors.New("not_authed")}

	err := NewLoop(transport, &mockRegistry{}, time.Millisecond, time.Second).Run(t.Context())
	require.ErrorContains(t, err, "failed to connect transport")
}

func TestRunDispatchesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	transport := &mockTransport{
		identity: &testSession().Identity,
		batches: [][]domain.Event{
			{messageEvent("cibot ping")},
			{},
			{messageEvent("cibot help")},
		},
		onDrained: cancel,
	}

	registry := &command.Registry{}
	registry.Register(command.NewPing(transport, "ping"))
	registry.Register(command.NewHelp(registry, transport, "help"))

	loop := NewLoop(transport, registry, time.Millisecond, time.Second)
	loop.now = func() time.Time { return startedAt }

	err := loop.Run(ctx)
	require.NoError(t, err)
	require.Len(t, transport.replies, 2)
	assert.True(t, strings.HasPrefix(transport.replies[0], "pong"))
	assert.Equal(t, "\n• help\n• ping", transport.replies[1])
}

func TestRunIgnoresMessagesBeforeStartup(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	stale := messageEvent("cibot ping")
	stale.Timestamp = startedAt.Add(-time.Minute)

	transport := &mockTransport{
		identity:  &testSession().Identity,
		batches:   [][]domain.Event{{stale}},
		onDrained: cancel,
	}

	registry := &command.Registry{}
	registry.Register(command.NewPing(transport, "ping"))

	loop := NewLoop(transport, registry, time.Millisecond, time.Second)
	loop.now = func() time.Time { return startedAt }

	err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, transport.replies)
}
