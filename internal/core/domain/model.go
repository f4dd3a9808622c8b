package domain

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventMessage EventType = "message"
	EventHello   EventType = "hello"
)

// Event is a single inbound item read from the messaging transport.
type Event struct {
	Type      EventType
	ID        string
	Channel   string
	User      string
	UserName  string
	Text      string
	Timestamp time.Time
}

// Identity describes how the bot is known on the transport.
type Identity struct {
	UserID    string
	Nickname  string
	CallSigns []string
}

func (i *Identity) IsCallSign(token string) bool {
	for _, sign := range i.CallSigns {
		if sign == token {
			return true
		}
	}

	return false
}

type Session struct {
	Identity
	StartedAt time.Time
}

// Message is an addressed event with the call sign stripped from its payload.
type Message struct {
	RequestID string
	Channel   string
	User      string
	Payload   []string
	Raw       Event
	Session   *Session
}

// Command returns the first payload token, or an empty string for an empty payload.
func (m *Message) Command() string {
	if len(m.Payload) == 0 {
		return ""
	}

	return m.Payload[0]
}

type Repository struct {
	ID   int64
	Path string
}

type Commit struct {
	ID      string
	Author  string
	Message string
}

func FormatAuthor(name, email string) string {
	return fmt.Sprintf("%s <%s>", name, email)
}

type Build struct {
	Number      int64
	Commit      string
	AuthorEmail string
	Branch      string
	Event       string
	Message     string
}

// Tokenize splits text on spaces and drops empty tokens.
func Tokenize(text string) []string {
	var tokens []string

	for _, part := range strings.Split(text, " ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}

	return tokens
}
