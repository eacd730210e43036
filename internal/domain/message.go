package domain

import (
	"context"
	"time"
)

// InboundMessage is a text event received from the transport for one
// identity.
type InboundMessage struct {
	ID          string    `json:"id"`
	Identity    Identity  `json:"identity"`
	DisplayName string    `json:"displayName,omitempty"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// Artifact points at a generated file to deliver alongside a message.
type Artifact struct {
	Path    string `json:"path"`
	Caption string `json:"caption,omitempty"`
}

// OutboundMessage is a reply to deliver through the transport. At most one
// of Photo and Document is set; Keyboard rows, when present, replace the
// recipient's reply keyboard.
type OutboundMessage struct {
	Identity Identity   `json:"identity"`
	Text     string     `json:"text,omitempty"`
	Keyboard [][]string `json:"keyboard,omitempty"`
	Photo    *Artifact  `json:"photo,omitempty"`
	Document *Artifact  `json:"document,omitempty"`
}

// Channel is the opaque deliver-message capability. The core never knows
// how messages physically travel; implementations live under
// internal/channel.
type Channel interface {
	// ID returns the channel identifier (e.g. "telegram").
	ID() string

	// Start connects the channel and begins listening for messages.
	Start(ctx context.Context) error

	// Stop gracefully disconnects the channel.
	Stop(ctx context.Context) error

	// Send delivers an outbound message through this channel.
	Send(ctx context.Context, msg OutboundMessage) error

	// OnMessage registers a handler for inbound messages.
	OnMessage(handler func(msg InboundMessage))
}
