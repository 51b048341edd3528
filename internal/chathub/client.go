package chathub

import "pairchat/backend/internal/models"

// Client is the interface for one live connection joined to a room. It
// abstracts the underlying transport so the hub can manage connections
// uniformly and tests can substitute doubles.
type Client interface {
	// GetConnID returns the connection's unique identifier. One user may hold
	// several connections, so membership is keyed by connection, not user.
	GetConnID() string
	// GetUserID returns the authenticated owner of the connection.
	GetUserID() uint
	// GetUsername returns the owner's display name, used as the wire "sender".
	GetUsername() string
	// GetRoomID returns the room this connection is joined to.
	GetRoomID() uint

	// GetSendChannel returns the channel the hub delivers outbound events on.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down outbound delivery for the client.
	Close()
}
