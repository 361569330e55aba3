package live

import (
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"
)

// Client is one live-feed subscriber. The hub only pushes events whose
// incident snapshot matches the client's scope.
type Client interface {
	// GetID identifies the connection; one user may hold several.
	GetID() string
	GetIdentity() lifecycle.Identity
	GetScope() lifecycle.Scope

	// GetSendChannel is where the hub delivers events. It is buffered; a
	// client whose buffer is full is dropped.
	GetSendChannel() chan<- models.IncidentEvent

	// Run starts the client's pumps.
	Run()
	// Close releases the connection. The hub calls it exactly once.
	Close()
}
