package live_test

import (
	"sync/atomic"

	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/google/uuid"
)

type MockClient struct {
	id          string
	identity    lifecycle.Identity
	scope       lifecycle.Scope
	RecvChannel chan models.IncidentEvent
	closed      atomic.Int32
}

func newMockClient(id lifecycle.Identity, scope lifecycle.Scope, buffer int) *MockClient {
	return &MockClient{
		id:          uuid.NewString(),
		identity:    id,
		scope:       scope,
		RecvChannel: make(chan models.IncidentEvent, buffer),
	}
}

func (c *MockClient) GetID() string                   { return c.id }
func (c *MockClient) GetIdentity() lifecycle.Identity { return c.identity }
func (c *MockClient) GetScope() lifecycle.Scope       { return c.scope }

func (c *MockClient) GetSendChannel() chan<- models.IncidentEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed.Add(1)
}
