package live_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/live"
	"sentra/backend/internal/models"
	"sentra/backend/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin  = lifecycle.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	staffT = lifecycle.Identity{UserID: "staff-t", Role: models.RoleStaff}
)

func startHub(t *testing.T) *live.Hub {
	t.Helper()
	hub := live.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func scopeFor(t *testing.T, id lifecycle.Identity, filters models.IncidentFilters) lifecycle.Scope {
	t.Helper()
	scope, err := lifecycle.VisibleIncidentsFor(id, filters)
	require.NoError(t, err)
	return scope
}

func event(typ models.EventType, assignee string, priority models.Priority) models.IncidentEvent {
	inc := &models.Incident{ID: "inc-1", ReferenceID: "SENTRA-1", Status: models.StatusPending, Priority: priority, Category: models.CategorySafety}
	if assignee != "" {
		inc.AssigneeID = &assignee
	}
	return models.NewIncidentEvent(typ, inc, "actor", time.Now())
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := startHub(t)
	client := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{}), 4)

	require.True(t, hub.Register(client))
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, client.closed.Load())
}

func TestHub_DeliversByScope(t *testing.T) {
	hub := startHub(t)
	adminClient := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{}), 4)
	staffClient := newMockClient(staffT, scopeFor(t, staffT, models.IncidentFilters{}), 4)
	criticalOnly := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{Priority: models.PriorityCritical}), 4)
	for _, c := range []*MockClient{adminClient, staffClient, criticalOnly} {
		require.True(t, hub.Register(c))
	}

	hub.Broadcast(context.Background(), event(models.EventIncidentCreated, "", models.PriorityMedium))
	hub.Broadcast(context.Background(), event(models.EventIncidentAssigned, "staff-t", models.PriorityCritical))

	got := <-adminClient.RecvChannel
	assert.Equal(t, models.EventIncidentCreated, got.Type)
	got = <-adminClient.RecvChannel
	assert.Equal(t, models.EventIncidentAssigned, got.Type)

	got = <-staffClient.RecvChannel
	assert.Equal(t, models.EventIncidentAssigned, got.Type, "staff only receive their assigned incidents")

	got = <-criticalOnly.RecvChannel
	assert.Equal(t, models.PriorityCritical, got.Priority)

	assert.Never(t, func() bool { return len(staffClient.RecvChannel) > 0 || len(criticalOnly.RecvChannel) > 0 },
		100*time.Millisecond, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{}), 1)
	require.True(t, hub.Register(slow))

	hub.Broadcast(context.Background(), event(models.EventIncidentCreated, "", models.PriorityLow))
	hub.Broadcast(context.Background(), event(models.EventIncidentCreated, "", models.PriorityLow))

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, slow.closed.Load())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := live.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	client := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{}), 1)
	require.True(t, hub.Register(client))

	cancel()
	<-stopped

	assert.EqualValues(t, 1, client.closed.Load())
	assert.False(t, hub.Register(client), "a stopped hub refuses clients")
	assert.False(t, hub.Broadcast(context.Background(), event(models.EventIncidentCreated, "", models.PriorityLow)))
}

func TestHub_BroadcastHonorsContext(t *testing.T) {
	hub := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	assert.True(t, hub.Broadcast(ctx, event(models.EventIncidentCreated, "", models.PriorityLow)))

	cancel()
	assert.False(t, hub.Broadcast(ctx, event(models.EventIncidentCreated, "", models.PriorityLow)))
}

func TestHub_ListenRelaysRedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := storage.NewStorageService(nil, rdb, "sentra:incidents")

	hub := startHub(t)
	client := newMockClient(admin, scopeFor(t, admin, models.IncidentFilters{}), 4)
	require.True(t, hub.Register(client))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Listen(ctx, store)

	ev := event(models.EventIncidentStatusChanged, "", models.PriorityHigh)
	require.Eventually(t, func() bool {
		return rdb.PubSubNumSub(ctx, "sentra:incidents").Val()["sentra:incidents"] > 0
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, rdb.Publish(ctx, "sentra:incidents", "not json").Err())
	require.NoError(t, store.PublishIncidentEvent(ctx, ev))

	select {
	case got := <-client.RecvChannel:
		assert.Equal(t, ev.Type, got.Type)
		assert.Equal(t, ev.ReferenceID, got.ReferenceID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}
}

func TestWebSocketClient_StreamsEvents(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}
	scope := scopeFor(t, staffT, models.IncidentFilters{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := live.NewWebSocketClient(hub, conn, staffT, scope, zap.NewNop())
		if hub.Register(client) {
			client.Run()
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(context.Background(), event(models.EventIncidentCreated, "", models.PriorityLow))
	hub.Broadcast(context.Background(), event(models.EventIncidentAssigned, "staff-t", models.PriorityLow))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.IncidentEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, models.EventIncidentAssigned, got.Type)
	assert.Equal(t, "staff-t", got.AssigneeID)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
