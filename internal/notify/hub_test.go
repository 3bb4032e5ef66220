package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestHub serves a websocket endpoint that registers every connection
// under the given user and returns a connected client side.
func dialTestHub(t *testing.T, hub *Hub, userID uint) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go hub.NewClient(userID, conn).Run()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestPush_NoConnections(t *testing.T) {
	hub := NewHub()
	assert.Zero(t, hub.Push(1, []byte("hello")))
	assert.Zero(t, hub.ConnectionCount())
}

func TestPush_DeliversToOpenConnection(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, 7)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	delivered := hub.Push(7, []byte(`{"type":"artwork.approved"}`))
	assert.Equal(t, 1, delivered)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"artwork.approved"}`, string(payload))
}

func TestPush_OnlyTargetUserReceives(t *testing.T) {
	hub := NewHub()
	dialTestHub(t, hub, 1)
	other := dialTestHub(t, hub, 2)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.Push(1, []byte("for user one")))

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestTrySend_ClosedClient(t *testing.T) {
	hub := NewHub()
	dialTestHub(t, hub, 4)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	var client *Client
	hub.mu.RLock()
	for c := range hub.clients[4] {
		client = c
	}
	hub.mu.RUnlock()
	require.NotNil(t, client)

	hub.unregister(client)
	assert.False(t, client.trySend([]byte("late")))
	assert.Zero(t, hub.Push(4, []byte("late")))

	// A second unregister must not close the channel again.
	hub.unregister(client)
}

func TestPush_ConcurrentDisconnect(t *testing.T) {
	hub := NewHub()
	conns := make([]*websocket.Conn, 0, 8)
	for i := 0; i < 8; i++ {
		conns = append(conns, dialTestHub(t, hub, 9))
	}

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 8
	}, time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.Push(9, []byte("burst"))
		}
	}()
	go func() {
		defer wg.Done()
		for _, conn := range conns {
			conn.Close()
		}
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestConnectionCount_DropsClosedConnections(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, 3)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
