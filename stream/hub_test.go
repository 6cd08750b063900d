package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/duckpond/scene"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelSubmitter chan scene.PointerEvent

func (c channelSubmitter) Submit(ev scene.PointerEvent) bool {
	select {
	case c <- ev:
		return true
	default:
		return false
	}
}

func startHub(t *testing.T) (*Hub, channelSubmitter, string) {
	t.Helper()

	submitter := make(channelSubmitter, 8)
	hub := NewHub(submitter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- hub.Run(ctx) }()

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		server.Close()
		cancel()
		assert.ErrorIs(t, <-errs, context.Canceled)
	})

	return hub, submitter, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) (*websocket.Conn, Message) {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var welcome Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))

	return conn, welcome
}

func TestHub_Welcome(t *testing.T) {
	hub, _, url := startHub(t)

	_, welcome := dial(t, url)
	assert.Equal(t, TypeWelcome, welcome.Type)
	_, err := uuid.Parse(welcome.ClientID)
	assert.NoError(t, err)
	assert.Equal(t, 1, hub.Len())

	_, other := dial(t, url)
	assert.NotEqual(t, welcome.ClientID, other.ClientID)
	assert.Equal(t, 2, hub.Len())
}

func TestHub_Pointer(t *testing.T) {
	_, submitter, url := startHub(t)
	conn, welcome := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	require.NoError(t, conn.WriteJSON(PointerMessage{Type: TypePointer, X: 10, Y: 20, Phase: "hover"}))
	require.NoError(t, conn.WriteJSON(PointerMessage{Type: TypePointer, X: 10, Y: 20, Phase: "press", Width: 800, Height: 600}))
	require.NoError(t, conn.WriteJSON(PointerMessage{Type: TypePointer, X: 11, Y: 21, Phase: "release"}))

	select {
	case ev := <-submitter:
		assert.Equal(t, scene.PhasePress, ev.Phase)
		assert.Equal(t, welcome.ClientID, ev.Source)
		assert.Equal(t, 10.0, ev.X)
		require.NotNil(t, ev.Viewport)
		assert.Equal(t, 800, ev.Viewport.Width)
	case <-time.After(2 * time.Second):
		t.Fatal("press not submitted")
	}

	select {
	case ev := <-submitter:
		assert.Equal(t, scene.PhaseRelease, ev.Phase)
		assert.Equal(t, welcome.ClientID, ev.Source)
		assert.Nil(t, ev.Viewport)
	case <-time.After(2 * time.Second):
		t.Fatal("release not submitted")
	}
}

func TestHub_PointerSourcePerClient(t *testing.T) {
	_, submitter, url := startHub(t)
	first, firstWelcome := dial(t, url)
	second, secondWelcome := dial(t, url)

	require.NoError(t, first.WriteJSON(PointerMessage{Type: TypePointer, X: 1, Y: 1, Phase: "press"}))
	receive := func() scene.PointerEvent {
		select {
		case ev := <-submitter:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("pointer not submitted")
			return scene.PointerEvent{}
		}
	}
	assert.Equal(t, firstWelcome.ClientID, receive().Source)

	require.NoError(t, second.WriteJSON(PointerMessage{Type: TypePointer, X: 2, Y: 2, Phase: "press"}))
	assert.Equal(t, secondWelcome.ClientID, receive().Source)
}

func TestHub_Render(t *testing.T) {
	hub, _, url := startHub(t)
	conn, _ := dial(t, url)

	frame := scene.Frame{
		Seq:     7,
		SimTime: 0.5,
		Proxies: []scene.ProxyTransform{{ID: "water", Tag: "water"}},
	}
	require.NoError(t, hub.Render(frame))

	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypeFrame, msg.Type)
	require.NotNil(t, msg.Frame)
	assert.Equal(t, uint64(7), msg.Frame.Seq)
	assert.Equal(t, "water", msg.Frame.Proxies[0].ID)
}

func TestHub_RenderFull(t *testing.T) {
	// Without Run nothing drains the queue
	hub := NewHub(make(channelSubmitter), nil)

	for range broadcastBuffer {
		require.NoError(t, hub.Render(scene.Frame{}))
	}
	assert.ErrorIs(t, hub.Render(scene.Frame{}), ErrBroadcastFull)
}

func TestHub_Disconnect(t *testing.T) {
	hub, _, url := startHub(t)
	conn, _ := dial(t, url)
	require.Equal(t, 1, hub.Len())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPointerMessage_Event(t *testing.T) {
	ev, err := PointerMessage{X: 1, Y: 2, Phase: "move"}.Event()
	require.NoError(t, err)
	assert.Equal(t, scene.PointerEvent{X: 1, Y: 2, Phase: scene.PhaseMove}, ev)

	_, err = PointerMessage{Phase: ""}.Event()
	assert.Error(t, err)
}
