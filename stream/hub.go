// Package stream serves scene frames to websocket clients and feeds their
// pointer input back to the frame loop.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/akmonengine/duckpond/internal/logging"
	"github.com/akmonengine/duckpond/scene"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer      = 16
	broadcastBuffer = 4
	writeWait       = 5 * time.Second
)

var ErrBroadcastFull = errors.New("broadcast queue full, frame dropped")

const (
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypePointer = "pointer"
	TypeError   = "error"
)

// Message is what the hub sends to clients
type Message struct {
	Type     string       `json:"type"`
	ClientID string       `json:"client_id,omitempty"`
	Frame    *scene.Frame `json:"frame,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// PointerMessage is a client pointer sample. Width and Height are the size
// of the client surface; zero keeps the scene viewport.
type PointerMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Phase  string  `json:"phase"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// Event converts the message to a scene pointer event
func (m PointerMessage) Event() (scene.PointerEvent, error) {
	phase, err := scene.ParsePhase(m.Phase)
	if err != nil {
		return scene.PointerEvent{}, err
	}

	ev := scene.PointerEvent{X: m.X, Y: m.Y, Phase: phase}
	if m.Width > 0 && m.Height > 0 {
		ev.Viewport = &scene.Viewport{Width: m.Width, Height: m.Height, PixelAspect: 1}
	}

	return ev, nil
}

type Client struct {
	ID       uuid.UUID
	Addr     string
	JoinTime time.Time

	conn *websocket.Conn
	send chan Message
}

// Hub is the connection pool. Its Run loop owns registration and broadcast;
// every client has its own writer goroutine.
type Hub struct {
	submitter scene.Submitter
	logger    *zap.Logger
	upgrader  websocket.Upgrader

	clients    map[*Client]struct{}
	mutex      sync.RWMutex
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(submitter scene.Submitter, logger *zap.Logger) *Hub {
	return &Hub{
		submitter: submitter,
		logger:    logging.OrNop(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mutex.Unlock()
			return ctx.Err()

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mutex.Unlock()

			client.send <- Message{Type: TypeWelcome, ClientID: client.ID.String()}
			h.logger.Info("client joined",
				zap.Stringer("client", client.ID),
				zap.String("addr", client.Addr),
				zap.Int("online", count),
			)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("client left", zap.Stringer("client", client.ID), zap.Int("online", len(h.clients)))
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("client too slow, dropping", zap.Stringer("client", client.ID))
					h.drop(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// drop must be called with the mutex held
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// Len is the number of connected clients
func (h *Hub) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// Render queues the frame for every client. It never blocks the frame loop:
// when the queue is full the frame is dropped.
func (h *Hub) Render(frame scene.Frame) error {
	select {
	case h.broadcast <- Message{Type: TypeFrame, Frame: &frame}:
		return nil
	default:
		return ErrBroadcastFull
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:       uuid.New(),
		Addr:     conn.RemoteAddr().String(),
		JoinTime: time.Now(),
		conn:     conn,
		send:     make(chan Message, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump(h.logger)

	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	h.readPump(client)
}

func (h *Hub) readPump(client *Client) {
	for {
		var msg PointerMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read failed", zap.Stringer("client", client.ID), zap.Error(err))
			}
			return
		}

		if msg.Type != TypePointer {
			h.logger.Debug("ignored message", zap.Stringer("client", client.ID), zap.String("type", msg.Type))
			continue
		}

		ev, err := msg.Event()
		if err != nil {
			h.logger.Debug("bad pointer message", zap.Stringer("client", client.ID), zap.Error(err))
			continue
		}
		ev.Source = client.ID.String()

		if !h.submitter.Submit(ev) {
			h.logger.Warn("pointer inbox full, event dropped", zap.Stringer("client", client.ID))
		}
	}
}

// writePump is the only writer of the connection. It closes the connection
// once the hub closes the send channel.
func (c *Client) writePump(logger *zap.Logger) {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(message); err != nil {
			logger.Debug("write failed", zap.Stringer("client", c.ID), zap.Error(err))
			c.conn.Close()
			// The read side fails now; drain until the hub unregisters us
			for range c.send {
			}
			return
		}
	}

	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.conn.Close()
}
