package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/halim/toolbridge/pkg/gateway"
)

// EventMessage is the framing for events pushed over the dispatch stream.
type EventMessage struct {
	Type      string      `json:"type"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
	Seq       int64       `json:"seq"`
}

// streamClient is one connected observer. The send channel is never closed;
// shutdown signals the write pump through done instead, so a broadcast racing
// a disconnect can never hit a closed channel.
type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// shutdown stops the client's write pump. Safe to call from multiple
// goroutines.
func (c *streamClient) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// Broadcaster fans dispatch events out to connected websocket observers.
// It implements gateway.AuditRecorder so it can sit in the audit fanout;
// slow observers are disconnected rather than blocking the dispatch path.
type Broadcaster struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	seq      atomic.Int64

	mu      sync.RWMutex
	clients map[string]*streamClient
}

// NewBroadcaster creates an event broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.With().Str("component", "broadcaster").Logger(),
		clients: make(map[string]*streamClient),
	}
}

// Record implements gateway.AuditRecorder by broadcasting each dispatch
// record as a "dispatch" event.
func (b *Broadcaster) Record(rec gateway.AuditRecord) {
	b.Broadcast("dispatch", rec)
}

// Broadcast sends an event to all connected observers.
func (b *Broadcaster) Broadcast(event string, data interface{}) {
	msg := EventMessage{
		Type:      "event",
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Seq:       b.seq.Add(1),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return
	}

	b.mu.RLock()
	clients := make([]*streamClient, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			// Observer is not keeping up; drop it.
			b.logger.Warn().Str("client_id", c.id).Msg("Dropping slow stream client")
			b.remove(c.id)
		}
	}
}

// ServeHTTP upgrades the connection and streams events until the observer
// disconnects. Authentication has already happened by the time this runs.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	id, _ := gonanoid.New()
	client := &streamClient{
		id:   id,
		conn: conn,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.clients[id] = client
	b.mu.Unlock()

	b.logger.Info().Str("client_id", id).Msg("Stream client connected")

	go b.writePump(client)
	b.readPump(client)
}

// ClientCount returns the number of connected observers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects all observers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	clients := make([]*streamClient, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[string]*streamClient)
	b.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
}

func (b *Broadcaster) remove(id string) {
	b.mu.Lock()
	client, exists := b.clients[id]
	if exists {
		delete(b.clients, id)
	}
	b.mu.Unlock()

	if exists {
		client.shutdown()
	}
}

func (b *Broadcaster) writePump(c *streamClient) {
	defer c.conn.Close()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				b.logger.Debug().Err(err).Str("client_id", c.id).Msg("Stream write failed")
				b.remove(c.id)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (b *Broadcaster) readPump(c *streamClient) {
	defer b.remove(c.id)

	// Observers do not send anything meaningful; reading serves only to
	// detect disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			b.logger.Info().Str("client_id", c.id).Msg("Stream client disconnected")
			return
		}
	}
}
