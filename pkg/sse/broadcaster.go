// Package sse fans record change notifications out to Server-Sent Events
// clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/pkg/logger"
)

const (
	heartbeatInterval = 30 * time.Second
	cleanupInterval   = 30 * time.Second
	staleAfter        = 2 * heartbeatInterval
)

// Notification is one message pushed to every connected client
type Notification struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents a connected SSE client
type Client struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time
	closed   bool
	mutex    sync.Mutex // Protects concurrent writes to this client
}

// Broadcaster manages SSE connections and broadcasts
type Broadcaster struct {
	logger    *logger.Logger
	clients   map[string]*Client
	mutex     sync.RWMutex
	broadcast chan Notification
	cleanup   *time.Ticker
	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBroadcaster creates a new SSE broadcaster and starts its loops
func NewBroadcaster(log *logger.Logger) *Broadcaster {
	b := &Broadcaster{
		logger:    log.WithComponent("sse-broadcaster"),
		clients:   make(map[string]*Client),
		broadcast: make(chan Notification, 1000),
		cleanup:   time.NewTicker(cleanupInterval),
		shutdown:  make(chan struct{}),
	}

	b.wg.Add(2)
	go b.broadcastLoop()
	go b.cleanupLoop()

	return b
}

// AddClient adds a new SSE client
func (b *Broadcaster) AddClient(client *Client) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.clients[client.ID] = client

	b.logger.Debug("SSE client connected", zap.String("clientId", client.ID))
}

// RemoveClient removes an SSE client and signals its handler to return
func (b *Broadcaster) RemoveClient(clientID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if client, exists := b.clients[clientID]; exists {
		client.close()
		delete(b.clients, clientID)

		b.logger.Debug("SSE client disconnected", zap.String("clientId", clientID))
	}
}

// BroadcastToAll queues a notification for every connected client. Full
// queues drop the notification rather than block the publisher.
func (b *Broadcaster) BroadcastToAll(notification Notification) {
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}

	select {
	case <-b.shutdown:
		return
	default:
	}

	select {
	case b.broadcast <- notification:
	default:
		b.logger.Warn("Broadcast channel full, dropping message",
			zap.String("event", notification.Event))
	}
}

// broadcastLoop handles broadcasting messages to all connected clients
func (b *Broadcaster) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.shutdown:
			b.logger.Debug("Broadcast loop shutting down")
			return
		case notification := <-b.broadcast:
			data, err := json.Marshal(notification)
			if err != nil {
				b.logger.Error("Failed to marshal notification", zap.Error(err))
				continue
			}

			b.mutex.RLock()
			clients := make([]*Client, 0, len(b.clients))
			for _, client := range b.clients {
				clients = append(clients, client)
			}
			b.mutex.RUnlock()

			for _, client := range clients {
				if err := b.sendToClient(client, notification.Event, data); err != nil {
					b.logger.Warn("Failed to send to client",
						zap.String("clientId", client.ID),
						zap.Error(err))
					b.RemoveClient(client.ID)
				}
			}
		}
	}
}

// sendToClient writes one SSE frame to a client
func (b *Broadcaster) sendToClient(client *Client, event string, data []byte) error {
	if client.Writer == nil || client.Flusher == nil {
		return fmt.Errorf("client %s has no writer", client.ID)
	}

	// Use client-specific mutex to prevent concurrent writes
	client.mutex.Lock()
	defer client.mutex.Unlock()

	if client.closed {
		return fmt.Errorf("client connection closed")
	}

	frame := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
	n, err := client.Writer.Write([]byte(frame))
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("incomplete write: wrote %d/%d bytes", n, len(frame))
	}

	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

// cleanupLoop removes stale connections
func (b *Broadcaster) cleanupLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.shutdown:
			b.logger.Debug("Cleanup loop shutting down")
			return
		case <-b.cleanup.C:
			b.removeStale(time.Now())
		}
	}
}

func (b *Broadcaster) removeStale(now time.Time) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for clientID, client := range b.clients {
		client.mutex.Lock()
		stale := now.Sub(client.LastSeen) > staleAfter
		client.mutex.Unlock()
		if stale {
			b.logger.Debug("Removing stale SSE client", zap.String("clientId", clientID))
			client.close()
			delete(b.clients, clientID)
		}
	}
}

// ClientCount returns the number of connected clients
func (b *Broadcaster) ClientCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.clients)
}

// Close shuts down the broadcaster and disconnects every client. Safe to
// call more than once.
func (b *Broadcaster) Close() {
	b.closeOnce.Do(func() {
		b.logger.Debug("Shutting down SSE broadcaster")

		close(b.shutdown)
		b.cleanup.Stop()
		b.wg.Wait()

		b.mutex.Lock()
		defer b.mutex.Unlock()

		for _, client := range b.clients {
			client.close()
		}
		b.clients = make(map[string]*Client)
	})
}

// HandleSSE serves the change stream. The handler blocks until the client
// leaves, the client is dropped, or the broadcaster shuts down.
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		b.logger.Error("SSE: ResponseWriter does not support flushing")
		http.Error(w, "Server-Sent Events not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := &Client{
		ID:       uuid.New().String(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	// Register first so no notification is missed, and hold the client lock
	// so broadcasts queue behind the greeting
	client.mutex.Lock()
	b.AddClient(client)
	defer b.RemoveClient(client.ID)

	_, err := fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)
	if err == nil {
		flusher.Flush()
	}
	client.mutex.Unlock()
	if err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-client.Done:
			return
		case <-r.Context().Done():
			b.logger.Debug("SSE request context cancelled", zap.String("clientId", client.ID))
			return
		case <-b.shutdown:
			return
		case <-heartbeat.C:
			if err := b.sendHeartbeat(client); err != nil {
				b.logger.Warn("Failed to send heartbeat",
					zap.String("clientId", client.ID),
					zap.Error(err))
				return
			}
		}
	}
}

// sendHeartbeat sends an SSE comment line that keeps proxies from timing out
func (b *Broadcaster) sendHeartbeat(client *Client) error {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	if client.closed {
		return fmt.Errorf("client connection closed")
	}
	if _, err := fmt.Fprintf(client.Writer, ": heartbeat %s\n\n", time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("heartbeat write failed: %w", err)
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

// close marks the client closed and releases its handler
func (c *Client) close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Done)
	}
}
