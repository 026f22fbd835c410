package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vigia/backend/internal/cache"
	"github.com/vigia/backend/internal/models"
)

const (
	// Time allowed to write a frame to the bridge
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the bridge
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Per-call response deadline
	callTimeout = 30 * time.Second

	// Reconnect backoff bounds
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// frame is the wire envelope in both directions. Calls carry ID+Method,
// responses carry ID+Result/Error, bridge-initiated events carry Event.
type frame struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params interface{}     `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Event  string          `json:"event,omitempty"`
}

// Bridge is the concrete Gateway: a WebSocket RPC client to the external
// whatsapp-web.js bridge process. Inbound group messages are republished
// to Redis for the moderation bot.
type Bridge struct {
	url   string
	redis *cache.RedisClient

	connMu sync.Mutex
	conn   *websocket.Conn
	send   chan frame

	pendingMu sync.Mutex
	pending   map[string]chan frame

	statusMu sync.RWMutex
	status   Status
}

// NewBridge creates a bridge client. Call Run to connect and keep the
// link alive.
func NewBridge(url string, redis *cache.RedisClient) *Bridge {
	return &Bridge{
		url:     url,
		redis:   redis,
		send:    make(chan frame, 64),
		pending: make(map[string]chan frame),
		status:  Status{Status: "Desconectado"},
	}
}

// Run connects to the bridge and reconnects with backoff until ctx is done
func (b *Bridge) Run(ctx context.Context) {
	backoff := reconnectMin
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			log.Printf("[GATEWAY] Failed to connect to bridge at %s: %v", b.url, err)
			b.setStatus(Status{Status: fmt.Sprintf("Desconectado: %v", err)})
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}

		backoff = reconnectMin
		log.Printf("[GATEWAY] Connected to bridge at %s", b.url)
		b.setStatus(Status{Status: "Aguardando conexão do WhatsApp"})

		b.connMu.Lock()
		b.conn = conn
		b.connMu.Unlock()

		done := make(chan struct{})
		go b.writePump(conn, done)
		b.readPump(conn)
		close(done)

		b.connMu.Lock()
		b.conn = nil
		b.connMu.Unlock()
		b.failPending(fmt.Errorf("bridge connection lost"))
		b.setStatus(Status{Status: "Desconectado"})
	}
}

// Ready reports whether the WhatsApp client behind the bridge is paired
// and connected.
func (b *Bridge) Ready() bool {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.status.Ready
}

// Status returns the current connection snapshot for the panel
func (b *Bridge) Status() Status {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.status
}

// SendMessage posts text into a chat with mentions
func (b *Bridge) SendMessage(ctx context.Context, chatID, text string, mentions []string) error {
	params := map[string]interface{}{"chatId": chatID, "text": text, "mentions": mentions}
	return b.call(ctx, "sendMessage", params, nil)
}

// DeleteMessage removes a message from a chat
func (b *Bridge) DeleteMessage(ctx context.Context, ref MessageRef, forEveryone bool) error {
	params := map[string]interface{}{"chatId": ref.ChatID, "messageId": ref.MessageID, "forEveryone": forEveryone}
	return b.call(ctx, "deleteMessage", params, nil)
}

// RemoveParticipants kicks users out of a group
func (b *Bridge) RemoveParticipants(ctx context.Context, chatID string, userIDs []string) error {
	params := map[string]interface{}{"chatId": chatID, "userIds": userIDs}
	return b.call(ctx, "removeParticipants", params, nil)
}

// GroupAdmins lists the admin participants of a group
func (b *Bridge) GroupAdmins(ctx context.Context, chatID string) ([]Participant, error) {
	var admins []Participant
	params := map[string]interface{}{"chatId": chatID}
	if err := b.call(ctx, "listGroupAdmins", params, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// IsBotAdmin reports whether the bridge account is admin in a group
func (b *Bridge) IsBotAdmin(ctx context.Context, chatID string) (bool, error) {
	var isAdmin bool
	params := map[string]interface{}{"chatId": chatID}
	if err := b.call(ctx, "isBotAdmin", params, &isAdmin); err != nil {
		return false, err
	}
	return isAdmin, nil
}

// ContactName resolves a user id to a display name
func (b *Bridge) ContactName(ctx context.Context, userID string) (string, error) {
	var name string
	params := map[string]interface{}{"userId": userID}
	if err := b.call(ctx, "contactName", params, &name); err != nil {
		return "", err
	}
	return name, nil
}

// ListGroups lists the groups the bridge account participates in
func (b *Bridge) ListGroups(ctx context.Context) ([]models.GroupInfo, error) {
	var groups []models.GroupInfo
	if err := b.call(ctx, "listGroups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// call performs one RPC round trip over the bridge link
func (b *Bridge) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	b.connMu.Lock()
	connected := b.conn != nil
	b.connMu.Unlock()
	if !connected {
		return ErrNotReady
	}

	id := uuid.New().String()
	reply := make(chan frame, 1)

	b.pendingMu.Lock()
	b.pending[id] = reply
	b.pendingMu.Unlock()
	defer func() {
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
	}()

	select {
	case b.send <- frame{ID: id, Method: method, Params: params}:
	case <-ctx.Done():
		return ctx.Err()
	}

	timer := time.NewTimer(callTimeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		if resp.Error != "" {
			return fmt.Errorf("bridge %s failed: %s", method, resp.Error)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("failed to decode %s result: %w", method, err)
			}
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("bridge %s timed out", method)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readPump reads frames until the connection drops
func (b *Bridge) readPump(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[GATEWAY] Bridge read error: %v", err)
			}
			return
		}

		switch {
		case f.Event != "":
			b.handleEvent(f)
		case f.ID != "":
			b.pendingMu.Lock()
			reply, ok := b.pending[f.ID]
			b.pendingMu.Unlock()
			if ok {
				reply <- f
			}
		}
	}
}

// writePump writes queued frames and pings until done closes
func (b *Bridge) writePump(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f := <-b.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				log.Printf("[GATEWAY] Bridge write error: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// handleEvent processes a bridge-initiated event frame
func (b *Bridge) handleEvent(f frame) {
	switch f.Event {
	case "qr":
		var qr string
		_ = json.Unmarshal(f.Result, &qr)
		b.setStatus(Status{Status: "Aguardando conexão - Escaneie o QR Code", QR: qr})
		log.Println("[GATEWAY] QR Code received, scan to connect WhatsApp")

	case "ready":
		b.setStatus(Status{Status: "Conectado", Ready: true})
		log.Println("[GATEWAY] WhatsApp connected")

	case "disconnected":
		var reason string
		_ = json.Unmarshal(f.Result, &reason)
		b.setStatus(Status{Status: fmt.Sprintf("Desconectado: %s", reason)})
		log.Printf("[GATEWAY] WhatsApp disconnected: %s", reason)

	case "auth_failure":
		var msg string
		_ = json.Unmarshal(f.Result, &msg)
		b.setStatus(Status{Status: fmt.Sprintf("Falha na autenticação: %s", msg)})
		log.Printf("[GATEWAY] WhatsApp auth failure: %s", msg)

	case "message":
		var m InboundMessage
		if err := json.Unmarshal(f.Result, &m); err != nil {
			log.Printf("[GATEWAY] Failed to decode inbound message: %v", err)
			return
		}
		if b.redis == nil {
			return
		}
		if err := b.redis.PublishInbound(m); err != nil {
			log.Printf("[GATEWAY] Failed to publish inbound message: %v", err)
		}

	default:
		log.Printf("[GATEWAY] Unknown bridge event: %s", f.Event)
	}
}

func (b *Bridge) setStatus(s Status) {
	b.statusMu.Lock()
	b.status = s
	b.statusMu.Unlock()
}

// failPending answers every outstanding call with an error frame
func (b *Bridge) failPending(err error) {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	for id, reply := range b.pending {
		select {
		case reply <- frame{ID: id, Error: err.Error()}:
		default:
		}
		delete(b.pending, id)
	}
}
