package live

import (
	"encoding/json"
	"testing"
	"time"
)

func testHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 10),
		register:   make(chan *Client, 1),
		unregister: make(chan *Client, 1),
	}
}

func TestHubFanOut(t *testing.T) {
	h := testHub()

	c1 := &Client{hub: h, send: make(chan []byte, 4), username: "admin"}
	c2 := &Client{hub: h, send: make(chan []byte, 4), username: "mod"}
	h.clients[c1] = true
	h.clients[c2] = true

	payload, _ := json.Marshal(map[string]string{"tipo": "advertencia_aplicada"})
	h.fanOut(payload)

	for _, c := range []*Client{c1, c2} {
		select {
		case b := <-c.send:
			var got map[string]string
			json.Unmarshal(b, &got)
			if got["tipo"] != "advertencia_aplicada" {
				t.Fatalf("unexpected payload: %v", got)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timed out waiting for broadcast to %s", c.username)
		}
	}
}

func TestHubFanOutDropsSlowClients(t *testing.T) {
	h := testHub()

	slow := &Client{hub: h, send: make(chan []byte), username: "slow"}
	h.clients[slow] = true

	h.fanOut([]byte(`{"tipo":"x"}`))

	if h.ClientCount() != 0 {
		t.Fatalf("expected the slow client dropped, got %d clients", h.ClientCount())
	}
	if _, open := <-slow.send; open {
		t.Fatal("expected the slow client's send channel closed")
	}
}
