package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T, config HubConfig) *Hub {
	t.Helper()
	hub := NewHub(config, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected message %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoomDelivery(t *testing.T) {
	hub := startHub(t, HubConfig{})

	officer := NewClient(hub, nil, "officer", []string{"police", "user_officer"}, 0)
	citizen := NewClient(hub, nil, "citizen", []string{"user_citizen"}, 0)
	hub.Register(officer)
	hub.Register(citizen)

	if got := receive(t, officer); got.Type != "welcome" {
		t.Fatalf("first message = %q, want welcome", got.Type)
	}
	receive(t, citizen)

	if !hub.Publish("police", "new_sos_alert", map[string]string{"id": "1"}) {
		t.Fatal("Publish() dropped message")
	}

	msg := receive(t, officer)
	if msg.Type != "new_sos_alert" || msg.Room != "police" {
		t.Errorf("officer got %+v", msg)
	}
	expectNothing(t, citizen)

	hub.Publish("user_citizen", "complaint_updated", nil)
	if msg := receive(t, citizen); msg.Type != "complaint_updated" {
		t.Errorf("citizen got %+v", msg)
	}
	expectNothing(t, officer)
}

func TestHubDropsWhenClientBufferFull(t *testing.T) {
	var drops atomic.Int32
	hub := startHub(t, HubConfig{
		SendBufferSize: 1,
		OnDrop: func(reason string) {
			if reason == DropClientFull {
				drops.Add(1)
			}
		},
	})

	slow := NewClient(hub, nil, "slow", []string{"police"}, 0)
	hub.Register(slow)
	// The welcome message fills the single slot.
	hub.Publish("police", "a", nil)
	hub.Publish("police", "b", nil)

	deadline := time.Now().Add(time.Second)
	for drops.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if drops.Load() != 2 {
		t.Fatalf("drops = %d, want 2", drops.Load())
	}
	if msg := receive(t, slow); msg.Type != "welcome" {
		t.Errorf("buffered message = %q", msg.Type)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("slow client should stay registered")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t, HubConfig{})
	client := NewClient(hub, nil, "u", []string{"user_u"}, 0)
	hub.Register(client)
	receive(t, client)

	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d", hub.ClientCount())
	}
	// Publishing to the emptied room must not panic.
	hub.Publish("user_u", "x", nil)
}

func TestHubStopsOnContextCancel(t *testing.T) {
	hub := NewHub(HubConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(hub, nil, "u", nil, 0)
	hub.Register(client)
	cancel()
	<-stopped

	if hub.Register(NewClient(hub, nil, "late", nil, 0)) {
		t.Error("Register() succeeded after the hub stopped")
	}
	for range client.send {
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(HubConfig{PublishQueueSize: 1}, nil)
	// Run is not started, so the queue fills after one message.
	if !hub.Publish("", "first", nil) {
		t.Fatal("first publish dropped")
	}

	done := make(chan bool)
	go func() { done <- hub.Publish("", "second", nil) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("second publish should be dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked")
	}
}

func TestServerEndToEnd(t *testing.T) {
	hub := startHub(t, HubConfig{})
	server := NewServer(hub, HandlerConfig{AllowedOrigins: []string{"*"}})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := server.Serve(w, r, "officer", []string{"police"}); err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "welcome" {
		t.Fatalf("welcome = %+v, %v", msg, err)
	}

	hub.Publish("police", "new_sos_alert", map[string]string{"priority": "High"})
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "new_sos_alert" {
		t.Fatalf("alert = %+v, %v", msg, err)
	}

	if err := conn.WriteJSON(Message{Type: "ping"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "pong" {
		t.Fatalf("pong = %+v, %v", msg, err)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.kaaval.in"})

	req := httptest.NewRequest(http.MethodGet, "http://api.kaaval.in/ws", nil)
	req.Header.Set("Origin", "https://app.kaaval.in")
	if !check(req) {
		t.Error("allowed origin rejected")
	}

	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Error("foreign origin accepted")
	}

	req.Header.Del("Origin")
	if !check(req) {
		t.Error("request without Origin rejected")
	}
}
