package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lootdogs/game/service"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, mapID string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?map=" + mapID
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testState() service.GameState {
	return service.GameState{
		Players: map[int]service.PlayerState{
			1: {Pos: [2]float64{6, 0}, Dir: "R", Score: 5, Bag: []service.BagItem{}},
		},
		LostObjects: map[int64]service.LostObject{},
	}
}

func TestHubBroadcastsToMapRoom(t *testing.T) {
	hub, server := startHub(t)

	first := dial(t, server, "map1")
	second := dial(t, server, "map1")
	other := dial(t, server, "map2")

	// registration is asynchronous, give the hub loop a moment
	time.Sleep(100 * time.Millisecond)
	hub.BroadcastMapState("map1", testState())

	for _, conn := range []*gorilla.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("expected a state frame: %v", err)
		}
		var got frame
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("frame is not JSON: %v (%s)", err, data)
		}
		if got.Event != "state" || got.MapID != "map1" {
			t.Errorf("unexpected frame envelope %+v", got)
		}
		if player, ok := got.State.Players[1]; !ok || player.Score != 5 {
			t.Errorf("state payload mangled: %s", data)
		}
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("client on another map must not receive the frame")
	}
}

func TestHubRequiresMapParam(t *testing.T) {
	_, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the handshake to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %+v", resp)
	}
}

func TestHubBroadcastWithoutClientsIsNoOp(t *testing.T) {
	hub, _ := startHub(t)
	hub.BroadcastMapState("empty", testState())
}

func TestClientLeaveAfterHubStopped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	<-done

	// nobody is reading unregister anymore; leave must still return
	client := &Client{hub: hub, send: make(chan []byte, 1), mapID: "map1"}
	finished := make(chan struct{})
	go func() {
		client.leave()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?map=map1"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed after shutdown")
	}
}
