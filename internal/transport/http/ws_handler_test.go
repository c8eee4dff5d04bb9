package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/bot"
	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketRoundFlow(t *testing.T) {
	server := newTestServer(t, domain.RoundItem{ID: "i1", Prompt: "Q?", Answer: "A.", IsAI: false})
	defer server.Close()

	conn := dial(t, server, "userId=u1&name=Alice&channelId=c1&guildId=g1")
	defer conn.Close()

	if typ, _ := readNext(conn, t); typ != "ready" {
		t.Fatalf("expected ready, got %s", typ)
	}

	say(t, conn, "!ping")
	if _, payload := readNext(conn, t); payload["content"] != "Pong!" {
		t.Fatalf("expected Pong!, got %v", payload)
	}

	say(t, conn, "!play")
	_, prompt := readNext(conn, t)
	if prompt["channelId"] != "c1" {
		t.Fatalf("expected prompt on c1, got %v", prompt)
	}
	say(t, conn, "human")
	if _, payload := readNext(conn, t); payload["content"] != "Correct! You earned 1 point." {
		t.Fatalf("unexpected result %v", payload)
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?userId=u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnsupportedType(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()
	conn := dial(t, server, "userId=u1&name=Alice&channelId=c1")
	defer conn.Close()
	readNext(conn, t)

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, payload := readNext(conn, t); typ != "error" || payload["message"] != "unsupported message type" {
		t.Fatalf("expected error, got %s %v", typ, payload)
	}
}

func newTestServer(t *testing.T, items ...domain.RoundItem) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	players := memory.NewPlayerRepository()
	store := memory.NewItemRepository(items...)
	hub := chat.NewHub()
	dir := chat.NewDirectory()
	router := bot.NewRouter(bot.Config{
		Rounds:      app.NewRoundService(players, store, app.RoundConfig{}),
		Boards:      app.NewLeaderboardService(players),
		Submissions: app.NewSubmissionService(store, app.NewStaticAdmins(), nil, app.SubmissionConfig{}),
		Dispatcher:  chat.NewDispatcher(),
		Sender:      hub,
		Members:     dir,
		Logger:      logger,
	})
	wsHandler := NewWSHandler(router, hub, dir, Options{MessagesPerSecond: 100, Burst: 100, Logger: logger})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func say(t *testing.T, conn *websocket.Conn, content string) {
	t.Helper()
	msg := map[string]any{"type": "message", "payload": map[string]any{"content": content}}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func TestOutboxStopsWhenWriterExits(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})
	box := outbox{send: send, writerDone: writerDone}

	if !box.emit(outboundMessage[any]{Type: "error"}) {
		t.Fatal("expected first frame to be queued")
	}
	close(writerDone)

	result := make(chan bool, 1)
	go func() { result <- box.emit(outboundMessage[any]{Type: "error"}) }()
	select {
	case ok := <-result:
		if ok {
			t.Fatal("expected emit to report a stopped writer")
		}
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full queue after the writer exited")
	}
}
