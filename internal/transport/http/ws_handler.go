package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// MessageHandler consumes inbound chat messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg domain.Message)
}

// Options tunes the websocket gateway. Zero values fall back to defaults.
type Options struct {
	// MessagesPerSecond and Burst bound inbound traffic per connection.
	MessagesPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// WSHandler is a chat gateway: each websocket is one user in one channel.
type WSHandler struct {
	handler   MessageHandler
	hub       *chat.Hub
	directory *chat.Directory
	opts      Options
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

func NewWSHandler(handler MessageHandler, hub *chat.Hub, directory *chat.Directory, opts Options) *WSHandler {
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		handler:   handler,
		hub:       hub,
		directory: directory,
		opts:      opts,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type chatPayload struct {
	Content string `json:"content"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type readyPayload struct {
	ConnectionID string `json:"connectionId"`
	ChannelID    string `json:"channelId"`
	GuildID      string `json:"guildId,omitempty"`
}

// outbox queues frames for a connection's writer goroutine.
type outbox struct {
	send       chan<- outboundMessage[any]
	writerDone <-chan struct{}
}

// emit reports false instead of blocking once the writer has stopped.
func (o outbox) emit(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.writerDone:
		return false
	}
}

// ServeWS upgrades the request and relays messages between the socket and the bot.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	channelID := r.URL.Query().Get("channelId")
	guildID := r.URL.Query().Get("guildId")
	if userID == "" || displayName == "" || channelID == "" {
		http.Error(w, "missing userId, name, or channelId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	logger := h.logger.With(
		slog.String("connection_id", connID),
		slog.String("user_id", userID),
		slog.String("channel_id", channelID),
	)
	logger.Info("ws connected")
	defer logger.Info("ws disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.directory.Join(guildID, userID)
	updates, unsubscribe := h.hub.Subscribe(channelID)
	defer unsubscribe()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", slog.String("error", err.Error()))
				return
			}
		}
	}()

	emit := outbox{send: send, writerDone: writerDone}.emit

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "message", Payload: update}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	alive := emit(outboundMessage[any]{Type: "ready", Payload: readyPayload{ConnectionID: connID, ChannelID: channelID, GuildID: guildID}})

	limiter := rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), h.opts.Burst)
	for alive {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !limiter.Allow() {
			alive = emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "slow down"}})
			continue
		}
		switch inbound.Type {
		case "message":
			var payload chatPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Content == "" {
				alive = emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid message payload"}})
				continue
			}
			h.handler.HandleMessage(ctx, domain.Message{
				ID:         uuid.NewString(),
				AuthorID:   userID,
				AuthorName: displayName,
				ChannelID:  channelID,
				GuildID:    guildID,
				Content:    payload.Content,
				ReceivedAt: time.Now(),
			})
		default:
			alive = emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	cancel()
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
