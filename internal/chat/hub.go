package chat

import (
	"context"
	"sync"
	"time"
)

// Outbound is a message posted by the bot to a channel.
type Outbound struct {
	ChannelID string    `json:"channelId"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sentAt"`
}

// Hub fans bot messages out to every subscriber of a channel.
type Hub struct {
	now         func() time.Time
	mu          sync.RWMutex
	subscribers map[string]map[chan Outbound]struct{}
}

func NewHub() *Hub {
	return &Hub{
		now:         time.Now,
		subscribers: make(map[string]map[chan Outbound]struct{}),
	}
}

// Subscribe returns a channel of messages for channelID.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(channelID string) (<-chan Outbound, func()) {
	ch := make(chan Outbound, 16)

	h.mu.Lock()
	subs, ok := h.subscribers[channelID]
	if !ok {
		subs = make(map[chan Outbound]struct{})
		h.subscribers[channelID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[channelID]
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, channelID)
		}
	}
	return ch, cancel
}

// Send implements Sender. Slow subscribers lose their oldest pending message;
// Send never blocks, so a message racing another sender for the freed slot is dropped.
func (h *Hub) Send(_ context.Context, channelID, text string) error {
	msg := Outbound{ChannelID: channelID, Content: text, SentAt: h.now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[channelID] {
		select {
		case ch <- msg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribers reports how many listeners a channel has.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channelID])
}
