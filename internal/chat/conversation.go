package chat

import (
	"context"
	"time"

	"ai-or-human-service/internal/domain"
)

// Sender posts text to a channel.
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
}

// Conversation scopes replies and waits to one author in one channel.
type Conversation struct {
	dispatcher *Dispatcher
	sender     Sender
	authorID   string
	channelID  string
}

// NewConversation binds a conversation to the author and channel of msg.
func NewConversation(dispatcher *Dispatcher, sender Sender, msg domain.Message) *Conversation {
	return &Conversation{
		dispatcher: dispatcher,
		sender:     sender,
		authorID:   msg.AuthorID,
		channelID:  msg.ChannelID,
	}
}

func (c *Conversation) Reply(ctx context.Context, text string) error {
	return c.sender.Send(ctx, c.channelID, text)
}

// Ask registers for the reply before sending text so a fast answer is never missed.
func (c *Conversation) Ask(ctx context.Context, text string, accept func(domain.Message) bool, timeout time.Duration) (domain.Message, error) {
	pending := c.dispatcher.Register(func(msg domain.Message) bool {
		return msg.AuthorID == c.authorID && msg.ChannelID == c.channelID && accept(msg)
	})
	if err := c.Reply(ctx, text); err != nil {
		pending.Cancel()
		return domain.Message{}, err
	}
	return pending.Wait(ctx, timeout)
}
