package app_test

import (
	"context"
	"sync"
	"time"

	"ai-or-human-service/internal/domain"
)

var testNow = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// scriptedConversation replays queued inbound messages and records replies.
type scriptedConversation struct {
	inbound  []domain.Message
	replies  []string
	timeouts []time.Duration
}

func (c *scriptedConversation) Reply(_ context.Context, text string) error {
	c.replies = append(c.replies, text)
	return nil
}

func (c *scriptedConversation) Ask(_ context.Context, text string, accept func(domain.Message) bool, timeout time.Duration) (domain.Message, error) {
	c.replies = append(c.replies, text)
	c.timeouts = append(c.timeouts, timeout)
	for len(c.inbound) > 0 {
		msg := c.inbound[0]
		c.inbound = c.inbound[1:]
		if accept(msg) {
			return msg, nil
		}
	}
	return domain.Message{}, domain.ErrResponseTimeout
}

// gatedConversation holds every Ask until all expected rounds are waiting, then guesses "ai".
type gatedConversation struct {
	arrived *sync.WaitGroup
	channel string
}

func (c gatedConversation) Reply(context.Context, string) error { return nil }

func (c gatedConversation) Ask(_ context.Context, _ string, accept func(domain.Message) bool, _ time.Duration) (domain.Message, error) {
	c.arrived.Done()
	c.arrived.Wait()
	msg := domain.Message{AuthorID: "u1", ChannelID: c.channel, Content: "ai"}
	if !accept(msg) {
		return domain.Message{}, domain.ErrResponseTimeout
	}
	return msg, nil
}

func says(contents ...string) *scriptedConversation {
	conv := &scriptedConversation{}
	for _, c := range contents {
		conv.inbound = append(conv.inbound, domain.Message{AuthorID: "u1", ChannelID: "c1", Content: c})
	}
	return conv
}

type failingItems struct{ err error }

func (f failingItems) Sample(context.Context) (domain.RoundItem, error) { return domain.RoundItem{}, f.err }
func (f failingItems) Insert(context.Context, domain.RoundItem) error    { return f.err }
