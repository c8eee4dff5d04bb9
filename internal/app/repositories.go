package app

import (
	"context"
	"time"

	"ai-or-human-service/internal/domain"
)

// ItemRepository abstracts the round item collection (in-memory, Postgres, Redis cache).
type ItemRepository interface {
	// Sample returns one item chosen uniformly at random, or domain.ErrNoContentAvailable.
	Sample(ctx context.Context) (domain.RoundItem, error)
	Insert(ctx context.Context, item domain.RoundItem) error
}

// PlayerRepository abstracts player records.
type PlayerRepository interface {
	GetOrCreate(ctx context.Context, userID, displayName string) (domain.Player, error)
	// ApplyResolution must apply the whole delta as a single atomic update.
	ApplyResolution(ctx context.Context, res domain.Resolution) (domain.Player, error)
	// Top returns players ordered by score descending; ties keep storage order.
	Top(ctx context.Context, limit int) ([]domain.Player, error)
	TopWithin(ctx context.Context, userIDs []string, limit int) ([]domain.Player, error)
	CountAbove(ctx context.Context, score int) (int, error)
	CountAboveWithin(ctx context.Context, score int, userIDs []string) (int, error)
}

// Conversation is a transport-provided exchange with one author in one channel.
type Conversation interface {
	Reply(ctx context.Context, text string) error
	// Ask sends text, then blocks until a message from the same author and channel
	// satisfies accept, or returns domain.ErrResponseTimeout after timeout.
	Ask(ctx context.Context, text string, accept func(domain.Message) bool, timeout time.Duration) (domain.Message, error)
}

// Invoker identifies the user behind a command.
type Invoker struct {
	UserID      string
	DisplayName string
}
