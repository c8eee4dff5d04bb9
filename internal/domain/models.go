package domain

import "time"

// Player is a participant's long-lived progression record.
type Player struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"displayName"`
	Score         int       `json:"score"`
	DailyAttempts int       `json:"dailyAttempts"`
	LastPlayedAt  time.Time `json:"lastPlayedAt"`
}

// RoundItem is a stored passage with its ground-truth provenance.
type RoundItem struct {
	ID        string    `json:"id" yaml:"id"`
	Prompt    string    `json:"prompt" yaml:"prompt"`
	Answer    string    `json:"answer" yaml:"answer"`
	IsAI      bool      `json:"isAi" yaml:"is_ai"`
	AuthorID  *string   `json:"authorId,omitempty" yaml:"author_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

// Resolution is the single delta applied to a player when a round resolves.
type Resolution struct {
	PlayerID    string
	DisplayName string
	Correct     bool
	ResolvedAt  time.Time
	// DailyLimit caps DailyAttempts within one UTC day; zero leaves it uncapped.
	DailyLimit int
}

// LeaderboardEntry is a ranked view of a player.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Message is an inbound chat message as seen by the game.
type Message struct {
	ID         string
	AuthorID   string
	AuthorName string
	ChannelID  string
	GuildID    string
	Content    string
	ReceivedAt time.Time
}

// Guess is a player's classification of a passage.
type Guess string

const (
	GuessAI    Guess = "ai"
	GuessHuman Guess = "human"
)
