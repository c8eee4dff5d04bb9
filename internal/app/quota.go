package app

import (
	"time"

	"ai-or-human-service/internal/domain"
)

// DailyAttemptLimit is the number of resolved rounds a player gets per UTC day.
const DailyAttemptLimit = 5

// QuotaDecision is the outcome of a quota check.
type QuotaDecision struct {
	Allowed            bool
	ResetDailyAttempts bool
	// Remaining counts guesses left today, after any reset.
	Remaining int
}

// QuotaPolicy decides whether a player may start a round.
type QuotaPolicy struct {
	Limit int
}

// CanPlay applies the default policy.
func CanPlay(p domain.Player, now time.Time) QuotaDecision {
	return QuotaPolicy{Limit: DailyAttemptLimit}.CanPlay(p, now)
}

// CanPlay has no side effects; a pending reset is persisted by the next resolution.
func (q QuotaPolicy) CanPlay(p domain.Player, now time.Time) QuotaDecision {
	limit := q.limit()

	effective := p.DailyAttempts
	reset := p.LastPlayedAt.Before(domain.StartOfUTCDay(now))
	if reset {
		effective = 0
	}

	remaining := limit - effective
	if remaining < 0 {
		remaining = 0
	}
	return QuotaDecision{
		Allowed:            effective < limit,
		ResetDailyAttempts: reset,
		Remaining:          remaining,
	}
}

func (q QuotaPolicy) limit() int {
	if q.Limit <= 0 {
		return DailyAttemptLimit
	}
	return q.Limit
}
