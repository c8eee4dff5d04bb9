package domain

import "time"

// StartOfUTCDay truncates t to midnight of its UTC calendar day.
func StartOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayStart is the UTC midnight that opens the resolution's quota window.
func (r Resolution) DayStart() time.Time {
	return StartOfUTCDay(r.ResolvedAt)
}

// Apply returns p with the resolution delta applied: the daily counter restarts
// when the last round was on an earlier UTC day, then counts this round.
// It returns ErrQuotaExceeded and leaves p untouched when the day's cap is used up.
func (r Resolution) Apply(p Player) (Player, error) {
	if p.LastPlayedAt.Before(r.DayStart()) {
		p.DailyAttempts = 0
	}
	if r.DailyLimit > 0 && p.DailyAttempts >= r.DailyLimit {
		return Player{}, ErrQuotaExceeded
	}
	p.DailyAttempts++
	if r.Correct {
		p.Score++
	}
	p.LastPlayedAt = r.ResolvedAt
	if r.DisplayName != "" {
		p.DisplayName = r.DisplayName
	}
	return p, nil
}
