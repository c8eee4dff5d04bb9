package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ai-or-human-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Player hashes: HSET aihuman:player:{id} display_name score daily_attempts last_played_at(ms)
// Leaderboard:   ZADD aihuman:leaderboard {score} {id}
const (
	fieldName   = "display_name"
	fieldScore  = "score"
	fieldDaily  = "daily_attempts"
	fieldLastMs = "last_played_at"
)

// quotaReached is the script reply when the player already used today's cap.
const quotaReached = "quota"

// resolveScript applies a round resolution to one player hash and mirrors the
// score into the leaderboard set. Returns nil when the player does not exist.
var resolveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local last = tonumber(redis.call('HGET', KEYS[1], 'last_played_at') or '0')
local daily = tonumber(redis.call('HGET', KEYS[1], 'daily_attempts') or '0')
if last < tonumber(ARGV[1]) then
	daily = 0
end
local limit = tonumber(ARGV[6])
if limit > 0 and daily >= limit then
	return 'quota'
end
daily = daily + 1
redis.call('HSET', KEYS[1], 'daily_attempts', daily, 'last_played_at', ARGV[2])
if ARGV[4] ~= '' then
	redis.call('HSET', KEYS[1], 'display_name', ARGV[4])
end
local score = redis.call('HINCRBY', KEYS[1], 'score', tonumber(ARGV[3]))
redis.call('ZADD', KEYS[2], score, ARGV[5])
return score
`)

// PlayerRepository stores players in Redis hashes with a sorted-set leaderboard.
type PlayerRepository struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) *PlayerRepository {
	return &PlayerRepository{client: client}
}

func (r *PlayerRepository) GetOrCreate(ctx context.Context, userID, displayName string) (domain.Player, error) {
	key := playerKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, fieldName, displayName)
		pipe.HSetNX(ctx, key, fieldScore, 0)
		pipe.HSetNX(ctx, key, fieldDaily, 0)
		pipe.HSetNX(ctx, key, fieldLastMs, 0)
		pipe.ZAddNX(ctx, leaderboardKey(), redis.Z{Score: 0, Member: userID})
		return nil
	})
	if err != nil {
		return domain.Player{}, fmt.Errorf("create player: %w", err)
	}
	return r.get(ctx, userID)
}

func (r *PlayerRepository) ApplyResolution(ctx context.Context, res domain.Resolution) (domain.Player, error) {
	delta := 0
	if res.Correct {
		delta = 1
	}
	reply, err := resolveScript.Run(ctx, r.client,
		[]string{playerKey(res.PlayerID), leaderboardKey()},
		res.DayStart().UnixMilli(),
		res.ResolvedAt.UnixMilli(),
		delta,
		res.DisplayName,
		res.PlayerID,
		res.DailyLimit,
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		return domain.Player{}, fmt.Errorf("resolve round: %w", err)
	}
	if s, ok := reply.(string); ok && s == quotaReached {
		return domain.Player{}, domain.ErrQuotaExceeded
	}
	return r.get(ctx, res.PlayerID)
}

func (r *PlayerRepository) Top(ctx context.Context, limit int) ([]domain.Player, error) {
	ids, err := r.client.ZRevRange(ctx, leaderboardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return r.getMany(ctx, ids)
}

func (r *PlayerRepository) TopWithin(ctx context.Context, userIDs []string, limit int) ([]domain.Player, error) {
	members := toSet(userIDs)
	all, err := r.client.ZRevRange(ctx, leaderboardKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	ids := make([]string, 0, limit)
	for _, id := range all {
		if _, ok := members[id]; !ok {
			continue
		}
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	return r.getMany(ctx, ids)
}

func (r *PlayerRepository) CountAbove(ctx context.Context, score int) (int, error) {
	n, err := r.client.ZCount(ctx, leaderboardKey(), "("+strconv.Itoa(score), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count leaderboard: %w", err)
	}
	return int(n), nil
}

func (r *PlayerRepository) CountAboveWithin(ctx context.Context, score int, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	scores, err := r.client.ZMScore(ctx, leaderboardKey(), userIDs...).Result()
	if err != nil {
		return 0, fmt.Errorf("read member scores: %w", err)
	}
	count := 0
	for _, s := range scores {
		if int(s) > score {
			count++
		}
	}
	return count, nil
}

func (r *PlayerRepository) get(ctx context.Context, userID string) (domain.Player, error) {
	fields, err := r.client.HGetAll(ctx, playerKey(userID)).Result()
	if err != nil {
		return domain.Player{}, fmt.Errorf("read player: %w", err)
	}
	if len(fields) == 0 {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return decodePlayer(userID, fields), nil
}

func (r *PlayerRepository) getMany(ctx context.Context, ids []string) ([]domain.Player, error) {
	if len(ids) == 0 {
		return []domain.Player{}, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, playerKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}
	players := make([]domain.Player, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		players = append(players, decodePlayer(ids[i], fields))
	}
	return players, nil
}

func decodePlayer(userID string, fields map[string]string) domain.Player {
	p := domain.Player{ID: userID, DisplayName: fields[fieldName]}
	p.Score, _ = strconv.Atoi(fields[fieldScore])
	p.DailyAttempts, _ = strconv.Atoi(fields[fieldDaily])
	if ms, _ := strconv.ParseInt(fields[fieldLastMs], 10, 64); ms > 0 {
		p.LastPlayedAt = time.UnixMilli(ms).UTC()
	}
	return p
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
