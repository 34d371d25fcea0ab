package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis stores balances in one hash per room
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to addr, which may be a host:port or a redis:// URL
func OpenRedis(ctx context.Context, addr string) (*Redis, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedis(rdb), nil
}

// NewRedis wraps an existing client
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "holdem"}
}

func (r *Redis) balancesKey(roomID string) string {
	return r.prefix + ":room:" + roomID + ":balances"
}

func (r *Redis) lastHandKey(roomID string) string {
	return r.prefix + ":room:" + roomID + ":last_hand"
}

func (r *Redis) ReportBalances(ctx context.Context, roomID, handID string, balances map[string]int) error {
	if len(balances) == 0 {
		return nil
	}
	values := make([]any, 0, 2*len(balances))
	for id, chips := range balances {
		values = append(values, id, chips)
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.balancesKey(roomID), values...)
		pipe.Set(ctx, r.lastHandKey(roomID), handID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("report balances for room %s: %w", roomID, err)
	}
	return nil
}

// Balances reads back the balances recorded for a room
func (r *Redis) Balances(ctx context.Context, roomID string) (map[string]int, error) {
	raw, err := r.rdb.HGetAll(ctx, r.balancesKey(roomID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for id, v := range raw {
		chips, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", id, err)
		}
		out[id] = chips
	}
	return out, nil
}

// LastHand returns the id of the last hand reported for a room
func (r *Redis) LastHand(ctx context.Context, roomID string) (string, error) {
	id, err := r.rdb.Get(ctx, r.lastHandKey(roomID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
