package ledger

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const upsertBalance = `
	INSERT INTO balances (room_id, player_id, chips, hand_id, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (room_id, player_id) DO UPDATE
	  SET chips = EXCLUDED.chips,
	      hand_id = EXCLUDED.hand_id,
	      updated_at = EXCLUDED.updated_at`

// Postgres upserts one row per room and player
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the balances table if needed
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) ReportBalances(ctx context.Context, roomID, handID string, balances map[string]int) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for id, chips := range balances {
			batch.Queue(upsertBalance, roomID, id, chips, handID)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("report balances for room %s: %w", roomID, err)
	}
	return nil
}

// Balances reads back the balances recorded for a room
func (p *Postgres) Balances(ctx context.Context, roomID string) (map[string]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT player_id, chips FROM balances WHERE room_id = $1`, roomID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	var (
		id    string
		chips int
	)
	_, err = pgx.ForEachRow(rows, []any{&id, &chips}, func() error {
		out[id] = chips
		return nil
	})
	return out, err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
