package database

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arcana-gg/arcana/internal/models"
)

// UpsertMatch records a session row when it is created.
func UpsertMatch(ctx context.Context, sessionID uuid.UUID, externalID string) error {
	if DB == nil {
		return nil
	}
	q := `
		INSERT INTO matches (id, external_id, status)
		VALUES ($1, $2, 'in_progress')
		ON CONFLICT (id) DO UPDATE SET status = 'in_progress'
	`
	_, err := DB.Exec(ctx, q, sessionID, externalID)
	return err
}

// RecordRoundResult persists each participant's running ledger (wins, gold)
// after a round ends, plus a per-round result row for the winner.
func RecordRoundResult(ctx context.Context, sessionID uuid.UUID, winner string, players []*models.Player) error {
	if DB == nil {
		return nil
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, p := range players {
			q := `
				INSERT INTO player_profiles (name, wins, gold)
				VALUES ($1, $2, $3)
				ON CONFLICT (name)
				DO UPDATE SET wins = $2, gold = $3, updated_at = NOW()
			`
			if _, err := tx.Exec(ctx, q, p.Name, p.Wins, p.Gold); err != nil {
				return err
			}
		}
		q := `
			INSERT INTO round_results (match_id, winner)
			VALUES ($1, $2)
		`
		_, err := tx.Exec(ctx, q, sessionID, winner)
		return err
	})
}

// RecordRoundResultAsync runs RecordRoundResult fire-and-forget; the game
// loop never blocks on the ledger.
func RecordRoundResultAsync(sessionID uuid.UUID, winner string, players []*models.Player) {
	snapshot := make([]*models.Player, len(players))
	for i, p := range players {
		cp := *p
		snapshot[i] = &cp
	}
	go func() {
		if err := RecordRoundResult(context.Background(), sessionID, winner, snapshot); err != nil {
			log.Printf("failed to record round result for session %v: %v", sessionID, err)
		}
	}()
}
