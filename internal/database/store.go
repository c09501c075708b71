package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"serwer-cytatow/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool  *pgxpool.Pool
	wsHub *websocket.Hub
	*Queries
}

func NewStore(pool *pgxpool.Pool, wsHub *websocket.Hub) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		wsHub:   wsHub,
		Queries: New(pool),
	}
}

func (s *PostgresStore) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	q := New(tx)
	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}

// PublishQuoteEvent pushes a quote change to the owner's live websocket
// clients. Delivery is best effort; a marshal failure is logged, never
// surfaced to the request that caused the change.
func (s *PostgresStore) PublishQuoteEvent(ownerID int64, eventType string, payload interface{}) {
	if s.wsHub == nil {
		return
	}

	eventMsg := map[string]interface{}{
		"event_type": eventType,
		"payload":    payload,
	}
	eventBytes, err := json.Marshal(eventMsg)
	if err != nil {
		log.Printf("ERROR: failed to marshal %s event: %v", eventType, err)
		return
	}

	s.wsHub.PublishEvent(ownerID, eventBytes)
}
