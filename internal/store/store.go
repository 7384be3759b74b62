// Package store is the typed adapter over postgres for the scheduling
// entities. Every committed write is announced on the change-event bus so
// the synchronization bridge can re-aggregate.
package store

import (
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"team-scheduler/internal/bus"
)

// Publisher receives change events after successful writes. A nil
// publisher disables live sync without affecting the writes themselves.
type Publisher interface {
	Publish(subj string, ev bus.Event) error
}

type Store struct {
	pool   *pgxpool.Pool
	events Publisher
}

func New(pool *pgxpool.Pool, events Publisher) *Store {
	return &Store{pool: pool, events: events}
}

// publish is fire-and-forget: the write already committed, so a failed
// announcement only costs a live refresh, never data.
func (s *Store) publish(subj string, ev bus.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subj, ev); err != nil {
		log.Printf("store: publish %s: %v", subj, err)
	}
}
