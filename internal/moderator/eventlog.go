package moderator

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vigia/backend/internal/models"
)

// EventLogCap is how many events the audit log retains; the oldest entry
// is evicted when a new one would exceed it.
const EventLogCap = 200

// EventStore is the persistence behind the event log
type EventStore interface {
	Save(e *models.Event) error
	Update(e *models.Event) error
	Trim(max int) error
	ListRecent(max int) ([]models.Event, error)
}

// EventPublisher pushes appended events to the dashboard live feed
type EventPublisher interface {
	PublishEvent(event interface{}) error
}

// EventLog is the capped, newest-first moderation audit log. The in-memory
// slice is authoritative for reads; persistence is write-through and
// best-effort, because the log is an audit trail, not the source of truth
// for ledger state.
type EventLog struct {
	mu     sync.Mutex
	store  EventStore
	pub    EventPublisher
	recent []models.Event
}

// NewEventLog creates the log, warm-started from storage when available.
// store and pub may be nil.
func NewEventLog(store EventStore, pub EventPublisher) *EventLog {
	l := &EventLog{store: store, pub: pub}

	if store != nil {
		events, err := store.ListRecent(EventLogCap)
		if err != nil {
			log.Printf("[EVENTOS] Failed to load persisted events, starting empty: %v", err)
		} else {
			l.recent = events
		}
	}
	return l
}

// Append records a new event at the head of the log, evicting the oldest
// entry past the cap. Storage failures are logged and swallowed.
func (l *EventLog) Append(tipo string, dados models.EventData) models.Event {
	if dados.Timestamp.IsZero() {
		dados.Timestamp = time.Now()
	}
	event := models.Event{
		ID:    uuid.New(),
		Tipo:  tipo,
		Dados: dados,
	}

	l.mu.Lock()
	l.recent = append([]models.Event{event}, l.recent...)
	if len(l.recent) > EventLogCap {
		l.recent = l.recent[:EventLogCap]
	}
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Save(&event); err != nil {
			log.Printf("[EVENTOS] Failed to persist event %s: %v", tipo, err)
		} else if err := l.store.Trim(EventLogCap); err != nil {
			log.Printf("[EVENTOS] Failed to trim persisted events: %v", err)
		}
	}

	if l.pub != nil {
		if err := l.pub.PublishEvent(event); err != nil {
			log.Printf("[EVENTOS] Failed to publish event %s: %v", tipo, err)
		}
	}

	return event
}

// List returns the log, newest first
func (l *EventLog) List() []models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Event, len(l.recent))
	copy(out, l.recent)
	return out
}

// Get returns one event by id
func (l *EventLog) Get(id uuid.UUID) (models.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.recent {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, ErrEventNotFound
}

// SetReviewStatus mutates the review fields of an event in place and
// persists the change.
func (l *EventLog) SetReviewStatus(id uuid.UUID, status, comment string) (models.Event, error) {
	l.mu.Lock()
	var updated *models.Event
	for i := range l.recent {
		if l.recent[i].ID == id {
			l.recent[i].Dados.ReviewStatus = status
			l.recent[i].Dados.ModeratorComment = comment
			e := l.recent[i]
			updated = &e
			break
		}
	}
	l.mu.Unlock()

	if updated == nil {
		return models.Event{}, ErrEventNotFound
	}

	if l.store != nil {
		if err := l.store.Update(updated); err != nil {
			log.Printf("[EVENTOS] Failed to persist review status for %s: %v", id, err)
		}
	}
	return *updated, nil
}
