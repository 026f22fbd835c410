package repository

import (
	"encoding/json"
	"fmt"

	"github.com/vigia/backend/internal/database"
	"github.com/vigia/backend/internal/models"
)

// EventRepository persists the moderation event log
type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Save inserts a new event
func (r *EventRepository) Save(e *models.Event) error {
	dados, err := json.Marshal(e.Dados)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	query := `INSERT INTO moderation_events (id, tipo, dados, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(query, e.ID, e.Tipo, dados, e.Dados.Timestamp); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update rewrites the payload of an existing event (review mutation)
func (r *EventRepository) Update(e *models.Event) error {
	dados, err := json.Marshal(e.Dados)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	res, err := r.db.Exec(`UPDATE moderation_events SET dados = $2 WHERE id = $1`, e.ID, dados)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Trim drops everything but the newest max events
func (r *EventRepository) Trim(max int) error {
	query := `
		DELETE FROM moderation_events
		WHERE id NOT IN (
			SELECT id FROM moderation_events ORDER BY created_at DESC LIMIT $1
		)
	`
	if _, err := r.db.Exec(query, max); err != nil {
		return fmt.Errorf("failed to trim events: %w", err)
	}
	return nil
}

// ListRecent returns up to max events, newest first
func (r *EventRepository) ListRecent(max int) ([]models.Event, error) {
	query := `SELECT id, tipo, dados FROM moderation_events ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(query, max)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var dados []byte
		if err := rows.Scan(&e.ID, &e.Tipo, &dados); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal(dados, &e.Dados); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}
