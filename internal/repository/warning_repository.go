package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vigia/backend/internal/database"
	"github.com/vigia/backend/internal/models"
)

// WarningRepository persists the warning ledger, one row per
// (user, group) pair. Rows are upserted in place rather than the whole
// ledger being rewritten, so concurrent offenses against different pairs
// never clobber each other.
type WarningRepository struct {
	db *database.DB
}

func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// Get loads the warning record for a pair; ErrNotFound when the pair is clean
func (r *WarningRepository) Get(userID, groupID string) (*models.Warning, error) {
	query := `
		SELECT user_id, user_name, group_id, group_name, messages, count, updated_at
		FROM warnings
		WHERE user_id = $1 AND group_id = $2
	`

	w := &models.Warning{}
	var messages []byte
	err := r.db.QueryRow(query, userID, groupID).Scan(
		&w.UserID,
		&w.UserName,
		&w.GroupID,
		&w.GroupName,
		&messages,
		&w.Count,
		&w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warning: %w", err)
	}

	if err := json.Unmarshal(messages, &w.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode warning messages: %w", err)
	}
	return w, nil
}

// Upsert writes the record for its (user, group) key
func (r *WarningRepository) Upsert(w *models.Warning) error {
	messages, err := json.Marshal(w.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode warning messages: %w", err)
	}

	query := `
		INSERT INTO warnings (user_id, user_name, group_id, group_name, messages, count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, group_id) DO UPDATE
		SET user_name = $2, group_name = $4, messages = $5, count = $6, updated_at = $7
	`
	if _, err := r.db.Exec(query, w.UserID, w.UserName, w.GroupID, w.GroupName, messages, w.Count, w.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert warning: %w", err)
	}
	return nil
}

// Delete clears the record for a pair; ErrNotFound when absent
func (r *WarningRepository) Delete(userID, groupID string) error {
	res, err := r.db.Exec(`DELETE FROM warnings WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete warning: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every warning record, most recently updated first
func (r *WarningRepository) List() ([]models.Warning, error) {
	query := `
		SELECT user_id, user_name, group_id, group_name, messages, count, updated_at
		FROM warnings
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	warnings := []models.Warning{}
	for rows.Next() {
		var w models.Warning
		var messages []byte
		if err := rows.Scan(&w.UserID, &w.UserName, &w.GroupID, &w.GroupName, &messages, &w.Count, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		if err := json.Unmarshal(messages, &w.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode warning messages: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, nil
}
