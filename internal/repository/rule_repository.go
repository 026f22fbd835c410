package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/vigia/backend/internal/database"
	"github.com/vigia/backend/internal/models"
)

// RuleRepository persists the moderation rule sets: the escalation
// settings, the forbidden/sensitive word lists, the authorized groups
// and the ban list.
type RuleRepository struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// GetSettings loads the singleton rule configuration
func (r *RuleRepository) GetSettings() (models.Settings, error) {
	var s models.Settings
	err := r.db.QueryRow(`SELECT limite, acao FROM settings WHERE id = 1`).Scan(&s.Limite, &s.Acao)
	if err == sql.ErrNoRows {
		return models.Settings{}, ErrNotFound
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// SaveSettings replaces the singleton rule configuration
func (r *RuleRepository) SaveSettings(s models.Settings) error {
	query := `
		INSERT INTO settings (id, limite, acao, updated_at) VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET limite = $1, acao = $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(query, s.Limite, s.Acao); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ListWords returns the words of one kind in insertion order
func (r *RuleRepository) ListWords(kind string) ([]string, error) {
	rows, err := r.db.Query(`SELECT word FROM words WHERE kind = $1 ORDER BY created_at ASC`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	words := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, nil
}

// AddWord inserts a lowercased word; ErrDuplicate when it is already listed
func (r *RuleRepository) AddWord(kind, word string) error {
	query := `INSERT INTO words (kind, word, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (kind, word) DO NOTHING`
	res, err := r.db.Exec(query, kind, strings.ToLower(word))
	if err != nil {
		return fmt.Errorf("failed to add word: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicate
	}
	return nil
}

// RemoveWord deletes a word; ErrNotFound when absent
func (r *RuleRepository) RemoveWord(kind, word string) error {
	res, err := r.db.Exec(`DELETE FROM words WHERE kind = $1 AND word = $2`, kind, strings.ToLower(word))
	if err != nil {
		return fmt.Errorf("failed to remove word: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGroups returns the authorized group refs (ids or display names)
func (r *RuleRepository) ListGroups() ([]string, error) {
	rows, err := r.db.Query(`SELECT group_ref FROM authorized_groups ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// AddGroup authorizes a group; ErrDuplicate when already authorized
func (r *RuleRepository) AddGroup(groupRef string) error {
	query := `INSERT INTO authorized_groups (group_ref, created_at) VALUES ($1, NOW()) ON CONFLICT (group_ref) DO NOTHING`
	res, err := r.db.Exec(query, groupRef)
	if err != nil {
		return fmt.Errorf("failed to add group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicate
	}
	return nil
}

// RemoveGroup revokes a group authorization; ErrNotFound when absent
func (r *RuleRepository) RemoveGroup(groupRef string) error {
	res, err := r.db.Exec(`DELETE FROM authorized_groups WHERE group_ref = $1`, groupRef)
	if err != nil {
		return fmt.Errorf("failed to remove group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBanned returns the banned user ids
func (r *RuleRepository) ListBanned() ([]string, error) {
	rows, err := r.db.Query(`SELECT user_id FROM banned_users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query banned users: %w", err)
	}
	defer rows.Close()

	banned := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan banned user: %w", err)
		}
		banned = append(banned, id)
	}
	return banned, nil
}

// AddBan bans a user id. Banning an already-banned user is a no-op.
func (r *RuleRepository) AddBan(userID string) error {
	query := `INSERT INTO banned_users (user_id, created_at) VALUES ($1, NOW()) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to add ban: %w", err)
	}
	return nil
}

// RemoveBan lifts a ban; ErrNotFound when the user was not banned
func (r *RuleRepository) RemoveBan(userID string) error {
	res, err := r.db.Exec(`DELETE FROM banned_users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to remove ban: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
