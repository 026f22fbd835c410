package rules

import (
	"log"
	"time"

	"github.com/vigia/backend/internal/cache"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
)

// Cache keys, one per logical rule document
const (
	keySettings  = "rules:configuracoes"
	keyForbidden = "rules:palavras_proibidas"
	keySensitive = "rules:palavras_sensiveis"
	keyGroups    = "rules:grupos_autorizados"
	keyBanned    = "rules:usuarios_banidos"

	cacheTTL = 5 * time.Minute
)

// Store is the rule store: the database is the source of truth, Redis is
// an explicit read-through cache invalidated on every mutation. Storage
// read failures fall back to safe defaults so a broken database never
// stops message processing.
type Store struct {
	repo     *repository.RuleRepository
	redis    *cache.RedisClient
	defaults models.Settings
}

// NewStore creates a rule store. redis may be nil; reads then always hit
// the database.
func NewStore(repo *repository.RuleRepository, redis *cache.RedisClient, defaults models.Settings) *Store {
	return &Store{repo: repo, redis: redis, defaults: defaults}
}

// Settings returns the escalation configuration, falling back to the
// configured defaults when the row is missing or unreadable.
func (s *Store) Settings() models.Settings {
	var cached models.Settings
	if s.redis != nil {
		if ok, err := s.redis.GetJSON(keySettings, &cached); err == nil && ok {
			return cached
		}
	}

	settings, err := s.repo.GetSettings()
	if err != nil {
		if err != repository.ErrNotFound {
			log.Printf("[RULES] Failed to load settings, using defaults: %v", err)
		}
		return s.defaults
	}

	s.cacheSet(keySettings, settings)
	return settings
}

// UpdateSettings validates and replaces the escalation configuration
func (s *Store) UpdateSettings(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveSettings(settings); err != nil {
		return err
	}
	s.invalidate(keySettings)
	return nil
}

// ForbiddenWords returns the forbidden word list in insertion order
func (s *Store) ForbiddenWords() []string {
	return s.words(models.WordForbidden, keyForbidden)
}

// SensitiveWords returns the sensitive word list in insertion order
func (s *Store) SensitiveWords() []string {
	return s.words(models.WordSensitive, keySensitive)
}

func (s *Store) words(kind, cacheKey string) []string {
	var cached []string
	if s.redis != nil {
		if ok, err := s.redis.GetJSON(cacheKey, &cached); err == nil && ok {
			return cached
		}
	}

	words, err := s.repo.ListWords(kind)
	if err != nil {
		log.Printf("[RULES] Failed to load %s words, using empty list: %v", kind, err)
		return []string{}
	}

	s.cacheSet(cacheKey, words)
	return words
}

// AddWord inserts a word into one of the two lists
func (s *Store) AddWord(kind, word string) error {
	if err := s.repo.AddWord(kind, word); err != nil {
		return err
	}
	s.invalidate(keyForKind(kind))
	return nil
}

// RemoveWord deletes a word from one of the two lists
func (s *Store) RemoveWord(kind, word string) error {
	if err := s.repo.RemoveWord(kind, word); err != nil {
		return err
	}
	s.invalidate(keyForKind(kind))
	return nil
}

// AuthorizedGroups returns the group refs the bot may act on
func (s *Store) AuthorizedGroups() []string {
	var cached []string
	if s.redis != nil {
		if ok, err := s.redis.GetJSON(keyGroups, &cached); err == nil && ok {
			return cached
		}
	}

	groups, err := s.repo.ListGroups()
	if err != nil {
		log.Printf("[RULES] Failed to load authorized groups, using empty list: %v", err)
		return []string{}
	}

	s.cacheSet(keyGroups, groups)
	return groups
}

// IsGroupAuthorized reports whether a group (by id or display name) is
// on the authorized list. Messages from other groups are silently ignored.
func (s *Store) IsGroupAuthorized(groupID, groupName string) bool {
	for _, g := range s.AuthorizedGroups() {
		if g == groupID || g == groupName {
			return true
		}
	}
	return false
}

// AddGroup authorizes a group
func (s *Store) AddGroup(groupRef string) error {
	if err := s.repo.AddGroup(groupRef); err != nil {
		return err
	}
	s.invalidate(keyGroups)
	return nil
}

// RemoveGroup revokes a group authorization
func (s *Store) RemoveGroup(groupRef string) error {
	if err := s.repo.RemoveGroup(groupRef); err != nil {
		return err
	}
	s.invalidate(keyGroups)
	return nil
}

// BannedUsers returns the explicitly banned user ids
func (s *Store) BannedUsers() []string {
	var cached []string
	if s.redis != nil {
		if ok, err := s.redis.GetJSON(keyBanned, &cached); err == nil && ok {
			return cached
		}
	}

	banned, err := s.repo.ListBanned()
	if err != nil {
		log.Printf("[RULES] Failed to load banned users, using empty list: %v", err)
		return []string{}
	}

	s.cacheSet(keyBanned, banned)
	return banned
}

// Ban adds a user to the ban list (idempotent)
func (s *Store) Ban(userID string) error {
	if err := s.repo.AddBan(userID); err != nil {
		return err
	}
	s.invalidate(keyBanned)
	return nil
}

// Unban removes a user from the ban list
func (s *Store) Unban(userID string) error {
	if err := s.repo.RemoveBan(userID); err != nil {
		return err
	}
	s.invalidate(keyBanned)
	return nil
}

func (s *Store) cacheSet(key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetJSON(key, value, cacheTTL); err != nil {
		log.Printf("[RULES] Failed to cache %s: %v", key, err)
	}
}

func (s *Store) invalidate(key string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Invalidate(key); err != nil {
		log.Printf("[RULES] Failed to invalidate %s: %v", key, err)
	}
}

func keyForKind(kind string) string {
	if kind == models.WordSensitive {
		return keySensitive
	}
	return keyForbidden
}
