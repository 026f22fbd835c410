package moderator

import (
	"context"
	"sync"

	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
)

type sentMessage struct {
	ChatID   string
	Text     string
	Mentions []string
}

type fakeGateway struct {
	ready     bool
	isAdmin   bool
	adminErr  error
	removeErr error
	deleteErr error
	sendErr   error
	admins    []gateway.Participant
	names     map[string]string

	sent    []sentMessage
	deleted []gateway.MessageRef
	removed map[string][]string
}

func (g *fakeGateway) Ready() bool { return g.ready }

func (g *fakeGateway) SendMessage(_ context.Context, chatID, text string, mentions []string) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{ChatID: chatID, Text: text, Mentions: mentions})
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, ref gateway.MessageRef, _ bool) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, ref)
	return nil
}

func (g *fakeGateway) RemoveParticipants(_ context.Context, chatID string, userIDs []string) error {
	if g.removeErr != nil {
		return g.removeErr
	}
	if g.removed == nil {
		g.removed = make(map[string][]string)
	}
	g.removed[chatID] = append(g.removed[chatID], userIDs...)
	return nil
}

func (g *fakeGateway) GroupAdmins(_ context.Context, _ string) ([]gateway.Participant, error) {
	if g.adminErr != nil {
		return nil, g.adminErr
	}
	return g.admins, nil
}

func (g *fakeGateway) IsBotAdmin(_ context.Context, _ string) (bool, error) {
	if g.adminErr != nil {
		return false, g.adminErr
	}
	return g.isAdmin, nil
}

func (g *fakeGateway) ContactName(_ context.Context, userID string) (string, error) {
	if name, ok := g.names[userID]; ok {
		return name, nil
	}
	return userID, nil
}

func (g *fakeGateway) ListGroups(_ context.Context) ([]models.GroupInfo, error) {
	return nil, nil
}

type fakeRules struct {
	settings   models.Settings
	forbidden  []string
	sensitive  []string
	authorized map[string]bool
}

func (r *fakeRules) Settings() models.Settings { return r.settings }
func (r *fakeRules) ForbiddenWords() []string  { return r.forbidden }
func (r *fakeRules) SensitiveWords() []string  { return r.sensitive }
func (r *fakeRules) IsGroupAuthorized(groupID, groupName string) bool {
	return r.authorized[groupID] || r.authorized[groupName]
}

type fakeWarnings struct {
	mu        sync.Mutex
	records   map[string]models.Warning
	getErr    error
	upsertErr error
}

func warningKey(userID, groupID string) string { return userID + "|" + groupID }

func (s *fakeWarnings) Get(userID, groupID string) (*models.Warning, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.records[warningKey(userID, groupID)]; ok {
		copied := w
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeWarnings) Upsert(w *models.Warning) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string]models.Warning)
	}
	s.records[warningKey(w.UserID, w.GroupID)] = *w
	return nil
}

func (s *fakeWarnings) Delete(userID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := warningKey(userID, groupID)
	if _, ok := s.records[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

type fakeLimiter struct {
	allow bool
	calls int
}

func (l *fakeLimiter) AllowAction(_, _ string, _, _ int) (bool, error) {
	l.calls++
	return l.allow, nil
}

// countEvents counts the log entries of one type
func countEvents(log *EventLog, tipo string) int {
	n := 0
	for _, e := range log.List() {
		if e.Tipo == tipo {
			n++
		}
	}
	return n
}

// lastEvent returns the newest log entry of one type
func lastEvent(log *EventLog, tipo string) (models.Event, bool) {
	for _, e := range log.List() {
		if e.Tipo == tipo {
			return e, true
		}
	}
	return models.Event{}, false
}
