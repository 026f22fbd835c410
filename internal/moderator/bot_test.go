package moderator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/models"
)

func testBot(gw *fakeGateway, rules *fakeRules, limiter ActionLimiter) (*Bot, *fakeWarnings, *EventLog) {
	warnings := &fakeWarnings{}
	events := NewEventLog(nil, nil)
	engine := NewEngine(warnings, rules, events, gw)
	return NewBot(rules, engine, events, gw, nil, limiter), warnings, events
}

func groupMessage(body string) gateway.InboundMessage {
	return gateway.InboundMessage{
		MessageID:  "msg1",
		ChatID:     "grupo1@g.us",
		ChatName:   "Grupo Teste",
		IsGroup:    true,
		SenderID:   "5511999@c.us",
		SenderName: "Fulano",
		Body:       body,
	}
}

func moderatedRules() *fakeRules {
	return &fakeRules{
		settings:   models.Settings{Limite: 3, Acao: models.ActionAlert},
		forbidden:  []string{"golpe"},
		sensitive:  []string{"briga"},
		authorized: map[string]bool{"grupo1@g.us": true},
	}
}

func TestProcessIgnoresPrivateChats(t *testing.T) {
	gw := &fakeGateway{ready: true}
	bot, _, events := testBot(gw, moderatedRules(), nil)

	msg := groupMessage("isso é golpe")
	msg.IsGroup = false
	bot.Process(context.Background(), msg)

	if len(events.List()) != 0 {
		t.Error("private chats must not be moderated")
	}
}

func TestProcessIgnoresUnauthorizedGroups(t *testing.T) {
	gw := &fakeGateway{ready: true}
	bot, _, events := testBot(gw, moderatedRules(), nil)

	msg := groupMessage("isso é golpe")
	msg.ChatID = "outro@g.us"
	msg.ChatName = "Grupo Alheio"
	bot.Process(context.Background(), msg)

	if len(events.List()) != 0 {
		t.Error("unauthorized groups must not be moderated")
	}
	if len(gw.deleted) != 0 {
		t.Error("no deletions outside authorized groups")
	}
}

func TestProcessAuthorizedByName(t *testing.T) {
	gw := &fakeGateway{ready: true}
	rules := moderatedRules()
	rules.authorized = map[string]bool{"Grupo Teste": true}
	bot, _, events := testBot(gw, rules, nil)

	bot.Process(context.Background(), groupMessage("isso é golpe"))

	if countEvents(events, models.EventForbiddenDetected) != 1 {
		t.Error("groups referenced by name must be moderated too")
	}
}

func TestProcessForbiddenWord(t *testing.T) {
	gw := &fakeGateway{ready: true}
	bot, warnings, events := testBot(gw, moderatedRules(), nil)

	bot.Process(context.Background(), groupMessage("isso é golpe"))

	if len(gw.deleted) != 1 {
		t.Fatalf("expected the message deleted, got %d deletions", len(gw.deleted))
	}
	if gw.deleted[0].MessageID != "msg1" {
		t.Errorf("deleted message id = %q, want msg1", gw.deleted[0].MessageID)
	}

	ev, ok := lastEvent(events, models.EventForbiddenDetected)
	if !ok {
		t.Fatal("expected the detection event")
	}
	if ev.Dados.Word != "golpe" {
		t.Errorf("Word = %q, want golpe", ev.Dados.Word)
	}
	if !ev.Dados.Deleted {
		t.Error("Deleted must be true after a successful removal")
	}

	w, err := warnings.Get("5511999@c.us", "grupo1@g.us")
	if err != nil {
		t.Fatalf("expected a warning recorded: %v", err)
	}
	if w.Count != 1 {
		t.Errorf("Count = %d, want 1", w.Count)
	}

	warnEv, ok := lastEvent(events, models.EventWarningApplied)
	if !ok {
		t.Fatal("expected the warning event")
	}
	if !strings.Contains(warnEv.Dados.Reason, "golpe") {
		t.Errorf("Reason = %q, want the detected word in it", warnEv.Dados.Reason)
	}
}

func TestProcessForbiddenWordDeleteFailureStillWarns(t *testing.T) {
	gw := &fakeGateway{ready: true, deleteErr: errors.New("message too old")}
	bot, warnings, events := testBot(gw, moderatedRules(), nil)

	bot.Process(context.Background(), groupMessage("isso é golpe"))

	if countEvents(events, models.EventDeleteFailed) != 1 {
		t.Error("expected the delete failure event")
	}
	ev, _ := lastEvent(events, models.EventForbiddenDetected)
	if ev.Dados.Deleted {
		t.Error("Deleted must be false when removal failed")
	}
	if _, err := warnings.Get("5511999@c.us", "grupo1@g.us"); err != nil {
		t.Error("the warning must be recorded even when deletion fails")
	}
}

func TestProcessSensitiveWordPendingReview(t *testing.T) {
	gw := &fakeGateway{ready: true}
	bot, warnings, events := testBot(gw, moderatedRules(), nil)

	bot.Process(context.Background(), groupMessage("vai dar briga"))

	ev, ok := lastEvent(events, models.EventSensitiveDetected)
	if !ok {
		t.Fatal("expected the sensitive detection event")
	}
	if ev.Dados.ReviewStatus != models.ReviewPending {
		t.Errorf("ReviewStatus = %q, want %q", ev.Dados.ReviewStatus, models.ReviewPending)
	}
	if len(gw.deleted) != 0 {
		t.Error("sensitive messages must not be deleted")
	}
	if len(warnings.records) != 0 {
		t.Error("sensitive messages must not warn before review")
	}
}

func TestProcessCleanMessage(t *testing.T) {
	gw := &fakeGateway{ready: true}
	bot, _, events := testBot(gw, moderatedRules(), nil)

	bot.Process(context.Background(), groupMessage("bom dia a todos"))

	if len(events.List()) != 0 {
		t.Error("clean messages must not produce events")
	}
}

func TestReportCommand(t *testing.T) {
	gw := &fakeGateway{ready: true}
	limiter := &fakeLimiter{allow: true}
	bot, _, events := testBot(gw, moderatedRules(), limiter)

	bot.Process(context.Background(), groupMessage("!denuncia"))

	if limiter.calls != 1 {
		t.Errorf("limiter calls = %d, want 1", limiter.calls)
	}
	if countEvents(events, models.EventReportCommand) != 1 {
		t.Error("expected the report command event")
	}
	if len(gw.sent) != 1 {
		t.Fatalf("expected the instruction reply, got %d messages", len(gw.sent))
	}
	if len(gw.sent[0].Mentions) != 1 || gw.sent[0].Mentions[0] != "5511999@c.us" {
		t.Errorf("reply mentions = %v, want the sender", gw.sent[0].Mentions)
	}
}

func TestReportCommandThrottled(t *testing.T) {
	gw := &fakeGateway{ready: true}
	limiter := &fakeLimiter{allow: false}
	bot, _, events := testBot(gw, moderatedRules(), limiter)

	bot.Process(context.Background(), groupMessage("!denuncia"))

	if len(gw.sent) != 0 {
		t.Error("throttled commands must not be answered")
	}
	if countEvents(events, models.EventReportCommand) != 0 {
		t.Error("throttled commands must not produce events")
	}
}

func TestReportCommandExactMatchOnly(t *testing.T) {
	gw := &fakeGateway{ready: true}
	rules := moderatedRules()
	limiter := &fakeLimiter{allow: true}
	bot, _, events := testBot(gw, rules, limiter)

	// Whitespace and casing are tolerated, trailing text is not
	bot.Process(context.Background(), groupMessage("  !DENUNCIA  "))
	if countEvents(events, models.EventReportCommand) != 1 {
		t.Error("expected the trimmed, lowercased command to match")
	}

	bot.Process(context.Background(), groupMessage("!denuncia fulano"))
	if countEvents(events, models.EventReportCommand) != 1 {
		t.Error("a command with trailing text must not match")
	}
}

func TestReportCommandBeatsClassification(t *testing.T) {
	gw := &fakeGateway{ready: true}
	rules := moderatedRules()
	rules.forbidden = []string{"denuncia"}
	limiter := &fakeLimiter{allow: true}
	bot, _, events := testBot(gw, rules, limiter)

	bot.Process(context.Background(), groupMessage("!denuncia"))

	if countEvents(events, models.EventForbiddenDetected) != 0 {
		t.Error("the command path must short-circuit classification")
	}
	if countEvents(events, models.EventReportCommand) != 1 {
		t.Error("expected the report command event")
	}
}
