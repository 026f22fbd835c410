package moderator

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vigia/backend/internal/models"
)

func testReviewer(gw *fakeGateway) (*Reviewer, *fakeWarnings, *EventLog) {
	engine, warnings, events := testEngine(models.Settings{Limite: 10, Acao: models.ActionAlert}, gw)
	return NewReviewer(engine, events), warnings, events
}

func TestApproveManualReport(t *testing.T) {
	gw := &fakeGateway{ready: true}
	reviewer, warnings, events := testReviewer(gw)

	pending := events.Append(models.EventManualReport, models.EventData{
		ReportedName:  "Fulano",
		ReportedID:    "5511999@c.us",
		GroupID:       "grupo1@g.us",
		Group:         "Grupo Teste",
		ReportReason:  "assédio",
		ReportMessage: "mensagem ofensiva",
		ReviewStatus:  models.ReviewPending,
	})

	updated, err := reviewer.Approve(context.Background(), pending.ID, "confirmado pelos prints")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if updated.Dados.ReviewStatus != models.ReviewApproved {
		t.Errorf("ReviewStatus = %q, want %q", updated.Dados.ReviewStatus, models.ReviewApproved)
	}

	w, err := warnings.Get("5511999@c.us", "grupo1@g.us")
	if err != nil {
		t.Fatalf("approval must apply a warning: %v", err)
	}
	if w.Count != 1 {
		t.Errorf("Count = %d, want 1", w.Count)
	}

	ev, ok := lastEvent(events, models.EventWarningApplied)
	if !ok {
		t.Fatal("expected the warning event")
	}
	if !strings.Contains(ev.Dados.Reason, "Denúncia aprovada: assédio") {
		t.Errorf("Reason = %q, want the report reason inside the composite", ev.Dados.Reason)
	}
	if !strings.Contains(ev.Dados.Reason, "confirmado pelos prints") {
		t.Errorf("Reason = %q, want the moderator comment inside the composite", ev.Dados.Reason)
	}
}

func TestApproveSensitiveDetectionFallbackFields(t *testing.T) {
	gw := &fakeGateway{ready: true}
	engine, warns, log := testEngine(models.Settings{Limite: 10, Acao: models.ActionAlert}, gw)
	r := NewReviewer(engine, log)

	pending := log.Append(models.EventSensitiveDetected, models.EventData{
		User:         "Beltrano",
		UserID:       "5511888@c.us",
		GroupID:      "grupo2@g.us",
		Group:        "Outro Grupo",
		Message:      "conteúdo sensível",
		Word:         "briga",
		ReviewStatus: models.ReviewPending,
	})

	if _, err := r.Approve(context.Background(), pending.ID, "procede"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	w, err := warns.Get("5511888@c.us", "grupo2@g.us")
	if err != nil {
		t.Fatalf("approval must fall back to the detection fields: %v", err)
	}
	if len(w.Messages) != 1 || w.Messages[0] != "conteúdo sensível" {
		t.Errorf("Messages = %v, want the detected message", w.Messages)
	}
}

func TestApproveInsufficientData(t *testing.T) {
	tests := []struct {
		name  string
		dados models.EventData
	}{
		{
			name: "only a name",
			dados: models.EventData{
				ReportedName: "Fulano",
			},
		},
		{
			name: "missing group",
			dados: models.EventData{
				ReportedName:  "Fulano",
				ReportedID:    "5511999@c.us",
				ReportMessage: "mensagem ofensiva",
			},
		},
		{
			name: "missing message",
			dados: models.EventData{
				ReportedName: "Fulano",
				ReportedID:   "5511999@c.us",
				GroupID:      "grupo1@g.us",
				ReportReason: "spam",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{ready: true}
			reviewer, warnings, events := testReviewer(gw)

			tt.dados.ReviewStatus = models.ReviewPending
			pending := events.Append(models.EventManualReport, tt.dados)

			if _, err := reviewer.Approve(context.Background(), pending.ID, ""); err != ErrInsufficientData {
				t.Errorf("Approve() error = %v, want ErrInsufficientData", err)
			}
			if len(warnings.records) != 0 {
				t.Errorf("warning records = %d, want 0", len(warnings.records))
			}
			ev, err := events.Get(pending.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if ev.Dados.ReviewStatus != models.ReviewPending {
				t.Errorf("ReviewStatus = %q, want %q", ev.Dados.ReviewStatus, models.ReviewPending)
			}
		})
	}
}

func TestApproveUnknownEvent(t *testing.T) {
	gw := &fakeGateway{ready: true}
	reviewer, _, _ := testReviewer(gw)

	if _, err := reviewer.Approve(context.Background(), uuid.New(), ""); err != ErrEventNotFound {
		t.Errorf("Approve() error = %v, want ErrEventNotFound", err)
	}
}

func TestRejectMarksAndAudits(t *testing.T) {
	gw := &fakeGateway{ready: true}
	reviewer, warnings, events := testReviewer(gw)

	pending := events.Append(models.EventManualReport, models.EventData{
		ReportedName: "Fulano",
		ReportedID:   "5511999@c.us",
		GroupID:      "grupo1@g.us",
		ReportReason: "spam",
		ReviewStatus: models.ReviewPending,
	})

	updated, err := reviewer.Reject(pending.ID, "sem evidências")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if updated.Dados.ReviewStatus != models.ReviewRejected {
		t.Errorf("ReviewStatus = %q, want %q", updated.Dados.ReviewStatus, models.ReviewRejected)
	}

	if len(warnings.records) != 0 {
		t.Error("rejection must not apply a warning")
	}

	audit, ok := lastEvent(events, models.EventReportRejected)
	if !ok {
		t.Fatal("expected the rejection audit event")
	}
	if audit.Dados.OriginalEventID != pending.ID.String() {
		t.Errorf("OriginalEventID = %q, want the reviewed event id", audit.Dados.OriginalEventID)
	}
	if audit.Dados.OriginalReason != "spam" {
		t.Errorf("OriginalReason = %q, want the report reason", audit.Dados.OriginalReason)
	}
}
