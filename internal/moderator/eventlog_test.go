package moderator

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/vigia/backend/internal/models"
)

func TestEventLogAppendNewestFirst(t *testing.T) {
	log := NewEventLog(nil, nil)

	log.Append(models.EventWarningApplied, models.EventData{Message: "primeira"})
	log.Append(models.EventWarningApplied, models.EventData{Message: "segunda"})

	events := log.List()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Dados.Message != "segunda" {
		t.Errorf("expected newest event first, got %q", events[0].Dados.Message)
	}
}

func TestEventLogEvictsPastCap(t *testing.T) {
	log := NewEventLog(nil, nil)

	for i := 0; i < EventLogCap+10; i++ {
		log.Append(models.EventWarningApplied, models.EventData{Message: fmt.Sprintf("msg %d", i)})
	}

	events := log.List()
	if len(events) != EventLogCap {
		t.Fatalf("expected %d events after eviction, got %d", EventLogCap, len(events))
	}
	if events[0].Dados.Message != fmt.Sprintf("msg %d", EventLogCap+9) {
		t.Errorf("newest entry = %q, want the last appended", events[0].Dados.Message)
	}
	if events[len(events)-1].Dados.Message != "msg 10" {
		t.Errorf("oldest entry = %q, want the first surviving one", events[len(events)-1].Dados.Message)
	}
}

func TestEventLogAppendSetsIDAndTimestamp(t *testing.T) {
	log := NewEventLog(nil, nil)

	event := log.Append(models.EventWarningApplied, models.EventData{})
	if event.ID == uuid.Nil {
		t.Error("expected a generated event id")
	}
	if event.Dados.Timestamp.IsZero() {
		t.Error("expected a timestamp on the event payload")
	}
}

func TestEventLogGet(t *testing.T) {
	log := NewEventLog(nil, nil)
	event := log.Append(models.EventSensitiveDetected, models.EventData{Word: "briga"})

	got, err := log.Get(event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Dados.Word != "briga" {
		t.Errorf("Get() Word = %q, want %q", got.Dados.Word, "briga")
	}

	if _, err := log.Get(uuid.New()); err != ErrEventNotFound {
		t.Errorf("Get(unknown) error = %v, want ErrEventNotFound", err)
	}
}

func TestEventLogSetReviewStatus(t *testing.T) {
	log := NewEventLog(nil, nil)
	event := log.Append(models.EventSensitiveDetected, models.EventData{ReviewStatus: models.ReviewPending})

	updated, err := log.SetReviewStatus(event.ID, models.ReviewRejected, "sem infração")
	if err != nil {
		t.Fatalf("SetReviewStatus() error = %v", err)
	}
	if updated.Dados.ReviewStatus != models.ReviewRejected {
		t.Errorf("ReviewStatus = %q, want %q", updated.Dados.ReviewStatus, models.ReviewRejected)
	}
	if updated.Dados.ModeratorComment != "sem infração" {
		t.Errorf("ModeratorComment = %q, want the review comment", updated.Dados.ModeratorComment)
	}

	// The stored entry mutated in place
	got, _ := log.Get(event.ID)
	if got.Dados.ReviewStatus != models.ReviewRejected {
		t.Error("expected the log entry itself to carry the new status")
	}

	if _, err := log.SetReviewStatus(uuid.New(), models.ReviewApproved, ""); err != ErrEventNotFound {
		t.Errorf("SetReviewStatus(unknown) error = %v, want ErrEventNotFound", err)
	}
}
