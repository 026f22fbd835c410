package moderator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vigia/backend/internal/models"
)

// Reviewer resolves pending report and sensitive-message events. Approval
// replays the event through the escalation engine as a regular warning;
// rejection only marks the event and leaves an audit trail.
type Reviewer struct {
	engine *Engine
	events *EventLog
}

func NewReviewer(engine *Engine, events *EventLog) *Reviewer {
	return &Reviewer{engine: engine, events: events}
}

// Approve converts a pending event into a warning. The payload fields of
// manual reports and automatic detections differ, so each field falls
// back from the report variant to the detection variant. The current
// review status is not checked; approving an already approved event
// applies another warning.
func (r *Reviewer) Approve(ctx context.Context, id uuid.UUID, comment string) (models.Event, error) {
	ev, err := r.events.Get(id)
	if err != nil {
		return models.Event{}, err
	}

	userID := ev.Dados.ReportedID
	if userID == "" {
		userID = ev.Dados.UserID
	}
	userName := ev.Dados.ReportedName
	if userName == "" {
		userName = ev.Dados.User
	}
	if userName == "" {
		userName = "N/A"
	}
	groupID := ev.Dados.GroupID
	groupName := ev.Dados.Group
	if groupName == "" {
		groupName = "N/A"
	}
	message := ev.Dados.ReportMessage
	if message == "" {
		message = ev.Dados.Message
	}
	reason := ev.Dados.ReportReason
	if reason == "" {
		reason = ev.Tipo
	}

	if userID == "" || groupID == "" || message == "" {
		return models.Event{}, ErrInsufficientData
	}

	composite := fmt.Sprintf("Denúncia aprovada: %s. Comentário: %s", reason, comment)
	if _, err := r.engine.RecordWarning(ctx, WarningInput{
		UserID:    userID,
		UserName:  userName,
		GroupID:   groupID,
		GroupName: groupName,
		Message:   message,
		Reason:    composite,
	}); err != nil {
		return models.Event{}, err
	}

	return r.events.SetReviewStatus(id, models.ReviewApproved, comment)
}

// Reject marks a pending event as dismissed and records a separate
// rejection event for the audit trail.
func (r *Reviewer) Reject(id uuid.UUID, comment string) (models.Event, error) {
	ev, err := r.events.SetReviewStatus(id, models.ReviewRejected, comment)
	if err != nil {
		return models.Event{}, err
	}

	reason := ev.Dados.ReportReason
	if reason == "" {
		reason = ev.Tipo
	}
	r.events.Append(models.EventReportRejected, models.EventData{
		ReportedName:     ev.Dados.ReportedName,
		ReportedID:       ev.Dados.ReportedID,
		GroupID:          ev.Dados.GroupID,
		Group:            ev.Dados.Group,
		ModeratorComment: comment,
		OriginalEventID:  ev.ID.String(),
		OriginalReason:   reason,
	})
	return ev, nil
}
