package moderator

import "errors"

var (
	// ErrEventNotFound is returned when an event id is not in the log
	ErrEventNotFound = errors.New("event not found")
	// ErrInsufficientData is returned when an event payload lacks the
	// fields required to replay it as a warning
	ErrInsufficientData = errors.New("insufficient data in event payload")
	// ErrNoPermission is returned when the bot is not admin of the group
	// it was asked to kick from
	ErrNoPermission = errors.New("bot is not a group admin")
)
