package models

import "fmt"

// Escalation actions configurable on the panel
const (
	ActionAlert = "alerta"
	ActionMute  = "silenciar"
	ActionKick  = "expulsar"
)

// Settings is the moderation rule configuration (singleton)
type Settings struct {
	Limite int    `json:"limite" db:"limite"`
	Acao   string `json:"acao" db:"acao"`
}

// Validate checks the configuration invariants
func (s *Settings) Validate() error {
	if s.Limite < 1 {
		return fmt.Errorf("limite must be at least 1")
	}
	switch s.Acao {
	case ActionAlert, ActionMute, ActionKick:
		return nil
	default:
		return fmt.Errorf("unknown acao: %q", s.Acao)
	}
}

type UpdateSettingsRequest struct {
	Limite *int    `json:"limite" binding:"required"`
	Acao   *string `json:"acao" binding:"required"`
}
