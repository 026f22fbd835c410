package models

import "time"

// Warning accumulates offenses for one (user, group) pair.
// Message history is append-only; the record is cleared only by a
// successful kick or an explicit panel delete.
type Warning struct {
	UserID    string    `json:"usuarioId" db:"user_id"`
	UserName  string    `json:"usuarioNome" db:"user_name"`
	GroupID   string    `json:"grupoId" db:"group_id"`
	GroupName string    `json:"grupoNome" db:"group_name"`
	Messages  []string  `json:"mensagens" db:"messages"`
	Count     int       `json:"count" db:"count"`
	UpdatedAt time.Time `json:"data" db:"updated_at"`
}

type ApplyWarningRequest struct {
	Advertencia ManualWarning `json:"advertencia" binding:"required"`
}

// ManualWarning is a warning applied from the panel
type ManualWarning struct {
	UserID    string `json:"usuarioId"`
	UserName  string `json:"usuarioNome"`
	GroupID   string `json:"grupoId"`
	GroupName string `json:"grupoNome"`
	Message   string `json:"mensagem"`
	Reason    string `json:"motivo"`
}
