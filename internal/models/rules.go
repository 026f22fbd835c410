package models

// Word kinds stored in the words table
const (
	WordForbidden = "proibida"
	WordSensitive = "sensivel"
)

type AddWordRequest struct {
	Palavra string `json:"palavra" binding:"required"`
}

type AddGroupRequest struct {
	Grupo string `json:"grupo" binding:"required"`
}

type BanRequest struct {
	UserID  string `json:"usuarioId" binding:"required"`
	GroupID string `json:"grupoId"`
}

// TargetRequest identifies a (user, group) pair for manual actions
type TargetRequest struct {
	UserID  string `json:"usuarioId" binding:"required"`
	GroupID string `json:"grupoId" binding:"required"`
}

// GroupInfo describes a group the bridge account participates in
type GroupInfo struct {
	ID         string `json:"id"`
	Name       string `json:"nome"`
	BotIsAdmin bool   `json:"botIsAdmin"`
}
