package models

import (
	"time"

	"github.com/google/uuid"
)

// Moderation event types. The names are the wire values the dashboard
// already understands.
const (
	EventForbiddenDetected    = "mensagem_proibida_detectada"
	EventSensitiveDetected    = "mensagem_sensivel_detectada"
	EventWarningApplied       = "advertencia_aplicada"
	EventLimitReached         = "limite_advertencias_atingido"
	EventAlertLimit           = "alerta_limite_advertencias"
	EventMuteSuggested        = "acao_sugerida_silenciar"
	EventUserKicked           = "usuario_expulso_automatico"
	EventKickNoPermission     = "falha_expulsao_automatica_sem_permissao"
	EventKickError            = "erro_expulsao_automatica"
	EventDeleteFailed         = "falha_deletar_mensagem_proibida"
	EventPrivateNotifySent    = "notificacao_privada_advertencia_enviada"
	EventPrivateNotifyFailed  = "falha_notificacao_privada_advertencia"
	EventAdminNotifySent      = "notificacao_admins_advertencia_enviada"
	EventAdminNotifyFailed    = "falha_notificacao_admins_advertencia"
	EventReportCommand        = "denuncia_iniciada_comando"
	EventManualReport         = "denuncia_manual_painel"
	EventReportRejected       = "denuncia_rejeitada_painel"
	EventMuteRequested        = "solicitacao_silenciar_usuario"
	EventPanelKick            = "usuario_expulso_painel"
	EventPanelKickNoPriv      = "tentativa_expulsao_painel_sem_permissao"
	EventBanKick              = "usuario_removido_por_ban_painel"
)

// Review statuses carried inside report/detection payloads
const (
	ReviewPending  = "pendente"
	ReviewApproved = "aprovada_advertencia_aplicada"
	ReviewRejected = "rejeitada"
)

// Event is one entry of the capped moderation audit log
type Event struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Tipo  string    `json:"tipo" db:"tipo"`
	Dados EventData `json:"dados" db:"dados"`
}

// EventData is the typed payload shared by all event variants. Fields are
// optional per variant; JSON keys match what the dashboard reads.
type EventData struct {
	Timestamp time.Time `json:"timestamp"`

	Group     string `json:"grupo,omitempty"`
	GroupID   string `json:"grupoId,omitempty"`
	User      string `json:"usuario,omitempty"`
	UserID    string `json:"usuarioId,omitempty"`
	Message   string `json:"mensagem,omitempty"`
	Word      string `json:"palavraDetectada,omitempty"`
	Deleted   bool   `json:"mensagemDeletada,omitempty"`
	Reason    string `json:"motivo,omitempty"`
	Original  string `json:"mensagemOriginal,omitempty"`
	Count     int    `json:"contagemAtual,omitempty"`
	Action    string `json:"acaoConfigurada,omitempty"`
	LastMsg   string `json:"ultimaMensagem,omitempty"`
	Error     string `json:"erro,omitempty"`

	// Manual report fields
	ReportedName  string `json:"denunciadoNome,omitempty"`
	ReportedID    string `json:"denunciadoId,omitempty"`
	ReportReason  string `json:"motivoDenuncia,omitempty"`
	ReportMessage string `json:"mensagemInfracao,omitempty"`
	OccurredAt    string `json:"dataOcorrido,omitempty"`
	ReporterInfo  string `json:"denuncianteInfo,omitempty"`
	ReporterName  string `json:"denunciante,omitempty"`
	ReporterID    string `json:"denuncianteId,omitempty"`
	CommandText   string `json:"mensagemComando,omitempty"`

	// Review workflow fields
	ReviewStatus     string `json:"statusRevisao,omitempty"`
	ModeratorComment string `json:"comentarioModerador,omitempty"`
	OriginalEventID  string `json:"eventoOriginalId,omitempty"`
	OriginalReason   string `json:"motivoOriginal,omitempty"`
}

type ReviewRequest struct {
	Acao                string `json:"acao" binding:"required"`
	ComentarioModerador string `json:"comentarioModerador"`
}

type ManualReportRequest struct {
	ReportedName  string `json:"denunciadoNome" binding:"required"`
	ReportedID    string `json:"denunciadoId"`
	Reason        string `json:"motivo" binding:"required"`
	Message       string `json:"mensagemInfracao" binding:"required"`
	OccurredAt    string `json:"dataOcorrido"`
	GroupID       string `json:"grupoId"`
	GroupName     string `json:"grupoNome"`
	ReporterInfo  string `json:"denuncianteInfo"`
}
