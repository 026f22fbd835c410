package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/moderator"
)

// Review actions accepted by the panel
const (
	reviewApprove = "aprovar_advertencia"
	reviewReject  = "rejeitar_denuncia"
)

type EventHandler struct {
	events   *moderator.EventLog
	reviewer *moderator.Reviewer
}

func NewEventHandler(events *moderator.EventLog, reviewer *moderator.Reviewer) *EventHandler {
	return &EventHandler{events: events, reviewer: reviewer}
}

// ListEvents returns the audit log, newest first
func (h *EventHandler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.events.List())
}

// ListReports returns only the report-related events
func (h *EventHandler) ListReports(c *gin.Context) {
	reports := []models.Event{}
	for _, e := range h.events.List() {
		if strings.HasPrefix(e.Tipo, "denuncia") {
			reports = append(reports, e)
		}
	}
	c.JSON(http.StatusOK, reports)
}

// RegisterReport files a manual report from the panel, pending review
func (h *EventHandler) RegisterReport(c *gin.Context) {
	var req models.ManualReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Nome do denunciado, motivo e mensagem da infração são obrigatórios.")
		return
	}

	if req.GroupName == "" {
		req.GroupName = "N/A"
	}
	if req.GroupID == "" {
		req.GroupID = "N/A"
	}
	if req.ReportedID == "" {
		req.ReportedID = "N/A"
	}
	if req.OccurredAt == "" {
		req.OccurredAt = time.Now().Format(time.RFC3339)
	}
	if req.ReporterInfo == "" {
		req.ReporterInfo = "Painel de Moderação"
	}

	h.events.Append(models.EventManualReport, models.EventData{
		Group:         req.GroupName,
		GroupID:       req.GroupID,
		ReportedName:  req.ReportedName,
		ReportedID:    req.ReportedID,
		ReportReason:  req.Reason,
		ReportMessage: req.Message,
		OccurredAt:    req.OccurredAt,
		ReporterInfo:  req.ReporterInfo,
		ReviewStatus:  models.ReviewPending,
	})

	OK(c, "Denúncia registrada manualmente e aguardando revisão.", nil)
}

// ReviewEvent resolves a pending event as approved or rejected
func (h *EventHandler) ReviewEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusNotFound, "Evento não encontrado.")
		return
	}

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Ação de revisão inválida.")
		return
	}

	comment := req.ComentarioModerador
	if comment == "" {
		comment = "N/A"
	}

	switch req.Acao {
	case reviewApprove:
		if _, err := h.reviewer.Approve(c.Request.Context(), id, comment); err != nil {
			switch err {
			case moderator.ErrEventNotFound:
				Fail(c, http.StatusNotFound, "Evento não encontrado.")
			case moderator.ErrInsufficientData:
				Fail(c, http.StatusBadRequest, "Dados insuficientes no evento para aplicar advertência.")
			default:
				Fail(c, http.StatusInternalServerError, "Erro ao aplicar advertência.")
			}
			return
		}
		OK(c, "Denúncia aprovada, advertência aplicada.", nil)

	case reviewReject:
		if _, err := h.reviewer.Reject(id, comment); err != nil {
			if err == moderator.ErrEventNotFound {
				Fail(c, http.StatusNotFound, "Evento não encontrado.")
				return
			}
			Fail(c, http.StatusInternalServerError, "Erro ao rejeitar denúncia.")
			return
		}
		OK(c, "Denúncia rejeitada.", nil)

	default:
		Fail(c, http.StatusBadRequest, "Ação de revisão inválida.")
	}
}
