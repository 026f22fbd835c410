package moderator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
)

// RulesSource provides the current moderation rules
type RulesSource interface {
	Settings() models.Settings
	ForbiddenWords() []string
	SensitiveWords() []string
	IsGroupAuthorized(groupID, groupName string) bool
}

// WarningStore is the warning ledger persistence
type WarningStore interface {
	Get(userID, groupID string) (*models.Warning, error)
	Upsert(w *models.Warning) error
	Delete(userID, groupID string) error
}

// WarningInput carries one offense into the engine
type WarningInput struct {
	UserID    string
	UserName  string
	GroupID   string
	GroupName string
	Message   string
	Reason    string
}

// Engine is the warning/escalation state machine. It owns every mutation
// of the warning ledger and serializes them per (user, group) pair, so
// near-simultaneous offenses by the same user cannot race the count.
// Notification side effects are best-effort: each failure becomes its own
// audit event and never aborts the warning.
type Engine struct {
	warnings WarningStore
	rules    RulesSource
	events   *EventLog
	gw       gateway.Gateway

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(warnings WarningStore, rules RulesSource, events *EventLog, gw gateway.Gateway) *Engine {
	return &Engine{
		warnings: warnings,
		rules:    rules,
		events:   events,
		gw:       gw,
		locks:    make(map[string]*sync.Mutex),
	}
}

// pairLock returns the mutex serializing one (user, group) pair
func (e *Engine) pairLock(userID, groupID string) *sync.Mutex {
	key := userID + "|" + groupID

	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks[key] = l
	return l
}

// RecordWarning applies one warning to a (user, group) pair: appends the
// message to the record's history, increments the count, persists,
// notifies the offender and the group admins, and escalates when the
// configured threshold is reached. It never fails on notification errors.
func (e *Engine) RecordWarning(ctx context.Context, in WarningInput) (*models.Warning, error) {
	lock := e.pairLock(in.UserID, in.GroupID)
	lock.Lock()
	defer lock.Unlock()

	warning, err := e.warnings.Get(in.UserID, in.GroupID)
	if err == repository.ErrNotFound {
		warning = &models.Warning{
			UserID:    in.UserID,
			UserName:  in.UserName,
			GroupID:   in.GroupID,
			GroupName: in.GroupName,
			Messages:  []string{},
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load warning record: %w", err)
	}

	warning.Messages = append(warning.Messages, in.Message)
	warning.Count++
	warning.UpdatedAt = time.Now()
	if in.UserName != "" {
		warning.UserName = in.UserName
	}
	if in.GroupName != "" {
		warning.GroupName = in.GroupName
	}

	if err := e.warnings.Upsert(warning); err != nil {
		// Durability risk accepted: the warning proceeds on the in-memory
		// record so notifications and escalation still happen.
		log.Printf("[ADVERTENCIA] Failed to persist warning for %s in %s: %v", in.UserID, in.GroupID, err)
	}

	settings := e.rules.Settings()

	e.events.Append(models.EventWarningApplied, models.EventData{
		User:     warning.UserName,
		UserID:   warning.UserID,
		Group:    warning.GroupName,
		GroupID:  warning.GroupID,
		Reason:   in.Reason,
		Original: in.Message,
		Count:    warning.Count,
	})
	log.Printf("[ADVERTENCIA] %d/%d aplicada a %s no grupo %s. Motivo: %s",
		warning.Count, settings.Limite, warning.UserName, warning.GroupName, in.Reason)

	e.notifyOffender(ctx, warning, in, settings)
	e.notifyAdmins(ctx, warning, in, settings)

	if warning.Count >= settings.Limite {
		e.ResolveEscalation(ctx, warning, in.Message)
	}

	return warning, nil
}

// notifyOffender sends the private warning message (best-effort)
func (e *Engine) notifyOffender(ctx context.Context, w *models.Warning, in WarningInput, settings models.Settings) {
	if !e.gw.Ready() {
		log.Printf("[AVISO] Gateway not ready, skipping private warning for %s", w.UserName)
		return
	}

	text := fmt.Sprintf("🔔 *ADVERTÊNCIA* 🔔\n\n"+
		"Você recebeu uma advertência por comportamento inadequado no grupo \"%s\".\n"+
		"*Motivo:* %s\n"+
		"*Mensagem original:* \"%s\"\n"+
		"Esta é a sua advertência *%d de %d* permitidas.\n\n"+
		"Por favor, reveja as regras do grupo para evitar futuras sanções.",
		w.GroupName, in.Reason, in.Message, w.Count, settings.Limite)

	if err := e.gw.SendMessage(ctx, w.UserID, text, nil); err != nil {
		log.Printf("[ERRO] Failed to send private warning to %s: %v", w.UserName, err)
		e.events.Append(models.EventPrivateNotifyFailed, models.EventData{
			UserID:  w.UserID,
			GroupID: w.GroupID,
			Error:   err.Error(),
		})
		return
	}

	e.events.Append(models.EventPrivateNotifySent, models.EventData{
		UserID:  w.UserID,
		GroupID: w.GroupID,
		Count:   w.Count,
	})
}

// notifyAdmins alerts the other group admins about the warning (best-effort)
func (e *Engine) notifyAdmins(ctx context.Context, w *models.Warning, in WarningInput, settings models.Settings) {
	if !e.gw.Ready() {
		return
	}

	mentions, err := e.adminMentions(ctx, w.GroupID, w.UserID)
	if err != nil {
		log.Printf("[ERRO] Failed to list admins for %s: %v", w.GroupName, err)
		e.events.Append(models.EventAdminNotifyFailed, models.EventData{
			UserID:  w.UserID,
			GroupID: w.GroupID,
			Error:   err.Error(),
		})
		return
	}
	if len(mentions) == 0 {
		log.Printf("[INFO] No other admins in group %s to notify", w.GroupName)
		return
	}

	text := fmt.Sprintf("🔔 *Alerta de Moderação para Admins* 🔔\n"+
		"O utilizador @%s (%s) recebeu uma advertência (%d/%d).\n"+
		"*Motivo:* %s.\n"+
		"*Mensagem:* \"%s\"",
		mentionTag(w.UserID), w.UserName, w.Count, settings.Limite, in.Reason, in.Message)

	if err := e.gw.SendMessage(ctx, w.GroupID, text, append([]string{w.UserID}, mentions...)); err != nil {
		log.Printf("[ERRO] Failed to notify admins in %s: %v", w.GroupName, err)
		e.events.Append(models.EventAdminNotifyFailed, models.EventData{
			UserID:  w.UserID,
			GroupID: w.GroupID,
			Error:   err.Error(),
		})
		return
	}

	e.events.Append(models.EventAdminNotifySent, models.EventData{
		UserID:  w.UserID,
		GroupID: w.GroupID,
		Count:   w.Count,
	})
}

// ResolveEscalation resolves the configured action for a pair whose count
// reached the threshold. Unknown actions behave as an alert. Transient
// kick failures are not retried automatically; the operator re-triggers
// via the panel.
func (e *Engine) ResolveEscalation(ctx context.Context, w *models.Warning, lastMessage string) {
	settings := e.rules.Settings()

	log.Printf("[REINCIDENCIA] %s atingiu %d advertências (limite: %d) no grupo %s. Ação: %s",
		w.UserName, w.Count, settings.Limite, w.GroupName, settings.Acao)
	e.events.Append(models.EventLimitReached, models.EventData{
		User:    w.UserName,
		UserID:  w.UserID,
		Group:   w.GroupName,
		GroupID: w.GroupID,
		Count:   w.Count,
		Action:  settings.Acao,
		LastMsg: lastMessage,
	})

	if !e.gw.Ready() {
		log.Println("[AVISO] Gateway not ready, escalation actions skipped")
		return
	}

	mentions, err := e.adminMentions(ctx, w.GroupID, w.UserID)
	if err != nil {
		log.Printf("[ERRO] Failed to list admins for escalation in %s: %v", w.GroupName, err)
		mentions = nil
	}
	mentions = append([]string{w.UserID}, mentions...)

	switch settings.Acao {
	case models.ActionMute:
		text := fmt.Sprintf("🔴 ATENÇÃO ADMINS: O utilizador @%s atingiu o limite de advertências. "+
			"Ação configurada: SILENCIAR. Por favor, apliquem a restrição manualmente.", mentionTag(w.UserID))
		if err := e.gw.SendMessage(ctx, w.GroupID, text, mentions); err != nil {
			log.Printf("[ERRO] Failed to send mute suggestion in %s: %v", w.GroupName, err)
		}
		e.events.Append(models.EventMuteSuggested, models.EventData{
			User:    w.UserName,
			UserID:  w.UserID,
			Group:   w.GroupName,
			GroupID: w.GroupID,
		})

	case models.ActionKick:
		e.resolveKick(ctx, w, mentions)

	default: // alerta, or anything unrecognized
		text := fmt.Sprintf("🔔 ALERTA ADMINS: O utilizador @%s atingiu o limite de advertências. "+
			"Ação configurada: APENAS ALERTA.", mentionTag(w.UserID))
		if err := e.gw.SendMessage(ctx, w.GroupID, text, mentions); err != nil {
			log.Printf("[ERRO] Failed to send limit alert in %s: %v", w.GroupName, err)
		}
		e.events.Append(models.EventAlertLimit, models.EventData{
			User:    w.UserName,
			UserID:  w.UserID,
			Group:   w.GroupName,
			GroupID: w.GroupID,
		})
	}
}

// resolveKick attempts the automatic removal branch of an escalation
func (e *Engine) resolveKick(ctx context.Context, w *models.Warning, mentions []string) {
	isAdmin, err := e.gw.IsBotAdmin(ctx, w.GroupID)
	if err != nil {
		e.kickError(ctx, w, mentions, err)
		return
	}

	if !isAdmin {
		log.Printf("[AVISO] Bot is not admin in %s, cannot kick %s", w.GroupName, w.UserName)
		text := fmt.Sprintf("🔴 ATENÇÃO ADMINS: O utilizador @%s atingiu o limite de advertências e deve ser "+
			"REMOVIDO. O bot não possui permissão para esta ação.", mentionTag(w.UserID))
		if err := e.gw.SendMessage(ctx, w.GroupID, text, mentions); err != nil {
			log.Printf("[ERRO] Failed to request manual kick in %s: %v", w.GroupName, err)
		}
		e.events.Append(models.EventKickNoPermission, models.EventData{
			User:    w.UserName,
			UserID:  w.UserID,
			Group:   w.GroupName,
			GroupID: w.GroupID,
		})
		return
	}

	if err := e.gw.RemoveParticipants(ctx, w.GroupID, []string{w.UserID}); err != nil {
		e.kickError(ctx, w, mentions, err)
		return
	}

	log.Printf("[SUCESSO] %s expulso do grupo %s", w.UserName, w.GroupName)
	text := fmt.Sprintf("ℹ️ O utilizador @%s foi REMOVIDO do grupo por atingir o limite de advertências.",
		mentionTag(w.UserID))
	if err := e.gw.SendMessage(ctx, w.GroupID, text, []string{w.UserID}); err != nil {
		log.Printf("[ERRO] Failed to announce kick in %s: %v", w.GroupName, err)
	}
	e.events.Append(models.EventUserKicked, models.EventData{
		User:    w.UserName,
		UserID:  w.UserID,
		Group:   w.GroupName,
		GroupID: w.GroupID,
	})

	// A successful kick clears the pair's record
	if err := e.warnings.Delete(w.UserID, w.GroupID); err != nil && err != repository.ErrNotFound {
		log.Printf("[ERRO] Failed to clear warnings for %s in %s: %v", w.UserID, w.GroupID, err)
	}
}

func (e *Engine) kickError(ctx context.Context, w *models.Warning, mentions []string, cause error) {
	log.Printf("[ERRO] Failed to kick %s from %s: %v", w.UserName, w.GroupName, cause)
	text := fmt.Sprintf("🔴 ATENÇÃO ADMINS: Falha ao tentar expulsar @%s automaticamente. Verifiquem.",
		mentionTag(w.UserID))
	if err := e.gw.SendMessage(ctx, w.GroupID, text, mentions); err != nil {
		log.Printf("[ERRO] Failed to report kick failure in %s: %v", w.GroupName, err)
	}
	e.events.Append(models.EventKickError, models.EventData{
		User:    w.UserName,
		UserID:  w.UserID,
		Group:   w.GroupName,
		GroupID: w.GroupID,
		Error:   cause.Error(),
	})
}

// RequestMute asks the group admins to mute a user manually (the gateway
// has no direct mute capability). Used by the panel outside the threshold
// flow.
func (e *Engine) RequestMute(ctx context.Context, userID, groupID string) error {
	if !e.gw.Ready() {
		return gateway.ErrNotReady
	}

	mentions, err := e.adminMentions(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to list group admins: %w", err)
	}

	text := fmt.Sprintf("MODERADORES: Ação de SILENCIAR solicitada para @%s neste grupo. (Ação manual requerida)",
		mentionTag(userID))
	if err := e.gw.SendMessage(ctx, groupID, text, append([]string{userID}, mentions...)); err != nil {
		return fmt.Errorf("failed to request mute: %w", err)
	}

	name, err := e.gw.ContactName(ctx, userID)
	if err != nil {
		name = ""
	}
	e.events.Append(models.EventMuteRequested, models.EventData{
		User:    name,
		UserID:  userID,
		GroupID: groupID,
	})
	return nil
}

// KickUser removes a user on the operator's behalf, clearing the pair's
// warning record on success. Returns ErrNoPermission (after notifying the
// group admins) when the bot is not admin.
func (e *Engine) KickUser(ctx context.Context, userID, groupID string) error {
	if !e.gw.Ready() {
		return gateway.ErrNotReady
	}

	name, err := e.gw.ContactName(ctx, userID)
	if err != nil {
		name = userID
	}

	isAdmin, err := e.gw.IsBotAdmin(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to check bot privileges: %w", err)
	}

	if !isAdmin {
		mentions, merr := e.adminMentions(ctx, groupID, userID)
		if merr != nil {
			mentions = nil
		}
		text := fmt.Sprintf("MODERADORES: Ação de EXPULSÃO solicitada para @%s. Bot não é admin. (Ação manual requerida)",
			mentionTag(userID))
		if serr := e.gw.SendMessage(ctx, groupID, text, append([]string{userID}, mentions...)); serr != nil {
			log.Printf("[ERRO] Failed to request manual kick in %s: %v", groupID, serr)
		}
		e.events.Append(models.EventPanelKickNoPriv, models.EventData{
			User:    name,
			UserID:  userID,
			GroupID: groupID,
		})
		return ErrNoPermission
	}

	if err := e.gw.RemoveParticipants(ctx, groupID, []string{userID}); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	e.events.Append(models.EventPanelKick, models.EventData{
		User:    name,
		UserID:  userID,
		GroupID: groupID,
	})
	if err := e.warnings.Delete(userID, groupID); err != nil && err != repository.ErrNotFound {
		log.Printf("[ERRO] Failed to clear warnings for %s in %s: %v", userID, groupID, err)
	}
	return nil
}

// RemoveBanned attempts the immediate removal that may accompany a panel
// ban. Lack of privilege is not an error here; the ban itself stands.
func (e *Engine) RemoveBanned(ctx context.Context, userID, groupID string) {
	if !e.gw.Ready() {
		return
	}

	isAdmin, err := e.gw.IsBotAdmin(ctx, groupID)
	if err != nil || !isAdmin {
		log.Printf("[AVISO] User %s banned, but bot cannot remove from group %s", userID, groupID)
		return
	}

	if err := e.gw.RemoveParticipants(ctx, groupID, []string{userID}); err != nil {
		log.Printf("[ERRO] Failed to remove banned user %s from %s: %v", userID, groupID, err)
		return
	}

	log.Printf("[SUCESSO] Banned user %s removed from group %s", userID, groupID)
	e.events.Append(models.EventBanKick, models.EventData{
		UserID:  userID,
		GroupID: groupID,
	})
}

// adminMentions lists the ids of the group admins excluding the bot
// itself and the offender.
func (e *Engine) adminMentions(ctx context.Context, groupID, offenderID string) ([]string, error) {
	admins, err := e.gw.GroupAdmins(ctx, groupID)
	if err != nil {
		return nil, err
	}

	mentions := []string{}
	for _, a := range admins {
		if a.IsMe || a.ID == offenderID {
			continue
		}
		mentions = append(mentions, a.ID)
	}
	return mentions, nil
}

// mentionTag renders a user id the way WhatsApp mentions expect
// (the id without its server suffix).
func mentionTag(userID string) string {
	if i := strings.IndexByte(userID, '@'); i >= 0 {
		return userID[:i]
	}
	return userID
}
