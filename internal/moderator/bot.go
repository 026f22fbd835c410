package moderator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/vigia/backend/internal/cache"
	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/models"
)

const reportCommand = "!denuncia"

// Report command throttle per sender
const (
	reportRate  = 1
	reportBurst = 1
)

// ActionLimiter throttles repeated user commands
type ActionLimiter interface {
	AllowAction(senderID, action string, rate, burst int) (bool, error)
}

// Bot consumes inbound group messages and applies the moderation rules.
// It only looks at messages from authorized groups; everything else is
// ignored without logging.
type Bot struct {
	rules   RulesSource
	engine  *Engine
	events  *EventLog
	gw      gateway.Gateway
	redis   *cache.RedisClient
	limiter ActionLimiter
}

func NewBot(rules RulesSource, engine *Engine, events *EventLog, gw gateway.Gateway, redis *cache.RedisClient, limiter ActionLimiter) *Bot {
	return &Bot{
		rules:   rules,
		engine:  engine,
		events:  events,
		gw:      gw,
		redis:   redis,
		limiter: limiter,
	}
}

// Run subscribes to the gateway's inbound channel and processes messages
// until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	pubsub := b.redis.SubscribeToInbound()
	defer pubsub.Close()

	log.Println("[BOT] Moderation bot listening for messages")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Println("[BOT] Moderation bot stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Println("[BOT] Inbound subscription closed")
				return
			}

			var inbound gateway.InboundMessage
			if err := json.Unmarshal([]byte(msg.Payload), &inbound); err != nil {
				log.Printf("[BOT] Failed to decode inbound message: %v", err)
				continue
			}
			// The engine serializes per (user, group) pair, so messages
			// can be handled concurrently without racing the counts.
			go b.Process(ctx, inbound)
		}
	}
}

// Process applies the moderation pipeline to one inbound message
func (b *Bot) Process(ctx context.Context, msg gateway.InboundMessage) {
	if !msg.IsGroup {
		return
	}
	if !b.rules.IsGroupAuthorized(msg.ChatID, msg.ChatName) {
		return
	}
	if msg.SenderID == "" {
		log.Printf("[BOT] Message without sender in %s, skipping", msg.ChatName)
		return
	}

	if strings.TrimSpace(strings.ToLower(msg.Body)) == reportCommand {
		b.handleReportCommand(ctx, msg)
		return
	}

	verdict := Classify(msg.Body, b.rules.ForbiddenWords(), b.rules.SensitiveWords())
	switch verdict.Kind {
	case VerdictForbidden:
		b.handleForbidden(ctx, msg, verdict.Word)
	case VerdictSensitive:
		b.handleSensitive(msg, verdict.Word)
	}
}

// handleForbidden deletes the offending message, alerts the group and
// records a warning against the sender. Deletion failure does not stop
// the warning.
func (b *Bot) handleForbidden(ctx context.Context, msg gateway.InboundMessage, word string) {
	log.Printf("[DETECCAO] Forbidden word %q from %s in %s", word, msg.SenderName, msg.ChatName)

	deleted := true
	ref := gateway.MessageRef{ChatID: msg.ChatID, MessageID: msg.MessageID}
	if err := b.gw.DeleteMessage(ctx, ref, true); err != nil {
		deleted = false
		log.Printf("[ERRO] Failed to delete forbidden message in %s: %v", msg.ChatName, err)
		b.events.Append(models.EventDeleteFailed, models.EventData{
			Group:   msg.ChatName,
			GroupID: msg.ChatID,
			User:    msg.SenderName,
			UserID:  msg.SenderID,
			Error:   err.Error(),
		})
	}

	removed := ""
	if deleted {
		removed = " e foi removida"
	}
	text := fmt.Sprintf("🚫 @%s, a sua mensagem continha conteúdo inadequado%s. Uma advertência foi registada.",
		mentionTag(msg.SenderID), removed)
	if err := b.gw.SendMessage(ctx, msg.ChatID, text, []string{msg.SenderID}); err != nil {
		log.Printf("[ERRO] Failed to announce removal in %s: %v", msg.ChatName, err)
	}

	b.events.Append(models.EventForbiddenDetected, models.EventData{
		Group:   msg.ChatName,
		GroupID: msg.ChatID,
		User:    msg.SenderName,
		UserID:  msg.SenderID,
		Message: msg.Body,
		Word:    word,
		Deleted: deleted,
	})

	if _, err := b.engine.RecordWarning(ctx, WarningInput{
		UserID:    msg.SenderID,
		UserName:  msg.SenderName,
		GroupID:   msg.ChatID,
		GroupName: msg.ChatName,
		Message:   msg.Body,
		Reason:    fmt.Sprintf("Uso da palavra proibida: %q", word),
	}); err != nil {
		log.Printf("[ERRO] Failed to record warning for %s: %v", msg.SenderName, err)
	}
}

// handleSensitive records the detection for manual review. The message
// stays in the group and no warning is applied until a moderator
// approves.
func (b *Bot) handleSensitive(msg gateway.InboundMessage, word string) {
	log.Printf("[DETECCAO] Sensitive word %q from %s in %s, pending review", word, msg.SenderName, msg.ChatName)

	b.events.Append(models.EventSensitiveDetected, models.EventData{
		Group:        msg.ChatName,
		GroupID:      msg.ChatID,
		User:         msg.SenderName,
		UserID:       msg.SenderID,
		Message:      msg.Body,
		Word:         word,
		ReviewStatus: models.ReviewPending,
	})
}

// handleReportCommand answers !denuncia with reporting instructions,
// throttled per sender so the command cannot be spammed.
func (b *Bot) handleReportCommand(ctx context.Context, msg gateway.InboundMessage) {
	if b.limiter != nil {
		allowed, err := b.limiter.AllowAction(msg.SenderID, "denuncia", reportRate, reportBurst)
		if err != nil {
			log.Printf("[BOT] Report throttle check failed for %s: %v", msg.SenderID, err)
		} else if !allowed {
			return
		}
	}

	text := fmt.Sprintf("📝 @%s iniciou um processo de denúncia.\n"+
		"Para prosseguir, por favor, forneça detalhes respondendo a esta mensagem ou use o painel de moderação.\n\n"+
		"Detalhes necessários:\n"+
		"1. *Quem você quer denunciar?* (Nome ou @menção do utilizador)\n"+
		"2. *Qual o motivo da denúncia?*\n"+
		"3. *Qual(is) mensagem(ns) específica(s) da infração?* (Copie e cole, se possível)\n"+
		"4. *Quando ocorreu?* (Data e hora aproximada da infração)", mentionTag(msg.SenderID))
	if err := b.gw.SendMessage(ctx, msg.ChatID, text, []string{msg.SenderID}); err != nil {
		log.Printf("[ERRO] Failed to answer report command in %s: %v", msg.ChatName, err)
	}

	b.events.Append(models.EventReportCommand, models.EventData{
		Group:        msg.ChatName,
		GroupID:      msg.ChatID,
		ReporterName: msg.SenderName,
		ReporterID:   msg.SenderID,
		CommandText:  msg.Body,
	})
}
