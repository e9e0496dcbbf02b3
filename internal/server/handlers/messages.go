package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/clinicsync/internal/metrics"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/relay"
	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/internal/validation"
	"github.com/iudanet/clinicsync/pkg/api"
)

// Sender отправка сообщения в WhatsApp relay
type Sender interface {
	Send(ctx context.Context, id string, msg relay.Message) error
}

// MessageHandler принимает сообщения от клиента и передает их в relay
type MessageHandler struct {
	responder
	messages storage.MessageStorage
	sender   Sender
	metrics  *metrics.RelayMetrics
}

// NewMessageHandler создает handler сообщений. m может быть nil.
func NewMessageHandler(logger *slog.Logger, messages storage.MessageStorage, sender Sender, m *metrics.RelayMetrics) *MessageHandler {
	return &MessageHandler{
		responder: responder{logger: logger},
		messages:  messages,
		sender:    sender,
		metrics:   m,
	}
}

// Send обрабатывает POST /api/v1/messages.
// Сообщение сначала записывается в журнал, затем уходит в relay.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.MessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.sendError(w, "message is required", http.StatusBadRequest)
		return
	}
	number := validation.WhatsAppNumber(req.Number)
	if number == "" {
		h.sendError(w, "number is required", http.StatusBadRequest)
		return
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		Number:    number,
		Body:      req.Message,
		Status:    models.MessageStatusPending,
		CreatedAt: time.Now(),
	}
	if err := h.messages.SaveMessage(ctx, msg); err != nil {
		h.internalError(w, r, "failed to save message", err)
		return
	}

	sendErr := h.sender.Send(ctx, msg.ID, relay.Message{Number: number, Message: req.Message})
	if sendErr != nil {
		msg.Status = models.MessageStatusFailed
		h.updateStatus(ctx, msg.ID, msg.Status, sendErr.Error())
		h.metrics.ObserveMessage(msg.Status)

		h.logger.ErrorContext(ctx, "failed to relay message",
			slog.String("message_id", msg.ID),
			slog.Any("error", sendErr))

		if errors.Is(sendErr, relay.ErrNotConfigured) {
			h.sendError(w, "messaging relay is not configured", http.StatusServiceUnavailable)
			return
		}
		h.sendError(w, "messaging relay unavailable", http.StatusBadGateway)
		return
	}

	msg.Status = models.MessageStatusQueued
	h.updateStatus(ctx, msg.ID, msg.Status, "")
	h.metrics.ObserveMessage(msg.Status)

	h.logger.InfoContext(ctx, "message relayed", slog.String("message_id", msg.ID))

	h.sendJSON(w, api.MessageResponse{
		ID:     msg.ID,
		Number: number,
		Status: msg.Status,
	}, http.StatusOK)
}

func (h *MessageHandler) updateStatus(ctx context.Context, id, status, errText string) {
	// журнал вторичен, клиенту важен результат relay
	if err := h.messages.UpdateMessageStatus(ctx, id, status, errText); err != nil {
		h.logger.WarnContext(ctx, "failed to update message status",
			slog.String("message_id", id),
			slog.Any("error", err))
	}
}
