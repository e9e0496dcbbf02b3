// Package notify отправляет пациенту WhatsApp сообщение, когда консультация
// переходит в статус completed.
package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iudanet/clinicsync/internal/guides"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

// adviceField поле consultation_data с рекомендациями врача
const adviceField = "advice"

// GuideSource источник памяток
type GuideSource interface {
	ListGuides(ctx context.Context) ([]api.Guide, error)
}

// Messenger отправляет сообщение через сервер
type Messenger interface {
	SendMessage(ctx context.Context, req api.MessageRequest) (*api.MessageResponse, error)
}

// Preferences настройка автоотправки
type Preferences interface {
	GetAutoSend(ctx context.Context) (bool, error)
}

// Notifier реализует sync.Notifier
type Notifier struct {
	guides    GuideSource
	messenger Messenger
	prefs     Preferences
	logger    *slog.Logger
	opts      guides.MessageOptions
}

// New создает Notifier. opts.Language используется, если язык не задан
// в самой консультации.
func New(source GuideSource, messenger Messenger, prefs Preferences, logger *slog.Logger, opts guides.MessageOptions) *Notifier {
	return &Notifier{
		guides:    source,
		messenger: messenger,
		prefs:     prefs,
		logger:    logger,
		opts:      opts,
	}
}

// ConsultationCompleted отправляет уведомление, если включена автоотправка.
// Ошибки только логируются.
func (n *Notifier) ConsultationCompleted(ctx context.Context, c *api.Consultation, patient models.PatientDetails) {
	if c == nil {
		return
	}
	logger := n.logger.With(slog.String("consultation_id", c.ID))

	enabled, err := n.prefs.GetAutoSend(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to read auto-send preference", slog.Any("error", err))
		return
	}
	if !enabled {
		logger.DebugContext(ctx, "auto-send disabled, completion message not sent")
		return
	}

	name, phone := recipient(c, patient)
	if phone == "" {
		logger.WarnContext(ctx, "completion message skipped: patient has no phone")
		return
	}

	msg, err := n.Compose(ctx, c, name, phone)
	if err != nil {
		logger.WarnContext(ctx, "failed to compose completion message", slog.Any("error", err))
		return
	}

	resp, err := n.messenger.SendMessage(ctx, api.MessageRequest{Number: phone, Message: msg})
	if err != nil {
		logger.WarnContext(ctx, "failed to send completion message", slog.Any("error", err))
		return
	}
	logger.InfoContext(ctx, "completion message sent",
		slog.String("message_id", resp.ID),
		slog.String("status", resp.Status))
}

// Compose собирает текст сообщения с памятками, подобранными по рекомендациям
func (n *Notifier) Compose(ctx context.Context, c *api.Consultation, name, phone string) (string, error) {
	opts := n.opts
	if c.Language != "" {
		opts.Language = c.Language
	}

	var matches []guides.MatchedGuide
	if advice := adviceText(c.ConsultationData); advice != "" {
		list, err := n.guides.ListGuides(ctx)
		if err != nil {
			return "", err
		}
		matches = guides.Match(advice, list, opts.Language, opts.BaseURL)
	}

	return guides.ComposeCompletionMessage(name, phone, matches, opts), nil
}

func recipient(c *api.Consultation, p models.PatientDetails) (string, string) {
	name, phone := strings.TrimSpace(p.Name), strings.TrimSpace(p.Phone)
	if c.Patient != nil {
		if name == "" {
			name = c.Patient.Name
		}
		if phone == "" {
			phone = c.Patient.Phone
		}
	}
	return name, phone
}

func adviceText(data map[string]any) string {
	switch v := data[adviceField].(type) {
	case string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}
