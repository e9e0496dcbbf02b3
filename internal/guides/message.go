package guides

import (
	"fmt"
	"strings"
)

// MessageOptions параметры текста уведомления
type MessageOptions struct {
	BaseURL    string // публичный сайт клиники, например https://ortho.life
	DoctorName string
	Language   string
}

// ComposeCompletionMessage собирает текст WhatsApp уведомления о завершении
// консультации: ссылки на рецепт и портал пациента плюс подобранные памятки.
// Строки без найденной памятки в сообщение не попадают.
func ComposeCompletionMessage(patientName, phone string, matches []MatchedGuide, opts MessageOptions) string {
	base := strings.TrimRight(opts.BaseURL, "/")
	doctor := opts.DoctorName
	if doctor == "" {
		doctor = "your doctor"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n", strings.TrimSpace(patientName))
	fmt.Fprintf(&b, "Your consultation with %s has concluded.\n\n", doctor)
	b.WriteString("You can now-\n")
	b.WriteString("- Download your prescription -\n\n")
	fmt.Fprintf(&b, "%s/prescription/%s\n\n", base, phone)
	b.WriteString("- Read diet & exercise advice\n")
	b.WriteString("- Order medicines & tests at-\n\n")
	fmt.Fprintf(&b, "%s/p/%s", base, phone)

	linked := make([]MatchedGuide, 0, len(matches))
	for _, m := range matches {
		if m.Guide != nil && m.Link != "" {
			linked = append(linked, m)
		}
	}
	if len(linked) > 0 {
		b.WriteString("\n\nGuides for you:\n")
		for i, m := range linked {
			fmt.Fprintf(&b, "- %s: %s", m.Guide.Title, m.Link)
			if i < len(linked)-1 {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
