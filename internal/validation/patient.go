package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/iudanet/clinicsync/pkg/api"
)

// Ошибки валидации карточки пациента
var (
	ErrPhoneRequired = errors.New("phone is required")
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidStatus = errors.New("invalid consultation status")
)

// countryCode добавляется к локальным десятизначным номерам
const countryCode = "91"

// NormalizePhone оставляет в номере только цифры.
// Используется как ключ дедупликации пациентов.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppNumber приводит номер к международному формату без "+":
// десятизначный локальный номер получает код страны 91.
func WhatsAppNumber(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) == 10 {
		return countryCode + digits
	}
	return digits
}

// ValidatePatient проверяет обязательные поля пациента
func ValidatePatient(name, phone, dob string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if NormalizePhone(phone) == "" {
		return ErrPhoneRequired
	}
	if dob != "" {
		if _, err := time.Parse(time.DateOnly, dob); err != nil {
			return fmt.Errorf("dob must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// ValidateStatus проверяет статус консультации; пустой статус означает "не менять"
func ValidateStatus(status string) error {
	switch status {
	case "", api.StatusPending, api.StatusUnderEvaluation, api.StatusCompleted:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}
