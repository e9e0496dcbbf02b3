package models

import "time"

// Patient строка таблицы patients
type Patient struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	DOB       string
	Sex       string
	Phone     string // нормализованный номер, только цифры
}

// Consultation строка таблицы consultations.
// Data хранится как JSON объект.
type Consultation struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]any
	ID        string
	PatientID string
	Status    string
	VisitType string
	Location  string
	Language  string
}

// Guide образовательная памятка
type Guide struct {
	CreatedAt    time.Time
	Translations []GuideTranslation
	Title        string
	Description  string
	Category     string
	ID           int64
}

// GuideTranslation перевод памятки на другой язык
type GuideTranslation struct {
	Language    string
	Title       string
	Description string
}

// Message запись об отправленном сообщении WhatsApp
type Message struct {
	CreatedAt time.Time
	ID        string
	Number    string
	Body      string
	Status    string
	Error     string
}

// Статусы доставки сообщения в relay
const (
	MessageStatusPending = "pending" // записано, relay еще не ответил
	MessageStatusQueued  = "queued"  // relay принял сообщение
	MessageStatusFailed  = "failed"
)
