package api

import "time"

// Consultation statuses
const (
	StatusPending         = "pending"
	StatusUnderEvaluation = "under_evaluation"
	StatusCompleted       = "completed"
)

// Visit types
const (
	VisitTypePaid   = "paid"
	VisitTypeFree   = "free"
	VisitTypeReview = "review"
)

// Patient представляет карточку пациента
type Patient struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"` // YYYYMMDD + дневной счетчик
	Name      string    `json:"name"`
	DOB       string    `json:"dob,omitempty"` // YYYY-MM-DD
	Sex       string    `json:"sex,omitempty"`
	Phone     string    `json:"phone"`
}

// Consultation представляет амбулаторную консультацию
type Consultation struct {
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	ConsultationData map[string]any `json:"consultation_data"`
	Patient          *Patient       `json:"patient,omitempty"`
	ID               string         `json:"id"` // UUID
	PatientID        string         `json:"patient_id"`
	Status           string         `json:"status"`
	VisitType        string         `json:"visit_type,omitempty"`
	Location         string         `json:"location,omitempty"`
	Language         string         `json:"language,omitempty"`
}

// LastModified returns updated_at, falling back to created_at.
func (c *Consultation) LastModified() time.Time {
	if c.UpdatedAt.IsZero() {
		return c.CreatedAt
	}
	return c.UpdatedAt
}

// RegisterPatientRequest тело запроса "зарегистрировать пациента и консультацию".
// ForceNew отключает поиск существующего пациента по телефону.
type RegisterPatientRequest struct {
	Name     string `json:"name"`
	DOB      string `json:"dob,omitempty"`
	Sex      string `json:"sex,omitempty"`
	Phone    string `json:"phone"`
	ForceNew bool   `json:"force_new,omitempty"`
}

// RegisterPatientResponse ответ с созданной консультацией.
// PatientCreated=false означает что пациент найден по телефону (dedup).
type RegisterPatientResponse struct {
	Consultation   Consultation `json:"consultation"`
	PatientCreated bool         `json:"patient_created"`
}

// PatientUpdate частичное обновление пациента
type PatientUpdate struct {
	Name  *string `json:"name,omitempty"`
	DOB   *string `json:"dob,omitempty"`
	Sex   *string `json:"sex,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ConsultationUpdate частичное обновление консультации
type ConsultationUpdate struct {
	ConsultationData map[string]any `json:"consultation_data,omitempty"`
	Status           *string        `json:"status,omitempty"`
	Location         *string        `json:"location,omitempty"`
	Language         *string        `json:"language,omitempty"`
}

// CreateConsultationRequest создание консультации для существующего пациента
type CreateConsultationRequest struct {
	ConsultationData map[string]any `json:"consultation_data"`
	PatientID        string         `json:"patient_id"`
	Status           string         `json:"status"`
	VisitType        string         `json:"visit_type,omitempty"`
}

// ConsultationsResponse список консультаций, новые первыми
type ConsultationsResponse struct {
	Consultations []Consultation `json:"consultations"`
}

// PatientsResponse список пациентов
type PatientsResponse struct {
	Patients []Patient `json:"patients"`
}

// GuideTranslation перевод памятки
type GuideTranslation struct {
	Language    string `json:"language"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Guide образовательная памятка для пациента (диета, упражнения)
type Guide struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Translations []GuideTranslation `json:"translations,omitempty"`
	ID           int64              `json:"id"`
}

// GuidesResponse список памяток
type GuidesResponse struct {
	Guides []Guide `json:"guides"`
}

// MessageRequest запрос на отправку сообщения в WhatsApp
type MessageRequest struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// MessageResponse результат постановки сообщения в relay
type MessageResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"` // нормализованный номер
	Status string `json:"status"`
}
