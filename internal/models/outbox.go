package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/pkg/api"
)

// EntryKind тип записи в локальной очереди (outbox)
type EntryKind string

const (
	// KindNewPatient новый пациент, зарегистрированный без связи с сервером
	KindNewPatient EntryKind = "new_patient_offline"
	// KindNewConsultation новая консультация для уже известного пациента
	KindNewConsultation EntryKind = "new_consultation_offline"
	// KindConsultationEdit правка существующей серверной консультации
	KindConsultationEdit EntryKind = "consultation_edit"
)

// consultationTokenPrefix токены временных консультаций начинаются с него,
// чтобы ключ имел вид offline-consultation-<token>
const consultationTokenPrefix = "consultation-"

// QueueEntry одна отложенная запись локальной очереди.
// На один логический объект приходится не больше одной записи: повторная
// запись по тому же ключу перезаписывает предыдущую.
type QueueEntry struct {
	Timestamp time.Time       `json:"timestamp"` // момент локального изменения
	Key       string          `json:"key"`
	Kind      EntryKind       `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
}

// PatientDetails данные пациента, захваченные на клиенте
type PatientDetails struct {
	ID    ident.ID `json:"id"`
	Name  string   `json:"name"`
	DOB   string   `json:"dob,omitempty"`
	Sex   string   `json:"sex,omitempty"`
	Phone string   `json:"phone"`
}

// OfflineConsultation клинические поля консультации нового пациента
type OfflineConsultation struct {
	ConsultationData map[string]any `json:"consultation_data,omitempty"`
	Status           string         `json:"status,omitempty"`
}

// NewPatientPayload payload записи KindNewPatient
type NewPatientPayload struct {
	Patient      *PatientDetails     `json:"patient"`
	Consultation OfflineConsultation `json:"consultation"`
}

// NewConsultationPayload payload записи KindNewConsultation
type NewConsultationPayload struct {
	ExtraData      map[string]any `json:"extra_data,omitempty"`
	PatientDetails PatientDetails `json:"patient_details"`
	VisitType      string         `json:"visit_type,omitempty"`
}

// ConsultationEditPayload payload записи KindConsultationEdit.
// Правка частичная: пустые поля не меняют серверное значение.
type ConsultationEditPayload struct {
	ExtraData      map[string]any `json:"extra_data,omitempty"`
	PatientDetails PatientDetails `json:"patient_details"`
	Status         string         `json:"status"`
	Location       string         `json:"location,omitempty"`
}

// Merge накладывает более позднюю правку next на уже стоящую в очереди
func (p ConsultationEditPayload) Merge(next ConsultationEditPayload) ConsultationEditPayload {
	out := p
	out.ExtraData = maps.Clone(p.ExtraData)
	if len(next.ExtraData) > 0 {
		if out.ExtraData == nil {
			out.ExtraData = make(map[string]any, len(next.ExtraData))
		}
		maps.Copy(out.ExtraData, next.ExtraData)
	}
	if next.Status != "" {
		out.Status = next.Status
	}
	if next.Location != "" {
		out.Location = next.Location
	}
	out.PatientDetails = p.PatientDetails.Merge(next.PatientDetails)
	return out
}

// Merge возвращает копию с непустыми полями next
func (d PatientDetails) Merge(next PatientDetails) PatientDetails {
	if !next.ID.IsZero() {
		d.ID = next.ID
	}
	pick := func(cur, v string) string {
		if strings.TrimSpace(v) == "" {
			return cur
		}
		return v
	}
	d.Name = pick(d.Name, next.Name)
	d.DOB = pick(d.DOB, next.DOB)
	d.Sex = pick(d.Sex, next.Sex)
	d.Phone = pick(d.Phone, next.Phone)
	return d
}

// NewQueueEntry сериализует payload и собирает запись очереди
func NewQueueEntry(kind EntryKind, key string, payload any, ts time.Time) (*QueueEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &QueueEntry{
		Key:       key,
		Kind:      kind,
		Payload:   data,
		Timestamp: ts.UTC(),
	}, nil
}

// Decode распаковывает payload в v
func (e *QueueEntry) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("entry %s has empty payload", e.Key)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// Clone создает глубокую копию записи
func (e *QueueEntry) Clone() *QueueEntry {
	payload := make(json.RawMessage, len(e.Payload))
	copy(payload, e.Payload)
	return &QueueEntry{
		Key:       e.Key,
		Kind:      e.Kind,
		Payload:   payload,
		Timestamp: e.Timestamp,
	}
}

// NewPatientKey ключ очереди для нового временного пациента
func NewPatientKey(patientID ident.ID) string {
	return patientID.String()
}

// NewConsultationKey ключ очереди для новой консультации: offline-consultation-<token>
func NewConsultationKey(token string) string {
	return ident.Temporary(consultationTokenPrefix + token).String()
}

// KindForKey определяет тип записи по форме ключа.
// Возвращает false для ключей, которые нельзя маршрутизировать.
func KindForKey(key string) (EntryKind, bool) {
	id, err := ident.Parse(key)
	if err != nil {
		return "", false
	}
	if id.IsTemporary() {
		if strings.HasPrefix(id.Token(), consultationTokenPrefix) {
			return KindNewConsultation, true
		}
		return KindNewPatient, true
	}
	if ident.IsUUID(id.Value()) {
		return KindConsultationEdit, true
	}
	return "", false
}

// Validate проверяет соответствие ключа и типа записи
func (e *QueueEntry) Validate() error {
	kind, ok := KindForKey(e.Key)
	if !ok {
		return fmt.Errorf("unroutable queue key %q", e.Key)
	}
	if e.Kind != "" && e.Kind != kind {
		return fmt.Errorf("queue key %q does not match kind %s", e.Key, e.Kind)
	}
	return nil
}

// ConflictKind тип конфликта, ожидающего решения оператора
type ConflictKind string

const (
	// ConflictRecord серверная консультация изменена позже локальной правки
	ConflictRecord ConflictKind = "record"
	// ConflictPatient найден существующий пациент с тем же телефоном
	ConflictPatient ConflictKind = "patient"
)

// Conflict ожидающий решения конфликт; поля зависят от Kind.
type Conflict struct {
	DetectedAt     time.Time         `json:"detected_at"`
	Local          *QueueEntry       `json:"local,omitempty"`           // record
	Server         *api.Consultation `json:"server,omitempty"`          // record
	OfflinePatient *PatientDetails   `json:"offline_patient,omitempty"` // patient
	Key            string            `json:"key"`
	Kind           ConflictKind      `json:"kind"`
	Candidates     []api.Patient     `json:"candidates,omitempty"` // patient
}
