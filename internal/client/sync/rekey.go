package sync

import (
	"fmt"
	"maps"
	"time"

	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

// rekeyPlan изменения очереди после подтверждения временного пациента.
// Применяется одной транзакцией: сначала remove, затем put.
type rekeyPlan struct {
	remove []string
	put    []*models.QueueEntry
	// ключи, которые нужно обработать в текущем проходе
	keys []string
}

// planRekey переводит записи, ссылающиеся на временного пациента tempID,
// на постоянные идентификаторы.
//
// Первая (по времени) связанная новая консультация становится правкой
// созданной сервером консультации и получает ключ consultation.ID. Остальные
// связанные записи остаются под своими ключами с замененным id пациента.
// pending, если не nil, содержит клинические данные самой регистрации,
// которые не удалось отправить сразу; они попадают в правку consultation.ID.
// Метка времени переписанных записей не меньше now и серверной отметки,
// чтобы они не конфликтовали с только что созданной консультацией.
func planRekey(entries []*models.QueueEntry, tempID ident.ID, patientID string, consultation *api.Consultation, pending *models.OfflineConsultation, now time.Time) (*rekeyPlan, error) {
	if !tempID.IsTemporary() {
		return nil, fmt.Errorf("rekey source %q is not temporary", tempID)
	}
	if patientID == "" || consultation == nil || consultation.ID == "" {
		return nil, fmt.Errorf("rekey target is incomplete")
	}

	ts := now.UTC()
	if lm := consultation.LastModified(); lm.After(ts) {
		ts = lm.UTC()
	}
	persisted := ident.Persisted(patientID)
	ownKey := models.NewPatientKey(tempID)

	plan := &rekeyPlan{remove: []string{ownKey}}
	var edit *models.ConsultationEditPayload

	for _, entry := range entries {
		if entry.Key == ownKey || entry.Key == consultation.ID {
			continue
		}

		switch classify(entry.Key) {
		case routeNewConsultation:
			var p models.NewConsultationPayload
			if err := entry.Decode(&p); err != nil || !p.PatientDetails.ID.Equal(tempID) {
				continue
			}
			p.PatientDetails.ID = persisted

			if edit == nil {
				edit = &models.ConsultationEditPayload{
					PatientDetails: p.PatientDetails,
					ExtraData:      p.ExtraData,
				}
				plan.remove = append(plan.remove, entry.Key)
				continue
			}

			rewritten, err := models.NewQueueEntry(models.KindNewConsultation, entry.Key, p, ts)
			if err != nil {
				return nil, err
			}
			plan.put = append(plan.put, rewritten)
			plan.keys = append(plan.keys, entry.Key)

		case routeEdit:
			var p models.ConsultationEditPayload
			if err := entry.Decode(&p); err != nil || !p.PatientDetails.ID.Equal(tempID) {
				continue
			}
			p.PatientDetails.ID = persisted
			rewritten, err := models.NewQueueEntry(models.KindConsultationEdit, entry.Key, p, ts)
			if err != nil {
				return nil, err
			}
			plan.put = append(plan.put, rewritten)
			plan.keys = append(plan.keys, entry.Key)
		}
	}

	if pending != nil {
		if edit == nil {
			edit = &models.ConsultationEditPayload{}
		}
		// данные связанной записи новее данных регистрации
		merged := make(map[string]any, len(pending.ConsultationData)+len(edit.ExtraData))
		maps.Copy(merged, pending.ConsultationData)
		maps.Copy(merged, edit.ExtraData)
		edit.ExtraData = merged
		edit.Status = pending.Status
	}

	if edit != nil {
		if edit.PatientDetails.ID.IsZero() {
			edit.PatientDetails.ID = persisted
		}
		entry, err := models.NewQueueEntry(models.KindConsultationEdit, consultation.ID, edit, ts)
		if err != nil {
			return nil, err
		}
		plan.put = append(plan.put, entry)
		plan.keys = append(plan.keys, consultation.ID)
	}

	return plan, nil
}

// rekeyed количество записей, переписанных планом
func (p *rekeyPlan) rekeyed() int {
	return len(p.put)
}
