// Package sync переносит локальную очередь изменений (outbox) на сервер.
//
// Engine выполняет проходы синхронизации: регистрирует пациентов, созданных
// без сети, создает консультации, отправляет правки, обнаруживает конфликты
// и переключает связанные записи с временных идентификаторов на постоянные.
// Runner запускает проходы по таймеру и по требованию.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	httpClient "github.com/iudanet/clinicsync/internal/client/api"
	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/internal/metrics"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

// SkipReason причина, по которой проход не выполнялся
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipOffline         SkipReason = "offline"
	SkipConflictPending SkipReason = "conflict_pending"
	SkipInProgress      SkipReason = "in_progress"
)

// PassResult итог одного прохода
type PassResult struct {
	StartedAt  time.Time
	Duration   time.Duration
	SkipReason SkipReason
	Synced     int // записи, успешно отправленные и удаленные из очереди
	Discarded  int // записи, удаленные без отправки (невалидные, отклоненные, отсутствующие на сервере)
	Failed     int // временные ошибки, запись осталась в очереди
	Skipped    int // записи, которые пока нельзя обработать
	Conflicts  int
	Rekeyed    int
}

// Ran reports whether the pass actually processed the queue.
func (r *PassResult) Ran() bool {
	return r.SkipReason == SkipNone
}

type outcome string

const (
	outcomeSynced    outcome = "synced"
	outcomeDiscarded outcome = "discarded"
	outcomeFailed    outcome = "failed"
	outcomeSkipped   outcome = "skipped"
	outcomeConflict  outcome = "conflict"
)

// entryResult результат обработки одной записи
type entryResult struct {
	outcome outcome
	// ключи, переписанные re-keying и требующие обработки в этом же проходе
	followUp []string
	rekeyed  int
}

// Engine владеет состоянием синхронизации: флагом выполнения прохода и
// зависимостями. Один Engine на локальное хранилище.
type Engine struct {
	backend  Backend
	store    Store
	online   Connectivity
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.SyncMetrics
	now      func() time.Time
	running  atomic.Bool
}

// EngineOption настраивает Engine
type EngineOption func(*Engine)

// WithMetrics подключает prometheus метрики
func WithMetrics(m *metrics.SyncMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock подменяет источник времени
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithNotifier подключает уведомление о завершении консультации
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates a sync engine. online may be nil, then the engine
// assumes the server is reachable.
func NewEngine(backend Backend, store Store, online Connectivity, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		backend: backend,
		store:   store,
		online:  online,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Poll выполняет один проход синхронизации.
//
// Проход пропускается, если нет связи, есть неразрешенный конфликт или
// другой проход еще выполняется. Ошибки отдельных записей логируются и
// учитываются в PassResult; обход продолжается. Обнаруженный конфликт
// останавливает проход до решения оператора.
func (e *Engine) Poll(ctx context.Context) (*PassResult, error) {
	result := &PassResult{StartedAt: e.now()}

	if !e.running.CompareAndSwap(false, true) {
		result.SkipReason = SkipInProgress
		e.metrics.ObservePass("skipped", 0)
		return result, nil
	}
	defer e.running.Store(false)

	if e.online != nil && !e.online.Online(ctx) {
		result.SkipReason = SkipOffline
		e.metrics.ObservePass("skipped", 0)
		return result, nil
	}

	pending, err := e.store.HasConflicts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending conflicts: %w", err)
	}
	if pending {
		result.SkipReason = SkipConflictPending
		e.metrics.ObservePass("skipped", 0)
		return result, nil
	}

	entries, err := e.store.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox entries: %w", err)
	}

	work := make([]string, 0, len(entries))
	for _, entry := range entries {
		work = append(work, entry.Key)
	}

	e.logger.DebugContext(ctx, "sync pass started", slog.Int("entries", len(work)))

	done := make(map[string]bool, len(work))
	for i := 0; i < len(work); i++ {
		if err := ctx.Err(); err != nil {
			result.Duration = e.now().Sub(result.StartedAt)
			return result, err
		}

		key := work[i]
		if done[key] {
			continue
		}
		done[key] = true

		entry, err := e.store.GetEntry(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrEntryNotFound) {
				// запись уже переписана или удалена в этом проходе
				continue
			}
			e.logger.WarnContext(ctx, "failed to read outbox entry", slog.String("key", key), slog.Any("error", err))
			result.Failed++
			continue
		}
		if entry.Key == "" {
			entry.Key = key
		}

		res := e.processEntry(ctx, entry)
		e.metrics.ObserveEntry(string(entry.Kind), string(res.outcome))

		switch res.outcome {
		case outcomeSynced:
			result.Synced++
		case outcomeDiscarded:
			result.Discarded++
		case outcomeFailed:
			result.Failed++
		case outcomeSkipped:
			result.Skipped++
		case outcomeConflict:
			result.Conflicts++
		}
		result.Rekeyed += res.rekeyed

		for _, k := range res.followUp {
			delete(done, k)
			work = append(work, k)
		}

		if res.outcome == outcomeConflict {
			e.logger.InfoContext(ctx, "sync pass stopped on conflict", slog.String("key", key))
			break
		}
	}

	result.Duration = e.now().Sub(result.StartedAt)
	e.finishPass(ctx, result)

	return result, nil
}

func (e *Engine) finishPass(ctx context.Context, result *PassResult) {
	label := "ok"
	if result.Conflicts > 0 {
		label = "conflict"
	} else if result.Failed > 0 {
		label = "partial"
	}
	e.metrics.ObservePass(label, result.Duration.Seconds())

	if n, err := e.store.CountEntries(ctx); err == nil {
		e.metrics.SetPending(n)
	}
	if err := e.store.SaveLastSyncTime(ctx, e.now()); err != nil {
		e.logger.WarnContext(ctx, "failed to save last sync time", slog.Any("error", err))
	}

	e.logger.InfoContext(ctx, "sync pass completed",
		slog.Int("synced", result.Synced),
		slog.Int("discarded", result.Discarded),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
		slog.Int("conflicts", result.Conflicts),
		slog.Int("rekeyed", result.Rekeyed),
		slog.Duration("duration", result.Duration))
}

// Running reports whether a pass is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Pending returns queued entries in processing order
func (e *Engine) Pending(ctx context.Context) ([]*models.QueueEntry, error) {
	return e.store.ListEntries(ctx)
}

func (e *Engine) processEntry(ctx context.Context, entry *models.QueueEntry) entryResult {
	logger := e.logger.With(slog.String("key", entry.Key), slog.String("kind", string(entry.Kind)))

	var (
		res entryResult
		err error
	)
	switch classify(entry.Key) {
	case routeNewPatient:
		res, err = e.syncNewPatient(ctx, entry)
	case routeNewConsultation:
		res, err = e.syncNewConsultation(ctx, entry)
	case routeEdit:
		res, err = e.syncEdit(ctx, entry)
	default:
		logger.WarnContext(ctx, "skipping unroutable outbox key")
		return entryResult{outcome: outcomeSkipped}
	}

	if err != nil {
		logger.WarnContext(ctx, "failed to sync outbox entry", slog.Any("error", err))
		return entryResult{outcome: outcomeFailed}
	}
	if res.outcome == outcomeSynced || res.outcome == outcomeDiscarded {
		logger.DebugContext(ctx, "outbox entry processed", slog.String("outcome", string(res.outcome)))
	}
	return res
}

// discard удаляет запись, которую нет смысла повторять
func (e *Engine) discard(ctx context.Context, entry *models.QueueEntry, reason string) (entryResult, error) {
	e.logger.WarnContext(ctx, "discarding outbox entry",
		slog.String("key", entry.Key),
		slog.String("kind", string(entry.Kind)),
		slog.String("reason", reason))
	if err := e.store.DeleteEntry(ctx, entry.Key); err != nil {
		return entryResult{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	return entryResult{outcome: outcomeDiscarded}, nil
}

func (e *Engine) syncNewPatient(ctx context.Context, entry *models.QueueEntry) (entryResult, error) {
	var p models.NewPatientPayload
	if err := entry.Decode(&p); err != nil {
		return e.discard(ctx, entry, "malformed payload")
	}
	if p.Patient == nil || strings.TrimSpace(p.Patient.Phone) == "" {
		return e.discard(ctx, entry, "missing patient or phone")
	}

	matches, err := e.backend.LookupPatientsByPhone(ctx, p.Patient.Phone)
	if err != nil {
		if errors.Is(err, httpClient.ErrRejected) {
			return e.discard(ctx, entry, err.Error())
		}
		return entryResult{}, err
	}
	if len(matches) > 0 {
		conflict := &models.Conflict{
			Key:            entry.Key,
			Kind:           models.ConflictPatient,
			DetectedAt:     e.now().UTC(),
			Local:          entry,
			OfflinePatient: p.Patient,
			Candidates:     matches,
		}
		if err := e.store.SaveConflict(ctx, conflict); err != nil {
			return entryResult{}, fmt.Errorf("failed to save patient conflict: %w", err)
		}
		e.logger.InfoContext(ctx, "patient conflict detected",
			slog.String("key", entry.Key),
			slog.Int("candidates", len(matches)))
		return entryResult{outcome: outcomeConflict}, nil
	}

	resp, err := e.backend.RegisterPatientAndConsultation(ctx, registerRequest(p.Patient, false))
	if err != nil {
		if errors.Is(err, httpClient.ErrRejected) {
			return e.discard(ctx, entry, err.Error())
		}
		return entryResult{}, err
	}

	return e.completeRegistration(ctx, entry, p, &resp.Consultation)
}

// completeRegistration переносит клинические данные в созданную сервером
// консультацию и переписывает связанные записи очереди
func (e *Engine) completeRegistration(ctx context.Context, entry *models.QueueEntry, p models.NewPatientPayload, created *api.Consultation) (entryResult, error) {
	if created == nil || created.ID == "" {
		return entryResult{}, fmt.Errorf("server did not return the created consultation")
	}

	status := p.Consultation.Status
	if status == "" {
		status = api.StatusPending
	}
	data := p.Consultation.ConsultationData
	if data == nil {
		data = map[string]any{}
	}

	var pending *models.OfflineConsultation
	updated, err := e.backend.UpdateConsultation(ctx, created.ID, api.ConsultationUpdate{
		ConsultationData: data,
		Status:           &status,
	})
	if err != nil {
		// пациент уже создан: повторять регистрацию нельзя, данные уходят правкой
		e.logger.WarnContext(ctx, "failed to update created consultation, queueing as edit",
			slog.String("consultation_id", created.ID),
			slog.Any("error", err))
		pending = &models.OfflineConsultation{ConsultationData: data, Status: status}
	} else {
		created = updated
	}

	tempID, err := ident.Parse(entry.Key)
	if err != nil {
		return entryResult{}, err
	}

	entries, err := e.store.ListEntries(ctx)
	if err != nil {
		return entryResult{}, fmt.Errorf("failed to list entries for rekey: %w", err)
	}

	plan, err := planRekey(entries, tempID, created.PatientID, created, pending, e.now())
	if err != nil {
		return entryResult{}, err
	}
	if err := e.store.ReplaceEntries(ctx, plan.remove, plan.put); err != nil {
		return entryResult{}, fmt.Errorf("failed to apply rekey: %w", err)
	}

	e.logger.InfoContext(ctx, "offline patient registered",
		slog.String("key", entry.Key),
		slog.String("patient_id", created.PatientID),
		slog.String("consultation_id", created.ID),
		slog.Int("rekeyed", plan.rekeyed()))

	return entryResult{outcome: outcomeSynced, followUp: plan.keys, rekeyed: plan.rekeyed()}, nil
}

func (e *Engine) syncNewConsultation(ctx context.Context, entry *models.QueueEntry) (entryResult, error) {
	var p models.NewConsultationPayload
	if err := entry.Decode(&p); err != nil {
		return e.discard(ctx, entry, "malformed payload")
	}

	patientID := p.PatientDetails.ID
	if patientID.IsZero() {
		return e.discard(ctx, entry, "missing patient id")
	}
	if patientID.IsTemporary() {
		// пациент еще не зарегистрирован, запись будет переписана re-keying
		_, err := e.store.GetEntry(ctx, models.NewPatientKey(patientID))
		switch {
		case errors.Is(err, storage.ErrEntryNotFound):
			return e.discard(ctx, entry, "temporary patient is no longer queued")
		case err != nil:
			return entryResult{}, fmt.Errorf("failed to read patient entry: %w", err)
		}
		return entryResult{outcome: outcomeSkipped}, nil
	}

	data := p.ExtraData
	if data == nil {
		data = map[string]any{}
	}

	_, err := e.backend.CreateConsultation(ctx, api.CreateConsultationRequest{
		PatientID:        patientID.Value(),
		ConsultationData: data,
		Status:           api.StatusPending,
		VisitType:        defaultVisitType(p.VisitType, p.ExtraData),
	})
	if err != nil {
		// 404: пациента нет на сервере, повтор не поможет
		if errors.Is(err, httpClient.ErrRejected) || errors.Is(err, httpClient.ErrNotFound) {
			return e.discard(ctx, entry, err.Error())
		}
		return entryResult{}, err
	}

	if err := e.store.DeleteEntry(ctx, entry.Key); err != nil {
		return entryResult{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	return entryResult{outcome: outcomeSynced}, nil
}

func (e *Engine) syncEdit(ctx context.Context, entry *models.QueueEntry) (entryResult, error) {
	var p models.ConsultationEditPayload
	if err := entry.Decode(&p); err != nil {
		return e.discard(ctx, entry, "malformed payload")
	}

	server, err := e.backend.GetConsultation(ctx, entry.Key)
	if err != nil {
		if errors.Is(err, httpClient.ErrNotFound) || errors.Is(err, httpClient.ErrRejected) {
			return e.discard(ctx, entry, "consultation not found on server")
		}
		return entryResult{}, err
	}

	if isConflict(entry.Timestamp, server) {
		conflict := &models.Conflict{
			Key:        entry.Key,
			Kind:       models.ConflictRecord,
			DetectedAt: e.now().UTC(),
			Local:      entry,
			Server:     server,
		}
		if err := e.store.SaveConflict(ctx, conflict); err != nil {
			return entryResult{}, fmt.Errorf("failed to save record conflict: %w", err)
		}
		e.logger.InfoContext(ctx, "record conflict detected",
			slog.String("key", entry.Key),
			slog.Time("local", entry.Timestamp),
			slog.Time("server", server.LastModified()))
		return entryResult{outcome: outcomeConflict}, nil
	}

	if err := e.pushEdit(ctx, entry.Key, p, server); err != nil {
		if errors.Is(err, httpClient.ErrRejected) || errors.Is(err, httpClient.ErrNotFound) {
			return e.discard(ctx, entry, err.Error())
		}
		return entryResult{}, err
	}

	if err := e.store.DeleteEntry(ctx, entry.Key); err != nil {
		return entryResult{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	return entryResult{outcome: outcomeSynced}, nil
}

// pushEdit отправляет локальную правку пациента и консультации.
// server используется для id пациента и проверки перехода в completed.
func (e *Engine) pushEdit(ctx context.Context, consultationID string, p models.ConsultationEditPayload, server *api.Consultation) error {
	patientID := server.PatientID
	if patientID == "" && p.PatientDetails.ID.IsPersisted() {
		patientID = p.PatientDetails.ID.Value()
	}
	if update, ok := patientUpdate(p.PatientDetails); ok && patientID != "" {
		if _, err := e.backend.UpdatePatient(ctx, patientID, update); err != nil {
			return fmt.Errorf("patient sync failed: %w", err)
		}
	}

	update := api.ConsultationUpdate{ConsultationData: p.ExtraData}
	if p.Status != "" {
		status := p.Status
		update.Status = &status
	}
	if p.Location != "" {
		location := p.Location
		update.Location = &location
	}
	updated, err := e.backend.UpdateConsultation(ctx, consultationID, update)
	if err != nil {
		return fmt.Errorf("consultation sync failed: %w", err)
	}

	if e.notifier != nil && becameCompleted(p.Status, server) {
		if updated == nil {
			updated = server
		}
		e.notifier.ConsultationCompleted(ctx, updated, p.PatientDetails)
	}
	return nil
}

func patientUpdate(d models.PatientDetails) (api.PatientUpdate, bool) {
	var (
		u  api.PatientUpdate
		ok bool
	)
	set := func(v string) *string {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		ok = true
		return &v
	}
	u.Name = set(d.Name)
	u.DOB = set(d.DOB)
	u.Sex = set(d.Sex)
	u.Phone = set(d.Phone)
	return u, ok
}

func registerRequest(d *models.PatientDetails, forceNew bool) api.RegisterPatientRequest {
	// временный id на сервер не отправляется
	return api.RegisterPatientRequest{
		Name:     d.Name,
		DOB:      d.DOB,
		Sex:      d.Sex,
		Phone:    d.Phone,
		ForceNew: forceNew,
	}
}
