package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/internal/validation"
	"github.com/iudanet/clinicsync/pkg/api"
)

// ConsultationHandler обрабатывает запросы по консультациям
type ConsultationHandler struct {
	responder
	consultations storage.ConsultationStorage
	patients      storage.PatientStorage
	now           func() time.Time
}

// NewConsultationHandler создает handler консультаций
func NewConsultationHandler(logger *slog.Logger, consultations storage.ConsultationStorage, patients storage.PatientStorage) *ConsultationHandler {
	return &ConsultationHandler{
		responder:     responder{logger: logger},
		consultations: consultations,
		patients:      patients,
		now:           time.Now,
	}
}

// Get обрабатывает GET /api/v1/consultations/{id}.
// updated_at ответа клиент использует для last-write-wins.
func (h *ConsultationHandler) Get(w http.ResponseWriter, r *http.Request) {
	consultation, ok := h.load(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.respond(w, r, consultation, http.StatusOK)
}

// Размер выборки списка консультаций
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// List обрабатывает GET /api/v1/consultations?patient_id=&status=&limit=
func (h *ConsultationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := storage.ConsultationFilter{
		PatientID: q.Get("patient_id"),
		Status:    q.Get("status"),
		Limit:     defaultListLimit,
	}
	if err := validation.ValidateStatus(filter.Status); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.sendError(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		filter.Limit = min(n, maxListLimit)
	}

	found, err := h.consultations.ListConsultations(ctx, filter)
	if err != nil {
		h.internalError(w, r, "failed to list consultations", err)
		return
	}

	patients := make(map[string]*models.Patient)
	resp := api.ConsultationsResponse{Consultations: make([]api.Consultation, 0, len(found))}
	for _, c := range found {
		patient, ok := patients[c.PatientID]
		if !ok {
			patient, err = h.patients.GetPatient(ctx, c.PatientID)
			if err != nil && !errors.Is(err, storage.ErrPatientNotFound) {
				h.internalError(w, r, "failed to get patient", err)
				return
			}
			patients[c.PatientID] = patient
		}
		resp.Consultations = append(resp.Consultations, toAPIConsultation(c, patient))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Update обрабатывает PATCH /api/v1/consultations/{id}.
// Ключи consultation_data сливаются с сохраненными поверх.
func (h *ConsultationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ConsultationUpdate
	if !h.decode(w, r, &req) {
		return
	}
	if req.Status != nil {
		if err := validation.ValidateStatus(*req.Status); err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	consultation, ok := h.load(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if consultation.Data == nil {
		consultation.Data = map[string]any{}
	}
	for k, v := range req.ConsultationData {
		consultation.Data[k] = v
	}
	if req.Status != nil && *req.Status != "" {
		consultation.Status = *req.Status
	}
	if req.Location != nil {
		consultation.Location = *req.Location
	}
	if req.Language != nil {
		consultation.Language = *req.Language
	}
	consultation.UpdatedAt = h.now()

	if err := h.consultations.UpdateConsultation(ctx, consultation); err != nil {
		if errors.Is(err, storage.ErrConsultationNotFound) {
			h.sendError(w, "consultation not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to update consultation", err)
		return
	}

	h.logger.InfoContext(ctx, "consultation updated",
		slog.String("consultation_id", consultation.ID),
		slog.String("status", consultation.Status))

	h.respond(w, r, consultation, http.StatusOK)
}

// Create обрабатывает POST /api/v1/consultations
func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateConsultationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.PatientID == "" {
		h.sendError(w, "patient_id is required", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStatus(req.Status); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = api.StatusPending
	}
	data := req.ConsultationData
	if data == nil {
		data = map[string]any{}
	}

	now := h.now()
	consultation := &models.Consultation{
		ID:        uuid.New().String(),
		PatientID: req.PatientID,
		Status:    status,
		VisitType: req.VisitType,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.consultations.CreateConsultation(ctx, consultation); err != nil {
		if errors.Is(err, storage.ErrPatientNotFound) {
			h.sendError(w, "patient not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to create consultation", err)
		return
	}

	h.logger.InfoContext(ctx, "consultation created",
		slog.String("consultation_id", consultation.ID),
		slog.String("patient_id", consultation.PatientID))

	h.respond(w, r, consultation, http.StatusCreated)
}

func (h *ConsultationHandler) load(w http.ResponseWriter, r *http.Request, id string) (*models.Consultation, bool) {
	consultation, err := h.consultations.GetConsultation(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrConsultationNotFound) {
			h.sendError(w, "consultation not found", http.StatusNotFound)
			return nil, false
		}
		h.internalError(w, r, "failed to get consultation", err)
		return nil, false
	}
	return consultation, true
}

// respond отвечает консультацией вместе с карточкой пациента
func (h *ConsultationHandler) respond(w http.ResponseWriter, r *http.Request, c *models.Consultation, status int) {
	patient, err := h.patients.GetPatient(r.Context(), c.PatientID)
	if err != nil && !errors.Is(err, storage.ErrPatientNotFound) {
		h.internalError(w, r, "failed to get patient", err)
		return
	}
	h.sendJSON(w, toAPIConsultation(c, patient), status)
}
