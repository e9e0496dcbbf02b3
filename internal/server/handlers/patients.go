package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/internal/validation"
	"github.com/iudanet/clinicsync/pkg/api"
)

// PatientHandler обрабатывает запросы по карточкам пациентов
type PatientHandler struct {
	responder
	patients storage.PatientStorage
	now      func() time.Time
}

// NewPatientHandler создает handler пациентов
func NewPatientHandler(logger *slog.Logger, patients storage.PatientStorage) *PatientHandler {
	return &PatientHandler{
		responder: responder{logger: logger},
		patients:  patients,
		now:       time.Now,
	}
}

// Lookup обрабатывает GET /api/v1/patients?phone=
func (h *PatientHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	phone := validation.NormalizePhone(r.URL.Query().Get("phone"))
	if phone == "" {
		h.sendError(w, "phone is required", http.StatusBadRequest)
		return
	}

	found, err := h.patients.FindPatientsByPhone(r.Context(), phone)
	if err != nil {
		h.internalError(w, r, "failed to lookup patients", err)
		return
	}

	resp := api.PatientsResponse{Patients: make([]api.Patient, 0, len(found))}
	for _, p := range found {
		resp.Patients = append(resp.Patients, toAPIPatient(p))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Register обрабатывает POST /api/v1/patients/register.
// Пациент ищется по телефону, при force_new всегда создается новый.
// В ответе pending консультация вместе с карточкой пациента.
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterPatientRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidatePatient(req.Name, req.Phone, req.DOB); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()
	patient := &models.Patient{
		Name:      strings.TrimSpace(req.Name),
		DOB:       req.DOB,
		Sex:       req.Sex,
		Phone:     validation.NormalizePhone(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	consultation := &models.Consultation{
		ID:        uuid.New().String(),
		Status:    api.StatusPending,
		Data:      map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := h.patients.RegisterPatient(ctx, patient, consultation, req.ForceNew)
	if err != nil {
		h.internalError(w, r, "failed to register patient", err)
		return
	}

	h.logger.InfoContext(ctx, "patient registered",
		slog.String("patient_id", patient.ID),
		slog.String("consultation_id", consultation.ID),
		slog.Bool("patient_created", created))

	h.sendJSON(w, api.RegisterPatientResponse{
		Consultation:   toAPIConsultation(consultation, patient),
		PatientCreated: created,
	}, http.StatusCreated)
}

// Update обрабатывает PATCH /api/v1/patients/{id}
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req api.PatientUpdate
	if !h.decode(w, r, &req) {
		return
	}

	patient, err := h.patients.GetPatient(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPatientNotFound) {
			h.sendError(w, "patient not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get patient", err)
		return
	}

	if req.Name != nil {
		patient.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		patient.Phone = validation.NormalizePhone(*req.Phone)
	}
	if req.DOB != nil {
		patient.DOB = *req.DOB
	}
	if req.Sex != nil {
		patient.Sex = *req.Sex
	}
	if err := validation.ValidatePatient(patient.Name, patient.Phone, patient.DOB); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	patient.UpdatedAt = h.now()

	if err := h.patients.UpdatePatient(ctx, patient); err != nil {
		if errors.Is(err, storage.ErrPatientNotFound) {
			h.sendError(w, "patient not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to update patient", err)
		return
	}

	h.sendJSON(w, toAPIPatient(patient), http.StatusOK)
}
