package sync

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	httpClient "github.com/iudanet/clinicsync/internal/client/api"
	"github.com/iudanet/clinicsync/pkg/api"
)

// fakeBackend хранит пациентов и консультации в памяти и ведет себя как сервер:
// дедуплицирует пациентов по телефону, выдает id вида YYYYMMDD+счетчик и
// проставляет updated_at при изменениях.
type fakeBackend struct {
	now           func() time.Time
	patients      map[string]*api.Patient
	consultations map[string]*api.Consultation
	failures      map[string]error // имя метода -> ошибка
	calls         map[string]int
	mu            sync.Mutex
	counter       int
}

func newFakeBackend(now func() time.Time) *fakeBackend {
	return &fakeBackend{
		now:           now,
		patients:      make(map[string]*api.Patient),
		consultations: make(map[string]*api.Consultation),
		failures:      make(map[string]error),
		calls:         make(map[string]int),
	}
}

func (f *fakeBackend) fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

func (f *fakeBackend) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) enter(method string) error {
	f.calls[method]++
	return f.failures[method]
}

func (f *fakeBackend) addPatient(p api.Patient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients[p.ID] = &p
}

func (f *fakeBackend) addConsultation(c api.Consultation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consultations[c.ID] = &c
}

func (f *fakeBackend) consultation(id string) *api.Consultation {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.consultations[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

func (f *fakeBackend) consultationsOf(patientID string) []api.Consultation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.Consultation
	for _, c := range f.consultations {
		if c.PatientID == patientID {
			out = append(out, *c)
		}
	}
	return out
}

func (f *fakeBackend) patientCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patients)
}

func (f *fakeBackend) LookupPatientsByPhone(ctx context.Context, phone string) ([]api.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("LookupPatientsByPhone"); err != nil {
		return nil, err
	}
	var out []api.Patient
	for _, p := range f.patients {
		if p.Phone == phone {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeBackend) RegisterPatientAndConsultation(ctx context.Context, req api.RegisterPatientRequest) (*api.RegisterPatientResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("RegisterPatientAndConsultation"); err != nil {
		return nil, err
	}
	if req.Name == "" || req.Phone == "" {
		return nil, &httpClient.StatusError{StatusCode: 400, Message: "name and phone are required"}
	}

	now := f.now().UTC()
	var patient *api.Patient
	if !req.ForceNew {
		for _, p := range f.patients {
			if p.Phone == req.Phone {
				patient = p
				break
			}
		}
	}
	created := patient == nil
	if created {
		f.counter++
		patient = &api.Patient{
			ID:        fmt.Sprintf("%s%d", now.Format("20060102"), f.counter),
			Name:      req.Name,
			DOB:       req.DOB,
			Sex:       req.Sex,
			Phone:     req.Phone,
			CreatedAt: now,
		}
		f.patients[patient.ID] = patient
	}

	c := &api.Consultation{
		ID:               uuid.NewString(),
		PatientID:        patient.ID,
		Status:           api.StatusPending,
		ConsultationData: map[string]any{},
		CreatedAt:        now,
	}
	f.consultations[c.ID] = c
	return &api.RegisterPatientResponse{Consultation: *c, PatientCreated: created}, nil
}

func (f *fakeBackend) UpdatePatient(ctx context.Context, id string, update api.PatientUpdate) (*api.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdatePatient"); err != nil {
		return nil, err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, &httpClient.StatusError{StatusCode: 404, Message: "patient not found"}
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.DOB != nil {
		p.DOB = *update.DOB
	}
	if update.Sex != nil {
		p.Sex = *update.Sex
	}
	if update.Phone != nil {
		p.Phone = *update.Phone
	}
	p.UpdatedAt = f.now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakeBackend) GetConsultation(ctx context.Context, id string) (*api.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetConsultation"); err != nil {
		return nil, err
	}
	c, ok := f.consultations[id]
	if !ok {
		return nil, &httpClient.StatusError{StatusCode: 404, Message: "consultation not found"}
	}
	cp := *c
	if p, ok := f.patients[c.PatientID]; ok {
		pc := *p
		cp.Patient = &pc
	}
	return &cp, nil
}

func (f *fakeBackend) UpdateConsultation(ctx context.Context, id string, update api.ConsultationUpdate) (*api.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateConsultation"); err != nil {
		return nil, err
	}
	c, ok := f.consultations[id]
	if !ok {
		return nil, &httpClient.StatusError{StatusCode: 404, Message: "consultation not found"}
	}
	if update.ConsultationData != nil {
		c.ConsultationData = maps.Clone(update.ConsultationData)
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.Location != nil {
		c.Location = *update.Location
	}
	c.UpdatedAt = f.now().UTC()
	cp := *c
	return &cp, nil
}

func (f *fakeBackend) CreateConsultation(ctx context.Context, req api.CreateConsultationRequest) (*api.Consultation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateConsultation"); err != nil {
		return nil, err
	}
	if _, ok := f.patients[req.PatientID]; !ok {
		return nil, &httpClient.StatusError{StatusCode: 404, Message: "patient not found"}
	}
	now := f.now().UTC()
	c := &api.Consultation{
		ID:               uuid.NewString(),
		PatientID:        req.PatientID,
		Status:           req.Status,
		VisitType:        req.VisitType,
		ConsultationData: maps.Clone(req.ConsultationData),
		CreatedAt:        now,
	}
	f.consultations[c.ID] = c
	cp := *c
	return &cp, nil
}
