package desk

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clinicsync/internal/client/storage/boltdb"
	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

const consultationID = "b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5"

func setupTestService(t *testing.T, opts ...Option) (Service, *boltdb.Storage) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "desk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(store, opts...), store
}

func TestRegisterPatient(t *testing.T) {
	ctx := context.Background()
	changes := 0
	svc, store := setupTestService(t, OnChange(func() { changes++ }))

	id, err := svc.RegisterPatient(ctx,
		models.PatientDetails{Name: " Ravi ", Phone: "98480 22338", DOB: "1980-02-01"},
		models.OfflineConsultation{ConsultationData: map[string]any{"complaint": "knee pain"}})
	require.NoError(t, err)
	assert.True(t, id.IsTemporary())
	assert.Equal(t, 1, changes)

	entry, err := store.GetEntry(ctx, models.NewPatientKey(id))
	require.NoError(t, err)
	assert.Equal(t, models.KindNewPatient, entry.Kind)
	assert.Equal(t, testNow, entry.Timestamp)

	var p models.NewPatientPayload
	require.NoError(t, entry.Decode(&p))
	require.NotNil(t, p.Patient)
	assert.True(t, p.Patient.ID.Equal(id))
	assert.Equal(t, "Ravi", p.Patient.Name)
	assert.Equal(t, "9848022338", p.Patient.Phone)
	assert.Equal(t, api.StatusPending, p.Consultation.Status)
}

func TestRegisterPatient_Invalid(t *testing.T) {
	ctx := context.Background()
	svc, store := setupTestService(t)

	_, err := svc.RegisterPatient(ctx, models.PatientDetails{Phone: "1"}, models.OfflineConsultation{})
	assert.Error(t, err)
	_, err = svc.RegisterPatient(ctx, models.PatientDetails{Name: "X"}, models.OfflineConsultation{})
	assert.Error(t, err)
	_, err = svc.RegisterPatient(ctx, models.PatientDetails{Name: "X", Phone: "1"}, models.OfflineConsultation{Status: "done"})
	assert.Error(t, err)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddConsultation(t *testing.T) {
	ctx := context.Background()
	svc, store := setupTestService(t)

	tempID := ident.Temporary("A")
	key, err := svc.AddConsultation(ctx, models.PatientDetails{ID: tempID}, map[string]any{"advice": "rest"}, api.VisitTypeReview)
	require.NoError(t, err)

	kind, ok := models.KindForKey(key)
	require.True(t, ok)
	assert.Equal(t, models.KindNewConsultation, kind)

	entry, err := store.GetEntry(ctx, key)
	require.NoError(t, err)
	var p models.NewConsultationPayload
	require.NoError(t, entry.Decode(&p))
	assert.True(t, p.PatientDetails.ID.Equal(tempID))
	assert.Equal(t, api.VisitTypeReview, p.VisitType)

	_, err = svc.AddConsultation(ctx, models.PatientDetails{}, nil, "")
	assert.Error(t, err)
	_, err = svc.AddConsultation(ctx, models.PatientDetails{ID: tempID}, nil, "vip")
	assert.Error(t, err)
}

func TestEditConsultation_MergesPreviousEdit(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)
	patient := models.PatientDetails{ID: ident.Persisted("202610181"), Name: "Lakshmi", Phone: "9000000001"}

	require.NoError(t, svc.EditConsultation(ctx, consultationID, patient, map[string]any{"diagnosis": "OA knee"}, api.StatusCompleted))
	require.NoError(t, svc.EditConsultation(ctx, consultationID, models.PatientDetails{}, map[string]any{"advice": "knee guide"}, ""))

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	var p models.ConsultationEditPayload
	require.NoError(t, pending[0].Decode(&p))
	assert.Equal(t, "OA knee", p.ExtraData["diagnosis"])
	assert.Equal(t, "knee guide", p.ExtraData["advice"])
	assert.Equal(t, api.StatusCompleted, p.Status, "completion survives a later partial edit")
	assert.Equal(t, "Lakshmi", p.PatientDetails.Name)
	assert.True(t, p.PatientDetails.ID.Equal(ident.Persisted("202610181")))
}

func TestEditConsultation_OverridesQueuedValues(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)
	patient := models.PatientDetails{ID: ident.Persisted("202610181"), Name: "Lakshmi", Phone: "9000000001"}

	require.NoError(t, svc.EditConsultation(ctx, consultationID, patient, map[string]any{"advice": "a"}, api.StatusUnderEvaluation))
	require.NoError(t, svc.EditConsultation(ctx, consultationID, patient, map[string]any{"advice": "b"}, api.StatusCompleted))

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	var p models.ConsultationEditPayload
	require.NoError(t, pending[0].Decode(&p))
	assert.Equal(t, "b", p.ExtraData["advice"])
	assert.Equal(t, api.StatusCompleted, p.Status)
}

func TestEditConsultation_Location(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	require.NoError(t, svc.SetLocation(ctx, "  Apollo Guntur "))
	location, err := svc.Location(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Apollo Guntur", location)

	require.NoError(t, svc.EditConsultation(ctx, consultationID, models.PatientDetails{}, nil, api.StatusUnderEvaluation))

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	var p models.ConsultationEditPayload
	require.NoError(t, pending[0].Decode(&p))
	assert.Equal(t, "Apollo Guntur", p.Location)
}

func TestEditConsultation_Invalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	assert.Error(t, svc.EditConsultation(ctx, "offline-A", models.PatientDetails{}, nil, ""))
	assert.Error(t, svc.EditConsultation(ctx, consultationID, models.PatientDetails{}, nil, "closed"))
}

func TestAutoSend(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	enabled, err := svc.AutoSend(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, svc.SetAutoSend(ctx, true))
	enabled, err = svc.AutoSend(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestLastSync(t *testing.T) {
	ctx := context.Background()
	svc, store := setupTestService(t)

	last, err := svc.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, store.SaveLastSyncTime(ctx, testNow))
	last, err = svc.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(testNow))
}
