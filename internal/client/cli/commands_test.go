package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clinicsync/internal/client/auth"
	"github.com/iudanet/clinicsync/internal/client/desk"
	"github.com/iudanet/clinicsync/internal/client/iocli"
	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/clinicsync/internal/client/sync"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

const testConsultationID = "b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5"

// testIO собирает вывод команд и отдает ответы на запросы ввода по очереди
type testIO struct {
	mock   *iocli.IOMock
	mu     gosync.Mutex
	out    strings.Builder
	inputs []string
}

func newTestIO(inputs ...string) *testIO {
	tio := &testIO{inputs: inputs}
	tio.mock = &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			fmt.Fprintln(&tio.out, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			fmt.Fprintf(&tio.out, format, a...)
		},
		WriteFunc: func(p []byte) (int, error) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			return tio.out.Write(p)
		},
		ReadInputFunc: func(prompt string) (string, error) {
			tio.mu.Lock()
			defer tio.mu.Unlock()
			if len(tio.inputs) == 0 {
				return "", io.EOF
			}
			v := tio.inputs[0]
			tio.inputs = tio.inputs[1:]
			return v, nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			return "", errors.New("unexpected password prompt")
		},
	}
	return tio
}

func (tio *testIO) Output() string {
	tio.mu.Lock()
	defer tio.mu.Unlock()
	return tio.out.String()
}

func loggedIn() *auth.ServiceMock {
	session := &storage.AuthData{Username: "reception", AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour).Unix()}
	return &auth.ServiceMock{
		EnsureTokenValidFunc: func(ctx context.Context) (*storage.AuthData, error) { return session, nil },
		SessionFunc:          func(ctx context.Context) (*storage.AuthData, error) { return session, nil },
	}
}

func loggedOut() *auth.ServiceMock {
	return &auth.ServiceMock{
		EnsureTokenValidFunc: func(ctx context.Context) (*storage.AuthData, error) { return nil, storage.ErrAuthNotFound },
		SessionFunc:          func(ctx context.Context) (*storage.AuthData, error) { return nil, storage.ErrAuthNotFound },
	}
}

func noConflicts() *SyncerMock {
	return &SyncerMock{
		PendingConflictsFunc: func(ctx context.Context) ([]*models.Conflict, error) { return nil, nil },
		PollFunc: func(ctx context.Context) (*clientsync.PassResult, error) {
			return &clientsync.PassResult{Synced: 1}, nil
		},
	}
}

func newTestCli(t *testing.T, tio *testIO, authService auth.Service, syncer Syncer) (*Cli, *boltdb.Storage) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(tio.mock, authService, desk.NewService(store), syncer, logger), store
}

func TestCli_Run_UnknownCommand(t *testing.T) {
	tio := newTestIO()
	cli, _ := newTestCli(t, tio, loggedOut(), noConflicts())

	err := cli.Run(context.Background(), "frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, tio.Output(), "Usage:")
}

func TestCli_runNewPatient_Offline(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO("Ravi Kumar", "98765 43210", "", "M", "Knee pain", "", "Rest; Knee exercises guide")
	syncer := noConflicts()
	cli, store := newTestCli(t, tio, loggedOut(), syncer)

	require.NoError(t, cli.Run(ctx, "new-patient", nil))

	assert.Contains(t, tio.Output(), "Temporary ID: offline-")
	assert.Empty(t, syncer.PollCalls(), "no --sync flag")

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindNewPatient, entries[0].Kind)

	var payload models.NewPatientPayload
	require.NoError(t, entries[0].Decode(&payload))
	require.NotNil(t, payload.Patient)
	assert.Equal(t, "9876543210", payload.Patient.Phone)
	assert.Equal(t, "Knee pain", payload.Consultation.ConsultationData["complaint"])
	assert.Equal(t, "Rest\nKnee exercises guide", payload.Consultation.ConsultationData["advice"])
	assert.NotContains(t, payload.Consultation.ConsultationData, "diagnosis")
}

func TestCli_runNewPatient_InvalidPhone(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO("Ravi", "n/a", "", "", "", "", "")
	cli, store := newTestCli(t, tio, loggedOut(), noConflicts())

	require.Error(t, cli.Run(ctx, "new-patient", nil))

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCli_runNewPatient_SyncRequiresSession(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO("Ravi", "9876543210", "", "", "", "", "")
	syncer := noConflicts()
	cli, store := newTestCli(t, tio, loggedOut(), syncer)

	err := cli.Run(ctx, "new-patient", []string{"--sync"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login")
	assert.Empty(t, syncer.PollCalls())

	// запись остается в очереди даже без сессии
	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCli_runAddConsultation_TemporaryPatient(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO("review", "Follow up", "", "")
	cli, store := newTestCli(t, tio, loggedOut(), noConflicts())

	require.NoError(t, cli.Run(ctx, "add-consultation", []string{"offline-1729300000000"}))
	assert.Contains(t, tio.Output(), "Queue key: offline-consultation-")

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindNewConsultation, entries[0].Kind)

	var payload models.NewConsultationPayload
	require.NoError(t, entries[0].Decode(&payload))
	assert.True(t, payload.PatientDetails.ID.IsTemporary())
	assert.Equal(t, api.VisitTypeReview, payload.VisitType)
}

func TestCli_runAddConsultation_MissingID(t *testing.T) {
	tio := newTestIO()
	cli, _ := newTestCli(t, tio, loggedOut(), noConflicts())

	err := cli.Run(context.Background(), "add-consultation", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Usage")
}

func TestCli_runEdit_WithSync(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO("", "", "", "Gout", "Diet for gout guide", "completed")
	syncer := noConflicts()
	cli, store := newTestCli(t, tio, loggedIn(), syncer)

	require.NoError(t, cli.Run(ctx, "edit", []string{testConsultationID, "--sync"}))

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testConsultationID, entries[0].Key)

	var payload models.ConsultationEditPayload
	require.NoError(t, entries[0].Decode(&payload))
	assert.Equal(t, api.StatusCompleted, payload.Status)
	assert.Equal(t, "Gout", payload.ExtraData["diagnosis"])

	assert.Len(t, syncer.PollCalls(), 1)
	assert.Contains(t, tio.Output(), "Synced:    1")
}

func TestCli_runEdit_NotServerID(t *testing.T) {
	tio := newTestIO("", "", "", "", "", "")
	cli, _ := newTestCli(t, tio, loggedIn(), noConflicts())

	require.Error(t, cli.Run(context.Background(), "edit", []string{"offline-consultation-1"}))
}

func TestCli_runQueue(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO()
	cli, _ := newTestCli(t, tio, loggedOut(), noConflicts())

	require.NoError(t, cli.Run(ctx, "queue", nil))
	assert.Contains(t, tio.Output(), "Queue is empty.")

	_, err := cli.desk.RegisterPatient(ctx, models.PatientDetails{Name: "A", Phone: "999"}, models.OfflineConsultation{})
	require.NoError(t, err)

	tio.out.Reset()
	require.NoError(t, cli.Run(ctx, "queue", nil))
	assert.Contains(t, tio.Output(), "1 change(s)")
	assert.Contains(t, tio.Output(), string(models.KindNewPatient))
}

func TestCli_runSync_SkipReasons(t *testing.T) {
	tests := []struct {
		name   string
		result *clientsync.PassResult
		want   string
	}{
		{"offline", &clientsync.PassResult{SkipReason: clientsync.SkipOffline}, "not reachable"},
		{"conflict pending", &clientsync.PassResult{SkipReason: clientsync.SkipConflictPending}, "paused"},
		{"in progress", &clientsync.PassResult{SkipReason: clientsync.SkipInProgress}, "Another sync"},
		{"conflict found", &clientsync.PassResult{Synced: 2, Conflicts: 1}, "Conflict detected"},
		{"failures", &clientsync.PassResult{Failed: 3}, "Failed:    3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := newTestIO()
			syncer := &SyncerMock{
				PollFunc: func(ctx context.Context) (*clientsync.PassResult, error) { return tt.result, nil },
			}
			cli, _ := newTestCli(t, tio, loggedIn(), syncer)

			require.NoError(t, cli.Run(context.Background(), "sync", nil))
			assert.Contains(t, tio.Output(), tt.want)
		})
	}
}

func TestCli_runSync_Error(t *testing.T) {
	tio := newTestIO()
	syncer := &SyncerMock{
		PollFunc: func(ctx context.Context) (*clientsync.PassResult, error) { return nil, errors.New("boom") },
	}
	cli, _ := newTestCli(t, tio, loggedIn(), syncer)

	err := cli.Run(context.Background(), "sync", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCli_runConflicts(t *testing.T) {
	detected := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	updated := detected.Add(-time.Minute)
	conflicts := []*models.Conflict{
		{
			Kind:       models.ConflictRecord,
			Key:        testConsultationID,
			DetectedAt: detected,
			Local:      &models.QueueEntry{Key: testConsultationID, Timestamp: detected.Add(-time.Hour)},
			Server:     &api.Consultation{ID: testConsultationID, Status: api.StatusCompleted, UpdatedAt: updated},
		},
		{
			Kind:           models.ConflictPatient,
			Key:            "offline-1",
			DetectedAt:     detected,
			OfflinePatient: &models.PatientDetails{Name: "Ravi", Phone: "9876543210"},
			Candidates:     []api.Patient{{ID: "202610011", Name: "Ravi K", DOB: "1980-01-01"}},
		},
	}

	tio := newTestIO()
	syncer := &SyncerMock{
		PendingConflictsFunc: func(ctx context.Context) ([]*models.Conflict, error) { return conflicts, nil },
	}
	cli, _ := newTestCli(t, tio, loggedOut(), syncer)

	require.NoError(t, cli.Run(context.Background(), "conflicts", nil))

	out := tio.Output()
	assert.Contains(t, out, "Consultation "+testConsultationID)
	assert.Contains(t, out, "status completed")
	assert.Contains(t, out, "2026-10-19 09:59:00")
	assert.Contains(t, out, "Entered:       Ravi, 9876543210")
	assert.Contains(t, out, "Existing:      202610011 Ravi K, born 1980-01-01")
	assert.Contains(t, out, "resolve offline-1 new|merge:<patient-id>")
}

func TestCli_runConflicts_None(t *testing.T) {
	tio := newTestIO()
	cli, _ := newTestCli(t, tio, loggedOut(), noConflicts())

	require.NoError(t, cli.Run(context.Background(), "conflicts", nil))
	assert.Contains(t, tio.Output(), "No conflicts.")
}

func TestCli_runResolve(t *testing.T) {
	newSyncer := func() *SyncerMock {
		return &SyncerMock{
			ResolveConflictFunc: func(ctx context.Context, key string, choice clientsync.RecordChoice) error {
				return nil
			},
			ResolvePatientConflictFunc: func(ctx context.Context, key string, choice clientsync.PatientChoice) error {
				return nil
			},
		}
	}

	t.Run("keep local", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedIn(), syncer)
		require.NoError(t, cli.Run(context.Background(), "resolve", []string{testConsultationID, "local"}))

		require.Len(t, syncer.ResolveConflictCalls(), 1)
		assert.Equal(t, clientsync.KeepLocal, syncer.ResolveConflictCalls()[0].Choice)
	})

	t.Run("new patient", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedIn(), syncer)
		require.NoError(t, cli.Run(context.Background(), "resolve", []string{"offline-1", "new"}))

		require.Len(t, syncer.ResolvePatientConflictCalls(), 1)
		assert.True(t, syncer.ResolvePatientConflictCalls()[0].Choice.IsNew())
	})

	t.Run("merge", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedIn(), syncer)
		require.NoError(t, cli.Run(context.Background(), "resolve", []string{"offline-1", "merge:202610011"}))

		require.Len(t, syncer.ResolvePatientConflictCalls(), 1)
		assert.Equal(t, "202610011", syncer.ResolvePatientConflictCalls()[0].Choice.MergeWith)
	})

	t.Run("merge without id", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedIn(), syncer)
		require.Error(t, cli.Run(context.Background(), "resolve", []string{"offline-1", "merge:"}))
		assert.Empty(t, syncer.ResolvePatientConflictCalls())
	})

	t.Run("unknown choice", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedIn(), syncer)
		require.Error(t, cli.Run(context.Background(), "resolve", []string{"offline-1", "both"}))
	})

	t.Run("not logged in", func(t *testing.T) {
		syncer := newSyncer()
		cli, _ := newTestCli(t, newTestIO(), loggedOut(), syncer)
		require.Error(t, cli.Run(context.Background(), "resolve", []string{testConsultationID, "server"}))
		assert.Empty(t, syncer.ResolveConflictCalls())
	})
}

func TestCli_runAutoSend(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO()
	cli, store := newTestCli(t, tio, loggedOut(), noConflicts())

	require.NoError(t, cli.Run(ctx, "autosend", nil))
	assert.Contains(t, tio.Output(), "auto-send: off")

	require.NoError(t, cli.Run(ctx, "autosend", []string{"on"}))
	enabled, err := store.GetAutoSend(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.Error(t, cli.Run(ctx, "autosend", []string{"maybe"}))
}

func TestCli_runStatus(t *testing.T) {
	ctx := context.Background()
	tio := newTestIO()
	cli, _ := newTestCli(t, tio, loggedOut(), noConflicts())

	require.NoError(t, cli.Run(ctx, "status", nil))
	out := tio.Output()
	assert.Contains(t, out, "not authenticated")
	assert.Contains(t, out, "All changes synchronized")
	assert.Contains(t, out, "Last sync: never")
}

func TestCli_runLogin(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	tio := newTestIO("reception")
	authService := &auth.ServiceMock{
		LoginFunc: func(ctx context.Context, username, password string) (*storage.AuthData, error) {
			return &storage.AuthData{Username: username, ExpiresAt: time.Now().Add(time.Hour).Unix()}, nil
		},
	}
	cli, _ := newTestCli(t, tio, authService, noConflicts())
	cli.SetPasswords(Passwords{FromArgs: "0123456789"})

	require.NoError(t, cli.Run(context.Background(), "login", nil))

	require.Len(t, authService.LoginCalls(), 1)
	assert.Equal(t, "reception", authService.LoginCalls()[0].Username)
	assert.Equal(t, "0123456789", authService.LoginCalls()[0].Password)
	assert.Contains(t, tio.Output(), "Login successful")
}

func TestSessionPoller_RefreshesBeforePoll(t *testing.T) {
	authService := loggedIn()
	syncer := noConflicts()
	p := &sessionPoller{auth: authService, syncer: syncer}

	_, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Len(t, authService.EnsureTokenValidCalls(), 1)
	assert.Len(t, syncer.PollCalls(), 1)

	p.auth = loggedOut()
	_, err = p.Poll(context.Background())
	require.ErrorIs(t, err, storage.ErrAuthNotFound)
	assert.Len(t, syncer.PollCalls(), 1)
}
