// Package cli команды терминального клиента регистратуры
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/clinicsync/internal/client/auth"
	"github.com/iudanet/clinicsync/internal/client/desk"
	"github.com/iudanet/clinicsync/internal/client/iocli"
	"github.com/iudanet/clinicsync/internal/client/sync"
	"github.com/iudanet/clinicsync/internal/models"
)

// PasswordEnv переменная окружения с паролем оператора
const PasswordEnv = "CLINICSYNC_PASSWORD"

//go:generate moq -out syncer_mock.go . Syncer

// Syncer операции движка синхронизации, которые нужны командам
type Syncer interface {
	Poll(ctx context.Context) (*sync.PassResult, error)
	PendingConflicts(ctx context.Context) ([]*models.Conflict, error)
	ResolveConflict(ctx context.Context, key string, choice sync.RecordChoice) error
	ResolvePatientConflict(ctx context.Context, key string, choice sync.PatientChoice) error
}

// Passwords источники пароля оператора
type Passwords struct {
	FromFile string
	FromArgs string
}

// WatchOptions параметры команды watch
type WatchOptions struct {
	Registry    *prometheus.Registry
	MetricsAddr string
	// Online проверка связи; при возврате сервера проход запускается сразу
	Online      sync.Connectivity
	OnlineCheck time.Duration
	Interval    time.Duration
	Jitter      time.Duration
}

type Cli struct {
	io          iocli.IO
	authService auth.Service
	desk        desk.Service
	syncer      Syncer
	directory   Directory
	runner      *sync.Runner
	logger      *slog.Logger
	passwords   Passwords
	watch       WatchOptions
}

func New(io iocli.IO, authService auth.Service, deskService desk.Service, syncer Syncer, logger *slog.Logger) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		desk:        deskService,
		syncer:      syncer,
		runner:      sync.NewRunner(&sessionPoller{auth: authService, syncer: syncer}, logger),
		logger:      logger,
		watch:       WatchOptions{Interval: sync.DefaultInterval},
	}
}

// SetPasswords задает источники пароля для login
func (c *Cli) SetPasswords(p Passwords) { c.passwords = p }

// SetWatchOptions задает параметры фонового режима
func (c *Cli) SetWatchOptions(o WatchOptions) { c.watch = o }

// SetDirectory подключает поиск пациентов и консультаций на сервере
func (c *Cli) SetDirectory(d Directory) { c.directory = d }

// QueueChanged запрашивает внеочередной проход синхронизации.
// Вне watch запрос ничего не делает.
func (c *Cli) QueueChanged() { c.runner.Trigger() }

// Run выполняет команду; args не включают имя команды
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "new-patient":
		return c.runNewPatient(ctx, args)
	case "add-consultation":
		return c.runAddConsultation(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "queue":
		return c.runQueue(ctx)
	case "sync":
		return c.runSync(ctx)
	case "watch":
		return c.runWatch(ctx)
	case "conflicts":
		return c.runConflicts(ctx)
	case "resolve":
		return c.runResolve(ctx, args)
	case "autosend":
		return c.runAutoSend(ctx, args)
	case "location":
		return c.runLocation(ctx, args)
	case "find":
		return c.runFind(ctx, args)
	case "consultations":
		return c.runConsultations(ctx, args)
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// getPassword возвращает пароль по приоритету:
// 1. переменная окружения CLINICSYNC_PASSWORD
// 2. файл --password-file
// 3. параметр --password
// 4. интерактивный ввод
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	if c.passwords.FromArgs != "" {
		return c.passwords.FromArgs, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// hasFlag проверяет наличие флага вида --sync среди аргументов
func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

// positional возвращает аргументы без флагов
func positional(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			out = append(out, a)
		}
	}
	return out
}

func PrintUsage(out iocli.IO) {
	out.Println("clinicsync desk client")
	out.Println()
	out.Println("Usage:")
	out.Println("  clinicsync [OPTIONS] COMMAND [ARGS]")
	out.Println()
	out.Println("Options:")
	out.Println("  --version                Show version information")
	out.Println("  --server URL             Server URL")
	out.Println("  --db PATH                Path to local database")
	out.Println("  --password PASSWORD      Operator password (not recommended, use env var or file)")
	out.Println("  --password-file PATH     Path to file containing operator password")
	out.Println("  --metrics ADDR           Expose sync metrics in watch mode, e.g. :9091")
	out.Println()
	out.Println("Commands:")
	out.Println("  register                          Register new operator")
	out.Println("  login                             Login to server")
	out.Println("  logout                            Logout and delete local session")
	out.Println("  status                            Show session and sync status")
	out.Println("  new-patient [--sync]              Register patient (works offline)")
	out.Println("  add-consultation <patient-id>     Add consultation for a patient")
	out.Println("  edit <consultation-id> [--sync]   Edit consultation")
	out.Println("  queue                             Show changes waiting for sync")
	out.Println("  sync                              Run one sync pass")
	out.Println("  watch                             Sync in background and accept desk commands")
	out.Println("  conflicts                         Show conflicts waiting for a decision")
	out.Println("  resolve <key> <choice>            Resolve conflict: local|server|new|merge:<patient-id>")
	out.Println("  autosend [on|off]                 Show or set WhatsApp auto-send on completion")
	out.Println("  location [name|--clear]           Show or set the hospital sent with edits")
	out.Println("  find <phone>                      Find patients on the server by phone")
	out.Println("  consultations <patient-id>        List a patient's consultations")
	out.Println("  consultations --pending           List consultations waiting for the doctor")
	out.Println()
	out.Println("Password priority (highest to lowest):")
	out.Println("  1. " + PasswordEnv + " environment variable")
	out.Println("  2. --password-file")
	out.Println("  3. --password")
	out.Println("  4. Interactive prompt")
}
