package cli

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/iudanet/clinicsync/internal/client/sync"
	"github.com/iudanet/clinicsync/internal/models"
)

const recordConflictTemplate = `
Consultation {{.Key}} (version conflict)
  Detected:      {{.DetectedAt.Format "2006-01-02 15:04:05"}}
{{- if .Local}}
  Local edit:    {{.Local.Timestamp.Format "2006-01-02 15:04:05"}}
{{- end}}
{{- if .Server}}
  Server update: {{.Server.LastModified.Format "2006-01-02 15:04:05"}} (status {{.Server.Status}})
{{- end}}
  Resolve with:  clinicsync resolve {{.Key}} local|server
`

const patientConflictTemplate = `
New patient {{.Key}} (phone already registered)
{{- if .OfflinePatient}}
  Entered:       {{.OfflinePatient.Name}}, {{.OfflinePatient.Phone}}
{{- end}}
{{- range .Candidates}}
  Existing:      {{.ID}} {{.Name}}{{if .DOB}}, born {{.DOB}}{{end}}
{{- end}}
  Resolve with:  clinicsync resolve {{.Key}} new|merge:<patient-id>
`

var conflictTemplates = map[models.ConflictKind]*template.Template{
	models.ConflictRecord:  template.Must(template.New("record").Parse(recordConflictTemplate)),
	models.ConflictPatient: template.Must(template.New("patient").Parse(patientConflictTemplate)),
}

func (c *Cli) runConflicts(ctx context.Context) error {
	c.io.Println("=== Conflicts ===")

	conflicts, err := c.syncer.PendingConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		c.io.Println()
		c.io.Println("No conflicts.")
		return nil
	}

	for _, conflict := range conflicts {
		tmpl, ok := conflictTemplates[conflict.Kind]
		if !ok {
			c.io.Printf("\n%s (unknown conflict kind %s)\n", conflict.Key, conflict.Kind)
			continue
		}
		if err := tmpl.Execute(c.io, conflict); err != nil {
			return fmt.Errorf("failed to render conflict: %w", err)
		}
	}
	return nil
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) < 2 {
		return fmt.Errorf("usage: clinicsync resolve <key> local|server|new|merge:<patient-id>")
	}
	key, choice := pos[0], pos[1]

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	var err error
	switch {
	case choice == string(sync.KeepLocal) || choice == string(sync.KeepServer):
		err = c.syncer.ResolveConflict(ctx, key, sync.RecordChoice(choice))
	case choice == "new":
		err = c.syncer.ResolvePatientConflict(ctx, key, sync.NewPatient())
	case strings.HasPrefix(choice, "merge:"):
		patientID := strings.TrimPrefix(choice, "merge:")
		if patientID == "" {
			return fmt.Errorf("merge requires a patient id, e.g. merge:202610011")
		}
		err = c.syncer.ResolvePatientConflict(ctx, key, sync.MergeInto(patientID))
	default:
		return fmt.Errorf("unknown choice %q, use local, server, new or merge:<patient-id>", choice)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	c.QueueChanged()
	c.io.Println("✓ Conflict resolved.")
	c.io.Println("Run 'clinicsync sync' to continue synchronization.")
	return nil
}
