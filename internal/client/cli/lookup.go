package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/clinicsync/pkg/api"
)

//go:generate moq -out directory_mock.go . Directory

// Directory поиск по серверным данным для получения id пациентов и консультаций
type Directory interface {
	LookupPatientsByPhone(ctx context.Context, phone string) ([]api.Patient, error)
	ListConsultations(ctx context.Context, patientID, status string) ([]api.Consultation, error)
}

func (c *Cli) runFind(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) == 0 {
		return fmt.Errorf("missing phone. Usage: clinicsync find <phone>")
	}
	if err := c.requireDirectory(ctx); err != nil {
		return err
	}

	phone := strings.Join(pos, " ")
	patients, err := c.directory.LookupPatientsByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(patients) == 0 {
		c.io.Printf("No patients with phone %s.\n", phone)
		return nil
	}

	c.io.Printf("%d patient(s):\n\n", len(patients))
	for _, p := range patients {
		c.io.Printf("%-12s %s", p.ID, p.Name)
		if p.DOB != "" {
			c.io.Printf(", born %s", p.DOB)
		}
		c.io.Printf(", %s\n", p.Phone)
	}
	c.io.Println()
	c.io.Println("Use 'clinicsync consultations <patient-id>' to list visits.")
	return nil
}

// runConsultations выводит консультации пациента или все ожидающие приема
func (c *Cli) runConsultations(ctx context.Context, args []string) error {
	pos := positional(args)
	var patientID, status string
	switch {
	case hasFlag(args, "--pending"):
		status = api.StatusPending
	case len(pos) > 0:
		patientID = pos[0]
	default:
		return fmt.Errorf("usage: clinicsync consultations <patient-id> | --pending")
	}
	if err := c.requireDirectory(ctx); err != nil {
		return err
	}

	list, err := c.directory.ListConsultations(ctx, patientID, status)
	if err != nil {
		return fmt.Errorf("failed to list consultations: %w", err)
	}
	if len(list) == 0 {
		c.io.Println("No consultations found.")
		return nil
	}

	for _, cons := range list {
		name := cons.PatientID
		if cons.Patient != nil {
			name = cons.PatientID + " " + cons.Patient.Name
		}
		c.io.Printf("%s  %-16s %s  %s\n",
			cons.ID, cons.Status, cons.CreatedAt.Local().Format(time.DateTime), name)
	}
	c.io.Println()
	c.io.Println("Use 'clinicsync edit <consultation-id>' to change a consultation.")
	return nil
}

func (c *Cli) runLocation(ctx context.Context, args []string) error {
	pos := positional(args)
	switch {
	case hasFlag(args, "--clear"):
		if err := c.desk.SetLocation(ctx, ""); err != nil {
			return fmt.Errorf("failed to clear location: %w", err)
		}
		c.io.Println("✓ Location cleared")
		return nil
	case len(pos) > 0:
		location := strings.Join(pos, " ")
		if err := c.desk.SetLocation(ctx, location); err != nil {
			return fmt.Errorf("failed to save location: %w", err)
		}
		c.io.Printf("✓ Location set to %s\n", location)
		return nil
	}

	location, err := c.desk.Location(ctx)
	if err != nil {
		return fmt.Errorf("failed to read location: %w", err)
	}
	if location == "" {
		location = "not set"
	}
	c.io.Printf("Location: %s\n", location)
	return nil
}

func (c *Cli) requireDirectory(ctx context.Context) error {
	if c.directory == nil {
		return fmt.Errorf("server search is not configured")
	}
	return c.requireSession(ctx)
}
