package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/internal/models"
)

func (c *Cli) runNewPatient(ctx context.Context, args []string) error {
	c.io.Println("=== New Patient ===")
	c.io.Println()

	var patient models.PatientDetails
	var err error
	if patient.Name, err = c.io.ReadInput("Name: "); err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	if patient.Phone, err = c.io.ReadInput("Phone: "); err != nil {
		return fmt.Errorf("failed to read phone: %w", err)
	}
	if patient.DOB, err = c.io.ReadInput("Date of birth YYYY-MM-DD (optional): "); err != nil {
		return fmt.Errorf("failed to read date of birth: %w", err)
	}
	if patient.Sex, err = c.io.ReadInput("Sex (optional): "); err != nil {
		return fmt.Errorf("failed to read sex: %w", err)
	}

	data, err := c.readClinicalFields("Complaint", "Diagnosis", "Advice")
	if err != nil {
		return err
	}

	id, err := c.desk.RegisterPatient(ctx, patient, models.OfflineConsultation{ConsultationData: data})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Patient saved locally, will sync when the server is reachable.")
	c.io.Printf("Temporary ID: %s\n", id)

	return c.syncIfRequested(ctx, args)
}

func (c *Cli) runAddConsultation(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) == 0 {
		return fmt.Errorf("missing patient id. Usage: clinicsync add-consultation <patient-id> [--sync]")
	}
	patientID, err := ident.Parse(pos[0])
	if err != nil {
		return fmt.Errorf("invalid patient id: %w", err)
	}

	c.io.Println("=== New Consultation ===")
	c.io.Printf("Patient: %s\n", patientID)
	c.io.Println()

	visitType, err := c.io.ReadInput("Visit type paid|free|review (default paid): ")
	if err != nil {
		return fmt.Errorf("failed to read visit type: %w", err)
	}
	data, err := c.readClinicalFields("Complaint", "Diagnosis", "Advice")
	if err != nil {
		return err
	}

	key, err := c.desk.AddConsultation(ctx, models.PatientDetails{ID: patientID}, data, strings.ToLower(visitType))
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Consultation saved locally.")
	c.io.Printf("Queue key: %s\n", key)

	return c.syncIfRequested(ctx, args)
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) == 0 {
		return fmt.Errorf("missing consultation id. Usage: clinicsync edit <consultation-id> [--sync]")
	}
	consultationID := pos[0]

	c.io.Println("=== Edit Consultation ===")
	c.io.Printf("Consultation: %s\n", consultationID)
	c.io.Println("Leave a field empty to keep the server value.")
	c.io.Println()

	var patient models.PatientDetails
	var err error
	if patient.Name, err = c.io.ReadInput("Patient name: "); err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	if patient.Phone, err = c.io.ReadInput("Patient phone: "); err != nil {
		return fmt.Errorf("failed to read phone: %w", err)
	}

	data, err := c.readClinicalFields("Complaint", "Diagnosis", "Advice")
	if err != nil {
		return err
	}
	status, err := c.io.ReadInput("Status pending|under_evaluation|completed: ")
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	if err := c.desk.EditConsultation(ctx, consultationID, patient, data, strings.ToLower(status)); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Changes saved locally.")

	return c.syncIfRequested(ctx, args)
}

// readClinicalFields читает поля консультации; пустые не попадают в результат.
// В рекомендациях строки разделяются ';'.
func (c *Cli) readClinicalFields(labels ...string) (map[string]any, error) {
	data := make(map[string]any, len(labels))
	for _, label := range labels {
		prompt := label + " (optional): "
		if label == "Advice" {
			prompt = "Advice, separate lines with ';' (optional): "
		}
		v, err := c.io.ReadInput(prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if label == "Advice" {
			parts := strings.Split(v, ";")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			v = strings.Join(parts, "\n")
		}
		data[strings.ToLower(label)] = v
	}
	return data, nil
}

func (c *Cli) syncIfRequested(ctx context.Context, args []string) error {
	if !hasFlag(args, "--sync") {
		return nil
	}
	c.io.Println()
	return c.runSync(ctx)
}
