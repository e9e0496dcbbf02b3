package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/clinicsync/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	session, err := c.authService.Session(ctx)
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		c.io.Println("Session: not authenticated")
		c.io.Println("Run 'clinicsync login' to authenticate. Patients can still be registered offline.")
	case err != nil:
		return fmt.Errorf("failed to get auth data: %w", err)
	default:
		expiresAt := time.Unix(session.ExpiresAt, 0)
		c.io.Printf("Session: %s\n", session.Username)
		if remaining := time.Until(expiresAt); remaining > 0 {
			c.io.Printf("Token expires in: %s\n", remaining.Round(time.Second))
		} else {
			c.io.Println("Token expired, it will be refreshed on next sync.")
		}
	}
	c.io.Println()

	pending, err := c.desk.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}
	if len(pending) > 0 {
		c.io.Printf("⚠️  Pending sync: %d change(s) saved locally\n", len(pending))
	} else {
		c.io.Println("✓ All changes synchronized with server")
	}

	last, err := c.desk.LastSync(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last sync time: %w", err)
	}
	if last.IsZero() {
		c.io.Println("Last sync: never")
	} else {
		c.io.Printf("Last sync: %s\n", last.Local().Format(time.DateTime))
	}

	conflicts, err := c.syncer.PendingConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		c.io.Printf("⚠️  %d conflict(s) block synchronization, run 'clinicsync conflicts'\n", len(conflicts))
	}

	autoSend, err := c.desk.AutoSend(ctx)
	if err != nil {
		return fmt.Errorf("failed to read auto-send preference: %w", err)
	}
	c.io.Printf("WhatsApp auto-send: %s\n", onOff(autoSend))
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
