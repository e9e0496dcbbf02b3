package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runAutoSend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		enabled, err := c.desk.AutoSend(ctx)
		if err != nil {
			return fmt.Errorf("failed to read auto-send preference: %w", err)
		}
		c.io.Printf("WhatsApp auto-send: %s\n", onOff(enabled))
		return nil
	}

	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
	default:
		return fmt.Errorf("usage: clinicsync autosend [on|off]")
	}

	if err := c.desk.SetAutoSend(ctx, enabled); err != nil {
		return fmt.Errorf("failed to save auto-send preference: %w", err)
	}
	c.io.Printf("✓ WhatsApp auto-send %s\n", onOff(enabled))
	return nil
}
