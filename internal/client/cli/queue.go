package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runQueue(ctx context.Context) error {
	c.io.Println("=== Pending Changes ===")
	c.io.Println()

	entries, err := c.desk.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}
	if len(entries) == 0 {
		c.io.Println("Queue is empty.")
		return nil
	}

	c.io.Printf("%d change(s) in sync order:\n\n", len(entries))
	for i, e := range entries {
		kind := string(e.Kind)
		if kind == "" {
			kind = "unknown"
		}
		c.io.Printf("%d. %-26s %s\n", i+1, kind, e.Key)
		c.io.Printf("   saved %s\n", e.Timestamp.Local().Format(time.DateTime))
	}
	return nil
}
