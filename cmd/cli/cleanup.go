package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired idempotency markers and published outbox events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.maintenance.RunOnce(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "cleanup complete")
			return nil
		},
	}
}
