package main

import (
	"fmt"

	"github.com/spf13/cobra"

	lockfile "pkt.systems/claimd/internal/lock/file"
	"pkt.systems/pslog"
)

func newVerifyCommand(baseLogger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Preflight the lock directory before pointing servers at it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(baseLogger, "cli.verify")
			cfg := loadConfig()
			if cfg.LockDir == "" {
				return fmt.Errorf("verify requires --lock-dir")
			}
			checks := lockfile.Verify(cmd.Context(), lockfile.Config{Dir: cfg.LockDir, Logger: logger})
			failed := 0
			for _, check := range checks {
				if check.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", check.Name, check.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", check.Name)
			}
			if failed > 0 {
				return fmt.Errorf("lock directory verification failed (%d/%d checks)", failed, len(checks))
			}
			logger.Info("lock directory verified", "dir", cfg.LockDir, "checks", len(checks))
			return nil
		},
	}
}
