package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/claimd"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

func newCheckCommand(baseLogger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check <player>",
		Short: "Report which instance owns a player, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(baseLogger, "cli.check")
			cfg := loadConfig()
			cfg.InstanceName = cliInstanceName()
			provider, err := claimd.OpenProvider(cfg, logger)
			if err != nil {
				return err
			}
			defer provider.Close()
			result, err := provider.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch result.Status {
			case lock.StatusOwned:
				fmt.Fprintf(cmd.OutOrStdout(), "%s is owned by %s\n", args[0], result.Owner)
			case lock.StatusUnclaimed:
				fmt.Fprintf(cmd.OutOrStdout(), "%s is unclaimed\n", args[0])
			case lock.StatusTransient:
				fmt.Fprintf(cmd.OutOrStdout(), "%s is transiently unavailable: %s\n", args[0], result.Reason)
			}
			return nil
		},
	}
}
