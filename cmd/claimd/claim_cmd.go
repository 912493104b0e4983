package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/claimd"
	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/pslog"
)

func newClaimCommand(baseLogger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <player> [owner]",
		Short: "Write an ownership record for a player",
		Long: `Claim writes the ownership record for a player, overwriting any existing
record. The owner defaults to --instance-name. Use with care: the running
instances trust these records.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(baseLogger, "cli.claim")
			cfg := loadConfig()
			owner := cfg.InstanceName
			if len(args) == 2 {
				owner = args[1]
			}
			if owner == "" {
				return fmt.Errorf("claim requires --instance-name or an explicit owner argument")
			}
			if err := identifier.Require(owner); err != nil {
				return fmt.Errorf("claim owner: %w", err)
			}
			cfg.InstanceName = cliInstanceName()
			provider, err := claimd.OpenProvider(cfg, logger)
			if err != nil {
				return err
			}
			defer provider.Close()
			if err := provider.Put(cmd.Context(), args[0], owner); err != nil {
				return err
			}
			logger.Info("record written", "player", args[0], "owner", owner)
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now owned by %s\n", args[0], owner)
			return nil
		},
	}
}
