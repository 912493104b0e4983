// Command claimd is the operator tool for the shared player-ownership lock
// store: inspect and claim records, verify a lock directory before trusting
// it, and watch ownership changes live.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkt.systems/claimd"
	"pkt.systems/claimd/internal/svcfields"
	"pkt.systems/pslog"
)

func submain(ctx context.Context) int {
	baseLogger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("CLAIMD_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(os.Stderr),
	).With("app", "claimd")
	cmd := newRootCommand(baseLogger)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if err != context.Canceled {
			svcfields.WithSubsystem(baseLogger, "cli").Error("command failed", "error", err)
		}
		return 1
	}
	return 0
}

func newRootCommand(baseLogger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "claimd",
		Short:         "claimd arbitrates which server instance owns each player identity",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # Who owns Steve in the shared lock directory?
  claimd --lock-dir /srv/pool/locks check Steve

  # Claim Steve for this instance (hub-1)
  claimd --instance-name hub-1 --lock-dir /srv/pool/locks claim Steve

  # Preflight a lock directory before pointing servers at it
  claimd --lock-dir /srv/pool/locks verify

  # Records in a shared S3 bucket instead of a directory
  CLAIMD_S3_SECRET_ACCESS_KEY=... claimd --lock-provider s3 --s3-bucket pool-locks --s3-access-key-id pool check Steve
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (YAML); CLAIMD_* env and flags override it")
	flags.String("log-level", "", "minimum log level (trace, debug, info, warn, error)")
	flags.String("instance-name", "", "name of this server instance inside the pool")
	flags.String("lock-provider", claimd.DefaultProvider, "lock backend: file, mem, or s3")
	flags.Bool("is-lock-master", false, "permit claiming unclaimed players (one instance per pool)")
	flags.String("lock-dir", claimd.DefaultLockDir, "shared lock directory (file provider)")
	flags.String("s3-endpoint", "", "S3 endpoint host[:port]; derived from region when empty")
	flags.String("s3-region", "", "S3 region")
	flags.String("s3-bucket", "", "S3 bucket holding ownership records")
	flags.String("s3-prefix", "", "key prefix inside the bucket")
	flags.String("s3-access-key-id", "", "static S3 access key (chain credentials when empty)")
	flags.String("s3-secret-access-key", "", "static S3 secret key")
	flags.Bool("s3-insecure", false, "use plain HTTP toward the S3 endpoint")
	flags.Bool("s3-path-style", false, "force path-style bucket addressing")

	cmd.AddCommand(newCheckCommand(baseLogger))
	cmd.AddCommand(newClaimCommand(baseLogger))
	cmd.AddCommand(newVerifyCommand(baseLogger))
	cmd.AddCommand(newWatchCommand(baseLogger))
	return cmd
}

func bindConfig(cmd *cobra.Command) error {
	for _, name := range []string{
		"config", "log-level", "instance-name", "lock-provider", "is-lock-master", "lock-dir",
		"s3-endpoint", "s3-region", "s3-bucket", "s3-prefix",
		"s3-access-key-id", "s3-secret-access-key", "s3-insecure", "s3-path-style",
		"metrics-listen",
	} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.Root().PersistentFlags().Lookup(name)
		}
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	viper.SetEnvPrefix("CLAIMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if cfgPath := strings.TrimSpace(viper.GetString("config")); cfgPath != "" {
		viper.SetConfigFile(cfgPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}
	return nil
}

func loadConfig() claimd.Config {
	return claimd.Config{
		InstanceName:      viper.GetString("instance-name"),
		Provider:          viper.GetString("lock-provider"),
		IsLockMaster:      viper.GetBool("is-lock-master"),
		LockDir:           viper.GetString("lock-dir"),
		S3Endpoint:        viper.GetString("s3-endpoint"),
		S3Region:          viper.GetString("s3-region"),
		S3Bucket:          viper.GetString("s3-bucket"),
		S3Prefix:          viper.GetString("s3-prefix"),
		S3AccessKeyID:     viper.GetString("s3-access-key-id"),
		S3SecretAccessKey: viper.GetString("s3-secret-access-key"),
		S3Insecure:        viper.GetBool("s3-insecure"),
		S3ForcePathStyle:  viper.GetBool("s3-path-style"),
	}
}

func commandLogger(baseLogger pslog.Logger, subsystem string) pslog.Logger {
	logger := baseLogger
	if levelStr := strings.TrimSpace(viper.GetString("log-level")); levelStr != "" {
		if level, ok := pslog.ParseLevel(levelStr); ok {
			logger = logger.LogLevel(level)
		}
	}
	return svcfields.WithSubsystem(logger, subsystem)
}

// cliInstanceName falls back to the hostname so read-only commands work
// without explicit configuration; anything that writes records still
// requires a validated instance name.
func cliInstanceName() string {
	if name := viper.GetString("instance-name"); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil {
		return "claimd-cli"
	}
	return sanitizeInstanceName(host)
}

func sanitizeInstanceName(host string) string {
	var b strings.Builder
	for i := 0; i < len(host); i++ {
		c := host[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '_', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "claimd-cli"
	}
	return b.String()
}
