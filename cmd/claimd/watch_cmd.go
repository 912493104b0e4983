package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkt.systems/claimd"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

func newWatchCommand(baseLogger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow ownership changes in the lock directory",
		Long: `Watch subscribes to filesystem events in the lock directory and logs every
ownership record change as it lands. Useful when diagnosing claim races or
verifying that transfers propagate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(baseLogger, "cli.watch")
			cfg := loadConfig()
			if cfg.LockDir == "" {
				return fmt.Errorf("watch requires --lock-dir")
			}
			return runWatch(cmd.Context(), cfg.LockDir, viper.GetString("metrics-listen"), logger)
		},
	}
	cmd.Flags().String("metrics-listen", "", "expose watch metrics on this address (empty disables)")
	return cmd
}

func runWatch(ctx context.Context, dir, metricsListen string, logger pslog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claimd",
		Name:      "watch_record_events_total",
		Help:      "Lock-record filesystem events seen by claimd watch.",
	}, []string{"state"})
	if metricsListen != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(events)
		srv, _, err := claimd.StartMetricsServer(metricsListen, registry, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	logger.Info("watching lock directory", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			player, ok := recordPlayer(event.Name)
			if !ok {
				continue
			}
			state := describeRecord(event.Name)
			events.WithLabelValues(stateLabel(state)).Inc()
			logger.Info("record changed", "player", player, "state", state)
		}
	}
}

func recordPlayer(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".txt") {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}

func describeRecord(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("unreadable: %v", err)
	}
	result, err := lock.ParseRecord(data)
	if err != nil {
		return fmt.Sprintf("corrupt: %v", err)
	}
	switch result.Status {
	case lock.StatusOwned:
		return "owned by " + result.Owner
	case lock.StatusTransient:
		return "mid-write"
	default:
		return "unclaimed"
	}
}

func stateLabel(state string) string {
	switch {
	case strings.HasPrefix(state, "owned"):
		return "owned"
	case state == "mid-write":
		return "mid_write"
	case strings.HasPrefix(state, "corrupt"):
		return "corrupt"
	default:
		return "other"
	}
}
