// Package file implements the lock provider against one record file per
// player inside a single shared directory. The directory is reached
// exclusively through a scopedfs.OpenFunc capability rather than a general
// filesystem API; that is the privilege boundary, not an optimization.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/internal/scopedfs"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

func init() {
	lock.Register("file", func(settings lock.Settings) (lock.Provider, error) {
		return New(Config{Dir: settings.Dir, Logger: settings.Logger})
	})
}

// Config captures the tunables for the file backend.
type Config struct {
	// Dir is the shared lock directory. Ignored when Open is supplied.
	Dir string
	// Open overrides the scoped open capability, mainly for tests.
	Open scopedfs.OpenFunc
	// Logger defaults to a noop logger.
	Logger pslog.Logger
}

// Provider implements lock.Provider backed by single-line record files.
type Provider struct {
	open   scopedfs.OpenFunc
	logger pslog.Logger
}

// New initialises a file-backed provider. When cfg.Open is nil the scoped
// capability is narrowed from os.OpenFile over cfg.Dir, and the broad
// primitive is not retained anywhere else.
func New(cfg Config) (*Provider, error) {
	open := cfg.Open
	if open == nil {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file: lock directory required")
		}
		narrowed, err := scopedfs.Narrow(os.OpenFile, cfg.Dir)
		if err != nil {
			return nil, err
		}
		open = narrowed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Provider{open: open, logger: logger}, nil
}

// Check reads the player's record file and classifies it. A missing file is
// an unclaimed player; any other open failure is an operator problem and
// escalates.
func (p *Provider) Check(ctx context.Context, player string) (lock.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return lock.CheckResult{}, err
	}
	if err := identifier.Require(player); err != nil {
		return lock.CheckResult{}, err
	}
	f, err := p.open(player, scopedfs.ModeRead)
	if err != nil {
		if os.IsNotExist(err) {
			return lock.Unclaimed(), nil
		}
		return lock.CheckResult{}, fmt.Errorf("file: open record for %s: %w", player, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return lock.CheckResult{}, fmt.Errorf("file: read record for %s: %w", player, err)
	}
	result, err := lock.ParseRecord(data)
	if err != nil {
		return lock.CheckResult{}, fmt.Errorf("file: record for %s: %w", player, err)
	}
	if result.Status == lock.StatusTransient {
		p.logger.Warn("half-written ownership record observed", "player", player, "reason", result.Reason)
	}
	return result, nil
}

// Put truncate-creates the player's record as <owner> followed by a single
// newline. The owner bytes and the newline are written as two separate
// calls; readers that race the gap between them observe a transient
// half-write, which Check tolerates. No rename or fsync is attempted.
func (p *Provider) Put(ctx context.Context, player, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := identifier.Require(player); err != nil {
		return err
	}
	if err := identifier.Require(owner); err != nil {
		return err
	}
	f, err := p.open(player, scopedfs.ModeWrite)
	if err != nil {
		return fmt.Errorf("file: create record for %s: %w", player, err)
	}
	if _, err := f.Write([]byte(owner)); err != nil {
		f.Close()
		return fmt.Errorf("file: write record for %s: %w", player, err)
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		f.Close()
		return fmt.Errorf("file: terminate record for %s: %w", player, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file: close record for %s: %w", player, err)
	}
	p.logger.Debug("ownership record written", "player", player, "owner", owner)
	return nil
}

// Close releases nothing; record files are left behind for other instances.
func (p *Provider) Close() error { return nil }
