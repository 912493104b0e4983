package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"pkt.systems/claimd/lock"
)

// Check represents a verification step outcome.
type Check struct {
	Name string
	Err  error
}

// Verify exercises the file backend against cfg.Dir before a server trusts
// it: a claim/check round-trip, half-write detection, and corruption
// detection, all against a scratch player name that is removed afterwards.
// The scratch record is planted and cleaned through cfg.Dir directly, so an
// Open override is rejected up front rather than silently misdirecting the
// checks.
func Verify(ctx context.Context, cfg Config) []Check {
	result := []Check{}
	if cfg.Open != nil {
		return append(result, Check{Name: "Init", Err: errors.New("file: verify requires a lock directory, not an open override")})
	}
	provider, err := New(cfg)
	if err != nil {
		return append(result, Check{Name: "Init", Err: err})
	}
	defer provider.Close()

	player := "claimd-verify-" + xid.New().String()
	path := filepath.Join(cfg.Dir, player+".txt")
	defer os.Remove(path)

	checks := []struct {
		name string
		fn   func() error
	}{
		{
			name: "ClaimRoundTrip",
			fn: func() error {
				if err := provider.Put(ctx, player, "claimd-verify-owner"); err != nil {
					return err
				}
				res, err := provider.Check(ctx, player)
				if err != nil {
					return err
				}
				if res.Status != lock.StatusOwned || res.Owner != "claimd-verify-owner" {
					return fmt.Errorf("round-trip returned %+v", res)
				}
				return nil
			},
		},
		{
			name: "HalfWriteDetection",
			fn: func() error {
				if err := os.WriteFile(path, []byte("claimd-verify-owner"), 0o644); err != nil {
					return err
				}
				res, err := provider.Check(ctx, player)
				if err != nil {
					return err
				}
				if res.Status != lock.StatusTransient {
					return fmt.Errorf("half-write classified as %+v", res)
				}
				return nil
			},
		},
		{
			name: "CorruptionDetection",
			fn: func() error {
				if err := os.WriteFile(path, []byte("a\nb"), 0o644); err != nil {
					return err
				}
				_, err := provider.Check(ctx, player)
				if !errors.Is(err, lock.ErrProtocol) {
					return fmt.Errorf("corrupt record yielded %v", err)
				}
				return nil
			},
		},
	}
	for _, check := range checks {
		result = append(result, Check{Name: check.name, Err: check.fn()})
	}
	return result
}
