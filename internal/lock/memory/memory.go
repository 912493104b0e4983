// Package memory implements the lock provider over a process-local map.
// Useful for tests and single-instance setups; records do not survive the
// process and are invisible to other instances.
package memory

import (
	"context"
	"sync"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/lock"
)

func init() {
	lock.Register("mem", func(settings lock.Settings) (lock.Provider, error) {
		return New(), nil
	})
}

// Provider implements lock.Provider in memory.
type Provider struct {
	mu     sync.RWMutex
	owners map[string]string
}

// New returns an empty in-memory provider.
func New() *Provider {
	return &Provider{owners: make(map[string]string)}
}

// Check reports the recorded owner, or unclaimed for unknown players.
func (p *Provider) Check(ctx context.Context, player string) (lock.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return lock.CheckResult{}, err
	}
	if err := identifier.Require(player); err != nil {
		return lock.CheckResult{}, err
	}
	p.mu.RLock()
	owner, ok := p.owners[player]
	p.mu.RUnlock()
	if !ok {
		return lock.Unclaimed(), nil
	}
	return lock.OwnedBy(owner), nil
}

// Put records owner for player, overwriting any previous record.
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
	p.mu.Lock()
	p.owners[player] = owner
	p.mu.Unlock()
	return nil
}

// Close discards nothing; the map lives as long as the provider.
func (p *Provider) Close() error { return nil }
