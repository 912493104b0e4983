package claimd

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/internal/svcfields"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

// ErrNotConnected is returned when the supplied player handle is not among
// the currently connected players. Stale or forged handles must not be able
// to reassign ownership.
var ErrNotConnected = errors.New("claimd: player handle is not connected to this instance")

// Transfer reassigns player ownership to another instance and disconnects
// the player so they can reconnect there. It is for trusted in-process
// callers only and must never be reachable by players themselves.
type Transfer struct {
	provider lock.Provider
	roster   Roster
	logger   pslog.Logger
	names    NameResolver
	metrics  *Metrics
}

// TransferOption configures a Transfer.
type TransferOption func(*Transfer)

// WithTransferLogger supplies the transfer logger.
func WithTransferLogger(logger pslog.Logger) TransferOption {
	return func(t *Transfer) { t.logger = logger }
}

// WithTransferNameResolver supplies a friendly-name translation for the
// disconnect message.
func WithTransferNameResolver(resolver NameResolver) TransferOption {
	return func(t *Transfer) {
		if resolver != nil {
			t.names = resolver
		}
	}
}

// WithTransferMetrics wires transfer counters in.
func WithTransferMetrics(m *Metrics) TransferOption {
	return func(t *Transfer) { t.metrics = m }
}

// NewTransfer builds the transfer service over the shared lock provider and
// the host's connected-player roster.
func NewTransfer(provider lock.Provider, roster Roster, opts ...TransferOption) *Transfer {
	t := &Transfer{
		provider: provider,
		roster:   roster,
		logger:   pslog.NoopLogger(),
		names:    identityResolver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = svcfields.WithSubsystem(t.logger, "transfer")
	return t
}

// Move validates target, re-verifies that p is a live connected handle
// (by interface identity, not by name), reassigns ownership, and finally
// disconnects the player with a message naming the target instance. Any
// failure before the final step leaves the player connected.
func (t *Transfer) Move(ctx context.Context, p Player, target string) error {
	if p == nil {
		t.metrics.transfer(OutcomeError)
		return fmt.Errorf("claimd: transfer requires a player handle")
	}
	if err := identifier.Require(target); err != nil {
		t.metrics.transfer(OutcomeDenyName)
		return fmt.Errorf("claimd: transfer target: %w", err)
	}
	connected := false
	for _, candidate := range t.roster.Connected() {
		if candidate == p {
			connected = true
			break
		}
	}
	if !connected {
		t.metrics.transfer(OutcomeError)
		return ErrNotConnected
	}
	player := p.Name()
	if err := t.provider.Put(ctx, player, target); err != nil {
		t.metrics.transfer(OutcomeError)
		return fmt.Errorf("claimd: reassign %s to %s: %w", player, target, err)
	}
	t.logger.Info("ownership transferred", "player", player, "target", target)
	t.metrics.transfer(OutcomeAllow)
	p.Disconnect(fmt.Sprintf("you have been moved to %s, please reconnect there", t.names.DisplayName(target)))
	return nil
}
