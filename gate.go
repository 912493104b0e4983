package claimd

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/internal/svcfields"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

// Denial reasons shown to connecting players. They intentionally carry no
// internal error detail.
const (
	DenyUnsupportedName = "your name contains unsupported characters (allowed: letters, digits, _ and -)"
	DenyTryAgain        = "your ownership record is busy right now, please try again in a moment"
	DenyNotClaimed      = "no starting server has claimed you yet, please try again in a moment"
)

// Decision is the terminal outcome of one join attempt. A zero Reason with
// Allow set means the player may stay.
type Decision struct {
	Allow  bool
	Reason string
}

func allow() Decision             { return Decision{Allow: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Gate decides join admission for connecting players.
type Gate struct {
	cfg      Config
	provider lock.Provider
	logger   pslog.Logger
	names    NameResolver
	metrics  *Metrics
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger supplies the admission logger.
func WithGateLogger(logger pslog.Logger) GateOption {
	return func(g *Gate) { g.logger = logger }
}

// WithNameResolver supplies a friendly-name translation for instance names
// in player-facing messages.
func WithNameResolver(resolver NameResolver) GateOption {
	return func(g *Gate) {
		if resolver != nil {
			g.names = resolver
		}
	}
}

// WithGateMetrics wires decision counters into the gate.
func WithGateMetrics(m *Metrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// NewGate builds the admission gate for the current instance.
func NewGate(cfg Config, provider lock.Provider, opts ...GateOption) *Gate {
	g := &Gate{
		cfg:      cfg,
		provider: provider,
		logger:   pslog.NoopLogger(),
		names:    identityResolver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = svcfields.WithSubsystem(g.logger, "gate")
	return g
}

// Admit runs the per-connection state machine: validate the name, consult
// the lock provider, and either let the player in or deny with a reason.
// When this instance is the lock master and the player is unclaimed, Admit
// claims ownership before letting them in.
//
// Transient conditions become "try again" denials and are never escalated.
// Protocol violations and other hard provider failures return an error; the
// host should deny the connection and alert an operator, because the shared
// store no longer matches the record protocol.
func (g *Gate) Admit(ctx context.Context, player string) (Decision, error) {
	logger := g.logger.With("join_id", xid.New().String(), "player", player)
	if !identifier.Valid(player) || player == "" {
		logger.Info("join denied", "cause", "unsafe_name")
		g.metrics.joinDecision(OutcomeDenyName)
		return deny(DenyUnsupportedName), nil
	}
	result, err := g.provider.Check(ctx, player)
	if err != nil {
		if lock.IsTransient(err) {
			logger.Warn("join denied on transient provider error", "error", err)
			g.metrics.joinDecision(OutcomeDenyTransient)
			return deny(DenyTryAgain), nil
		}
		g.metrics.joinDecision(OutcomeError)
		return Decision{}, fmt.Errorf("check ownership of %s: %w", player, err)
	}
	switch result.Status {
	case lock.StatusOwned:
		if result.Owner == g.cfg.InstanceName {
			logger.Info("join allowed", "owner", result.Owner)
			g.metrics.joinDecision(OutcomeAllow)
			return allow(), nil
		}
		logger.Info("join denied", "cause", "wrong_instance", "owner", result.Owner)
		g.metrics.joinDecision(OutcomeDenyOwner)
		return deny(fmt.Sprintf("you are connected to the wrong server, please connect to %s", g.names.DisplayName(result.Owner))), nil
	case lock.StatusTransient:
		logger.Warn("join denied on transient record state", "reason", result.Reason)
		g.metrics.joinDecision(OutcomeDenyTransient)
		return deny(DenyTryAgain), nil
	case lock.StatusUnclaimed:
		if !g.cfg.IsLockMaster {
			logger.Info("join denied", "cause", "unclaimed")
			g.metrics.joinDecision(OutcomeDenyUnclaimed)
			return deny(DenyNotClaimed), nil
		}
		if err := g.provider.Put(ctx, player, g.cfg.InstanceName); err != nil {
			g.metrics.joinDecision(OutcomeError)
			return Decision{}, fmt.Errorf("claim %s for %s: %w", player, g.cfg.InstanceName, err)
		}
		logger.Info("join allowed after claim", "owner", g.cfg.InstanceName)
		g.metrics.joinDecision(OutcomeAllowClaimed)
		return allow(), nil
	default:
		g.metrics.joinDecision(OutcomeError)
		return Decision{}, fmt.Errorf("%w: check returned out-of-contract status %d", lock.ErrProtocol, result.Status)
	}
}
