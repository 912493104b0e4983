package claimd

import (
	"pkt.systems/claimd/internal/svcfields"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"

	// Builtin lock backends register themselves with the default registry.
	_ "pkt.systems/claimd/internal/lock/file"
	_ "pkt.systems/claimd/internal/lock/memory"
	_ "pkt.systems/claimd/internal/lock/s3"
)

// OpenProvider validates cfg, seals the backend registry (the "all backends
// registered" barrier), and resolves the configured backend into a live
// provider. Call it once from the composition root after any additional
// backends have registered; a provider resolved this way is passed by
// explicit injection to Gate and Transfer, never looked up ambiently.
func OpenProvider(cfg Config, logger pslog.Logger) (lock.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	lock.DefaultRegistry.Seal()
	return lock.DefaultRegistry.New(cfg.Provider, cfg.settings(svcfields.WithSubsystem(logger, "lock."+cfg.Provider)))
}
