package claimd

import (
	"fmt"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

// Default configuration values.
const (
	// DefaultProvider selects the file backend when none is configured.
	DefaultProvider = "file"
	// DefaultLockDir is the shared lock directory for the file backend.
	DefaultLockDir = "/var/lib/claimd/locks"
)

// Config captures the startup configuration for one server instance. It is
// immutable after startup: build it once in the composition root, validate
// it, and pass it by value.
type Config struct {
	// InstanceName identifies this server instance inside the shared
	// player pool. Required; must be a safe identifier because it is
	// written verbatim into ownership records.
	InstanceName string

	// Provider names the registered lock backend ("file", "mem", "s3").
	Provider string

	// IsLockMaster permits this instance to claim unclaimed players. By
	// operator convention exactly one instance in the pool sets it.
	IsLockMaster bool

	// LockDir is the shared lock directory (file backend).
	LockDir string

	// S3 settings (s3 backend).
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Insecure        bool
	S3ForcePathStyle  bool
}

// Validate checks the configuration for fatal startup errors.
func (c Config) Validate() error {
	if c.InstanceName == "" {
		return fmt.Errorf("config: instance name required")
	}
	if !identifier.Valid(c.InstanceName) {
		return fmt.Errorf("config: instance name %q contains characters outside [0-9A-Za-z_-]", c.InstanceName)
	}
	switch c.Provider {
	case "":
		return fmt.Errorf("config: lock provider required")
	case "file":
		if c.LockDir == "" {
			return fmt.Errorf("config: file provider requires a lock directory")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("config: s3 provider requires a bucket")
		}
	}
	return nil
}

func (c Config) settings(logger pslog.Logger) lock.Settings {
	return lock.Settings{
		Instance: c.InstanceName,
		Logger:   logger,
		Dir:      c.LockDir,
		S3: lock.S3Settings{
			Endpoint:        c.S3Endpoint,
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			Prefix:          c.S3Prefix,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Insecure:        c.S3Insecure,
			ForcePathStyle:  c.S3ForcePathStyle,
		},
	}
}
