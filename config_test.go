package claimd

import (
	"strings"
	"testing"

	"pkt.systems/pslog"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid file config",
			cfg:  Config{InstanceName: "hub-1", Provider: "file", LockDir: "/srv/locks"},
		},
		{
			name: "valid mem config",
			cfg:  Config{InstanceName: "hub-1", Provider: "mem"},
		},
		{
			name: "valid s3 config",
			cfg:  Config{InstanceName: "hub-1", Provider: "s3", S3Bucket: "pool"},
		},
		{
			name:    "missing instance name",
			cfg:     Config{Provider: "file", LockDir: "/srv/locks"},
			wantErr: "instance name required",
		},
		{
			name:    "unsafe instance name",
			cfg:     Config{InstanceName: "hub 1", Provider: "file", LockDir: "/srv/locks"},
			wantErr: "outside",
		},
		{
			name:    "missing provider",
			cfg:     Config{InstanceName: "hub-1"},
			wantErr: "provider required",
		},
		{
			name:    "file without dir",
			cfg:     Config{InstanceName: "hub-1", Provider: "file"},
			wantErr: "lock directory",
		},
		{
			name:    "s3 without bucket",
			cfg:     Config{InstanceName: "hub-1", Provider: "s3"},
			wantErr: "bucket",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestOpenProviderResolvesBuiltins(t *testing.T) {
	cfg := Config{InstanceName: "hub-1", Provider: "mem"}
	provider, err := OpenProvider(cfg, pslog.NoopLogger())
	if err != nil {
		t.Fatalf("open provider: %v", err)
	}
	defer provider.Close()
}

func TestOpenProviderUnknownBackend(t *testing.T) {
	cfg := Config{InstanceName: "hub-1", Provider: "etcd"}
	if _, err := OpenProvider(cfg, pslog.NoopLogger()); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

func TestOpenProviderInvalidConfig(t *testing.T) {
	if _, err := OpenProvider(Config{Provider: "mem"}, pslog.NoopLogger()); err == nil {
		t.Fatalf("expected invalid config to fail")
	}
}
