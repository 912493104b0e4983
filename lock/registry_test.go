package lock

import (
	"context"
	"strings"
	"testing"
)

type nopProvider struct{}

func (nopProvider) Check(ctx context.Context, player string) (CheckResult, error) {
	return Unclaimed(), nil
}
func (nopProvider) Put(ctx context.Context, player, owner string) error { return nil }
func (nopProvider) Close() error                                        { return nil }

func nopCtor(Settings) (Provider, error) { return nopProvider{}, nil }

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Register("file", nopCtor); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := reg.New("file", Settings{}); err == nil {
		t.Fatalf("resolve before seal must fail")
	} else if !strings.Contains(err.Error(), "barrier") {
		t.Fatalf("unexpected error: %v", err)
	}

	reg.Seal()
	provider, err := reg.New("file", Settings{})
	if err != nil {
		t.Fatalf("resolve after seal: %v", err)
	}
	if provider == nil {
		t.Fatalf("expected a provider")
	}

	if err := reg.Register("late", nopCtor); err == nil {
		t.Fatalf("register after seal must fail")
	}
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Register("", nopCtor); err == nil {
		t.Fatalf("empty name must be rejected")
	}
	if err := reg.Register("file", nil); err == nil {
		t.Fatalf("nil constructor must be rejected")
	}
	if err := reg.Register("file", nopCtor); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("file", nopCtor); err == nil {
		t.Fatalf("duplicate name must be rejected")
	}
}

func TestRegisterFeedsDefaultRegistry(t *testing.T) {
	Register("stub", nopCtor)
	DefaultRegistry.Seal()
	provider, err := DefaultRegistry.New("stub", Settings{})
	if err != nil {
		t.Fatalf("resolve host-registered backend: %v", err)
	}
	if provider == nil {
		t.Fatalf("expected a provider")
	}
}

func TestRegistryUnknownName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Register("mem", nopCtor); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.Seal()
	if _, err := reg.New("etcd", Settings{}); err == nil {
		t.Fatalf("unknown provider must fail")
	} else if !strings.Contains(err.Error(), "mem") {
		t.Fatalf("error should list registered names, got %v", err)
	}
}
