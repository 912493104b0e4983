package claimd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/internal/lock/memory"
	"pkt.systems/claimd/lock"
)

type fakePlayer struct {
	name         string
	disconnected string
	kicked       bool
}

func (p *fakePlayer) Name() string { return p.name }
func (p *fakePlayer) Disconnect(reason string) {
	p.kicked = true
	p.disconnected = reason
}

type fakeRoster struct {
	players []Player
}

func (r *fakeRoster) Connected() []Player { return r.players }

func TestMoveReassignsAndDisconnects(t *testing.T) {
	t.Parallel()

	provider := memory.New()
	ctx := context.Background()
	if err := provider.Put(ctx, "Steve", "home"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	steve := &fakePlayer{name: "Steve"}
	roster := &fakeRoster{players: []Player{steve}}
	transfer := NewTransfer(provider, roster)

	if err := transfer.Move(ctx, steve, "other"); err != nil {
		t.Fatalf("move: %v", err)
	}
	res, err := provider.Check(ctx, "Steve")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != lock.StatusOwned || res.Owner != "other" {
		t.Fatalf("got %+v want owned by other", res)
	}
	if !steve.kicked {
		t.Fatalf("player was not disconnected")
	}
	if !strings.Contains(steve.disconnected, "other") {
		t.Fatalf("disconnect message %q does not name the target", steve.disconnected)
	}
}

func TestMoveUsesFriendlyNameInDisconnect(t *testing.T) {
	t.Parallel()

	provider := memory.New()
	steve := &fakePlayer{name: "Steve"}
	transfer := NewTransfer(provider, &fakeRoster{players: []Player{steve}},
		WithTransferNameResolver(prefixResolver{}))

	if err := transfer.Move(context.Background(), steve, "other"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(steve.disconnected, "The other Realm") {
		t.Fatalf("disconnect message %q does not use the friendly name", steve.disconnected)
	}
}

func TestMoveRejectsUnsafeTarget(t *testing.T) {
	t.Parallel()

	provider := memory.New()
	steve := &fakePlayer{name: "Steve"}
	transfer := NewTransfer(provider, &fakeRoster{players: []Player{steve}})

	for _, target := range []string{"", "bad name", "a/b", "a.b"} {
		err := transfer.Move(context.Background(), steve, target)
		if !identifier.IsUnsafe(err) {
			t.Errorf("Move(target=%q) err = %v, want unsafe-identifier error", target, err)
		}
	}
	if steve.kicked {
		t.Fatalf("player disconnected despite rejected transfer")
	}
	if res, _ := provider.Check(context.Background(), "Steve"); res.Status != lock.StatusUnclaimed {
		t.Fatalf("ownership written despite rejected transfer: %+v", res)
	}
}

func TestMoveRejectsStaleHandle(t *testing.T) {
	t.Parallel()

	provider := memory.New()
	connected := &fakePlayer{name: "Steve"}
	stale := &fakePlayer{name: "Steve"} // same name, different handle
	transfer := NewTransfer(provider, &fakeRoster{players: []Player{connected}})

	err := transfer.Move(context.Background(), stale, "other")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if stale.kicked || connected.kicked {
		t.Fatalf("a player was disconnected despite rejected transfer")
	}
	if res, _ := provider.Check(context.Background(), "Steve"); res.Status != lock.StatusUnclaimed {
		t.Fatalf("ownership written despite rejected transfer: %+v", res)
	}
}

func TestMoveAbortsBeforeDisconnectOnPutFailure(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{putErr: errors.New("disk full")}
	steve := &fakePlayer{name: "Steve"}
	transfer := NewTransfer(stub, &fakeRoster{players: []Player{steve}})

	if err := transfer.Move(context.Background(), steve, "other"); err == nil {
		t.Fatalf("expected put failure to abort the transfer")
	}
	if steve.kicked {
		t.Fatalf("player disconnected despite failed ownership write")
	}
}
