package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeInstanceName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"hub-1", "hub-1"},
		{"node.example.com", "node-example-com"},
		{"weird host!", "weird-host-"},
		{"", "claimd-cli"},
	}
	for _, tc := range cases {
		if got := sanitizeInstanceName(tc.in); got != tc.want {
			t.Errorf("sanitizeInstanceName(%q) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestRecordPlayer(t *testing.T) {
	t.Parallel()

	if player, ok := recordPlayer("/srv/locks/Steve.txt"); !ok || player != "Steve" {
		t.Fatalf("got %q %v", player, ok)
	}
	if _, ok := recordPlayer("/srv/locks/Steve.tmp"); ok {
		t.Fatalf("non-record file accepted")
	}
}

func TestDescribeRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Steve.txt")

	if err := os.WriteFile(path, []byte("hub-1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := describeRecord(path); got != "owned by hub-1" {
		t.Fatalf("got %q", got)
	}

	if err := os.WriteFile(path, []byte("hub-1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := describeRecord(path); got != "mid-write" {
		t.Fatalf("got %q", got)
	}

	if err := os.WriteFile(path, []byte("a\nb"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := stateLabel(describeRecord(path)); got != "corrupt" {
		t.Fatalf("got %q", got)
	}
}

func TestClaimValidatesOwnerArgument(t *testing.T) {
	root := newRootCommand(nil)
	root.SetArgs([]string{"--lock-provider", "mem", "claim", "Steve", "bad owner"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "owner") {
		t.Fatalf("err = %v, want owner validation failure", err)
	}
}

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := newRootCommand(nil)
	for _, name := range []string{"check", "claim", "verify", "watch"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("lock-dir") == nil {
		t.Fatalf("lock-dir flag missing")
	}
}
