// Package claimd arbitrates which one of several cooperating game-server
// instances currently owns a given player identity. A player connecting to
// the wrong instance is denied with a redirect reason instead of being
// allowed to exist in two places at once.
//
// The host server embeds the library: it opens the configured lock provider
// once at startup, wires a Gate into its join-admission hook, and a Transfer
// into whatever trusted path moves players between instances. Ownership
// records are best-effort single-line files (or objects) under a documented
// single-lock-master discipline; claimd deliberately does not implement
// distributed consensus.
package claimd
