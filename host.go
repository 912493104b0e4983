package claimd

// Player is a live player handle supplied by the host server runtime.
// Handles are compared by interface identity, never by name, because names
// can be reused across sessions.
type Player interface {
	Name() string
	// Disconnect forcibly removes the player, showing reason to them.
	Disconnect(reason string)
}

// Roster lists the players currently connected to this instance. The host
// owns the authoritative list; claimd only consults it.
type Roster interface {
	Connected() []Player
}

// NameResolver translates internal instance identifiers into names shown to
// players. The zero behaviour is the identity translation.
type NameResolver interface {
	DisplayName(instance string) string
}

type identityResolver struct{}

func (identityResolver) DisplayName(instance string) string { return instance }
