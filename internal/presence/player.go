package presence

// Player identifies a connected player for subscription and occupancy
// bookkeeping. Identity is always compared by the stable save ID, never by
// reference: two in-memory values with the same save ID are the same
// subscriber. The presence core never mutates a player's identity.
type Player interface {
	// SaveID returns the stable account/save identifier.
	SaveID() string
	// Username returns the display name, used for events and logging.
	Username() string
}
