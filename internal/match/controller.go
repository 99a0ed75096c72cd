package match

// Controller drives a single champion. Decide returns an opaque action value;
// the engine only ever compares values against each other.
type Controller interface {
	Name() string
	Reset() error
	Decide() (int, error)
}

// DeathReactor is implemented by controllers that want to know when their
// champion is removed from the match without winning.
type DeathReactor interface {
	Die()
}

// WinReactor is implemented by controllers that want to know when their
// champion is the last one standing.
type WinReactor interface {
	Win()
}
