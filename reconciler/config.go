package reconciler

import "time"

// DefaultConfig mirrors the teacher's preconf.DefaultConfig idiom: a
// package-level value process wiring starts from and overrides.
var DefaultConfig = Config{
	SleepInterval: 5 * time.Second,
}

// Config holds the reconciler's immutable, per-process configuration.
type Config struct {
	// SleepInterval is the poll period applied whenever a cycle observes
	// no changes.
	SleepInterval time.Duration
}
