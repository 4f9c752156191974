package common

import "time"

// Polling defaults shared by readiness and row-matching waits.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultReadyTimeout = 10 * time.Second
)
