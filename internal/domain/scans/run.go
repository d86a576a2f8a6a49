package scans

import "time"

// Exit is the outcome of waiting on a scanner process. TimedOut is set when
// the deadline passed first; Code is only meaningful when it is false.
type Exit struct {
	Code     int
	TimedOut bool
}

// Process is a started scanner invocation.
type Process interface {
	// Name is the unique name of the scratch output buffer.
	Name() string
	// Wait blocks until the process exits or timeout elapses. A zero
	// timeout waits forever. The process is never killed by Wait.
	Wait(timeout time.Duration) Exit
	// Output returns the combined stdout/stderr captured so far.
	Output() string
}
