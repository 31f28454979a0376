//go:build !windows

package runner

import (
	"os"
	"syscall"
)

// sendInterrupt raises SIGINT for the current process; raw mode swallows
// the terminal's own Ctrl+C.
func sendInterrupt() {
	_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
}
