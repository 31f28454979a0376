//go:build windows

package runner

import "syscall"

var (
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procGenerateConsoleCtrlEvent = kernel32.NewProc("GenerateConsoleCtrlEvent")
)

// sendInterrupt posts CTRL_C_EVENT to the current process group; raw mode
// swallows the console's own Ctrl+C.
func sendInterrupt() {
	_, _, _ = procGenerateConsoleCtrlEvent.Call(0, 0)
}
