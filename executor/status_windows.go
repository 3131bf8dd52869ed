//go:build windows

package executor

import "os/exec"

// signalOrCode: Windows processes aren't terminated by POSIX signals, so
// every *exec.ExitError is reported as a plain exit code.
func signalOrCode(exitErr *exec.ExitError) (code int, signaled bool) {
	return exitErr.ExitCode(), false
}
