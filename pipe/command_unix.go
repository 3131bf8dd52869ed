//go:build !windows

package pipe

import (
	"os/exec"
	"syscall"
)

// newCmd builds the exec.Cmd for a command stage. Jobs run in their own
// process group so that a pipeline's children can be told apart from the
// supervisor's own process group by anything inspecting /proc.
func newCmd(name string, args []string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}
