//go:build unix

package updater

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// launchDetached starts `/bin/sh scriptPath` in a new session with its
// standard streams on /dev/null and releases it, so the script outlives the
// agent.
func launchDetached(scriptPath string) error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command("/bin/sh", scriptPath)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start update script: %w", err)
	}
	return cmd.Process.Release()
}
