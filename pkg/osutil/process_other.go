//go:build !unix

package osutil

import (
	"os"
	"os/exec"
)

// killTree kills only the direct child; there is no portable process group here.
func killTree(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
