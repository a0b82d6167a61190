package buildscript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// runCommand captures the command's combined output, optionally running the
// child under a pseudo-terminal.
func runCommand(cmd *exec.Cmd, usePty bool) ([]byte, error) {
	if !usePty {
		return cmd.CombinedOutput()
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("starting pty: %w", err)
	}
	defer ptmx.Close()

	var buf bytes.Buffer

	// Reading the pty master fails with EIO once the child exits; that is
	// the pty's EOF.
	if _, err := io.Copy(&buf, ptmx); err != nil && !errors.Is(err, syscall.EIO) {
		_ = cmd.Wait()
		return buf.Bytes(), fmt.Errorf("reading pty: %w", err)
	}

	return buf.Bytes(), cmd.Wait()
}
