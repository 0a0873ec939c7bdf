// Package editor opens files with the platform's default application.
package editor

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the default application for path. The launch is best
// effort: the spawned process is not waited on beyond startup.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("editor: open %s: %w", path, err)
	}
	return nil
}
