package viz

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Open shows a generated HTML file in the system browser without waiting
// for it to exit.
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cmd, err := openCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func openCommand(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
