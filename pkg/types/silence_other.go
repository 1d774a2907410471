//go:build !windows
// +build !windows

package types

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

func SetSilentProcess(cmd *exec.Cmd) {
	/* No-op
	 * only windows pops up a console for child processes
	 */
}

func GetConfigDir() string {
	def := os.Getenv("XDG_CONFIG_HOME")
	if def == "" {
		def = os.Getenv("HOME")
		if def != "" {
			def = filepath.Join(def, ".config")
		} else {
			def = "./"
		}
	}
	return filepath.Join(def, "layer2kml")
}

// OpenCommand returns the desktop "open with default viewer" command.
func OpenCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"open"}
	}
	return []string{"xdg-open"}
}
