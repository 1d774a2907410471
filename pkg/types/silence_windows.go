//go:build windows
// +build windows

package types

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

func SetSilentProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: 0x08000000} // CREATE_NO_WINDOW
}

func checkdirs(p string) string {
	def := os.Getenv("LOCALAPPDATA")
	if def == "" {
		def = os.Getenv("APPDATA")
	}
	nfp := filepath.Join(def, p)
	if _, err := os.Stat(nfp); os.IsNotExist(err) {
		os.MkdirAll(nfp, 0755)
	}
	return nfp
}

func GetConfigDir() string {
	return checkdirs("layer2kml")
}

func OpenCommand() []string {
	return []string{"rundll32", "url.dll,FileProtocolHandler"}
}
