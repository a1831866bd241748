package internal

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDir returns the default configuration directory for appName.
//
// Behavior:
//   - Windows: APPDATA\<appName>. An error is returned when APPDATA is unset.
//   - Unix-like systems: XDG_CONFIG_HOME/<appName> when set, otherwise
//     <home>/.config/<appName>.
//
// getenv is usually the runtime's environment lookup so sandboxed tests see
// their own variables. The directory is not created.
func ConfigDir(getenv func(string) string, home, appName string) (string, error) {
	if runtime.GOOS == "windows" {
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return "", fmt.Errorf("APPDATA environment variable not set")
	}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	if strings.TrimSpace(home) == "" {
		return "", fmt.Errorf("unable to determine home directory")
	}
	return filepath.Join(home, ".config", appName), nil
}

// PlainName reports whether name is a bare file name with no directory
// component.
func PlainName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}
