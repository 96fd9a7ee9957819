package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath resolves environment variables and a leading "~/" in file
// settings such as calendar.credentials_file. Blank stays blank.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(trimmed)
	if expanded != "~" && !strings.HasPrefix(expanded, "~/") {
		return filepath.Clean(expanded), nil
	}

	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(expanded, "~"), "/")), nil
}

func homeDir() (string, error) {
	resolved := func(dir string) bool {
		dir = strings.TrimSpace(dir)
		return dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/")
	}

	if home, err := os.UserHomeDir(); err == nil && resolved(home) {
		return strings.TrimSpace(home), nil
	}
	if current, err := user.Current(); err == nil && resolved(current.HomeDir) {
		return strings.TrimSpace(current.HomeDir), nil
	}
	return "", fmt.Errorf("HOME is not set or not fully resolved")
}
