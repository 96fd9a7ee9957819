package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath_HomeShortcut(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("user home dir: %v", err)
	}

	got, err := ExpandPath("~/.planpal/credentials.json")
	if err != nil {
		t.Fatalf("expand path: %v", err)
	}

	want := filepath.Join(home, ".planpal", "credentials.json")
	if got != want {
		t.Fatalf("path mismatch: got %q want %q", got, want)
	}
}

func TestExpandPath_EnvVar(t *testing.T) {
	t.Setenv("PLANPAL_PATH_TEST", "/tmp/planpal-path")

	got, err := ExpandPath("$PLANPAL_PATH_TEST/credentials.json")
	if err != nil {
		t.Fatalf("expand path: %v", err)
	}

	want := filepath.Clean("/tmp/planpal-path/credentials.json")
	if got != want {
		t.Fatalf("path mismatch: got %q want %q", got, want)
	}
}

func TestExpandPath_Blank(t *testing.T) {
	got, err := ExpandPath("   ")
	if err != nil || got != "" {
		t.Fatalf("blank path: got %q, %v", got, err)
	}
}

func TestExpandPath_HomeEnvTilde(t *testing.T) {
	t.Setenv("HOME", "~")

	got, err := ExpandPath("~/.planpal/credentials.json")
	if err != nil {
		t.Fatalf("expand path with HOME=~: %v", err)
	}
	if got == "" || got[0] == '~' {
		t.Fatalf("path not expanded: %q", got)
	}
}
