package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"run":              false,
		"flushdb":          false,
		"usage":            false,
		"set-default-tool": false,
		"secretscan":       false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestFlushdbRequiresYes(t *testing.T) {
	yes = false
	err := flushdbCmd.RunE(flushdbCmd, nil)
	if err == nil {
		t.Fatal("expected error without --yes")
	}
	if !strings.Contains(err.Error(), "--yes") {
		t.Errorf("error should mention the --yes flag, got %v", err)
	}
}

func TestSecretscanExitStatus(t *testing.T) {
	dirty := t.TempDir()
	token := "Mabcdefghijklmnopqrstuvw.abc_-f.abcdefghijklmnopqrstuvwxyz1"
	if err := os.WriteFile(filepath.Join(dirty, ".env"), []byte("DISCORD_TOKEN="+token+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	secretscanCmd.SetContext(context.Background())
	if err := secretscanCmd.RunE(secretscanCmd, []string{dirty}); !errors.Is(err, errSecretsFound) {
		t.Errorf("dirty tree: err = %v, want errSecretsFound", err)
	}

	clean := t.TempDir()
	if err := os.WriteFile(filepath.Join(clean, "notes.txt"), []byte("all clear\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := secretscanCmd.RunE(secretscanCmd, []string{clean}); err != nil {
		t.Errorf("clean tree: unexpected error %v", err)
	}
}
