package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/iqama/internal/config"
)

func setup(t *testing.T) (dataDir, configPath string) {
	t.Helper()
	for _, key := range []string{
		config.EnvRemoteURL, config.EnvRemoteKey, config.EnvRemoteTable,
		config.EnvRecordID, config.EnvDataDir,
	} {
		t.Setenv(key, "")
	}
	dataDir = t.TempDir()
	configPath = filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(fmt.Sprintf("data_dir = %q\n", dataDir)), 0o644); err != nil {
		t.Fatal(err)
	}
	return dataDir, configPath
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestShowCommand(t *testing.T) {
	_, configPath := setup(t)
	envFile := filepath.Join(t.TempDir(), "missing.env")

	out, _, err := execute(t, "show", "--config", configPath, "--env-file", envFile,
		"--prefs", filepath.Join(t.TempDir(), "prefs.toml"))
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Thaqwa Masjid", "Fajr", "05:30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestLogsCommand(t *testing.T) {
	dataDir, configPath := setup(t)
	var content strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&content, `{"level":"info","message":"line %d"}`+"\n", i)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "iqama.log"), []byte(content.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "logs", "-n", "2", "--config", configPath, "--env-file", filepath.Join(t.TempDir(), "x.env"))
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if got := strings.TrimSpace(out); got != "INF line 4\nINF line 5" {
		t.Fatalf("logs output = %q", got)
	}
}

func TestSyncCommand_NotConfigured(t *testing.T) {
	_, configPath := setup(t)
	_, _, err := execute(t, "sync", "--config", configPath, "--env-file", filepath.Join(t.TempDir(), "x.env"))
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("sync err = %v, want not configured", err)
	}
}

func TestEnvFileOverridesRemote(t *testing.T) {
	_, configPath := setup(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	// dotenv never overrides a variable that is already set, even to "".
	if err := os.Unsetenv(config.EnvRemoteTable); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envFile, []byte(config.EnvRemoteTable+"=from_env_file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "show", "--config", configPath, "--env-file", envFile); err != nil {
		t.Fatalf("show: %v", err)
	}
	if got := os.Getenv(config.EnvRemoteTable); got != "from_env_file" {
		t.Fatalf("%s = %q after --env-file", config.EnvRemoteTable, got)
	}
}

func TestUnknownArgsRejected(t *testing.T) {
	_, _, err := execute(t, "show", "extra")
	if err == nil {
		t.Fatalf("expected error for extra argument")
	}
}

func TestHelpListsCommands(t *testing.T) {
	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"edit", "show", "sync", "serve", "logs"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help missing %q:\n%s", name, out)
		}
	}
}
