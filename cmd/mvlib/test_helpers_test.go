package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvlib/internal/nfo"
)

type cliTestEnv struct {
	configPath string
	libraryDir string
	logDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		libraryDir: filepath.Join(base, "library"),
		logDir:     filepath.Join(base, "logs"),
	}
	if err := os.MkdirAll(env.libraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	content := fmt.Sprintf(`[paths]
library_dir = %q
log_dir = %q

[logging]
format = "json"
level = "error"
`, env.libraryDir, env.logDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

// writeVideoAndSidecar creates an artist directory holding one video
// file and its matching NFO record.
func (env *cliTestEnv) writeVideoAndSidecar(t *testing.T, artistDir, stem string, rec *nfo.Record) {
	t.Helper()

	dir := filepath.Join(env.libraryDir, artistDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir artist dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".mp4"), []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	if err := nfo.WriteFile(filepath.Join(dir, stem+".nfo"), rec); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}
