package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eventmgmt/eventctl/internal/cli/userconfig"
)

func TestSelectEnv_ByName(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())

	if err := runInit(&bytes.Buffer{}, "http://localhost:8080/api", ""); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := runInit(&bytes.Buffer{}, "https://staging.example.com/api", "staging"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	var out bytes.Buffer
	if err := runSelectEnv(&out, "staging"); err != nil {
		t.Fatalf("select-env failed: %v", err)
	}
	if !strings.Contains(out.String(), "Selected environment: staging") {
		t.Errorf("unexpected output: %s", out.String())
	}

	selected, err := userconfig.GetSelectedEnvironment()
	if err != nil {
		t.Fatalf("failed to read selection: %v", err)
	}
	if selected != "staging" {
		t.Errorf("expected 'staging', got '%s'", selected)
	}
}

func TestSelectEnv_UnknownName(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EVENTCTL_STATE_DIR", t.TempDir())

	if err := runInit(&bytes.Buffer{}, "http://localhost:8080/api", ""); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := runSelectEnv(&bytes.Buffer{}, "prod"); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestSelectEnv_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	err := runSelectEnv(&bytes.Buffer{}, "local")
	if err == nil || !strings.Contains(err.Error(), "eventctl init") {
		t.Fatalf("expected hint to run init, got %v", err)
	}
}
