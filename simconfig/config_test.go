package simconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pouyapd/scanmc/sim"
	"github.com/pouyapd/scanmc/simconfig"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFromYamlSeededGuarantee(t *testing.T) {
	path := writeConfig(t, `
kind: run
def:
  deadline: 1000
  seed: 42
  role: guarantee
`)
	cfg, err := simconfig.FromYaml(path)
	if err != nil {
		t.Fatalf("FromYaml: %v", err)
	}
	if cfg.Deadline != 1000 {
		t.Errorf("Deadline = %d, want 1000", cfg.Deadline)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("Seed = %v, want 42", cfg.Seed)
	}
	if cfg.FormulaRole() != sim.RoleGuarantee {
		t.Errorf("FormulaRole() = %v, want RoleGuarantee", cfg.FormulaRole())
	}
	r1 := cfg.NewRand()
	r2 := cfg.NewRand()
	if r1.Int63() != r2.Int63() {
		t.Error("two NewRand() calls from the same seed should produce identical sequences")
	}
}

func TestFromYamlUnseededAssume(t *testing.T) {
	path := writeConfig(t, `
kind: run
def:
  deadline: 50
  role: assume
`)
	cfg, err := simconfig.FromYaml(path)
	if err != nil {
		t.Fatalf("FromYaml: %v", err)
	}
	if cfg.Seed != nil {
		t.Errorf("Seed = %v, want nil (absent from yaml)", cfg.Seed)
	}
	if cfg.FormulaRole() != sim.RoleAssume {
		t.Errorf("FormulaRole() = %v, want RoleAssume", cfg.FormulaRole())
	}
}

func TestFromYamlRejectsZeroDeadline(t *testing.T) {
	path := writeConfig(t, `
kind: run
def:
  deadline: 0
  role: guarantee
`)
	if _, err := simconfig.FromYaml(path); err == nil {
		t.Error("expected an error for a zero deadline, got nil")
	}
}

func TestFromYamlRejectsUnknownRole(t *testing.T) {
	path := writeConfig(t, `
kind: run
def:
  deadline: 10
  role: maybe
`)
	if _, err := simconfig.FromYaml(path); err == nil {
		t.Error("expected an error for an unrecognized role, got nil")
	}
}
