package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, "name: raido\nport: 8080\n")
	var cfg testConfig
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "raido" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadUnknownFieldFails(t *testing.T) {
	p := writeConfig(t, "name: raido\nbogus_key: true\n")
	var cfg testConfig
	err := Load(p, &cfg)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should name the unknown field: %v", err)
	}
}

func TestLoadWrongTypeFails(t *testing.T) {
	p := writeConfig(t, "port: not-a-number\n")
	var cfg testConfig
	if err := Load(p, &cfg); err == nil {
		t.Fatal("expected error for mistyped field")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	p := writeConfig(t, "")
	cfg := testConfig{Name: "default"}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load of empty file: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("RAIDO_TEST_NAME", "expanded")
	p := writeConfig(t, "name: ${RAIDO_TEST_NAME}\n")
	var cfg testConfig
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "expanded" {
		t.Errorf("name = %q", cfg.Name)
	}
}

type validatedConfig struct {
	Name string `yaml:"name"`
}

func (c *validatedConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func TestLoadRunsValidation(t *testing.T) {
	p := writeConfig(t, "name: \"\"\n")
	var cfg validatedConfig
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}
