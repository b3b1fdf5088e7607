package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipe01/xmltok/lexer"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "xmltok.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %s", err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
format = "json"
width = 40
jobs = 3
allocator = "pool"
`)

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %s", err)
	}

	want := Config{
		Format:    "json",
		Color:     "auto",
		Width:     40,
		Jobs:      3,
		Allocator: "pool",
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %s", err)
	}

	alloc, err := cfg.NewAllocator()
	if err != nil {
		t.Fatalf("allocator: %s", err)
	}
	if _, ok := alloc.(*lexer.PoolAllocator); !ok {
		t.Fatalf("expected a pool allocator, got %T", alloc)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config must not fail: %s", err)
	}
	if cfg != defaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	if _, err := loadConfig(missing, true); err == nil {
		t.Fatalf("expected an error for an explicit missing config")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, `colour = "on"`), true); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]Config{
		"format":    {Format: "yaml", Color: "auto"},
		"color":     {Format: "text", Color: "always"},
		"width":     {Format: "text", Color: "auto", Width: -1},
		"allocator": {Format: "text", Color: "auto", Allocator: "arena"},
	}

	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestConfigUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	cfg := defaultConfig()
	if !cfg.UseColor(true) || cfg.UseColor(false) {
		t.Fatalf("auto must follow the terminal")
	}

	cfg.Color = "on"
	if !cfg.UseColor(false) {
		t.Fatalf("on must force color")
	}

	cfg.Color = "off"
	if cfg.UseColor(true) {
		t.Fatalf("off must disable color")
	}
}

func TestResolveConfigExplicitDefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	oldPath, oldSet := *configPath, configSet
	t.Cleanup(func() { *configPath, configSet = oldPath, oldSet })

	*configPath = defaultConfigPath

	configSet = false
	if _, err := resolveConfig(); err != nil {
		t.Fatalf("implicit default config must not fail: %s", err)
	}

	configSet = true
	if _, err := resolveConfig(); err == nil {
		t.Fatalf("expected an error for an explicit missing %s", defaultConfigPath)
	}
}

func TestConfigNewAllocatorInvalid(t *testing.T) {
	cfg := Config{Allocator: "arena"}

	alloc, err := cfg.NewAllocator()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if alloc != nil {
		t.Fatalf("expected no allocator, got %T", alloc)
	}
}
