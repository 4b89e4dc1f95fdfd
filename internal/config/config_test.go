package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	getenv := func(string) string { return "" }
	cfg, err := Load(getenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectName != DefaultProjectName {
		t.Errorf("project name = %q, want %q", cfg.ProjectName, DefaultProjectName)
	}
	if cfg.Region != DefaultRegion {
		t.Errorf("region = %q, want %q", cfg.Region, DefaultRegion)
	}
	if cfg.HostAWSDir != DefaultHostAWSDir {
		t.Errorf("host aws dir = %q, want %q", cfg.HostAWSDir, DefaultHostAWSDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PROJECT_NAME":          "sandbox",
		"AWS_REGION":            "eu-west-1",
		"BOXSTRAP_HOST_AWS_DIR": "/mnt/aws",
	}
	cfg, err := Load(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectName != "sandbox" || cfg.Region != "eu-west-1" || cfg.HostAWSDir != "/mnt/aws" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestActiveProfileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if got := LoadActiveProfile(dir); got != "" {
		t.Errorf("expected empty profile before save, got %q", got)
	}

	if err := SaveActiveProfile(dir, "work"); err != nil {
		t.Fatalf("SaveActiveProfile: %v", err)
	}
	if got := LoadActiveProfile(dir); got != "work" {
		t.Errorf("LoadActiveProfile = %q, want %q", got, "work")
	}

	// Overwrite, not append.
	if err := SaveActiveProfile(dir, "personal"); err != nil {
		t.Fatalf("SaveActiveProfile: %v", err)
	}
	if got := LoadActiveProfile(dir); got != "personal" {
		t.Errorf("LoadActiveProfile = %q, want %q", got, "personal")
	}
}

func TestActiveProfileReadBackFromConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ActiveProfile(); got != "" {
		t.Errorf("expected no active profile in fresh home, got %q", got)
	}

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if err := SaveActiveProfile(dir, "work"); err != nil {
		t.Fatalf("SaveActiveProfile: %v", err)
	}

	// A later invocation sees the profile persisted by host-copy.
	if got := ActiveProfile(); got != "work" {
		t.Errorf("ActiveProfile = %q, want %q", got, "work")
	}
}
