// Package config resolves boxstrap settings from environment variables,
// an optional YAML config file, and built-in defaults, in that order of
// precedence. It also owns the persisted active-profile file that
// replaces ad-hoc shell-init mutation: one well-defined file, read back
// by subsequent invocations.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultProjectName namespaces remote parameter-store paths.
	DefaultProjectName = "boxstrap"
	// DefaultRegion is the fallback when neither env nor the trust
	// anchor supplies one.
	DefaultRegion = "us-east-1"
	// DefaultHostAWSDir is where a host's ~/.aws is mounted in local
	// containers.
	DefaultHostAWSDir = "/host-aws"
)

// Config holds resolved runtime configuration shared by all commands.
type Config struct {
	ProjectName     string `yaml:"project_name"`
	Region          string `yaml:"region"`
	HostAWSDir      string `yaml:"host_aws_dir"`
	OverlayHostname string `yaml:"overlay_hostname"`
}

// Dir returns the boxstrap config directory (~/.config/boxstrap).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "boxstrap"), nil
}

// Load resolves configuration: env vars override the config file,
// which overrides defaults. A missing config file is not an error.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		ProjectName: DefaultProjectName,
		Region:      DefaultRegion,
		HostAWSDir:  DefaultHostAWSDir,
	}

	dir, err := Dir()
	if err == nil {
		if data, readErr := os.ReadFile(filepath.Join(dir, "config.yaml")); readErr == nil {
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return cfg, fmt.Errorf("parse config.yaml: %w", err)
			}
			merge(&cfg, fileCfg)
		}
	}

	merge(&cfg, Config{
		ProjectName: getenv("PROJECT_NAME"),
		Region:      getenv("AWS_REGION"),
		HostAWSDir:  getenv("BOXSTRAP_HOST_AWS_DIR"),
	})
	return cfg, nil
}

// merge copies non-empty fields of src over dst.
func merge(dst *Config, src Config) {
	if src.ProjectName != "" {
		dst.ProjectName = src.ProjectName
	}
	if src.Region != "" {
		dst.Region = src.Region
	}
	if src.HostAWSDir != "" {
		dst.HostAWSDir = src.HostAWSDir
	}
	if src.OverlayHostname != "" {
		dst.OverlayHostname = src.OverlayHostname
	}
}

// profileState is the persisted active-profile file schema.
type profileState struct {
	ActiveProfile string `yaml:"active_profile"`
}

// SaveActiveProfile persists the AWS profile name subsequent shells and
// invocations should use.
func SaveActiveProfile(dir, name string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(profileState{ActiveProfile: name})
	if err != nil {
		return fmt.Errorf("marshal profile state: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "profile.yaml"), data, 0600)
}

// ActiveProfile resolves the persisted profile from the standard config
// directory. Commands pass this to the AWS config loader so a profile
// persisted by the host-copy strategy carries over to later runs.
func ActiveProfile() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return LoadActiveProfile(dir)
}

// LoadActiveProfile reads the persisted profile name. Returns "" when
// no profile has been persisted.
func LoadActiveProfile(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "profile.yaml"))
	if err != nil {
		return ""
	}
	var st profileState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return ""
	}
	return st.ActiveProfile
}
