package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"hostprep/pkg/log"
	"hostprep/pkg/model"
	"hostprep/pkg/system"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration: install Docker, install Nginx,
// configure the firewall, then ask for the project's domain.
func Default() *model.Config {
	return &model.Config{
		Tasks: append([]string(nil), model.KnownTasks...),
		Docker: model.DockerConfig{
			Repository:    "https://download.docker.com/linux/ubuntu",
			Keyring:       "/usr/share/keyrings/docker-archive-keyring.gpg",
			SourceList:    "/etc/apt/sources.list.d/docker.list",
			Channel:       "stable",
			Prerequisites: []string{"apt-transport-https", "ca-certificates", "curl", "gnupg", "lsb-release"},
			Packages:      []string{"docker-ce", "docker-ce-cli", "containerd.io"},
		},
		Nginx: model.NginxConfig{
			Packages: []string{"nginx"},
		},
		Firewall: model.FirewallConfig{
			Allow:   []string{"Nginx Full", "OpenSSH"},
			Confirm: true,
		},
		Prompt: model.PromptConfig{
			Enabled: true,
		},
	}
}

// LoadConfig overlays the YAML file at filename onto the defaults. An empty
// filename returns the defaults. Keys missing from the file keep their default
// values; unknown keys are rejected.
func LoadConfig(filename string, logger log.Logger) (*model.Config, error) {
	cfg := Default()

	if filename != "" {
		f, err := afero.ReadFile(system.AppFs, filename)
		if err != nil {
			return nil, err
		}

		dec := yaml.NewDecoder(bytes.NewReader(f))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error parsing %s: %w", filename, err)
		}
		logger.Debug("Loaded configuration", "path", filename, "tasks", cfg.Tasks)
	}

	if err := model.Check(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
