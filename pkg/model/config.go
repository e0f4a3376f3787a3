package model

import (
	"fmt"
	"strings"
)

// Task identifiers known to the catalog.
const (
	TaskDocker   = "docker"
	TaskNginx    = "nginx"
	TaskFirewall = "firewall"
)

// KnownTasks lists every task the catalog can build, in default chain order.
var KnownTasks = []string{TaskDocker, TaskNginx, TaskFirewall}

type Config struct {
	Tasks              []string       `yaml:"tasks"`
	AbortOnTaskFailure bool           `yaml:"abort-on-task-failure"`
	Docker             DockerConfig   `yaml:"docker"`
	Nginx              NginxConfig    `yaml:"nginx"`
	Firewall           FirewallConfig `yaml:"firewall"`
	Prompt             PromptConfig   `yaml:"prompt"`
}

type DockerConfig struct {
	Repository    string   `yaml:"repository"`
	Keyring       string   `yaml:"keyring"`
	SourceList    string   `yaml:"source-list"`
	Channel       string   `yaml:"channel"`
	Prerequisites []string `yaml:"prerequisites"`
	Packages      []string `yaml:"packages"`
}

type NginxConfig struct {
	Packages []string `yaml:"packages"`
}

type FirewallConfig struct {
	Allow []string `yaml:"allow"`
	// Confirm runs `ufw enable` interactively so ufw can ask the operator before enabling.
	Confirm bool `yaml:"confirm"`
}

type PromptConfig struct {
	Enabled       bool `yaml:"enabled"`
	SkipOnFailure bool `yaml:"skip-on-failure"`
}

func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	known := make(map[string]bool, len(KnownTasks))
	for _, id := range KnownTasks {
		known[id] = true
	}
	if len(c.Tasks) == 0 {
		errs = append(errs, ValidationError{Field: "tasks", Message: "at least one task must be selected"})
	}
	seen := make(map[string]bool)
	for i, id := range c.Tasks {
		if !known[id] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("tasks[%d]", i), Message: fmt.Sprintf("unknown task '%s', must be one of: %s", id, strings.Join(KnownTasks, ", "))})
			continue
		}
		if seen[id] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("tasks[%d]", i), Message: fmt.Sprintf("task '%s' listed more than once", id)})
		}
		seen[id] = true
	}

	// Validate docker
	if !strings.HasPrefix(c.Docker.Repository, "https://") {
		errs = append(errs, ValidationError{Field: "docker.repository", Message: "repository must be an https:// URL"})
	}
	if strings.ContainsAny(c.Docker.Repository, " \t\n") {
		errs = append(errs, ValidationError{Field: "docker.repository", Message: "repository cannot contain whitespace"})
	}
	if !isAbsolutePath(c.Docker.Keyring) {
		errs = append(errs, ValidationError{Field: "docker.keyring", Message: "keyring path must be absolute and cannot contain '..'"})
	}
	if !isAbsolutePath(c.Docker.SourceList) {
		errs = append(errs, ValidationError{Field: "docker.source-list", Message: "source list path must be absolute and cannot contain '..'"})
	}
	if strings.TrimSpace(c.Docker.Channel) == "" || strings.ContainsAny(c.Docker.Channel, " \t\n") {
		errs = append(errs, ValidationError{Field: "docker.channel", Message: "channel must be a single word like 'stable'"})
	}
	errs = append(errs, validatePackages("docker.prerequisites", c.Docker.Prerequisites, false)...)
	errs = append(errs, validatePackages("docker.packages", c.Docker.Packages, true)...)

	// Validate nginx
	errs = append(errs, validatePackages("nginx.packages", c.Nginx.Packages, true)...)

	// Validate firewall
	for i, rule := range c.Firewall.Allow {
		if strings.TrimSpace(rule) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("firewall.allow[%d]", i), Message: "rule cannot be empty"})
		} else if hasControlChars(rule) {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("firewall.allow[%d]", i), Message: "rule contains control characters"})
		}
	}

	return errs
}

func validatePackages(field string, pkgs []string, required bool) ValidationErrors {
	var errs ValidationErrors
	if required && len(pkgs) == 0 {
		errs = append(errs, ValidationError{Field: field, Message: "at least one package is required"})
	}
	for i, pkg := range pkgs {
		if !isValidPackageName(pkg) {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Message: fmt.Sprintf("invalid package name '%s'", pkg)})
		}
	}
	return errs
}
