// Package tasks builds the installer's hard-coded tasks from configuration.
package tasks

import (
	"fmt"

	"hostprep/pkg/model"
)

// Build returns every known task keyed by ID.
func Build(cfg *model.Config) (map[string]model.Task, error) {
	catalog := map[string]model.Task{
		model.TaskDocker:   Docker(cfg.Docker),
		model.TaskNginx:    Nginx(cfg.Nginx),
		model.TaskFirewall: Firewall(cfg.Firewall),
	}
	for id, task := range catalog {
		if err := model.Check(task); err != nil {
			return nil, fmt.Errorf("invalid task %s: %w", id, err)
		}
	}
	return catalog, nil
}

func aptUpdate() model.Command {
	return model.Captured("apt-get", "update")
}

func aptInstall(packages ...string) model.Command {
	return model.Captured("apt-get", append([]string{"install", "-y"}, packages...)...)
}
