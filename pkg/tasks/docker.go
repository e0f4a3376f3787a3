package tasks

import (
	"fmt"

	"hostprep/pkg/model"
)

// Docker installs Docker Engine from Docker's apt repository: prerequisites,
// the repository signing key, the source list entry, then the engine packages.
func Docker(cfg model.DockerConfig) model.Task {
	commands := []model.Command{aptUpdate()}
	if len(cfg.Prerequisites) > 0 {
		commands = append(commands, aptInstall(cfg.Prerequisites...))
	}

	importKey := model.Captured("gpg", "--batch", "--yes", "--dearmor", "-o", cfg.Keyring)
	importKey.Stdin = model.Pipe{From: model.Captured("curl", "-fsSL", cfg.Repository+"/gpg")}
	importKey.Writes = cfg.Keyring

	addSource := model.Captured("tee", cfg.SourceList)
	addSource.Stdin = model.Template{
		Text: fmt.Sprintf("deb [arch={{.arch}} signed-by=%s] %s {{.codename}} %s\n", cfg.Keyring, cfg.Repository, cfg.Channel),
		Vars: []model.TemplateVar{
			{Name: "arch", From: model.Captured("dpkg", "--print-architecture")},
			{Name: "codename", From: model.Captured("lsb_release", "-cs")},
		},
	}
	addSource.Writes = cfg.SourceList
	addSource.Quiet = true

	commands = append(commands,
		importKey,
		addSource,
		aptUpdate(),
		aptInstall(cfg.Packages...),
	)

	return model.Task{
		ID:             model.TaskDocker,
		Name:           "install Docker",
		StartMessage:   "Installing Docker...",
		SuccessMessage: "Docker installed successfully.",
		Commands:       commands,
	}
}
