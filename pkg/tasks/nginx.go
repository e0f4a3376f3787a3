package tasks

import "hostprep/pkg/model"

// Nginx installs the Nginx packages.
func Nginx(cfg model.NginxConfig) model.Task {
	return model.Task{
		ID:             model.TaskNginx,
		Name:           "install Nginx",
		StartMessage:   "Installing Nginx...",
		SuccessMessage: "Nginx installed successfully.",
		Commands: []model.Command{
			aptUpdate(),
			aptInstall(cfg.Packages...),
		},
	}
}
