package tasks

import "hostprep/pkg/model"

// Firewall installs ufw, opens the configured application profiles and enables it.
// The "Nginx Full" profile only exists once nginx is installed, hence the ordering.
func Firewall(cfg model.FirewallConfig) model.Task {
	commands := []model.Command{aptInstall("ufw")}
	for _, rule := range cfg.Allow {
		commands = append(commands, model.Captured("ufw", "allow", rule))
	}
	if cfg.Confirm {
		// ufw asks before enabling because it may drop the current SSH session.
		commands = append(commands, model.Interactive("ufw", "enable"))
	} else {
		commands = append(commands, model.Captured("ufw", "--force", "enable"))
	}
	commands = append(commands, model.Captured("ufw", "status", "verbose"))

	return model.Task{
		ID:             model.TaskFirewall,
		Name:           "configure firewall",
		StartMessage:   "Configuring firewall...",
		SuccessMessage: "Firewall configured successfully.",
		After:          []string{model.TaskNginx},
		Commands:       commands,
	}
}
