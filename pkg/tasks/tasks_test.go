package tasks

import (
	"testing"

	"hostprep/pkg/config"
	"hostprep/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandLines(task model.Task) []string {
	lines := make([]string, 0, len(task.Commands))
	for _, c := range task.Commands {
		lines = append(lines, c.String())
	}
	return lines
}

func TestBuild(t *testing.T) {
	catalog, err := Build(config.Default())
	require.NoError(t, err)

	assert.Len(t, catalog, 3)
	for _, id := range model.KnownTasks {
		task, ok := catalog[id]
		require.True(t, ok, "missing task %s", id)
		assert.Equal(t, id, task.ID)
	}
}

func TestDocker(t *testing.T) {
	task := Docker(config.Default().Docker)

	assert.Equal(t, "install Docker", task.Name)
	assert.Equal(t, "Installing Docker...", task.StartMessage)
	assert.Equal(t, "Docker installed successfully.", task.SuccessMessage)
	assert.Equal(t, []string{
		"apt-get update",
		"apt-get install -y apt-transport-https ca-certificates curl gnupg lsb-release",
		"gpg --batch --yes --dearmor -o /usr/share/keyrings/docker-archive-keyring.gpg",
		"tee /etc/apt/sources.list.d/docker.list",
		"apt-get update",
		"apt-get install -y docker-ce docker-ce-cli containerd.io",
	}, commandLines(task))
	assert.Empty(t, task.Validate())
}

func TestDocker_KeyIsPipedFromCurl(t *testing.T) {
	task := Docker(config.Default().Docker)

	gpg := task.Commands[2]
	pipe, ok := gpg.Stdin.(model.Pipe)
	require.True(t, ok, "gpg stdin should be a pipe, got %T", gpg.Stdin)
	assert.Equal(t, "curl -fsSL https://download.docker.com/linux/ubuntu/gpg", pipe.From.String())
	assert.Equal(t, "/usr/share/keyrings/docker-archive-keyring.gpg", gpg.Writes)
}

func TestDocker_SourceListTemplate(t *testing.T) {
	task := Docker(config.Default().Docker)

	tee := task.Commands[3]
	assert.True(t, tee.Quiet)
	assert.Equal(t, "/etc/apt/sources.list.d/docker.list", tee.Writes)

	tmpl, ok := tee.Stdin.(model.Template)
	require.True(t, ok, "tee stdin should be a template, got %T", tee.Stdin)
	require.Len(t, tmpl.Vars, 2)
	assert.Equal(t, "dpkg --print-architecture", tmpl.Vars[0].From.String())
	assert.Equal(t, "lsb_release -cs", tmpl.Vars[1].From.String())

	line, err := tmpl.Render(map[string]string{"arch": "arm64", "codename": "noble"})
	require.NoError(t, err)
	assert.Equal(t,
		"deb [arch=arm64 signed-by=/usr/share/keyrings/docker-archive-keyring.gpg] https://download.docker.com/linux/ubuntu noble stable\n",
		string(line))
}

func TestDocker_NoPrerequisites(t *testing.T) {
	cfg := config.Default().Docker
	cfg.Prerequisites = nil

	task := Docker(cfg)

	assert.Len(t, task.Commands, 5)
	assert.Equal(t, "apt-get update", task.Commands[0].String())
	assert.Equal(t, "gpg", task.Commands[1].Name)
}

func TestNginx(t *testing.T) {
	task := Nginx(model.NginxConfig{Packages: []string{"nginx", "nginx-extras"}})

	assert.Equal(t, "install Nginx", task.Name)
	assert.Equal(t, []string{"apt-get update", "apt-get install -y nginx nginx-extras"}, commandLines(task))
	assert.Empty(t, task.After)
}

func TestFirewall(t *testing.T) {
	task := Firewall(config.Default().Firewall)

	assert.Equal(t, "configure firewall", task.Name)
	assert.Equal(t, []string{model.TaskNginx}, task.After)
	assert.Equal(t, []string{
		"apt-get install -y ufw",
		`ufw allow "Nginx Full"`,
		"ufw allow OpenSSH",
		"ufw enable",
		"ufw status verbose",
	}, commandLines(task))
	assert.Equal(t, model.ModeInteractive, task.Commands[3].Mode)
}

func TestFirewall_WithoutConfirmation(t *testing.T) {
	task := Firewall(model.FirewallConfig{Allow: []string{"OpenSSH"}})

	enable := task.Commands[2]
	assert.Equal(t, "ufw --force enable", enable.String())
	assert.Equal(t, model.ModeCaptured, enable.Mode)
}
