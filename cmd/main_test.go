package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"hostprep/pkg/prompt"
	"hostprep/pkg/runner"
	"hostprep/pkg/system"
	"hostprep/pkg/test"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeCommand(mock *test.MockCommandRunner, stdin string, args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	// Flag values persist on the package-level command tree between runs.
	cfgFile, logLevel, logFormat = "", "info", "text"
	installDryRun, installOnly, jsonOutput = false, nil, false

	cmdRunner = mock

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupTest(t *testing.T, euid int) *test.MockCommandRunner {
	t.Helper()
	system.AppFs = afero.NewMemMapFs()

	previous := execContext
	execContext = func() runner.ExecContext {
		return runner.ExecContext{Dir: "/", EUID: euid}
	}
	t.Cleanup(func() { execContext = previous })

	mock := test.NewMockCommandRunner()
	mock.SetResponse("dpkg --print-architecture", "amd64\n")
	mock.SetResponse("lsb_release -cs", "jammy\n")
	return mock
}

func TestInstall_RequiresRoot(t *testing.T) {
	mock := setupTest(t, 1000)

	_, _, err := executeCommand(mock, "", "install")

	require.ErrorIs(t, err, runner.ErrPrivilege)
	assert.EqualError(t, err, "You need root privileges to run this tool.")
	assert.Empty(t, mock.Commands, "no command may run without root")
}

func TestInstall_JSONRequiresDryRun(t *testing.T) {
	mock := setupTest(t, 0)

	_, _, err := executeCommand(mock, "", "install", "--json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--dry-run")
	assert.Empty(t, mock.Commands)
}

func TestInstall_FullChain(t *testing.T) {
	mock := setupTest(t, 0)

	stdout, stderr, err := executeCommand(mock, "example.com\n", "install")
	require.NoError(t, err)

	assert.Equal(t, "apt-get update", mock.Commands[0])
	test.AssertCommandExecuted(t, mock, "apt-get install -y docker-ce docker-ce-cli containerd.io")
	test.AssertCommandExecuted(t, mock, "apt-get install -y nginx")
	test.AssertCommandExecuted(t, mock, "ufw enable")
	assert.Equal(t, "ufw status verbose", mock.Commands[len(mock.Commands)-1])
	assert.Equal(t, 3, mock.Count("apt-get update"), "twice for docker, once for nginx")

	assert.Equal(t, 1, strings.Count(stdout, "Docker installed successfully."))
	assert.Equal(t, 1, strings.Count(stdout, "Nginx installed successfully."))
	assert.Equal(t, 1, strings.Count(stdout, "Firewall configured successfully."))
	assert.Contains(t, stdout, prompt.DomainQuestion)
	assert.Contains(t, stdout, "Your project's root domain is: example.com")
	assert.NotContains(t, stderr, "Failed to")
}

func TestInstall_SourceListRenderedFromHostFacts(t *testing.T) {
	mock := setupTest(t, 0)

	_, _, err := executeCommand(mock, "\n", "install", "--only", "docker")
	require.NoError(t, err)

	assert.Equal(t,
		"deb [arch=amd64 signed-by=/usr/share/keyrings/docker-archive-keyring.gpg] https://download.docker.com/linux/ubuntu jammy stable\n",
		string(mock.Inputs["tee /etc/apt/sources.list.d/docker.list"]))
}

func TestInstall_FailedNginxStillConfiguresFirewall(t *testing.T) {
	mock := setupTest(t, 0)
	mock.SetExit("apt-get install -y nginx", 100, "E: Unable to locate package nginx")

	stdout, stderr, err := executeCommand(mock, "example.com\n", "install", "--only", "nginx,firewall")
	require.NoError(t, err, "task failures do not change the exit status")

	test.AssertCommandExecuted(t, mock, `ufw allow "Nginx Full"`)
	test.AssertCommandExecuted(t, mock, "ufw enable")
	assert.Contains(t, stderr, "Failed to install Nginx")
	assert.Contains(t, stderr, "apt-get install -y nginx")
	assert.NotContains(t, stdout, "Nginx installed successfully.")
	assert.Contains(t, stdout, "Firewall configured successfully.")
	assert.Contains(t, stdout, "Your project's root domain is: example.com")
}

func TestInstall_SkipPromptOnFailure(t *testing.T) {
	mock := setupTest(t, 0)
	mock.SetExit("apt-get install -y nginx", 100, "")
	test.CreateTestFile(t, system.AppFs, "/etc/hostprep.yaml", `
tasks: [nginx]
prompt:
  enabled: true
  skip-on-failure: true
`)

	stdout, _, err := executeCommand(mock, "example.com\n", "install", "--config", "/etc/hostprep.yaml")
	require.NoError(t, err)

	assert.NotContains(t, stdout, prompt.DomainLabel)
}

func TestInstall_NoPromptWithoutNginx(t *testing.T) {
	mock := setupTest(t, 0)

	stdout, _, err := executeCommand(mock, "example.com\n", "install", "--only", "docker")
	require.NoError(t, err)

	assert.NotContains(t, stdout, prompt.DomainQuestion)
	test.AssertCommandNotExecuted(t, mock, "apt-get install -y nginx")
}

func TestInstall_AbortOnTaskFailure(t *testing.T) {
	mock := setupTest(t, 0)
	mock.SetExit("apt-get install -y docker-ce docker-ce-cli containerd.io", 100, "")
	test.CreateTestFile(t, system.AppFs, "/etc/hostprep.yaml", "abort-on-task-failure: true\n")

	_, stderr, err := executeCommand(mock, "", "install", "--config", "/etc/hostprep.yaml")
	require.NoError(t, err)

	test.AssertCommandNotExecuted(t, mock, "apt-get install -y nginx")
	assert.Contains(t, stderr, "Aborting task chain")
}

func TestInstall_DryRunJSON(t *testing.T) {
	mock := setupTest(t, 1000)

	stdout, _, err := executeCommand(mock, "", "install", "--dry-run", "--json")
	require.NoError(t, err, "dry run does not need root")

	var steps []stepForJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &steps))
	require.Len(t, steps, 3)
	assert.Equal(t, "docker", steps[0].Task)
	assert.Equal(t, "Install Docker", steps[0].Description)
	assert.Equal(t, "nginx", steps[1].Task)
	assert.Equal(t, "firewall", steps[2].Task)
	assert.Contains(t, steps[1].Details, "run: apt-get install -y nginx")
	assert.Contains(t, steps[0].Details, "+deb [arch=amd64 signed-by=/usr/share/keyrings/docker-archive-keyring.gpg] https://download.docker.com/linux/ubuntu jammy stable")

	// Only the read-only fact queries may run during a dry run.
	assert.Equal(t, []string{"dpkg --print-architecture", "lsb_release -cs"}, mock.Commands)
}

func TestInstall_DryRunText(t *testing.T) {
	mock := setupTest(t, 0)

	stdout, _, err := executeCommand(mock, "", "install", "--dry-run", "--only", "firewall,nginx")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dry run enabled")
	assert.Less(t, strings.Index(stdout, "=> Install Nginx"), strings.Index(stdout, "=> Configure firewall"))
	assert.Contains(t, stdout, "   - run: ufw enable (interactive)")
	assert.Empty(t, mock.Commands)
}

func TestInstall_InvalidConfig(t *testing.T) {
	mock := setupTest(t, 0)
	test.CreateTestFile(t, system.AppFs, "/etc/hostprep.yaml", "tasks: [postgres]\n")

	_, _, err := executeCommand(mock, "", "install", "--config", "/etc/hostprep.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Empty(t, mock.Commands)
}

func TestInstall_UnknownOnlyTask(t *testing.T) {
	mock := setupTest(t, 0)

	_, _, err := executeCommand(mock, "", "install", "--only", "redis")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.Empty(t, mock.Commands)
}

func TestInvalidLogLevel(t *testing.T) {
	mock := setupTest(t, 0)

	_, _, err := executeCommand(mock, "", "--log-level", "verbose", "install")

	require.Error(t, err)
	assert.Empty(t, mock.Commands)
}

func TestList_YAML(t *testing.T) {
	mock := setupTest(t, 1000)

	stdout, _, err := executeCommand(mock, "", "list")
	require.NoError(t, err)

	var listed []taskForOutput
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, "docker", listed[0].ID)
	assert.True(t, listed[0].Selected)
	assert.Equal(t, "firewall", listed[2].ID)
	assert.Equal(t, []string{"nginx"}, listed[2].After)
	assert.Equal(t, "curl -fsSL https://download.docker.com/linux/ubuntu/gpg", listed[0].Commands[2].Stdin)
	assert.Empty(t, mock.Commands)
}

func TestList_JSONMarksSelection(t *testing.T) {
	mock := setupTest(t, 1000)
	test.CreateTestFile(t, system.AppFs, "/etc/hostprep.yaml", "tasks: [nginx]\n")

	stdout, _, err := executeCommand(mock, "", "list", "--json", "--config", "/etc/hostprep.yaml")
	require.NoError(t, err)

	var listed []taskForOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed, 3)
	assert.False(t, listed[0].Selected)
	assert.True(t, listed[1].Selected)
	assert.Equal(t, "interactive", listed[2].Commands[3].Mode)
}

func TestVersion(t *testing.T) {
	mock := setupTest(t, 0)
	t.Cleanup(func() { _ = rootCmd.Flags().Set("version", "false") })

	stdout, _, err := executeCommand(mock, "", "--version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "1.0.0")
}
