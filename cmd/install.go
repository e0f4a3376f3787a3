package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"hostprep/pkg/config"
	"hostprep/pkg/log"
	"hostprep/pkg/model"
	"hostprep/pkg/plan"
	"hostprep/pkg/prompt"
	"hostprep/pkg/runner"
	"hostprep/pkg/system"
	"hostprep/pkg/tasks"

	"github.com/spf13/cobra"
)

var (
	installDryRun bool
	installOnly   []string
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install Docker and Nginx",
	Long: `The install command runs the configured tasks in order: install Docker,
install Nginx and configure the ufw firewall. Each task stops at its first
failing command; the remaining tasks still run. After the Nginx task the
command asks for the project's root domain. Requires root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput && !installDryRun {
			return fmt.Errorf("--json is only valid with --dry-run")
		}
		logger := loggerFrom(cmd)
		ec := contextFor(cmd)

		if !installDryRun {
			if err := system.RequireRoot(ec); err != nil {
				return err
			}
		}

		cfg, err := config.LoadConfig(cfgFile, logger)
		if err != nil {
			return err
		}
		selected := cfg.Tasks
		if len(installOnly) > 0 {
			selected = installOnly
		}

		catalog, err := tasks.Build(cfg)
		if err != nil {
			return err
		}
		ordered, err := plan.Order(catalog, selected, logger)
		if err != nil {
			return err
		}

		if installDryRun {
			planner := &plan.Planner{Runner: cmdRunner, Context: ec, Logger: logger}
			return printPlan(cmd, planner.Describe(ordered))
		}

		warnIfNotDebian(logger)

		executor := runner.NewExecutor(cmdRunner, ec, logger)
		executor.AbortOnTaskFailure = cfg.AbortOnTaskFailure
		results := executor.RunChain(ordered)

		failed := 0
		for _, r := range results {
			if !r.Succeeded() {
				failed++
			}
		}
		logger.Info("Install finished", "tasks", len(results), "failed", failed)

		if !shouldAskDomain(cfg, ordered, results) {
			return nil
		}
		_, err = prompt.AskDomain(ec.Stdin, ec.Stdout)
		return err
	},
}

// shouldAskDomain reports whether the domain prompt follows the chain. It is
// asked whenever the chain included Nginx, whatever the task outcomes, unless
// the configuration opts out.
func shouldAskDomain(cfg *model.Config, ordered []model.Task, results []runner.TaskResult) bool {
	if !cfg.Prompt.Enabled {
		return false
	}
	hasNginx := slices.ContainsFunc(ordered, func(t model.Task) bool { return t.ID == model.TaskNginx })
	if !hasNginx {
		return false
	}
	return !(cfg.Prompt.SkipOnFailure && runner.AnyFailed(results))
}

func warnIfNotDebian(logger log.Logger) {
	host, err := system.InferHost()
	if err != nil {
		logger.Debug("Could not detect host distribution", "error", err)
		return
	}
	if !host.IsDebianFamily() {
		logger.Warn("Host is not Debian-based, apt-get and ufw may be unavailable", "distribution", host.ID)
	}
}

func printPlan(cmd *cobra.Command, steps []plan.Step) error {
	if jsonOutput {
		stepsForJSON := []stepForJSON{}
		for _, step := range steps {
			stepsForJSON = append(stepsForJSON, stepForJSON{
				Task:        step.TaskID,
				Description: step.Description,
				Details:     step.Details,
			})
		}
		jsonBytes, err := json.MarshalIndent(stepsForJSON, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan to JSON: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Dry run enabled. The following operations would be performed:")
	for _, step := range steps {
		fmt.Fprintf(cmd.OutOrStdout(), "=> %s\n", step.Description)
		for _, detail := range step.Details {
			fmt.Fprintf(cmd.OutOrStdout(), "   - %s\n", detail)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show what would be run without executing anything")
	installCmd.Flags().StringSliceVar(&installOnly, "only", nil, "Run only these tasks (docker, nginx, firewall)")
	installCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan in JSON format (only valid with --dry-run)")
}
