package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"hostprep/pkg/config"
	"hostprep/pkg/model"
	"hostprep/pkg/tasks"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available tasks and their commands",
	Long: `The list command prints every task hostprep knows about with the
commands it runs, as configured. Tasks in the configured chain are marked
as selected. Nothing is executed and root is not required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		cfg, err := config.LoadConfig(cfgFile, logger)
		if err != nil {
			return err
		}
		catalog, err := tasks.Build(cfg)
		if err != nil {
			return err
		}

		out := make([]taskForOutput, 0, len(catalog))
		for _, id := range model.KnownTasks {
			task := catalog[id]
			entry := taskForOutput{
				ID:       task.ID,
				Name:     task.Name,
				Selected: slices.Contains(cfg.Tasks, task.ID),
				After:    task.After,
			}
			for _, c := range task.Commands {
				co := commandForOutput{Run: c.String(), Mode: string(c.Mode), Writes: c.Writes}
				if c.Stdin != nil {
					co.Stdin = c.Stdin.Describe()
				}
				entry.Commands = append(entry.Commands, co)
			}
			out = append(out, entry)
		}

		if jsonOutput {
			jsonBytes, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal tasks to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
			return nil
		}

		yamlData, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal tasks to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
