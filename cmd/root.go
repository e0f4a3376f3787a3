package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hostprep/pkg/log"
	"hostprep/pkg/runner"
	"hostprep/pkg/system"

	"github.com/spf13/cobra"
)

type contextKey string

const loggerKey contextKey = "logger"

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	jsonOutput  bool
	cmdRunner   runner.CommandRunner = &system.LiveCommandRunner{}
	execContext                      = system.CurrentContext
	rootCmd                          = &cobra.Command{
		Use:     "hostprep",
		Version: "1.0.0",
		Short:   "hostprep installs Docker and Nginx on a Debian or Ubuntu host",
		Long: `A CLI tool to install Docker and Nginx and configure the ufw firewall
on a Debian-family host. Commands run in a fixed order as root; a failing
command stops its task and the next task still runs.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			format, err := log.ParseFormat(logFormat)
			if err != nil {
				return err
			}
			logger := log.NewLogger(level, format, cmd.ErrOrStderr())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, loggerKey, log.Logger(logger)))
			return nil
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loggerFrom(cmd *cobra.Command) log.Logger {
	return cmd.Context().Value(loggerKey).(log.Logger)
}

// contextFor returns the execution context with the command's streams, so
// interactive children share the terminal the CLI was started from.
func contextFor(cmd *cobra.Command) runner.ExecContext {
	ec := execContext()
	ec.Stdin = cmd.InOrStdin()
	ec.Stdout = cmd.OutOrStdout()
	ec.Stderr = cmd.ErrOrStderr()
	return ec
}

func parseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", levelStr)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults are built in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
