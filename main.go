package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-owner/internal/config"
	"github.com/sinclairtarget/git-owner/internal/git"
	"github.com/sinclairtarget/git-owner/internal/pretty"
	"github.com/sinclairtarget/git-owner/internal/subcommands"
)

var Commit = "unknown"
var Version = "unknown"

// Main parses the command line and runs the owner estimate for each file.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-owner [options] <file> [<file>...]",
		Short: "Estimate the owner of files in a Git repository",
		Long: `git-owner estimates who owns a file from how often each author committed
to it (git log) and how many of its current lines each author wrote
(git blame). By default both signals are weighted equally.`,
		Version:       fmt.Sprintf("%s %s", Version, Commit),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config loading logs too, so honor -v before it runs
			if verbose, _ := cmd.Flags().GetBool(config.VerboseKey); verbose {
				configureLogging(slog.LevelDebug)
			}

			c, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			if c.Verbose {
				configureLogging(slog.LevelDebug)
				logger().Debug("log level set to DEBUG")
			} else {
				configureLogging(slog.LevelWarn)
			}

			pretty.ConfigureColor(os.Stdout, c.Color)

			return subcommands.Owner(
				cmd.Context(),
				git.Repo{},
				args,
				c,
				os.Stdout,
			)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	config.AddFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive(config.OnlyLogKey, config.OnlyBlameKey)

	return cmd
}

func configureLogging(level slog.Level) {
	handler := slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{
			Level: level,
		},
	)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
