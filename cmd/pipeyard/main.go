// Command pipeyard reads a YAML pipeline configuration and runs every
// configured pipeline to completion, printing one report block per
// pipeline as it finishes (spec.md §6).
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pipeyard/pipeyard/config"
	"github.com/pipeyard/pipeyard/supervisor"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pipeyard <yml-file>",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
	rootCmd.SetArgs(os.Args[1:])

	if err := rootCmd.Execute(); err != nil {
		// Any argument-count mismatch lands here; spec.md §6 fixes the
		// exact usage text regardless of cobra's own message.
		fmt.Printf("Usage: %s <yml-file>\n", os.Args[0])
	}

	// The supervisor exits zero regardless of pipeline outcomes
	// (spec.md §6); run() itself never returns a non-nil error for a
	// condition spec.md assigns a message to, so there is nothing left
	// that would justify a non-zero os.Exit here.
}

// run loads and executes the configuration at path, writing reports to
// out. Per spec.md §7, both ConfigInvalid (from config.Load) and
// StagingUnavailable (from supervisor.Run, before any pipeline starts)
// abort before anything runs and print "the standard message" — spec.md
// §6 only defines one message template for a load/parse-time failure, so
// both error kinds are surfaced through it, as is an error supervisor.Run
// meets while writing a report; a pipeline-level failure always reaches
// a report instead; see DESIGN.md.
func run(out io.Writer, path string) {
	doc, err := config.Load(path)
	if err != nil {
		fmt.Println("An error ocurred while trying to load and parse the specified YAML file")
		return
	}

	if err := supervisor.Run(context.Background(), out, doc, ""); err != nil {
		fmt.Println("An error ocurred while trying to load and parse the specified YAML file")
	}
}
