// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-ingest/pkg/version"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and maps its error to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return mapErrorToExitCode(err)
	}
	return exitOK
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "sirseer-ingest",
		Short: "Ingest GitHub pull request history into SQLite",
		Long: `SirSeer Ingest copies the pull requests of a GitHub repository created
inside a date window into a local SQLite database. For every pull request it
stores the title, author and labels, the changed files, and one activity row
per commit and per submitted review.

Runs are repeatable: pull requests and file changes already in the database
are left untouched.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context(), opts, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the YAML configuration file")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write an NDJSON run report to this file")

	return cmd
}

// mapErrorToExitCode maps a run error to the process exit code.
func mapErrorToExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return exitInterrupted
	}
	return exitError
}
