// Command partyload imports the semicolon-delimited party export (customers,
// suppliers and staff) into the destination table.
//
// Usage:
//
//	partyload import [--file pessoas.csv] [--env-file .env.python] [--apply]
//
// Without --apply the run is a dry run: every row is normalized and
// reported but nothing is written.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/partyload/internal/core"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Signals are left to their default handling: an interrupted run stops the
// process where it is, with no partial completion report.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		printFatal(os.Stderr, err)
		os.Exit(1)
	}
}

// printFatal writes err and, when it matches a known failure, the support
// code and suggested action.
func printFatal(w io.Writer, err error) {
	fmt.Fprintln(w, "❌ ERRO:", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, "  ", core.FormatUserError(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "partyload",
		Short:         "Import customers, suppliers and staff from an ERP export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newImportCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "partyload", version)
		},
	}
}
