// Package cmd provides the command-line interface of dssim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dssim",
	Short: "dssim runs distributed algorithms on a simulated network.",
	Long: `dssim runs distributed algorithms, such as the bully election, ` +
		`on simulated processes connected by a lossy network with ` +
		`latencies. Runs are described by scenario scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers run before the program ends.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
