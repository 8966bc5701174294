// Package cmd implements the curria command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "curria",
	Short: "curria language interpreter",
	Long: `curria is a small imperative scripting language whose distinguishing
feature is a first-class currency value type: numeric literals may carry a
currency tag (USD, EUR, PLN), arithmetic between currencies auto-converts
via a fixed exchange-rate table, and an explicit transfer operator ->
converts a value into a target currency.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
