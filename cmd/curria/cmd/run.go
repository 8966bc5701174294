package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curria-lang/curria/internal/builtins"
	"github.com/curria-lang/curria/internal/config"
	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/interp"
	"github.com/curria-lang/curria/internal/lexer"
	"github.com/curria-lang/curria/internal/parser"
)

var ratesPath string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a curria program",
	Long: `Run a curria program from a source file.

Examples:
  curria run script.cur
  curria run --rates rates.yaml script.cur`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&ratesPath, "rates", "", "path to a YAML exchange-rate configuration overriding the defaults")
}

func runScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	rates, err := config.Load(ratesPath)
	if err != nil {
		return err
	}

	sink := errs.NewSink(source, filename)

	lex := lexer.New(source, sink)
	p := parser.New(lex, sink)
	program, err := p.Parse()
	if err != nil {
		flushSink(sink)
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsed %d function(s)\n", len(program.Functions))
	}

	table := builtins.Default(os.Stdout, bufio.NewReader(os.Stdin))
	evaluator := interp.New(program, rates, table, sink)
	if err := evaluator.Run(); err != nil {
		flushSink(sink)
		return err
	}

	flushSink(sink)
	return nil
}

// flushSink prints every accumulated diagnostic to standard error
// regardless of the exit path, per the error sink's shutdown contract.
func flushSink(sink *errs.Sink) {
	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.Format())
	}
}
