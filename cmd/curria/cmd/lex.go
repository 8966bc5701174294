package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/lexer"
	"github.com/curria-lang/curria/internal/token"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a curria file and print the resulting tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func lexScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)
	sink := errs.NewSink(source, filename)
	lex := lexer.New(source, sink)

	for {
		tok := lex.Next()
		fmt.Printf("%-12s %-6s %v\n", tok.Kind, tok.Pos, tok.Value)
		if tok.Kind == token.EOF {
			break
		}
	}

	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.Format())
		return fmt.Errorf("lexing produced %d error(s)", len(sink.Diagnostics()))
	}
	return nil
}
