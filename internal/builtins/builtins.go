// Package builtins implements the default host-side table of built-in
// functions: print and input. Grounded on go-dws's builtinPrint/builtinPrintLn
// I/O shape and on original_source's BUILTINS_LIST/bytes_print.
package builtins

import (
	"bufio"
	"fmt"
	"io"

	"github.com/curria-lang/curria/internal/interp"
)

// Table is the enumerated {name -> host callable} mapping the evaluator
// consults after failing to find a user-defined function.
type Table map[string]interp.Builtin

// Default builds the default built-in table: print writes to out, input
// reads one line from in.
func Default(out io.Writer, in *bufio.Reader) Table {
	return Table{
		"print": printBuiltin(out),
		"input": inputBuiltin(in),
	}
}

// printBuiltin writes each of its arguments to out, in order and with no
// separator or trailing newline. Bytes values are decoded
// as UTF-8; everything else uses its String representation. The runtime
// deliberately keeps string literals as raw bytes until this boundary (see
// interp.BytesValue).
func printBuiltin(out io.Writer) interp.Builtin {
	return func(args []interp.Value) interp.Value {
		for _, arg := range args {
			if b, ok := arg.(*interp.BytesValue); ok {
				fmt.Fprint(out, string(b.Value))
				continue
			}
			fmt.Fprint(out, arg.String())
		}
		return &interp.UnitValue{}
	}
}

// inputBuiltin reads one line from in, stripping the trailing newline, and
// returns it as a byte-sequence value (never a text type, matching the
// string-is-bytes runtime representation).
func inputBuiltin(in *bufio.Reader) interp.Builtin {
	return func(args []interp.Value) interp.Value {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return &interp.BytesValue{Value: nil}
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return &interp.BytesValue{Value: []byte(line)}
	}
}
