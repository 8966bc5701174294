// Command curria runs the curria language interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/curria-lang/curria/cmd/curria/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
