package cmd

import (
	"testing"
)

func TestLexScriptReportsNoErrorsForValidSource(t *testing.T) {
	path := writeScript(t, `main() { return 1; }`)
	_ = captureStdout(t, func() {
		if err := lexScript(nil, []string{path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestLexScriptReportsErrorForIllegalCharacter(t *testing.T) {
	path := writeScript(t, "main() { return @; }")
	_ = captureStdout(t, func() {
		if err := lexScript(nil, []string{path}); err == nil {
			t.Fatal("expected an error for an illegal character")
		}
	})
}

func TestParseScriptDumpsAST(t *testing.T) {
	path := writeScript(t, `main() { return 1 + 2; }`)
	out := captureStdout(t, func() {
		if err := parseScript(nil, []string{path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if out == "" {
		t.Fatal("expected the AST dump to produce output")
	}
}
