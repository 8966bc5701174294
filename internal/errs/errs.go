// Package errs implements the shared error sink used by the lexer, parser,
// and evaluator: it accumulates recoverable diagnostics keyed by source
// position and kind, and carries fatal diagnostics out via a sentinel error
// type that unwinds the run.
package errs

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/curria-lang/curria/internal/token"
)

// Severity classifies a Diagnostic as recoverable or fatal.
type Severity int

const (
	Recoverable Severity = iota
	Unrecoverable
)

// Kind enumerates the closed set of error kinds from the language
// specification's error taxonomy.
type Kind string

const (
	KindOverflow           Kind = "Overflow"
	KindUnknownToken       Kind = "UnknownToken"
	KindStringTooLong      Kind = "StringTooLong"
	KindInfiniteString     Kind = "InfiniteString"
	KindNameTooLong        Kind = "NameTooLong"
	KindCommentTooLong     Kind = "CommentTooLong"
	KindTooLongLine        Kind = "TooLongLine"
	KindUnexpectedToken    Kind = "UnexpectedToken"
	KindDuplicateDef       Kind = "DuplicateDefinition"
	KindExpectingIdent     Kind = "ExpectingIdentifier"
	KindExpectingExpr      Kind = "ExpectingExpression"
	KindMissingSemiColon   Kind = "MissingSemiColon"
	KindMissingBracket     Kind = "MissingBracket"
	KindNoMainFunction     Kind = "NoMainFunction"
	KindUndefinedVariable  Kind = "UndefinedVariable"
	KindFunctionNotFound   Kind = "FunctionNotFound"
	KindNotExactArguments  Kind = "NotExactArguments"
	KindDivisionByZero     Kind = "DivisionByZero"
	KindWrongType          Kind = "WrongTypeForOperation"
	KindValueSizeExceed    Kind = "ValueSizeExceed"
	KindBreakContinueOutside Kind = "BreakOrContinueOutsideWhile"
)

// Diagnostic is a single accumulated error.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      token.Position
	Message  string
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Message)
}

// Fatal is the sentinel error type returned when a fatal diagnostic is
// raised. It wraps the triggering Diagnostic with github.com/pkg/errors so
// that callers up the stack (cmd/curria) see a normal Go error chain in
// addition to the sink's accumulated pretty-printed diagnostics.
type Fatal struct {
	Diagnostic *Diagnostic
	cause      error
}

func (f *Fatal) Error() string {
	return f.Diagnostic.String()
}

func (f *Fatal) Unwrap() error {
	return f.cause
}

// Sink accumulates diagnostics produced by the lexer, parser, and evaluator.
type Sink struct {
	diagnostics []*Diagnostic
	source      string
	file        string
}

// NewSink creates an empty sink. source and file are used only for pretty
// rendering of diagnostics (caret diagrams); file may be empty.
func NewSink(source, file string) *Sink {
	return &Sink{source: source, file: file}
}

// Save appends a recoverable diagnostic to the sink.
func (s *Sink) Save(kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: kind, Severity: Recoverable, Pos: pos, Message: fmt.Sprintf(format, args...)}
	s.diagnostics = append(s.diagnostics, d)
	return d
}

// FatalError appends a fatal diagnostic to the sink and returns a *Fatal error
// that the caller should return/propagate to unwind the run.
func (s *Sink) FatalError(kind Kind, pos token.Position, format string, args ...any) *Fatal {
	d := &Diagnostic{Kind: kind, Severity: Unrecoverable, Pos: pos, Message: fmt.Sprintf(format, args...)}
	s.diagnostics = append(s.diagnostics, d)
	cause := pkgerrors.Errorf("%s: %s", kind, d.Message)
	return &Fatal{Diagnostic: d, cause: cause}
}

// Diagnostics returns every accumulated diagnostic, in emission order.
func (s *Sink) Diagnostics() []*Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	return len(s.diagnostics) > 0
}

// Format renders all accumulated diagnostics with source context and a
// caret pointing at the offending column, grounded on go-dws's
// internal/errors.CompilerError rendering.
func (s *Sink) Format() string {
	if len(s.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	lines := strings.Split(s.source, "\n")
	for i, d := range s.diagnostics {
		if s.file != "" {
			fmt.Fprintf(&sb, "Error in %s:%s: [%s] %s\n", s.file, d.Pos, d.Kind, d.Message)
		} else {
			fmt.Fprintf(&sb, "Error at %s: [%s] %s\n", d.Pos, d.Kind, d.Message)
		}
		if d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
			srcLine := lines[d.Pos.Line-1]
			prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(srcLine)
			sb.WriteString("\n")
			col := d.Pos.Column - 1
			if col < 0 {
				col = 0
			}
			sb.WriteString(strings.Repeat(" ", len(prefix)+col))
			sb.WriteString("^\n")
		}
		if i < len(s.diagnostics)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
