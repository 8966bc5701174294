package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curria-lang/curria/internal/ast"
	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/lexer"
	"github.com/curria-lang/curria/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a curria file and print the resulting AST",
	Args:  cobra.ExactArgs(1),
	RunE:  parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)
	sink := errs.NewSink(source, filename)
	lex := lexer.New(source, sink)
	p := parser.New(lex, sink)

	program, err := p.Parse()
	if err != nil {
		fmt.Fprint(os.Stderr, sink.Format())
		return err
	}

	for _, name := range program.Order {
		dumpFunction(program.Functions[name], 0)
	}

	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.Format())
	}
	return nil
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func dumpFunction(fn *ast.FunctionDef, depth int) {
	fmt.Printf("%sfunc %s(%s) @%s\n", indent(depth), fn.Name, strings.Join(fn.Parameters, ", "), fn.Pos)
	dumpBlock(fn.Block, depth+1)
}

func dumpBlock(b *ast.Block, depth int) {
	fmt.Printf("%sblock @%s\n", indent(depth), b.Pos)
	for _, stmt := range b.Statements {
		dumpStatement(stmt, depth+1)
	}
}

func dumpStatement(stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.If:
		fmt.Printf("%sif @%s\n", indent(depth), s.Pos)
		dumpExpr(s.Cond, depth+1)
		dumpBlock(s.Then, depth+1)
		if s.Else != nil {
			fmt.Printf("%selse\n", indent(depth))
			dumpBlock(s.Else, depth+1)
		}
	case *ast.While:
		fmt.Printf("%swhile @%s\n", indent(depth), s.Pos)
		dumpExpr(s.Cond, depth+1)
		dumpBlock(s.Body, depth+1)
	case *ast.Return:
		fmt.Printf("%sreturn @%s\n", indent(depth), s.Pos)
		if s.Expr != nil {
			dumpExpr(s.Expr, depth+1)
		}
	case *ast.Break:
		fmt.Printf("%sbreak @%s\n", indent(depth), s.Pos)
	case *ast.Continue:
		fmt.Printf("%scontinue @%s\n", indent(depth), s.Pos)
	case *ast.Assignment:
		fmt.Printf("%sassign @%s\n", indent(depth), s.Pos)
		dumpExpr(s.Target, depth+1)
		dumpExpr(s.Value, depth+1)
	case *ast.VariableAccess:
		dumpExpr(s, depth)
	default:
		fmt.Printf("%s<unknown statement %T>\n", indent(depth), s)
	}
}

func dumpExpr(expr ast.Expression, depth int) {
	switch e := expr.(type) {
	case *ast.Constant:
		fmt.Printf("%sconst %v @%s\n", indent(depth), e.Value, e.Pos)
	case *ast.Identifier:
		fmt.Printf("%sident %s @%s\n", indent(depth), e.Name, e.Pos)
	case *ast.FunctionCall:
		fmt.Printf("%scall %s @%s\n", indent(depth), e.Name, e.Pos)
		for _, arg := range e.Args {
			dumpExpr(arg, depth+1)
		}
	case *ast.VariableAccess:
		fmt.Printf("%saccess @%s\n", indent(depth), e.Pos)
		for _, atom := range e.Chain {
			dumpExpr(atom, depth+1)
		}
	case *ast.Or:
		fmt.Printf("%sor @%s\n", indent(depth), e.Pos)
		dumpExpr(e.Left, depth+1)
		dumpExpr(e.Right, depth+1)
	case *ast.And:
		fmt.Printf("%sand @%s\n", indent(depth), e.Pos)
		dumpExpr(e.Left, depth+1)
		dumpExpr(e.Right, depth+1)
	case *ast.Comparison:
		fmt.Printf("%scompare %v @%s\n", indent(depth), e.Op, e.Pos)
		dumpExpr(e.Left, depth+1)
		dumpExpr(e.Right, depth+1)
	case *ast.NegatedLogical:
		fmt.Printf("%s! @%s\n", indent(depth), e.Pos)
		dumpExpr(e.Operand, depth+1)
	case *ast.NegatedArithmetic:
		fmt.Printf("%sneg @%s\n", indent(depth), e.Pos)
		dumpExpr(e.Operand, depth+1)
	case *ast.Add:
		dumpBinary("+", e.Left, e.Right, e.Pos, depth)
	case *ast.Sub:
		dumpBinary("-", e.Left, e.Right, e.Pos, depth)
	case *ast.Mul:
		dumpBinary("*", e.Left, e.Right, e.Pos, depth)
	case *ast.Div:
		dumpBinary("/", e.Left, e.Right, e.Pos, depth)
	case *ast.Power:
		dumpBinary("^", e.Left, e.Right, e.Pos, depth)
	case *ast.Transfer:
		dumpBinary("->", e.Left, e.Right, e.Pos, depth)
	default:
		fmt.Printf("%s<unknown expr %T>\n", indent(depth), e)
	}
}

func dumpBinary(op string, left, right ast.Expression, pos fmt.Stringer, depth int) {
	fmt.Printf("%s%s @%s\n", indent(depth), op, pos)
	dumpExpr(left, depth+1)
	dumpExpr(right, depth+1)
}
