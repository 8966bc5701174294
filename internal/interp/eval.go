package interp

import (
	"github.com/curria-lang/curria/internal/ast"
	"github.com/curria-lang/curria/internal/config"
	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/token"
)

// signalKind tags the outcome of executing a statement or block: the
// explicit control-flow signal value recommended over interior mutable
// flags, modeling the source's returning/breaking/continuing booleans as a
// single small enum.
type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
	signalBreak
	signalContinue
)

// signal is the outcome of executing a statement: Normal, or an unwind
// request carrying an optional return value.
type signal struct {
	kind  signalKind
	value Value
}

var normalSignal = signal{kind: signalNone}

// Evaluator walks a Program: resolves main, maintains the global scope and
// per-call scope stacks, and dispatches arithmetic to arith.
type Evaluator struct {
	program  *ast.Program
	builtins map[string]Builtin
	global   *Scope
	sink     *errs.Sink
	arith    *arith
}

// New creates an Evaluator over program, with rates supplying the exchange
// table and builtins the host-provided function table.
func New(program *ast.Program, rates config.Rates, builtinTable map[string]Builtin, sink *errs.Sink) *Evaluator {
	return &Evaluator{
		program:  program,
		builtins: builtinTable,
		global:   NewScope(nil),
		sink:     sink,
		arith:    newArith(sink, rates),
	}
}

// Run resolves and invokes main with no arguments.
func (e *Evaluator) Run() error {
	main, ok := e.program.Functions["main"]
	if !ok {
		return e.sink.FatalError(errs.KindNoMainFunction, token.Position{Line: 1, Column: 1}, "no main function defined")
	}
	_, err := e.callUser(main, nil, token.Position{Line: 1, Column: 1})
	return err
}

// callUser invokes a user-defined function: saves the caller's call
// context, installs a fresh one parented on the shared global scope, binds
// parameters, executes the body, and restores the caller's context.
func (e *Evaluator) callUser(fn *ast.FunctionDef, args []Value, callPos token.Position) (Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, e.sink.FatalError(errs.KindNotExactArguments, fn.Pos, "function %q expects %d argument(s), got %d (called at %s)", fn.Name, len(fn.Parameters), len(args), callPos)
	}
	ctx := NewCallContext(e.global)
	for i, param := range fn.Parameters {
		ctx.Define(param, NewReference(args[i]))
	}
	sig, err := e.execBlock(ctx, fn.Block)
	if err != nil {
		return nil, err
	}
	if sig.kind == signalReturn && sig.value != nil {
		return sig.value, nil
	}
	return unit, nil
}

// execBlock runs a block's statements sequentially inside a fresh inner
// scope, stopping early on any non-Normal signal.
func (e *Evaluator) execBlock(ctx *CallContext, block *ast.Block) (signal, error) {
	ctx.EnterScope()
	defer ctx.LeaveScope()

	for _, stmt := range block.Statements {
		sig, err := e.execStatement(ctx, stmt)
		if err != nil {
			return normalSignal, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
	}
	return normalSignal, nil
}

func (e *Evaluator) execStatement(ctx *CallContext, stmt ast.Statement) (signal, error) {
	switch s := stmt.(type) {
	case *ast.If:
		cond, err := e.eval(ctx, s.Cond)
		if err != nil {
			return normalSignal, err
		}
		truthy, err := e.asBool(s.Pos, cond)
		if err != nil {
			return normalSignal, err
		}
		if truthy {
			return e.execBlock(ctx, s.Then)
		}
		if s.Else != nil {
			return e.execBlock(ctx, s.Else)
		}
		return normalSignal, nil

	case *ast.While:
		for {
			cond, err := e.eval(ctx, s.Cond)
			if err != nil {
				return normalSignal, err
			}
			truthy, err := e.asBool(s.Pos, cond)
			if err != nil {
				return normalSignal, err
			}
			if !truthy {
				return normalSignal, nil
			}
			sig, err := e.execBlock(ctx, s.Body)
			if err != nil {
				return normalSignal, err
			}
			switch sig.kind {
			case signalBreak:
				return normalSignal, nil
			case signalReturn:
				return sig, nil
			case signalContinue:
				continue
			}
		}

	case *ast.Return:
		if s.Expr == nil {
			return signal{kind: signalReturn, value: unit}, nil
		}
		value, err := e.eval(ctx, s.Expr)
		if err != nil {
			return normalSignal, err
		}
		return signal{kind: signalReturn, value: value}, nil

	case *ast.Break:
		return signal{kind: signalBreak}, nil

	case *ast.Continue:
		return signal{kind: signalContinue}, nil

	case *ast.Assignment:
		return normalSignal, e.execAssignment(ctx, s)

	case *ast.VariableAccess:
		_, err := e.evalVariableAccess(ctx, s)
		return normalSignal, err

	default:
		panic("interp: unhandled statement type")
	}
}

func (e *Evaluator) asBool(pos token.Position, v Value) (bool, error) {
	b, ok := v.(*BoolValue)
	if !ok {
		return false, e.sink.FatalError(errs.KindWrongType, pos, "expected a boolean condition, got %s", v.Type())
	}
	return b.Value, nil
}

func (e *Evaluator) execAssignment(ctx *CallContext, a *ast.Assignment) error {
	value, err := e.eval(ctx, a.Value)
	if err != nil {
		return err
	}
	if len(a.Target.Chain) != 1 {
		return e.sink.FatalError(errs.KindWrongType, a.Pos, "assignment target must be a plain identifier")
	}
	ident, ok := a.Target.Chain[0].(*ast.Identifier)
	if !ok {
		return e.sink.FatalError(errs.KindWrongType, a.Pos, "assignment target must be a plain identifier, not a call")
	}
	if ref, ok := ctx.Lookup(ident.Name); ok {
		ref.Value = value
		return nil
	}
	ctx.Define(ident.Name, NewReference(value))
	return nil
}

// eval evaluates expr to a Value.
func (e *Evaluator) eval(ctx *CallContext, expr ast.Expression) (Value, error) {
	switch n := expr.(type) {
	case *ast.Constant:
		return e.evalConstant(n)

	case *ast.Identifier:
		ref, ok := ctx.Lookup(n.Name)
		if !ok {
			return nil, e.sink.FatalError(errs.KindUndefinedVariable, n.Pos, "undefined variable %q", n.Name)
		}
		return ref.Value, nil

	case *ast.FunctionCall:
		return e.evalFunctionCall(ctx, n)

	case *ast.VariableAccess:
		return e.evalVariableAccess(ctx, n)

	case *ast.Or:
		left, err := e.eval(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		lb, err := e.asBool(n.Pos, left)
		if err != nil {
			return nil, err
		}
		if lb {
			return &BoolValue{Value: true}, nil
		}
		right, err := e.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		rb, err := e.asBool(n.Pos, right)
		if err != nil {
			return nil, err
		}
		return &BoolValue{Value: rb}, nil

	case *ast.And:
		left, err := e.eval(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		lb, err := e.asBool(n.Pos, left)
		if err != nil {
			return nil, err
		}
		if !lb {
			// Resolved open question: this returns false (not the source's
			// apparent true) on a false left operand.
			return &BoolValue{Value: false}, nil
		}
		right, err := e.eval(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		rb, err := e.asBool(n.Pos, right)
		if err != nil {
			return nil, err
		}
		return &BoolValue{Value: rb}, nil

	case *ast.Comparison:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return e.arith.Compare(n.Pos, left, right, n.Op)

	case *ast.NegatedLogical:
		operand, err := e.eval(ctx, n.Operand)
		if err != nil {
			return nil, err
		}
		return e.arith.Negate(n.Pos, operand, true)

	case *ast.NegatedArithmetic:
		operand, err := e.eval(ctx, n.Operand)
		if err != nil {
			return nil, err
		}
		return e.arith.Negate(n.Pos, operand, false)

	case *ast.Add:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return e.arith.Calculate(n.Pos, left, right, opAdd)

	case *ast.Sub:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return e.arith.Calculate(n.Pos, left, right, opSub)

	case *ast.Mul:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return e.arith.Calculate(n.Pos, left, right, opMul)

	case *ast.Div:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if isZero(right) {
			return nil, e.sink.FatalError(errs.KindDivisionByZero, n.Pos, "division by zero")
		}
		return e.arith.Calculate(n.Pos, left, right, opDiv)

	case *ast.Power:
		left, right, err := e.evalPair(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return e.arith.Calculate(n.Pos, left, right, opPow)

	case *ast.Transfer:
		return e.evalTransfer(ctx, n)

	default:
		panic("interp: unhandled expression type")
	}
}

func isZero(v Value) bool {
	switch t := v.(type) {
	case *IntValue:
		return t.Value == 0
	case *FloatValue:
		return t.Value == 0
	case *CurrencyValue:
		return t.Amount == 0
	}
	return false
}

func (e *Evaluator) evalPair(ctx *CallContext, left, right ast.Expression) (Value, Value, error) {
	l, err := e.eval(ctx, left)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.eval(ctx, right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (e *Evaluator) evalConstant(c *ast.Constant) (Value, error) {
	switch c.Kind {
	case ast.ConstInt:
		return &IntValue{Value: c.Value.(int64)}, nil
	case ast.ConstFloat:
		return &FloatValue{Value: c.Value.(float64)}, nil
	case ast.ConstStr:
		return &BytesValue{Value: c.Value.([]byte)}, nil
	case ast.ConstBool:
		return &BoolValue{Value: c.Value.(bool)}, nil
	case ast.ConstCurrency:
		lit := c.Value.(ast.CurrencyLiteral)
		return &CurrencyValue{Amount: lit.Amount, Code: lit.Code}, nil
	}
	panic("interp: unhandled constant kind")
}

// evalTransfer handles "left -> right". The right operand is either an
// expression evaluating to a Currency, or a bare currency-code identifier
// naming the target directly (the code is never looked up as a variable:
// the lexer only ever tags a currency code as CURR when it trails a
// numeric literal, so a standalone "EUR" lexes as a plain identifier — see
// DESIGN.md for this resolution).
func (e *Evaluator) evalTransfer(ctx *CallContext, n *ast.Transfer) (Value, error) {
	left, err := e.eval(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	if ident, ok := n.Right.(*ast.Identifier); ok {
		if token.CurrencyCodes[ident.Name] {
			return e.arith.Transfer(n.Pos, left, ident.Name)
		}
	}
	right, err := e.eval(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	rc, ok := right.(*CurrencyValue)
	if !ok {
		return nil, e.sink.FatalError(errs.KindWrongType, n.Pos, "transfer target must be a currency or currency code, got %s", right.Type())
	}
	return e.arith.Transfer(n.Pos, left, rc.Code)
}

// evalVariableAccess resolves a chain of atoms. A chain longer than one
// element would require member/method access on runtime values, which no
// value type in this language exposes (the resolved open question: the
// legal member set is empty), so any chain past the first atom is a
// runtime error.
func (e *Evaluator) evalVariableAccess(ctx *CallContext, va *ast.VariableAccess) (Value, error) {
	first, err := e.evalAtom(ctx, va.Chain[0])
	if err != nil {
		return nil, err
	}
	if len(va.Chain) == 1 {
		return first, nil
	}
	return nil, e.sink.FatalError(errs.KindWrongType, va.Pos, "member access is not supported on %s", first.Type())
}

func (e *Evaluator) evalAtom(ctx *CallContext, atom ast.Atom) (Value, error) {
	switch a := atom.(type) {
	case *ast.Identifier:
		ref, ok := ctx.Lookup(a.Name)
		if !ok {
			return nil, e.sink.FatalError(errs.KindUndefinedVariable, a.Pos, "undefined variable %q", a.Name)
		}
		return ref.Value, nil
	case *ast.FunctionCall:
		return e.evalFunctionCall(ctx, a)
	}
	panic("interp: unhandled atom type")
}

func (e *Evaluator) evalFunctionCall(ctx *CallContext, call *ast.FunctionCall) (Value, error) {
	args := make([]Value, len(call.Args))
	for i, argExpr := range call.Args {
		v, err := e.eval(ctx, argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if fn, ok := e.program.Functions[call.Name]; ok {
		return e.callUser(fn, args, call.Pos)
	}
	if builtin, ok := e.builtins[call.Name]; ok {
		return builtin(args), nil
	}
	return nil, e.sink.FatalError(errs.KindFunctionNotFound, call.Pos, "function %q is not defined", call.Name)
}
