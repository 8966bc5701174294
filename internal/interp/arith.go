package interp

import (
	"math"

	"github.com/curria-lang/curria/internal/ast"
	"github.com/curria-lang/curria/internal/config"
	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/token"
)

// arith implements the comparison, calculation, transfer, and negation
// rules delegated to by the evaluator, ported from
// original_source/src/interpreter/calculations.py's try-in-order dispatch.
type arith struct {
	sink  *errs.Sink
	rates config.Rates
}

func newArith(sink *errs.Sink, rates config.Rates) *arith {
	return &arith{sink: sink, rates: rates}
}

func (a *arith) checkSize(pos token.Position, value float64) error {
	if value > math.MaxInt64 || value < -math.MaxInt64 {
		return a.sink.FatalError(errs.KindValueSizeExceed, pos, "numeric result %g exceeds the representable value size", value)
	}
	return nil
}

func (a *arith) wrongType(pos token.Position, left, right Value) error {
	return a.sink.FatalError(errs.KindWrongType, pos, "wrong types for operation: %s and %s", left.Type(), right.Type())
}

func asNumber(v Value) (value float64, isInt bool, ok bool) {
	switch t := v.(type) {
	case *IntValue:
		return float64(t.Value), true, true
	case *FloatValue:
		return t.Value, false, true
	}
	return 0, false, false
}

func numericResult(value float64, bothInt bool) Value {
	if bothInt {
		return &IntValue{Value: int64(value)}
	}
	return &FloatValue{Value: value}
}

// opKind identifies which scalar operation calculate/compare is performing.
type opKind int

const (
	opAdd opKind = iota
	opSub
	opMul
	opDiv
	opPow
)

func applyOp(op opKind, a, b float64) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		return a / b
	case opPow:
		return math.Pow(a, b)
	}
	panic("interp: unknown opKind")
}

// Calculate implements calculate_result: left op right, trying currency
// rules, then plain numerics, then (Add only) byte concatenation.
func (a *arith) Calculate(pos token.Position, left, right Value, op opKind) (Value, error) {
	lc, lCur := left.(*CurrencyValue)
	rc, rCur := right.(*CurrencyValue)
	switch {
	case lCur && rCur:
		return a.currencyCurrency(pos, lc, rc, op)
	case lCur && !rCur:
		num, ok := numericOperand(right)
		if !ok {
			return nil, a.wrongType(pos, left, right)
		}
		value := applyOp(op, lc.Amount, num)
		if err := a.checkSize(pos, value); err != nil {
			return nil, err
		}
		return &CurrencyValue{Amount: value, Code: lc.Code}, nil
	case rCur && !lCur:
		num, ok := numericOperand(left)
		if !ok {
			return nil, a.wrongType(pos, left, right)
		}
		value := applyOp(op, num, rc.Amount)
		if err := a.checkSize(pos, value); err != nil {
			return nil, err
		}
		return &CurrencyValue{Amount: value, Code: rc.Code}, nil
	}

	lv, lInt, lOK := asNumber(left)
	rv, rInt, rOK := asNumber(right)
	if lOK && rOK {
		result := applyOp(op, lv, rv)
		if err := a.checkSize(pos, result); err != nil {
			return nil, err
		}
		return numericResult(result, lInt && rInt), nil
	}

	if op == opAdd {
		lb, lOK := left.(*BytesValue)
		rb, rOK := right.(*BytesValue)
		if lOK && rOK {
			buf := make([]byte, 0, len(lb.Value)+len(rb.Value))
			buf = append(buf, lb.Value...)
			buf = append(buf, rb.Value...)
			return &BytesValue{Value: buf}, nil
		}
	}

	return nil, a.wrongType(pos, left, right)
}

func numericOperand(v Value) (float64, bool) {
	n, _, ok := asNumber(v)
	return n, ok
}

func (a *arith) currencyCurrency(pos token.Position, left, right *CurrencyValue, op opKind) (Value, error) {
	rightAmount := right.Amount
	if right.Code != left.Code {
		rightAmount = right.Amount * a.rates.Lookup(right.Code, left.Code)
	}
	value := applyOp(op, left.Amount, rightAmount)
	if err := a.checkSize(pos, value); err != nil {
		return nil, err
	}
	return &CurrencyValue{Amount: value, Code: left.Code}, nil
}

// Transfer implements the "->" operator: convert left into the target
// currency code. The caller supplies targetCode either from an evaluated
// Currency value (when the right operand was a general expression) or from
// a bare currency-code identifier.
func (a *arith) Transfer(pos token.Position, left Value, targetCode string) (Value, error) {
	lc, ok := left.(*CurrencyValue)
	if !ok {
		return nil, a.wrongType(pos, left, &CurrencyValue{Code: targetCode})
	}
	rate := a.rates.Lookup(lc.Code, targetCode)
	value := lc.Amount * rate
	if err := a.checkSize(pos, value); err != nil {
		return nil, err
	}
	return &CurrencyValue{Amount: value, Code: targetCode}, nil
}

// Compare implements compare_values: currency, then numeric, then bool
// (value equality per the resolved open question), then bytes.
func (a *arith) Compare(pos token.Position, left, right Value, op ast.CompareOp) (Value, error) {
	lc, lCur := left.(*CurrencyValue)
	rc, rCur := right.(*CurrencyValue)
	if lCur || rCur {
		if !lCur || !rCur {
			return nil, a.wrongType(pos, left, right)
		}
		leftAmount := lc.Amount
		if rc.Code != lc.Code {
			leftAmount = lc.Amount * a.rates.Lookup(lc.Code, rc.Code)
		}
		return &BoolValue{Value: compareNumbers(op, leftAmount, rc.Amount)}, nil
	}

	lv, _, lOK := asNumber(left)
	rv, _, rOK := asNumber(right)
	if lOK && rOK {
		return &BoolValue{Value: compareNumbers(op, lv, rv)}, nil
	}

	lb, lIsBool := left.(*BoolValue)
	rb, rIsBool := right.(*BoolValue)
	if lIsBool && rIsBool {
		return a.compareEqOnly(pos, op, lb.Value == rb.Value)
	}

	lByte, lIsBytes := left.(*BytesValue)
	rByte, rIsBytes := right.(*BytesValue)
	if lIsBytes && rIsBytes {
		return a.compareEqOnly(pos, op, string(lByte.Value) == string(rByte.Value))
	}

	return nil, a.wrongType(pos, left, right)
}

func (a *arith) compareEqOnly(pos token.Position, op ast.CompareOp, equal bool) (Value, error) {
	switch op {
	case ast.CmpEQ:
		return &BoolValue{Value: equal}, nil
	case ast.CmpNE:
		return &BoolValue{Value: !equal}, nil
	}
	return nil, a.sink.FatalError(errs.KindWrongType, pos, "ordering operators do not apply to this type")
}

func compareNumbers(op ast.CompareOp, a, b float64) bool {
	switch op {
	case ast.CmpEQ:
		return a == b
	case ast.CmpNE:
		return a != b
	case ast.CmpGT:
		return a > b
	case ast.CmpLT:
		return a < b
	case ast.CmpGE:
		return a >= b
	case ast.CmpLE:
		return a <= b
	}
	panic("interp: unknown CompareOp")
}

// Negate implements negate_value: arithmetic "-x" on numerics/currency, or
// logical "!x" on booleans.
func (a *arith) Negate(pos token.Position, operand Value, logical bool) (Value, error) {
	if logical {
		if b, ok := operand.(*BoolValue); ok {
			return &BoolValue{Value: !b.Value}, nil
		}
		return nil, a.wrongType(pos, operand, operand)
	}
	switch v := operand.(type) {
	case *IntValue:
		return &IntValue{Value: -v.Value}, nil
	case *FloatValue:
		return &FloatValue{Value: -v.Value}, nil
	case *CurrencyValue:
		return &CurrencyValue{Amount: -v.Amount, Code: v.Code}, nil
	}
	return nil, a.wrongType(pos, operand, operand)
}
