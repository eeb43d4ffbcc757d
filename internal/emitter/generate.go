package emitter

import (
	"strconv"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/profile"
)

// language is the syntax of one target. Its implementations are arduino
// and python.
type language interface {
	// stmt terminates a simple statement.
	stmt(code string) string

	// conditional renders an if statement; elseBody is used when hasElse.
	conditional(c *compilation, cond string, body, elseBody []string, hasElse bool) []string
	repeat(c *compilation, counter string, b *Block, body []string) ([]string, error)
	while(c *compilation, cond string, body []string) []string
	assign(name, value string) string

	boolean(v bool) Expr
	level(on bool) string
	emptyValue(kind catalog.ValueKind) Expr

	// binary returns the operator and tier of an arithmetic, compare or
	// logic op.
	binary(op string) (string, Order, bool)
	power(b *Block) (Expr, error)
	negate(b *Block) (Expr, error)
	unaryOrder() Order

	// quote renders a string literal.
	quote(s string) string

	reserved() []string
	assemble(c *compilation, p program) string
}

func (c *compilation) builtinStatement(b *Block) ([]string, error) {
	l := c.e.lang
	switch b.Type.Kind {
	case catalog.BlockIf:
		cond, err := b.Value(catalog.InputCond, OrderNone)
		if err != nil {
			return nil, err
		}
		body, err := b.Statements(catalog.InputDo)
		if err != nil {
			return nil, err
		}
		elseBody, err := b.Statements(catalog.InputElse)
		if err != nil {
			return nil, err
		}
		return l.conditional(c, cond, body, elseBody, len(elseBody) > 0), nil

	case catalog.BlockRepeat:
		counter := c.loopVar()
		c.loopDepth++
		body, err := b.Statements(catalog.InputDo)
		c.loopDepth--
		if err != nil {
			return nil, err
		}
		return l.repeat(c, counter, b, body)

	case catalog.BlockWhile:
		cond, err := b.Value(catalog.InputCond, OrderNone)
		if err != nil {
			return nil, err
		}
		body, err := b.Statements(catalog.InputDo)
		if err != nil {
			return nil, err
		}
		return l.while(c, cond, body), nil

	case catalog.BlockWait:
		ms, err := b.Value(catalog.InputMS, OrderNone)
		if err != nil {
			return nil, err
		}
		return []string{l.stmt(b.Call(profile.PrimSleep, ms))}, nil

	case catalog.BlockSetOutput:
		on := b.FieldText(catalog.FieldLevel) == "ON"
		return []string{l.stmt(b.Call(profile.PrimDigitalWrite, b.FieldText(catalog.FieldPin), l.level(on)))}, nil

	case catalog.BlockAnalogWrite:
		v, err := b.Value(catalog.InputValue, OrderNone)
		if err != nil {
			return nil, err
		}
		return []string{l.stmt(b.Call(profile.PrimAnalogWrite, b.FieldText(catalog.FieldPin), v))}, nil

	case catalog.BlockSerialPrint, catalog.BlockDisplayText:
		v, err := b.Value(catalog.InputText, OrderNone)
		if err != nil {
			return nil, err
		}
		prim := profile.PrimSerialPrint
		if b.Type.Kind == catalog.BlockDisplayText {
			prim = profile.PrimShowText
		}
		return []string{l.stmt(b.Call(prim, v))}, nil

	case catalog.BlockMoveForward:
		return []string{l.stmt(b.Call(profile.PrimMotorForward, b.FieldText(catalog.FieldSpeed)))}, nil
	case catalog.BlockMoveBackward:
		return []string{l.stmt(b.Call(profile.PrimMotorBackward, b.FieldText(catalog.FieldSpeed)))}, nil
	case catalog.BlockTurnLeft:
		return []string{l.stmt(b.Call(profile.PrimTurnLeft, b.FieldText(catalog.FieldSpeed)))}, nil
	case catalog.BlockTurnRight:
		return []string{l.stmt(b.Call(profile.PrimTurnRight, b.FieldText(catalog.FieldSpeed)))}, nil
	case catalog.BlockStopMotors:
		return []string{l.stmt(b.Call(profile.PrimMotorStop))}, nil

	case catalog.BlockVariableSet:
		v, err := b.Value(catalog.InputValue, OrderNone)
		if err != nil {
			return nil, err
		}
		return []string{l.stmt(l.assign(b.Variable(b.FieldText(catalog.FieldVar)), v))}, nil

	case catalog.BlockOnStart, catalog.BlockOnButton, catalog.BlockOnCondition,
		catalog.BlockVariableGet, catalog.BlockDigitalRead, catalog.BlockAnalogRead,
		catalog.BlockButtonPressed, catalog.BlockNumber, catalog.BlockArithmetic,
		catalog.BlockCompare, catalog.BlockLogicOperation, catalog.BlockLogicNegate,
		catalog.BlockBoolean, catalog.BlockText:
		return nil, unknownBlock(b.ID(), b.Type.ID, "%s is not a statement block", b.Type.Kind)
	}
	return nil, unknownBlock(b.ID(), b.Type.ID, "no generator for kind %s", b.Type.Kind)
}

func (c *compilation) builtinValue(b *Block) (Expr, error) {
	l := c.e.lang
	switch b.Type.Kind {
	case catalog.BlockNumber:
		n, _ := b.Field(catalog.FieldNum).(ir.IRInt)
		if n < 0 {
			return Expr{Code: strconv.FormatInt(int64(n), 10), Order: l.unaryOrder()}, nil
		}
		return Expr{Code: strconv.FormatInt(int64(n), 10), Order: OrderAtomic}, nil

	case catalog.BlockBoolean:
		return l.boolean(b.FieldText(catalog.FieldBool) == "TRUE"), nil

	case catalog.BlockText:
		return Expr{Code: l.quote(b.FieldText(catalog.FieldString)), Order: OrderAtomic}, nil

	case catalog.BlockVariableGet:
		return Expr{Code: b.Variable(b.FieldText(catalog.FieldVar)), Order: OrderAtomic}, nil

	case catalog.BlockDigitalRead:
		return Expr{Code: b.Call(profile.PrimDigitalRead, b.FieldText(catalog.FieldPin)), Order: OrderCall}, nil
	case catalog.BlockAnalogRead:
		return Expr{Code: b.Call(profile.PrimAnalogRead, b.FieldText(catalog.FieldPin)), Order: OrderCall}, nil
	case catalog.BlockButtonPressed:
		return Expr{Code: b.Call(profile.PrimButtonPressed, c.button(b)), Order: OrderCall}, nil

	case catalog.BlockArithmetic, catalog.BlockCompare, catalog.BlockLogicOperation:
		op := b.FieldText(catalog.FieldOp)
		if op == "POWER" {
			return l.power(b)
		}
		symbol, order, ok := l.binary(op)
		if !ok {
			return Expr{}, unknownBlock(b.ID(), b.Type.ID, "unsupported operator %q", op)
		}
		left, err := b.Value(catalog.InputA, order)
		if err != nil {
			return Expr{}, err
		}
		right, err := b.Value(catalog.InputB, order)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Code: left + " " + symbol + " " + right, Order: order}, nil

	case catalog.BlockLogicNegate:
		return l.negate(b)

	case catalog.BlockOnStart, catalog.BlockOnButton, catalog.BlockOnCondition,
		catalog.BlockIf, catalog.BlockRepeat, catalog.BlockWhile, catalog.BlockWait,
		catalog.BlockSetOutput, catalog.BlockAnalogWrite, catalog.BlockSerialPrint,
		catalog.BlockDisplayText, catalog.BlockMoveForward, catalog.BlockMoveBackward,
		catalog.BlockTurnLeft, catalog.BlockTurnRight, catalog.BlockStopMotors,
		catalog.BlockVariableSet:
		return Expr{}, unknownBlock(b.ID(), b.Type.ID, "%s is not a value block", b.Type.Kind)
	}
	return Expr{}, unknownBlock(b.ID(), b.Type.ID, "no generator for kind %s", b.Type.Kind)
}
