package emitter

// Order is a precedence tier. Lower binds tighter.
type Order int

// Tiers shared by both targets.
const (
	OrderAtomic Order = 0
	OrderCall   Order = 2
	OrderNone   Order = 99

	// orderTemplate sits just above atomic: any non-atomic expression
	// substituted into a custom code template is parenthesized.
	orderTemplate Order = 1
)

// C tiers.
const (
	OrderCPrefix         Order = 3
	OrderCMultiplicative Order = 5
	OrderCAdditive       Order = 6
	OrderCRelational     Order = 8
	OrderCEquality       Order = 9
	OrderCAnd            Order = 13
	OrderCOr             Order = 14
)

// Python tiers.
const (
	OrderPyExponent       Order = 3
	OrderPyUnary          Order = 4
	OrderPyMultiplicative Order = 5
	OrderPyAdditive       Order = 6
	OrderPyRelational     Order = 11
	OrderPyNot            Order = 12
	OrderPyAnd            Order = 13
	OrderPyOr             Order = 14
)

// Expr is generated value code with its precedence tier.
type Expr struct {
	Code  string
	Order Order
}

// In renders e for a slot of tier outer, adding parentheses when e binds
// no tighter than the slot.
func (e Expr) In(outer Order) string {
	if e.Order != OrderAtomic && e.Order >= outer {
		return "(" + e.Code + ")"
	}
	return e.Code
}

// orderByName maps the order names custom block types declare.
func orderByName(name string) Order {
	switch name {
	case "atomic":
		return OrderAtomic
	case "call":
		return OrderCall
	default:
		return OrderNone
	}
}
