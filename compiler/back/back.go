package back

import (
	"fmt"

	"github.com/sinato/rcc2/compiler/tp"
)

type (
	// Backend receives the operations of one program in emission order.
	// Handles it gives out are opaque to the caller.
	Backend interface {
		// BeginFunction starts a function returning int and taking params ints.
		// The function is visible to Lookup from this point.
		BeginFunction(name string, params int) (Func, error)
		Param(i int) Value

		AllocSlot(shape tp.Type, name string) Addr
		Load(a Addr) Value
		Store(a Addr, v Value)
		// ElemAddr steps one level into the array stored at base.
		ElemAddr(base Addr, idx Value) (Addr, error)

		Const(v uint64) Value
		BinOp(op Op, l, r Value) (Value, error)
		Call(f Func, args []Value) (Value, error)

		Return(v Value)
		// EndFunction fails if the function has no terminator.
		EndFunction() error

		Lookup(name string) (Func, bool)
	}

	Value any
	Addr  any
	Func  any

	Op int

	NoReturnError struct {
		Func string
	}

	NotArrayError struct {
		Shape tp.Type
	}

	ArityError struct {
		Func string
		Want int
		Got  int
	}
)

const (
	Add Op = iota
	Sub
	Mul
	UDiv
)

var opSyms = []string{
	Add:  "+",
	Sub:  "-",
	Mul:  "*",
	UDiv: "/",
}

// OpOf maps an arithmetic operator symbol to its Op.
func OpOf(sym string) (Op, bool) {
	for op, s := range opSyms {
		if s == sym {
			return Op(op), true
		}
	}

	return 0, false
}

func (op Op) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case UDiv:
		return "udiv"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

func (op Op) Symbol() string {
	if op < 0 || int(op) >= len(opSyms) {
		return "?"
	}

	return opSyms[op]
}

func (e NoReturnError) Error() string {
	return fmt.Sprintf("function %q: missing return statement", e.Func)
}

func (e NotArrayError) Error() string {
	return fmt.Sprintf("indexing into non-array %v", e.Shape)
}

func (e ArityError) Error() string {
	return fmt.Sprintf("function %q takes %d arguments, got %d", e.Func, e.Want, e.Got)
}
