package vm

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/set"
)

type (
	// VM interprets an ir.Package.
	// Memory is a stack of 32-bit words; an address is a word index.
	VM struct {
		// Strict makes reading a never written word an error.
		Strict bool

		MaxDepth int
	}

	machine struct {
		*VM

		pkg *ir.Package
		tr  tlog.Span

		mem   []uint32
		init  set.Bitmap
		depth int
	}

	DivisionByZeroError struct {
		Func string
	}

	BoundsError struct {
		Func  string
		Index uint32
		Len   int
	}

	UninitializedError struct {
		Func string
		Slot string
	}

	StackOverflowError struct {
		Func  string
		Depth int
	}
)

const DefaultMaxDepth = 1000

// Run calls entry of pkg with no arguments and returns its result.
func Run(ctx context.Context, pkg *ir.Package, entry string) (int32, error) {
	return New().Run(ctx, pkg, entry)
}

func New() *VM {
	return &VM{MaxDepth: DefaultMaxDepth}
}

func (v *VM) Run(ctx context.Context, pkg *ir.Package, entry string) (res int32, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm_run", "entry", entry, "strict", v.Strict)
	defer tr.Finish("res", &res, "err", &err)

	id, f, ok := pkg.FuncByName(entry)
	if !ok {
		return 0, errors.New("no entry function %q", entry)
	}

	if f.Params != 0 {
		return 0, errors.New("entry function %q takes %d arguments", entry, f.Params)
	}

	m := &machine{
		VM:   v,
		pkg:  pkg,
		tr:   tr,
		init: set.MakeBitmap(0),
	}

	r, err := m.call(ctx, id, nil)
	if err != nil {
		return 0, err
	}

	return int32(r), nil
}

func (m *machine) call(ctx context.Context, fid ir.Expr, args []uint32) (_ uint32, err error) {
	f, ok := m.pkg.Func(fid)
	if !ok {
		return 0, errors.New("call of non-function %d", fid)
	}

	if m.MaxDepth != 0 && m.depth >= m.MaxDepth {
		return 0, StackOverflowError{Func: f.Name, Depth: m.depth}
	}

	m.depth++
	sp := len(m.mem)

	defer func() {
		m.depth--
		m.mem = m.mem[:sp]
		m.init.ClearFrom(sp)
	}()

	vals := map[ir.Expr]uint32{}

	for _, id := range f.Code {
		x := m.pkg.Exprs[id]

		if m.tr.If("vm_trace") {
			m.tr.Printw("exec", "func", f.Name, "id", id, "type", tlog.FormatNext("%T"), x, "val", x, "depth", m.depth)
		}

		switch x := x.(type) {
		case ir.Imm:
			vals[id] = uint32(x)
		case ir.Param:
			if int(x) >= len(args) {
				return 0, errors.New("%v: param %d of %d", f.Name, int(x), len(args))
			}

			vals[id] = args[x]
		case ir.Alloca:
			vals[id] = uint32(len(m.mem))

			m.mem = append(m.mem, make([]uint32, words(x.Type.Size()))...)
		case ir.Load:
			a := vals[x.Addr]

			if m.Strict && !m.init.IsSet(int(a)) {
				return 0, UninitializedError{Func: f.Name, Slot: m.slotName(x.Addr)}
			}

			vals[id] = m.mem[a]
		case ir.Store:
			a := vals[x.Addr]

			m.mem[a] = vals[x.Value]
			m.init.Set(int(a))
		case ir.ElemPtr:
			idx := vals[x.Index]

			if uint64(idx) >= uint64(x.Array.Len) {
				return 0, BoundsError{Func: f.Name, Index: idx, Len: x.Array.Len}
			}

			vals[id] = vals[x.Base] + idx*uint32(words(x.Array.X.Size()))
		case ir.BinOp:
			l, r := vals[x.L], vals[x.R]

			switch x.Op {
			case back.Add:
				vals[id] = l + r
			case back.Sub:
				vals[id] = l - r
			case back.Mul:
				vals[id] = l * r
			case back.UDiv:
				if r == 0 {
					return 0, DivisionByZeroError{Func: f.Name}
				}

				vals[id] = l / r
			default:
				return 0, errors.New("%v: unsupported op %v", f.Name, x.Op)
			}
		case ir.Call:
			in := make([]uint32, len(x.Args))

			for i, a := range x.Args {
				in[i] = vals[a]
			}

			vals[id], err = m.call(ctx, x.Func, in)
			if err != nil {
				return 0, errors.Wrap(err, "%v", f.Name)
			}
		case ir.Ret:
			return vals[x.Value], nil
		default:
			return 0, errors.New("%v: unsupported expr %T", f.Name, x)
		}
	}

	return 0, back.NoReturnError{Func: f.Name}
}

// slotName names the variable behind addr for diagnostics.
func (m *machine) slotName(addr ir.Expr) string {
	for {
		switch x := m.pkg.Exprs[addr].(type) {
		case ir.Alloca:
			return x.Name
		case ir.ElemPtr:
			addr = x.Base
		default:
			return fmt.Sprintf("%%%d", addr)
		}
	}
}

func words(size int) int {
	return (size + 3) / 4
}

func (e DivisionByZeroError) Error() string {
	return fmt.Sprintf("%v: integer division by zero", e.Func)
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("%v: index %d out of range [0:%d]", e.Func, e.Index, e.Len)
}

func (e UninitializedError) Error() string {
	return fmt.Sprintf("%v: read of uninitialized %q", e.Func, e.Slot)
}

func (e StackOverflowError) Error() string {
	return fmt.Sprintf("%v: call depth %d exceeded", e.Func, e.Depth)
}
