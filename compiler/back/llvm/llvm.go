package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

type (
	// Backend emits LLVM IR through llir.
	Backend struct {
		m *ir.Module

		f   *ir.Func
		blk *ir.Block

		names map[string]int
	}

	// slot is an address together with the shape stored there.
	slot struct {
		v     value.Value
		shape tp.Type
	}
)

var _ back.Backend = (*Backend)(nil)

func New(module string) *Backend {
	m := ir.NewModule()
	m.SourceFilename = module

	return &Backend{m: m}
}

func (b *Backend) Module() *ir.Module { return b.m }

// String returns the module as LLVM assembly.
func (b *Backend) String() string { return b.m.String() }

func (b *Backend) BeginFunction(name string, params int) (back.Func, error) {
	if b.f != nil {
		return nil, errors.New("function %q is not finished", b.f.Name())
	}

	if _, ok := b.Lookup(name); ok {
		return nil, errors.New("function %q is already defined", name)
	}

	ps := make([]*ir.Param, params)

	for i := range ps {
		ps[i] = ir.NewParam("", types.I32)
	}

	b.f = b.m.NewFunc(name, types.I32, ps...)
	b.blk = b.f.NewBlock("entry")
	b.names = map[string]int{"entry": 1} // block label shares the namespace

	return b.f, nil
}

func (b *Backend) Param(i int) back.Value {
	return b.f.Params[i]
}

func (b *Backend) AllocSlot(shape tp.Type, name string) back.Addr {
	a := b.blk.NewAlloca(llvmType(shape))
	a.SetName(b.uniqueName(name))

	return slot{v: a, shape: shape}
}

func (b *Backend) Load(a back.Addr) back.Value {
	s := a.(slot)

	return b.blk.NewLoad(llvmType(s.shape), s.v)
}

func (b *Backend) Store(a back.Addr, v back.Value) {
	b.blk.NewStore(v.(value.Value), a.(slot).v)
}

func (b *Backend) ElemAddr(base back.Addr, idx back.Value) (back.Addr, error) {
	s := base.(slot)

	arr, ok := s.shape.(tp.Array)
	if !ok {
		return nil, back.NotArrayError{Shape: s.shape}
	}

	zero := constant.NewInt(types.I32, 0)
	gep := b.blk.NewGetElementPtr(llvmType(arr), s.v, zero, idx.(value.Value))

	return slot{v: gep, shape: arr.X}, nil
}

func (b *Backend) Const(v uint64) back.Value {
	return constant.NewInt(types.I32, int64(int32(uint32(v))))
}

func (b *Backend) BinOp(op back.Op, l, r back.Value) (back.Value, error) {
	x, y := l.(value.Value), r.(value.Value)

	switch op {
	case back.Add:
		return b.blk.NewAdd(x, y), nil
	case back.Sub:
		return b.blk.NewSub(x, y), nil
	case back.Mul:
		return b.blk.NewMul(x, y), nil
	case back.UDiv:
		return b.blk.NewUDiv(x, y), nil
	default:
		return nil, errors.New("unsupported op: %v", op)
	}
}

func (b *Backend) Call(f back.Func, args []back.Value) (back.Value, error) {
	fn := f.(*ir.Func)

	if len(args) != len(fn.Params) {
		return nil, back.ArityError{Func: fn.Name(), Want: len(fn.Params), Got: len(args)}
	}

	vs := make([]value.Value, len(args))

	for i, a := range args {
		vs[i] = a.(value.Value)
	}

	return b.blk.NewCall(fn, vs...), nil
}

func (b *Backend) Return(v back.Value) {
	b.blk.NewRet(v.(value.Value))
}

func (b *Backend) EndFunction() error {
	if b.f == nil {
		return errors.New("no function to end")
	}

	name := b.f.Name()
	term := b.blk.Term

	b.f, b.blk = nil, nil

	if term == nil {
		return back.NoReturnError{Func: name}
	}

	return nil
}

func (b *Backend) Lookup(name string) (back.Func, bool) {
	for _, f := range b.m.Funcs {
		if f.Name() == name {
			return f, true
		}
	}

	return nil, false
}

// uniqueName keeps local names distinct when a variable is declared again.
func (b *Backend) uniqueName(name string) string {
	n := b.names[name]
	b.names[name] = n + 1

	if n == 0 {
		return name
	}

	return fmt.Sprintf("%s.%d", name, n)
}

func llvmType(t tp.Type) types.Type {
	switch t := t.(type) {
	case tp.Int:
		return types.NewInt(uint64(t.Bits))
	case tp.Array:
		return types.NewArray(uint64(t.Len), llvmType(t.X))
	case tp.Ptr:
		return types.NewPointer(llvmType(t.X))
	default:
		panic(fmt.Sprintf("unsupported shape %T", t))
	}
}
