package ir

import (
	"tlog.app/go/errors"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

type (
	// Builder assembles a Package through the back.Backend interface.
	Builder struct {
		pkg *Package

		cur   *Func
		curID Expr

		// shape of the value each address points to
		shapes map[Expr]tp.Type
	}
)

var _ back.Backend = (*Builder)(nil)

func NewBuilder(path string) *Builder {
	return &Builder{
		pkg:    &Package{Path: path},
		shapes: map[Expr]tp.Type{},
	}
}

func (b *Builder) Package() *Package { return b.pkg }

func (b *Builder) BeginFunction(name string, params int) (back.Func, error) {
	if b.cur != nil {
		return nil, errors.New("function %q is not finished", b.cur.Name)
	}

	if _, _, ok := b.pkg.FuncByName(name); ok {
		return nil, errors.New("function %q is already defined", name)
	}

	b.cur = &Func{Name: name, Params: params}
	b.curID = b.alloc(b.cur)

	b.pkg.Funcs = append(b.pkg.Funcs, b.curID)

	return b.curID, nil
}

func (b *Builder) Param(i int) back.Value {
	return b.add(Param(i))
}

func (b *Builder) AllocSlot(shape tp.Type, name string) back.Addr {
	id := b.add(Alloca{Type: shape, Name: name})
	b.shapes[id] = shape

	return id
}

func (b *Builder) Load(a back.Addr) back.Value {
	return b.add(Load{Addr: a.(Expr)})
}

func (b *Builder) Store(a back.Addr, v back.Value) {
	b.add(Store{Addr: a.(Expr), Value: v.(Expr)})
}

func (b *Builder) ElemAddr(base back.Addr, idx back.Value) (back.Addr, error) {
	shape := b.shapes[base.(Expr)]

	arr, ok := shape.(tp.Array)
	if !ok {
		return nil, back.NotArrayError{Shape: shape}
	}

	id := b.add(ElemPtr{Base: base.(Expr), Index: idx.(Expr), Array: arr})
	b.shapes[id] = arr.X

	return id, nil
}

func (b *Builder) Const(v uint64) back.Value {
	return b.add(Imm(uint32(v)))
}

func (b *Builder) BinOp(op back.Op, l, r back.Value) (back.Value, error) {
	switch op {
	case back.Add, back.Sub, back.Mul, back.UDiv:
	default:
		return nil, errors.New("unsupported op: %v", op)
	}

	return b.add(BinOp{Op: op, L: l.(Expr), R: r.(Expr)}), nil
}

func (b *Builder) Call(f back.Func, args []back.Value) (back.Value, error) {
	fid := f.(Expr)

	fn, ok := b.pkg.Func(fid)
	if !ok {
		return nil, errors.New("call of non-function %d", fid)
	}

	if len(args) != fn.Params {
		return nil, back.ArityError{Func: fn.Name, Want: fn.Params, Got: len(args)}
	}

	x := Call{Func: fid, Args: make([]Expr, len(args))}

	for i, a := range args {
		x.Args[i] = a.(Expr)
	}

	return b.add(x), nil
}

func (b *Builder) Return(v back.Value) {
	b.add(Ret{Value: v.(Expr)})
}

func (b *Builder) EndFunction() error {
	f := b.cur
	if f == nil {
		return errors.New("no function to end")
	}

	b.cur = nil

	if len(f.Code) == 0 {
		return back.NoReturnError{Func: f.Name}
	}

	if _, ok := b.pkg.Exprs[f.Code[len(f.Code)-1]].(Ret); !ok {
		return back.NoReturnError{Func: f.Name}
	}

	return nil
}

func (b *Builder) Lookup(name string) (back.Func, bool) {
	id, _, ok := b.pkg.FuncByName(name)
	if !ok {
		return nil, false
	}

	return id, true
}

func (b *Builder) add(x any) Expr {
	id := b.alloc(x)
	b.cur.Code = append(b.cur.Code, id)

	return id
}

func (b *Builder) alloc(x any) Expr {
	id := Expr(len(b.pkg.Exprs))
	b.pkg.Exprs = append(b.pkg.Exprs, x)

	return id
}
