package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/ast"
	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

type (
	// Value is the result of generating an expression:
	// one of Int, Ptr, Null.
	Value interface {
		value()
	}

	Int struct {
		V back.Value
	}

	Ptr struct {
		A back.Addr
	}

	Null struct{}

	generator struct {
		b back.Backend

		arity map[string]int
	}

	funcGen struct {
		*generator

		f   *ast.Func
		env *Env
	}
)

// MaxArrayWords limits the storage of one array declaration.
const MaxArrayWords = 1 << 24

func (Int) value()  {}
func (Ptr) value()  {}
func (Null) value() {}

// Generate emits every function of p into b in source order.
func Generate(ctx context.Context, b back.Backend, p *ast.Program) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "generate", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	g := &generator{
		b:     b,
		arity: map[string]int{},
	}

	for _, f := range p.Funcs {
		err = g.genFunc(ctx, f)
		if err != nil {
			return errors.Wrap(err, "func %v", f.Name)
		}
	}

	return nil
}

func (g *generator) genFunc(ctx context.Context, f *ast.Func) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "generate function", "name", f.Name, "params", len(f.Params))
	defer tr.Finish("err", &err)

	if _, ok := g.b.Lookup(f.Name); ok {
		return RedefinitionError{Name: f.Name, Pos: f.Pos}
	}

	_, err = g.b.BeginFunction(f.Name, len(f.Params))
	if err != nil {
		return errors.Wrap(err, "begin")
	}

	g.arity[f.Name] = len(f.Params)

	s := &funcGen{
		generator: g,
		f:         f,
		env:       NewEnv(),
	}

	for i, p := range f.Params {
		a := g.b.AllocSlot(tp.I32, p.Name)
		g.b.Store(a, g.b.Param(i))

		s.define(p.Name, Location{Kind: Scalar, Addr: a, Shape: tp.I32})
	}

	returned := false

	for i, st := range f.Body {
		if returned {
			return UnreachableError{Func: f.Name, Pos: st.Span().Pos}
		}

		_, err = s.genStmt(ctx, st)
		if err != nil {
			return errors.Wrap(err, "stmt %d", i)
		}

		_, returned = st.(*ast.Return)
	}

	if tr.If("dump_env") {
		tr.Printw("env", "func", f.Name, "env", s.env)
	}

	err = g.b.EndFunction()
	if err != nil {
		return err
	}

	return nil
}

func (s *funcGen) genStmt(ctx context.Context, st ast.Stmt) (Value, error) {
	switch st := st.(type) {
	case *ast.Declare:
		return s.genDecl(ctx, st.Decl)
	case *ast.ExprStmt:
		return s.genExpr(ctx, st.X)
	case *ast.Return:
		v, err := s.genInt(ctx, st.X)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		s.b.Return(v)

		return Null{}, nil
	default:
		return nil, errors.New("unsupported statement: %T", st)
	}
}

func (s *funcGen) genDecl(ctx context.Context, d ast.Decl) (Value, error) {
	switch d := d.(type) {
	case *ast.Variable:
		a := s.b.AllocSlot(tp.I32, d.Name)
		s.define(d.Name, Location{Kind: Scalar, Addr: a, Shape: tp.I32})

		if d.Init == nil {
			return Null{}, nil
		}

		v, err := s.genInt(ctx, d.Init)
		if err != nil {
			return nil, errors.Wrap(err, "%v: initializer", d.Name)
		}

		s.b.Store(a, v)

		return Int{V: v}, nil
	case *ast.Array:
		if _, ok := s.env.Get(d.Name); ok {
			return nil, RedefinitionError{Name: d.Name, Pos: d.Pos}
		}

		dims := make([]int, len(d.Dims))
		words := uint64(1)

		for i, n := range d.Dims {
			if n != 0 && words > MaxArrayWords/n {
				return nil, ArraySizeError{Name: d.Name, Words: words * n, Pos: d.Pos}
			}

			words *= n
			dims[i] = int(n)
		}

		shape := tp.ArrayOf(tp.I32, dims...)
		a := s.b.AllocSlot(shape, d.Name)

		s.define(d.Name, Location{Kind: Array, Addr: a, Shape: shape})

		return Null{}, nil
	case *ast.Pointer:
		// pointers are stored as plain ints
		a := s.b.AllocSlot(tp.I32, d.Name)
		s.define(d.Name, Location{Kind: Pointer, Addr: a, Shape: tp.I32})

		return Null{}, nil
	default:
		return nil, errors.New("unsupported declaration: %T", d)
	}
}

func (s *funcGen) genExpr(ctx context.Context, x ast.Expr) (Value, error) {
	switch x := x.(type) {
	case *ast.Number:
		return Int{V: s.b.Const(x.Value)}, nil
	case *ast.Ident:
		l, err := s.lookup(x.Name, x.Pos)
		if err != nil {
			return nil, err
		}

		if l.Kind == Array {
			return nil, KindError{Name: x.Name, Kind: l.Kind, Use: "used as a value", Pos: x.Pos}
		}

		return Int{V: s.b.Load(l.Addr)}, nil
	case *ast.Prefix:
		// both * and & read the variable itself
		l, err := s.lookup(x.X.Name, x.X.Pos)
		if err != nil {
			return nil, err
		}

		if l.Kind == Array {
			return nil, KindError{Name: x.X.Name, Kind: l.Kind, Use: "operand of prefix " + x.Op, Pos: x.Pos}
		}

		return Int{V: s.b.Load(l.Addr)}, nil
	case *ast.Index:
		a, err := s.genIndexAddr(ctx, x)
		if err != nil {
			return nil, err
		}

		return Int{V: s.b.Load(a)}, nil
	case *ast.Call:
		return s.genCall(ctx, x)
	case *ast.Binary:
		if x.Op == "=" {
			return s.genAssign(ctx, x)
		}

		op, ok := back.OpOf(x.Op)
		if !ok {
			return nil, UnsupportedOpError{Op: x.Op, Pos: x.Pos}
		}

		l, err := s.genInt(ctx, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "%q lhs", x.Op)
		}

		r, err := s.genInt(ctx, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "%q rhs", x.Op)
		}

		v, err := s.b.BinOp(op, l, r)
		if err != nil {
			return nil, errors.Wrap(err, "%q", x.Op)
		}

		return Int{V: v}, nil
	default:
		return nil, errors.New("unsupported expression: %T", x)
	}
}

// genAssign stores rhs at the address of lhs. Assignment has no value.
func (s *funcGen) genAssign(ctx context.Context, x *ast.Binary) (Value, error) {
	dst, err := s.genAddr(ctx, x.L)
	if err != nil {
		return nil, errors.Wrap(err, "assignment lhs")
	}

	v, err := s.genInt(ctx, x.R)
	if err != nil {
		return nil, errors.Wrap(err, "assignment rhs")
	}

	s.b.Store(dst.A, v)

	return Null{}, nil
}

func (s *funcGen) genAddr(ctx context.Context, x ast.Expr) (Ptr, error) {
	switch x := x.(type) {
	case *ast.Ident:
		l, err := s.lookup(x.Name, x.Pos)
		if err != nil {
			return Ptr{}, err
		}

		if l.Kind == Array {
			return Ptr{}, KindError{Name: x.Name, Kind: l.Kind, Use: "assigned as a whole", Pos: x.Pos}
		}

		return Ptr{A: l.Addr}, nil
	case *ast.Index:
		a, err := s.genIndexAddr(ctx, x)
		if err != nil {
			return Ptr{}, err
		}

		return Ptr{A: a}, nil
	default:
		return Ptr{}, errors.New("expression at pos %d is not addressable", x.Span().Pos)
	}
}

// genIndexAddr walks the index chain outer to inner down to one int element.
func (s *funcGen) genIndexAddr(ctx context.Context, x *ast.Index) (back.Addr, error) {
	l, err := s.lookup(x.Name, x.Pos)
	if err != nil {
		return nil, err
	}

	if l.Kind != Array {
		return nil, KindError{Name: x.Name, Kind: l.Kind, Use: "indexed", Pos: x.Pos}
	}

	a, shape := l.Addr, l.Shape

	for i, ix := range x.Indexes {
		elem, ok := tp.Elem(shape)
		if !ok {
			return nil, KindError{Name: x.Name, Kind: l.Kind, Use: "indexed too deep", Pos: ix.Span().Pos}
		}

		v, err := s.genInt(ctx, ix)
		if err != nil {
			return nil, errors.Wrap(err, "%v: index %d", x.Name, i)
		}

		a, err = s.b.ElemAddr(a, v)
		if err != nil {
			return nil, errors.Wrap(err, "%v: index %d", x.Name, i)
		}

		shape = elem
	}

	if _, ok := shape.(tp.Int); !ok {
		return nil, KindError{Name: x.Name, Kind: l.Kind, Use: "indexed partially", Pos: x.Pos}
	}

	return a, nil
}

func (s *funcGen) genCall(ctx context.Context, x *ast.Call) (Value, error) {
	f, ok := s.b.Lookup(x.Name)
	if !ok {
		return nil, UndefinedFuncError{Name: x.Name, Pos: x.Pos}
	}

	if n := s.arity[x.Name]; n != len(x.Args) {
		return nil, ArityError{Func: x.Name, Want: n, Got: len(x.Args), Pos: x.Pos}
	}

	args := make([]back.Value, len(x.Args))

	for i, a := range x.Args {
		v, err := s.genInt(ctx, a)
		if err != nil {
			return nil, errors.Wrap(err, "%v: arg %d", x.Name, i)
		}

		args[i] = v
	}

	v, err := s.b.Call(f, args)
	if err != nil {
		return nil, errors.Wrap(err, "call %v", x.Name)
	}

	return Int{V: v}, nil
}

func (s *funcGen) genInt(ctx context.Context, x ast.Expr) (back.Value, error) {
	v, err := s.genExpr(ctx, x)
	if err != nil {
		return nil, err
	}

	return asInt(v, x.Span().Pos)
}

func asInt(v Value, pos int) (back.Value, error) {
	switch v := v.(type) {
	case Int:
		return v.V, nil
	case Ptr:
		return nil, ValueError{Got: "an address", Want: "an int", Pos: pos}
	default:
		return nil, ValueError{Got: "no value", Want: "an int", Pos: pos}
	}
}

func (s *funcGen) lookup(name string, pos int) (Location, error) {
	l, ok := s.env.Get(name)
	if !ok {
		return Location{}, UndeclaredError{Name: name, Pos: pos}
	}

	return l, nil
}

func (s *funcGen) define(name string, l Location) {
	s.env.Update(name, l)

	tlog.V("vars").Printw("define var", "func", s.f.Name, "name", name, "kind", l.Kind, "from", loc.Callers(1, 3))
}
