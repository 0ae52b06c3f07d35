package ir

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

type (
	// Expr is an index into Package.Exprs.
	Expr int

	Package struct {
		Path string

		Funcs []Expr

		Exprs []any
	}

	Func struct {
		Name   string
		Params int

		Code []Expr
	}

	Imm uint32

	Param int

	// Alloca reserves a stack slot of Type for the rest of the call.
	Alloca struct {
		Type tp.Type
		Name string
	}

	Load struct {
		Addr Expr
	}

	Store struct {
		Addr  Expr
		Value Expr
	}

	// ElemPtr is the address of element Index of the array Base points to.
	ElemPtr struct {
		Base  Expr
		Index Expr
		Array tp.Array
	}

	BinOp struct {
		Op   back.Op
		L, R Expr
	}

	Call struct {
		Func Expr
		Args []Expr
	}

	Ret struct {
		Value Expr
	}
)

const Nil Expr = -1

// Func returns the function defined at id.
func (p *Package) Func(id Expr) (*Func, bool) {
	if id < 0 || int(id) >= len(p.Exprs) {
		return nil, false
	}

	f, ok := p.Exprs[id].(*Func)

	return f, ok
}

// FuncByName finds the function named name.
func (p *Package) FuncByName(name string) (Expr, *Func, bool) {
	for _, id := range p.Funcs {
		f, _ := p.Func(id)
		if f.Name == name {
			return id, f, true
		}
	}

	return Nil, nil, false
}

func (x BinOp) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyString(b, "op", x.Op.String())
	b = e.AppendKeyInt64(b, "l", int64(x.L))
	b = e.AppendKeyInt64(b, "r", int64(x.R))

	return b
}

func (x ElemPtr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyInt64(b, "base", int64(x.Base))
	b = e.AppendKeyInt64(b, "index", int64(x.Index))
	b = e.AppendKeyString(b, "array", x.Array.String())

	return b
}
