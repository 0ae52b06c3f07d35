package ast

import "github.com/sinato/rcc2/compiler/lex"

type (
	Node interface {
		Span() Base
	}

	Base struct {
		Pos int
		End int
	}

	Program struct {
		Funcs []*Func
	}

	Func struct {
		Base `tlog:",embed"`

		Name   string
		Params []*Variable
		Body   []Stmt
	}

	// Decl is one of *Variable, *Array, *Pointer.
	Decl interface {
		Node
		DeclName() string
		decl()
	}

	Variable struct {
		Base `tlog:",embed"`

		Name string
		Init Expr // right hand side of the initializer, may be nil
	}

	Array struct {
		Base `tlog:",embed"`

		Name string
		Dims []uint64 // outermost first
	}

	Pointer struct {
		Base `tlog:",embed"`

		Name string
	}

	// Stmt is one of *Declare, *ExprStmt, *Return.
	Stmt interface {
		Node
		stmt()
	}

	Declare struct {
		Base `tlog:",embed"`

		Decl Decl
	}

	ExprStmt struct {
		Base `tlog:",embed"`

		X Expr
	}

	Return struct {
		Base `tlog:",embed"`

		X Expr
	}

	// Expr is one of *Number, *Ident, *Prefix, *Index, *Call, *Binary.
	Expr interface {
		Node
		expr()
	}

	Number struct {
		Base `tlog:",embed"`

		Value uint64
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Prefix struct {
		Base `tlog:",embed"`

		Op string
		X  *Ident
	}

	Index struct {
		Base `tlog:",embed"`

		Name    string
		Indexes []Expr // outermost first
	}

	Call struct {
		Base `tlog:",embed"`

		Name string
		Args []Expr
	}

	Binary struct {
		Base `tlog:",embed"`

		Op   string
		Prop lex.Property

		L Expr
		R Expr
	}
)

func (b Base) Span() Base { return b }

func (*Variable) decl() {}
func (*Array) decl()    {}
func (*Pointer) decl()  {}

func (x *Variable) DeclName() string { return x.Name }
func (x *Array) DeclName() string    { return x.Name }
func (x *Pointer) DeclName() string  { return x.Name }

func (*Declare) stmt()  {}
func (*ExprStmt) stmt() {}
func (*Return) stmt()   {}

func (*Number) expr() {}
func (*Ident) expr()  {}
func (*Prefix) expr() {}
func (*Index) expr()  {}
func (*Call) expr()   {}
func (*Binary) expr() {}

// Addressable reports whether x can be assigned to.
func Addressable(x Expr) bool {
	switch x.(type) {
	case *Ident, *Index:
		return true
	default:
		return false
	}
}
