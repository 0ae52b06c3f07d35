package format

import (
	"fmt"
	"strconv"

	"github.com/sinato/rcc2/compiler/ast"
)

// Sexpr appends a compact s-expression of x.
//
//	int main(){ int a[2]; a[1] = 1 + 2 * 3; return a[1]; }
//
// becomes
//
//	(program (func main () (array a 2) (= (index a 1) (+ 1 (* 2 3))) (return (index a 1))))
func Sexpr(b []byte, x any) []byte {
	switch x := x.(type) {
	case *ast.Program:
		b = append(b, "(program"...)

		for _, f := range x.Funcs {
			b = append(b, ' ')
			b = Sexpr(b, f)
		}

		b = append(b, ')')
	case *ast.Func:
		b = append(b, "(func "...)
		b = append(b, x.Name...)
		b = append(b, " ("...)

		for i, p := range x.Params {
			if i != 0 {
				b = append(b, ' ')
			}

			b = append(b, p.Name...)
		}

		b = append(b, ')')

		for _, s := range x.Body {
			b = append(b, ' ')
			b = Sexpr(b, s)
		}

		b = append(b, ')')
	case *ast.Declare:
		b = Sexpr(b, x.Decl)
	case *ast.ExprStmt:
		b = Sexpr(b, x.X)
	case *ast.Return:
		b = list(b, "return", x.X)
	case *ast.Variable:
		if x.Init == nil {
			b = fmt.Appendf(b, "(int %s)", x.Name)
			break
		}

		b = fmt.Appendf(b, "(int %s ", x.Name)
		b = Sexpr(b, x.Init)
		b = append(b, ')')
	case *ast.Array:
		b = append(b, "(array "...)
		b = append(b, x.Name...)

		for _, n := range x.Dims {
			b = append(b, ' ')
			b = strconv.AppendUint(b, n, 10)
		}

		b = append(b, ')')
	case *ast.Pointer:
		b = fmt.Appendf(b, "(ptr %s)", x.Name)
	case *ast.Number:
		b = strconv.AppendUint(b, x.Value, 10)
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.Prefix:
		op := "deref"
		if x.Op == "&" {
			op = "addr"
		}

		b = fmt.Appendf(b, "(%s %s)", op, x.X.Name)
	case *ast.Index:
		b = list(b, "index "+x.Name, x.Indexes...)
	case *ast.Call:
		b = list(b, "call "+x.Name, x.Args...)
	case *ast.Binary:
		b = list(b, x.Op, x.L, x.R)
	default:
		b = fmt.Appendf(b, "(unknown %T)", x)
	}

	return b
}

func list(b []byte, head string, xs ...ast.Expr) []byte {
	b = append(b, '(')
	b = append(b, head...)

	for _, x := range xs {
		b = append(b, ' ')
		b = Sexpr(b, x)
	}

	return append(b, ')')
}
