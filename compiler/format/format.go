package format

import (
	"context"
	"fmt"

	"tlog.app/go/errors"

	"github.com/sinato/rcc2/compiler/ast"
	"github.com/sinato/rcc2/compiler/lex"
)

// Format prints x back as source text.
// The language has no parentheses, so trees that would need them are rejected.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case *ast.Func:
		return formatFunc(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	for i, f := range x.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatFunc(ctx, b, f, d)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.Func, d int) (_ []byte, err error) {
	b = app(b, d, "int %v(", x.Name)

	for i, a := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "int %v", a.Name)
	}

	b = append(b, ") {\n"...)

	for i, s := range x.Body {
		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, x ast.Stmt, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Return:
		b = app(b, d, "return ")

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}
	case *ast.ExprStmt:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}
	case *ast.Declare:
		b = app(b, d, "")

		b, err = formatDecl(ctx, b, x.Decl)
		if err != nil {
			return nil, errors.Wrap(err, "declaration")
		}
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	b = append(b, ";\n"...)

	return b, nil
}

func formatDecl(ctx context.Context, b []byte, x ast.Decl) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Variable:
		b = app(b, 0, "int %v", x.Name)

		if x.Init != nil {
			b = append(b, " = "...)

			b, err = formatExpr(ctx, b, x.Init)
			if err != nil {
				return nil, errors.Wrap(err, "init")
			}
		}
	case *ast.Array:
		b = app(b, 0, "int %v", x.Name)

		for _, n := range x.Dims {
			b = app(b, 0, "[%d]", n)
		}
	case *ast.Pointer:
		b = app(b, 0, "int *%v", x.Name)
	default:
		return nil, errors.New("unsupported decl: %T", x)
	}

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Number:
		b = app(b, 0, "%d", x.Value)
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.Prefix:
		b = app(b, 0, "%s%s", x.Op, x.X.Name)
	case *ast.Index:
		b = append(b, x.Name...)

		for i, e := range x.Indexes {
			b = append(b, '[')

			b, err = formatExpr(ctx, b, e)
			if err != nil {
				return nil, errors.Wrap(err, "index %d", i)
			}

			b = append(b, ']')
		}
	case *ast.Call:
		b = app(b, 0, "%s(", x.Name)

		for i, e := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, e)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	case *ast.Binary:
		err = checkOperands(x)
		if err != nil {
			return nil, err
		}

		b, err = formatExpr(ctx, b, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %s ", x.Op)

		b, err = formatExpr(ctx, b, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

// checkOperands fails if printing x without parentheses would parse differently.
func checkOperands(x *ast.Binary) error {
	if l, ok := x.L.(*ast.Binary); ok {
		if l.Prop.Precedence < x.Prop.Precedence || l.Prop.Precedence == x.Prop.Precedence && x.Prop.Assoc == lex.Right {
			return errors.New("%q left operand %q needs parentheses", x.Op, l.Op)
		}
	}

	if r, ok := x.R.(*ast.Binary); ok {
		if r.Prop.Precedence < x.Prop.Precedence || r.Prop.Precedence == x.Prop.Precedence && x.Prop.Assoc == lex.Left {
			return errors.New("%q right operand %q needs parentheses", x.Op, r.Op)
		}
	}

	return nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = fmt.Appendf(b, f, args...)
	return b
}
