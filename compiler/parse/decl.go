package parse

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/ast"
	"github.com/sinato/rcc2/compiler/lex"
)

func (p *parser) parseFunc(ctx context.Context) (f *ast.Func, err error) {
	const construct = "function"

	tk, err := p.expect(ctx, construct, lex.Type)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(ctx, construct, lex.Ident)
	if err != nil {
		return nil, err
	}

	f = &ast.Func{
		Base: ast.Base{Pos: tk.Pos},
		Name: name.Text,
	}

	_, err = p.expect(ctx, construct, lex.ParenOpen)
	if err != nil {
		return nil, err
	}

	for p.peek(0).Kind == lex.Type {
		d, err := p.parseDecl(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "param %d", len(f.Params))
		}

		v, ok := d.(*ast.Variable)
		if !ok || v.Init != nil {
			return nil, ParamError{Func: f.Name, Param: d.DeclName(), Pos: d.Span().Pos}
		}

		f.Params = append(f.Params, v)

		if p.peek(0).Kind != lex.Comma {
			break
		}

		p.next(ctx)

		if tk := p.peek(0); tk.Kind != lex.Type {
			return nil, NewUnexpected("parameter list", tk, lex.Type)
		}
	}

	_, err = p.expect(ctx, construct, lex.ParenClose)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(ctx, construct, lex.BraceOpen)
	if err != nil {
		return nil, err
	}

	for {
		tk := p.peek(0)
		if tk.Kind == lex.BraceClose || tk.Kind == lex.EOF {
			break
		}

		s, err := p.parseStmt(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%v: stmt %d", f.Name, len(f.Body))
		}

		f.Body = append(f.Body, s)
	}

	_, err = p.expect(ctx, construct, lex.BraceClose)
	if err != nil {
		return nil, errors.Wrap(err, "%v", f.Name)
	}

	f.End = p.end

	tlog.SpanFromContext(ctx).Printw("func parsed", "name", f.Name, "params", len(f.Params), "stmts", len(f.Body))

	return f, nil
}

func (p *parser) parseStmt(ctx context.Context) (s ast.Stmt, err error) {
	tk := p.peek(0)

	switch tk.Kind {
	case lex.Return:
		p.next(ctx)

		x, err := p.parseExpr(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		s = &ast.Return{Base: ast.Base{Pos: tk.Pos}, X: x}
	case lex.Type:
		d, err := p.parseDecl(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "declaration")
		}

		s = &ast.Declare{Base: ast.Base{Pos: tk.Pos}, Decl: d}
	default:
		x, err := p.parseExpr(ctx)
		if err != nil {
			return nil, err
		}

		s = &ast.ExprStmt{Base: ast.Base{Pos: tk.Pos}, X: x}
	}

	_, err = p.expect(ctx, "statement", lex.Semi)
	if err != nil {
		return nil, err
	}

	setEnd(s, p.end)

	return s, nil
}

func (p *parser) parseDecl(ctx context.Context) (ast.Decl, error) {
	if tk := p.peek(0); tk.Kind != lex.Type {
		return nil, NewUnexpected("declaration", tk, lex.Type)
	}

	if p.peek(1).Is(lex.Op, "*") {
		return p.parsePointer(ctx)
	}

	if p.peek(2).Kind == lex.BracketOpen {
		return p.parseArray(ctx)
	}

	return p.parseVariable(ctx)
}

func (p *parser) parseVariable(ctx context.Context) (_ ast.Decl, err error) {
	const construct = "variable declaration"

	tk, _ := p.next(ctx)

	name := p.peek(0)
	if name.Kind != lex.Ident {
		return nil, NewUnexpected(construct, name, lex.Ident)
	}

	v := &ast.Variable{
		Base: ast.Base{Pos: tk.Pos},
		Name: name.Text,
	}

	if !p.peek(1).Is(lex.Op, "=") {
		p.next(ctx)
		v.End = p.end

		return v, nil
	}

	// the initializer is parsed as the assignment it stands for
	x, err := p.parseExpr(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "%v: initializer", v.Name)
	}

	b, ok := x.(*ast.Binary)
	if !ok || b.Op != "=" {
		return nil, NewUnexpected(construct, p.peek(0), lex.Op)
	}

	v.Init = b.R
	v.End = p.end

	return v, nil
}

func (p *parser) parseArray(ctx context.Context) (_ ast.Decl, err error) {
	const construct = "array declaration"

	tk, _ := p.next(ctx)

	name, err := p.expect(ctx, construct, lex.Ident)
	if err != nil {
		return nil, err
	}

	a := &ast.Array{
		Base: ast.Base{Pos: tk.Pos},
		Name: name.Text,
	}

	for p.peek(0).Kind == lex.BracketOpen {
		p.next(ctx)

		x, err := p.parseExpr(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%v: dimension %d", a.Name, len(a.Dims))
		}

		n, ok := x.(*ast.Number)
		if !ok {
			return nil, DimensionError{Name: a.Name, Pos: x.Span().Pos}
		}

		a.Dims = append(a.Dims, n.Value)

		_, err = p.expect(ctx, construct, lex.BracketClose)
		if err != nil {
			return nil, err
		}
	}

	a.End = p.end

	return a, nil
}

func (p *parser) parsePointer(ctx context.Context) (_ ast.Decl, err error) {
	tk, _ := p.next(ctx)
	p.next(ctx) // '*'

	name, err := p.expect(ctx, "pointer declaration", lex.Ident)
	if err != nil {
		return nil, err
	}

	return &ast.Pointer{
		Base: ast.Base{Pos: tk.Pos, End: p.end},
		Name: name.Text,
	}, nil
}

func setEnd(s ast.Stmt, end int) {
	switch s := s.(type) {
	case *ast.Return:
		s.End = end
	case *ast.Declare:
		s.End = end
	case *ast.ExprStmt:
		s.End = end
	}
}
