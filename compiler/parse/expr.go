package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/sinato/rcc2/compiler/ast"
	"github.com/sinato/rcc2/compiler/lex"
)

func (p *parser) parseExpr(ctx context.Context) (ast.Expr, error) {
	lhs, err := p.parseUnary(ctx)
	if err != nil {
		return nil, err
	}

	return p.climb(ctx, lhs, 0)
}

// climb folds binary operators into lhs by precedence climbing.
// Operators below min are left for the caller.
func (p *parser) climb(ctx context.Context, lhs ast.Expr, min uint) (_ ast.Expr, err error) {
	for {
		op := p.peek(0)
		if op.Kind != lex.Op || op.Prop.Precedence < min {
			return lhs, nil
		}

		p.next(ctx)

		rhs, err := p.parseUnary(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%q rhs", op.Text)
		}

		for {
			la := p.peek(0)
			if la.Kind != lex.Op || !bindsTighter(la.Prop, op.Prop) {
				break
			}

			rhs, err = p.climb(ctx, rhs, la.Prop.Precedence)
			if err != nil {
				return nil, err
			}
		}

		lhs, err = newBinary(op, lhs, rhs)
		if err != nil {
			return nil, err
		}
	}
}

// bindsTighter reports whether the lookahead operator takes the right operand of cur.
func bindsTighter(la, cur lex.Property) bool {
	if cur.Assoc == lex.Right {
		return la.Precedence >= cur.Precedence
	}

	return la.Precedence > cur.Precedence
}

func newBinary(op lex.Token, l, r ast.Expr) (*ast.Binary, error) {
	if op.Text == "=" && !ast.Addressable(l) {
		return nil, AssignTargetError{Pos: l.Span().Pos}
	}

	return &ast.Binary{
		Base: ast.Base{Pos: l.Span().Pos, End: r.Span().End},
		Op:   op.Text,
		Prop: op.Prop,
		L:    l,
		R:    r,
	}, nil
}

func (p *parser) parseUnary(ctx context.Context) (ast.Expr, error) {
	tk := p.peek(0)

	if tk.Is(lex.Op, "*") || tk.Is(lex.Op, "&") {
		p.next(ctx)

		id, err := p.expect(ctx, "prefix "+tk.Text, lex.Ident)
		if err != nil {
			return nil, err
		}

		return &ast.Prefix{
			Base: ast.Base{Pos: tk.Pos, End: p.end},
			Op:   tk.Text,
			X:    &ast.Ident{Base: ast.Base{Pos: id.Pos, End: p.end}, Name: id.Text},
		}, nil
	}

	switch tk.Kind {
	case lex.Num:
		p.next(ctx)

		v, err := strconv.ParseUint(tk.Text, 10, 64)
		if err != nil {
			return nil, NumberError{Text: tk.Text, Pos: tk.Pos}
		}

		return &ast.Number{Base: ast.Base{Pos: tk.Pos, End: p.end}, Value: v}, nil
	case lex.Ident:
		switch p.peek(1).Kind {
		case lex.BracketOpen:
			return p.parseIndex(ctx)
		case lex.ParenOpen:
			return p.parseCall(ctx)
		}

		p.next(ctx)

		return &ast.Ident{Base: ast.Base{Pos: tk.Pos, End: p.end}, Name: tk.Text}, nil
	default:
		return nil, NewUnexpected("expression", tk, lex.Num, lex.Ident)
	}
}

func (p *parser) parseIndex(ctx context.Context) (_ ast.Expr, err error) {
	const construct = "array index"

	tk, _ := p.next(ctx)

	x := &ast.Index{
		Base: ast.Base{Pos: tk.Pos},
		Name: tk.Text,
	}

	for p.peek(0).Kind == lex.BracketOpen {
		p.next(ctx)

		i, err := p.parseExpr(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%v: index %d", x.Name, len(x.Indexes))
		}

		x.Indexes = append(x.Indexes, i)

		_, err = p.expect(ctx, construct, lex.BracketClose)
		if err != nil {
			return nil, err
		}
	}

	x.End = p.end

	return x, nil
}

func (p *parser) parseCall(ctx context.Context) (_ ast.Expr, err error) {
	const construct = "function call"

	tk, _ := p.next(ctx)
	p.next(ctx) // '('

	x := &ast.Call{
		Base: ast.Base{Pos: tk.Pos},
		Name: tk.Text,
	}

	if p.peek(0).Kind != lex.ParenClose {
		for {
			a, err := p.parseExpr(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "%v: arg %d", x.Name, len(x.Args))
			}

			x.Args = append(x.Args, a)

			if p.peek(0).Kind != lex.Comma {
				break
			}

			p.next(ctx)
		}
	}

	_, err = p.expect(ctx, construct, lex.ParenClose)
	if err != nil {
		return nil, err
	}

	x.End = p.end

	return x, nil
}
