package parse

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/ast"
	"github.com/sinato/rcc2/compiler/lex"
)

type (
	parser struct {
		toks *lex.Tokens

		end int // end of the last consumed token
	}

	UnexpectedError struct {
		Construct string
		Got       lex.Token
		Want      []lex.Kind
	}

	DimensionError struct {
		Name string
		Pos  int
	}

	AssignTargetError struct {
		Pos int
	}

	NumberError struct {
		Text string
		Pos  int
	}

	ParamError struct {
		Func  string
		Param string
		Pos   int
	}

	PartialReadError struct {
		Got lex.Token
	}
)

// ParseText lexes and parses a translation unit.
func ParseText(ctx context.Context, text []byte) (*ast.Program, error) {
	toks, err := lex.Lex(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "lex")
	}

	return Parse(ctx, toks)
}

// Parse consumes toks and builds the program tree.
// The first error aborts parsing.
func Parse(ctx context.Context, toks *lex.Tokens) (prog *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "tokens", toks.Len())
	defer tr.Finish("err", &err)

	p := &parser{toks: toks}
	prog = &ast.Program{}

	for {
		tk, ok := p.toks.Peek(0)
		if !ok && len(prog.Funcs) != 0 {
			break
		}

		if tk.Kind != lex.Type {
			if len(prog.Funcs) == 0 {
				return nil, NewUnexpected("program", tk, lex.Type)
			}

			return nil, PartialReadError{Got: tk}
		}

		f, err := p.parseFunc(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "func at pos %d", tk.Pos)
		}

		prog.Funcs = append(prog.Funcs, f)
	}

	if tr.If("dump_ast") {
		for _, f := range prog.Funcs {
			tr.Printw("func", "name", f.Name, "params", len(f.Params), "body", f.Body)
		}
	}

	return prog, nil
}

func (p *parser) next(ctx context.Context) (tk lex.Token, ok bool) {
	tk, ok = p.toks.Pop()
	if ok {
		p.end = tk.Pos + len(tk.Text)
	}

	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		tr.Printw("next token", "tk", tk, "ok", ok, "from", loc.Callers(1, 3))
	}

	return tk, ok
}

func (p *parser) peek(n int) lex.Token {
	tk, _ := p.toks.Peek(n)

	return tk
}

func (p *parser) expect(ctx context.Context, construct string, k lex.Kind) (lex.Token, error) {
	tk := p.peek(0)
	if tk.Kind != k {
		return tk, NewUnexpected(construct, tk, k)
	}

	p.next(ctx)

	return tk, nil
}

func NewUnexpected(construct string, got lex.Token, want ...lex.Kind) error {
	return UnexpectedError{
		Construct: construct,
		Got:       got,
		Want:      want,
	}
}

func (e UnexpectedError) Error() string {
	l := make([]string, len(e.Want))

	for i, k := range e.Want {
		l[i] = k.String()
	}

	return fmt.Sprintf("%s: unexpected %v at pos %d, want %s", e.Construct, e.Got, e.Got.Pos, strings.Join(l, " or "))
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("array %q: dimension at pos %d is not an integer literal", e.Name, e.Pos)
}

func (e AssignTargetError) Error() string {
	return fmt.Sprintf("left hand side of '=' at pos %d is not assignable", e.Pos)
}

func (e NumberError) Error() string {
	return fmt.Sprintf("bad integer literal %q at pos %d", e.Text, e.Pos)
}

func (e ParamError) Error() string {
	return fmt.Sprintf("function %q: parameter %q at pos %d must be a plain int", e.Func, e.Param, e.Pos)
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("unexpected %v at pos %d outside of a function", e.Got, e.Got.Pos)
}
