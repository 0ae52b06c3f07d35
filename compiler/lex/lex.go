package lex

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Lex splits text into tokens using maximal munch.
// Characters outside of the language are skipped silently.
func Lex(ctx context.Context, text []byte) (_ *Tokens, err error) {
	tr := tlog.SpanFromContext(ctx)

	var toks []Token

	for i := 0; i < len(text); {
		i = skipSpaces(text, i)
		if i == len(text) {
			break
		}

		st := i
		c := text[i]

		var k Kind

		switch c {
		case '(':
			k = ParenOpen
		case ')':
			k = ParenClose
		case '{':
			k = BraceOpen
		case '}':
			k = BraceClose
		case '[':
			k = BracketOpen
		case ']':
			k = BracketClose
		case ';':
			k = Semi
		case ',':
			k = Comma
		case '+', '-', '*', '/', '=', '&':
			k = Op
		}

		switch {
		case k != EOF:
			i++
		case isLetter(c):
			i = skipIdent(text, i)

			switch string(text[st:i]) {
			case "int":
				k = Type
			case "return":
				k = Return
			default:
				k = Ident
			}
		case isDigit(c):
			i = skipNum(text, i)
			k = Num
		default:
			if tr.If("lex_skip") {
				tr.Printw("skip char", "pos", i, "char", string(c))
			}

			i++

			continue
		}

		tk := Token{
			Kind: k,
			Text: string(text[st:i]),
			Pos:  st,
		}

		if k == Op {
			tk.Prop, err = PropertyOf(tk.Text)
			if err != nil {
				return nil, errors.Wrap(err, "at pos %d", st)
			}
		}

		toks = append(toks, tk)
	}

	return NewTokens(toks, len(text)), nil
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}

		break
	}

	return i
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}

	return i
}

// skipNum accepts digits with optional .digits groups.
// Fractions are lexed as a single token and rejected by the parser.
func skipNum(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}

	for i+1 < len(b) && b[i] == '.' && isDigit(b[i+1]) {
		i++

		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}

	return i
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
