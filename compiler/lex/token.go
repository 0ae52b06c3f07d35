package lex

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Assoc int

	Property struct {
		Precedence uint
		Assoc      Assoc
	}

	Token struct {
		Kind Kind
		Text string
		Pos  int

		Prop Property // Op only
	}

	// Tokens is a one-shot cursor over lexed tokens.
	Tokens struct {
		toks []Token
		i    int

		end int
	}

	ContractError struct {
		Op string
	}
)

const (
	EOF Kind = iota
	Type
	Return
	ParenOpen
	ParenClose
	BraceOpen
	BraceClose
	BracketOpen
	BracketClose
	Semi
	Comma
	Num
	Ident
	Op
)

const (
	Left Assoc = iota
	Right
)

var kindNames = []string{
	EOF:          "end of input",
	Type:         "type keyword",
	Return:       "return keyword",
	ParenOpen:    "'('",
	ParenClose:   "')'",
	BraceOpen:    "'{'",
	BraceClose:   "'}'",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Semi:         "';'",
	Comma:        "','",
	Num:          "number",
	Ident:        "identifier",
	Op:           "operator",
}

var properties = map[string]Property{
	"=": {Precedence: 2, Assoc: Right},
	"+": {Precedence: 12, Assoc: Left},
	"-": {Precedence: 12, Assoc: Left},
	"*": {Precedence: 13, Assoc: Left},
	"/": {Precedence: 13, Assoc: Left},
	"&": {Precedence: 15, Assoc: Left},
}

// PropertyOf returns precedence and associativity of a binary operator.
// The table is fixed, so a miss means the caller produced an operator
// the language does not have.
func PropertyOf(op string) (Property, error) {
	p, ok := properties[op]
	if !ok {
		return Property{}, &ContractError{Op: op}
	}

	return p, nil
}

func NewTokens(toks []Token, end int) *Tokens {
	return &Tokens{
		toks: toks,
		end:  end,
	}
}

// Peek returns the n-th unconsumed token without consuming anything.
func (t *Tokens) Peek(n int) (Token, bool) {
	if t.i+n >= len(t.toks) {
		return Token{Kind: EOF, Pos: t.end}, false
	}

	return t.toks[t.i+n], true
}

// Pop consumes and returns the next token.
func (t *Tokens) Pop() (Token, bool) {
	tk, ok := t.Peek(0)
	if ok {
		t.i++
	}

	return tk, ok
}

// Len is the number of unconsumed tokens.
func (t *Tokens) Len() int {
	return len(t.toks) - t.i
}

// Pos is the position of the next token or the end of text.
func (t *Tokens) Pos() int {
	tk, _ := t.Peek(0)

	return tk.Pos
}

func (t Token) Is(k Kind, text string) bool {
	return t.Kind == k && t.Text == text
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

func (a Assoc) String() string {
	if a == Right {
		return "right"
	}

	return "left"
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()
	case Num, Ident, Op, Type:
		return fmt.Sprintf("%v %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)
	b = e.AppendKeyString(b, "kind", t.Kind.String())
	b = e.AppendKeyString(b, "text", t.Text)
	b = e.AppendKeyInt(b, "pos", t.Pos)

	return b
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("operator %q has no precedence table entry", e.Op)
}
