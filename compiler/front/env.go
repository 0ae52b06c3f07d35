package front

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

type (
	Kind int

	Location struct {
		Kind  Kind
		Addr  back.Addr
		Shape tp.Type
	}

	// Env is the symbol table of one function.
	// It is flat: declaring a name again rebinds it in place.
	Env struct {
		names []string
		locs  []Location
	}
)

const (
	Scalar Kind = iota
	Array
	Pointer
)

func NewEnv() *Env {
	return &Env{}
}

// Get finds the most recent binding of name.
func (e *Env) Get(name string) (Location, bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			return e.locs[i], true
		}
	}

	return Location{}, false
}

// Update overwrites the binding of name at its position, or appends a new one.
func (e *Env) Update(name string, l Location) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			e.locs[i] = l
			return
		}
	}

	e.names = append(e.names, name)
	e.locs = append(e.locs, l)
}

// Names lists bound names in insertion order.
func (e *Env) Names() []string {
	return append([]string(nil), e.names...)
}

func (e *Env) Len() int { return len(e.names) }

func (e *Env) TlogAppend(b []byte) []byte {
	var en tlwire.Encoder

	b = en.AppendMap(b, len(e.names))

	for i, n := range e.names {
		b = en.AppendKeyString(b, n, e.locs[i].Kind.String())
	}

	return b
}

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "int"
	case Array:
		return "array"
	case Pointer:
		return "pointer"
	default:
		return "unknown"
	}
}
