package tp

import "fmt"

type (
	Type interface {
		Size() int
	}

	Int struct {
		Bits   int16
		Signed bool
	}

	Ptr struct {
		X Type
	}

	Array struct {
		X   Type
		Len int
	}
)

// I32 is the only scalar the language has.
var I32 = Int{Bits: 32, Signed: true}

// ArrayOf builds a row-major nested array shape.
// The first dimension is the outermost one: dims {2, 3} is [2][3]int.
func ArrayOf(x Type, dims ...int) Type {
	for i := len(dims) - 1; i >= 0; i-- {
		x = Array{X: x, Len: dims[i]}
	}

	return x
}

// Elem returns the element shape of an array.
func Elem(t Type) (Type, bool) {
	a, ok := t.(Array)
	if !ok {
		return nil, false
	}

	return a.X, true
}

func (x Int) Size() int {
	return int(x.Bits) / 8
}

func (x Ptr) Size() int {
	return 8
}

func (x Array) Size() int {
	return x.X.Size() * x.Len
}

func (x Int) String() string {
	if x.Signed {
		return fmt.Sprintf("i%d", x.Bits)
	}

	return fmt.Sprintf("u%d", x.Bits)
}

func (x Ptr) String() string {
	return fmt.Sprintf("*%v", x.X)
}

func (x Array) String() string {
	return fmt.Sprintf("[%d]%v", x.Len, x.X)
}
