package front

import "fmt"

type (
	UndeclaredError struct {
		Name string
		Pos  int
	}

	RedefinitionError struct {
		Name string
		Pos  int
	}

	UndefinedFuncError struct {
		Name string
		Pos  int
	}

	UnsupportedOpError struct {
		Op  string
		Pos int
	}

	ArityError struct {
		Func string
		Want int
		Got  int
		Pos  int
	}

	// ValueError is an expression used where its result kind does not fit.
	ValueError struct {
		Got  string
		Want string
		Pos  int
	}

	// KindError is a variable used in a way its declaration does not allow.
	KindError struct {
		Name string
		Kind Kind
		Use  string
		Pos  int
	}

	UnreachableError struct {
		Func string
		Pos  int
	}

	ArraySizeError struct {
		Name  string
		Words uint64
		Pos   int
	}
)

func (e UndeclaredError) Error() string {
	return fmt.Sprintf("use of undeclared identifier %q at pos %d", e.Name, e.Pos)
}

func (e RedefinitionError) Error() string {
	return fmt.Sprintf("redefinition of %q at pos %d", e.Name, e.Pos)
}

func (e UndefinedFuncError) Error() string {
	return fmt.Sprintf("undefined reference to %q at pos %d", e.Name, e.Pos)
}

func (e UnsupportedOpError) Error() string {
	return fmt.Sprintf("operator %q at pos %d is not implemented", e.Op, e.Pos)
}

func (e ArityError) Error() string {
	return fmt.Sprintf("call of %q at pos %d: want %d arguments, got %d", e.Func, e.Pos, e.Want, e.Got)
}

func (e ValueError) Error() string {
	return fmt.Sprintf("expression at pos %d has %s, want %s", e.Pos, e.Got, e.Want)
}

func (e KindError) Error() string {
	return fmt.Sprintf("%s %q at pos %d: %s", e.Kind, e.Name, e.Pos, e.Use)
}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("%v: unreachable code at pos %d", e.Func, e.Pos)
}

func (e ArraySizeError) Error() string {
	return fmt.Sprintf("array %q at pos %d is too large: %d words", e.Name, e.Pos, e.Words)
}
