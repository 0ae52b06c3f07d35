package compiler

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/back/llvm"
	"github.com/sinato/rcc2/compiler/front"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/lex"
	"github.com/sinato/rcc2/compiler/parse"
	"github.com/sinato/rcc2/compiler/vm"
)

type (
	Stage int

	// CompileError is the one diagnostic of a failed compilation.
	CompileError struct {
		Stage Stage
		Name  string
		Err   error
	}
)

const (
	StageParse Stage = iota
	StageGen
	StageRun
	StageInternal
)

func CompileFile(ctx context.Context, name string, b back.Backend) error {
	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, b)
}

// Compile parses text and emits it into b.
// Nothing is emitted when the text does not parse.
func Compile(ctx context.Context, name string, text []byte, b back.Backend) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	prog, err := parse.ParseText(ctx, text)
	if err != nil {
		return newError(StageParse, name, err)
	}

	err = front.Generate(ctx, b, prog)
	if err != nil {
		return newError(StageGen, name, err)
	}

	return nil
}

// CompileLLVM returns the LLVM assembly of text.
func CompileLLVM(ctx context.Context, name string, text []byte, module string) (string, error) {
	b := llvm.New(module)

	err := Compile(ctx, name, text, b)
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// CompileIR returns text compiled to the interpretable form.
func CompileIR(ctx context.Context, name string, text []byte) (*ir.Package, error) {
	b := ir.NewBuilder(name)

	err := Compile(ctx, name, text, b)
	if err != nil {
		return nil, err
	}

	return b.Package(), nil
}

// Run compiles text and interprets its main function.
func Run(ctx context.Context, name string, text []byte) (int32, error) {
	return RunWith(ctx, vm.New(), name, text, "main")
}

func RunWith(ctx context.Context, m *vm.VM, name string, text []byte, entry string) (int32, error) {
	pkg, err := CompileIR(ctx, name, text)
	if err != nil {
		return 0, err
	}

	res, err := m.Run(ctx, pkg, entry)
	if err != nil {
		return 0, newError(StageRun, name, err)
	}

	return res, nil
}

func newError(st Stage, name string, err error) *CompileError {
	var ce *lex.ContractError
	if errors.As(err, &ce) {
		st = StageInternal
	}

	return &CompileError{Stage: st, Name: name, Err: err}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: %v error: %v", e.Name, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageGen:
		return "codegen"
	case StageRun:
		return "runtime"
	case StageInternal:
		return "internal"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}
