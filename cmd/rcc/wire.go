package main

import (
	"os"

	"github.com/samber/do"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/back/llvm"
	"github.com/sinato/rcc2/compiler/config"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/vm"
)

type (
	// Target creates a fresh backend per compiled file
	// and renders what it has built.
	Target interface {
		Backend(name string) back.Backend
		Text(b back.Backend) []byte
	}

	llvmTarget struct {
		module string
	}

	irTarget struct{}

	output string
)

func newInjector(c *cli.Command) (*do.Injector, error) {
	path := c.String("config")

	cfg, err := config.Load(path, path == config.DefaultFile)
	if err != nil {
		return nil, err
	}

	if v := c.String("backend"); v != "" {
		cfg.Backend = v
	}

	if v := c.String("output"); v != "" {
		cfg.Output = v
	}

	if c.Bool("strict") {
		cfg.VM.Strict = true
	}

	if c.String("verbosity") == "" && cfg.Verbosity != "" {
		tlog.SetVerbosity(cfg.Verbosity)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "config %v", path)
	}

	tlog.V("config").Printw("config", "path", path, "backend", cfg.Backend, "output", cfg.Output, "module", cfg.Module)

	i := do.New()

	do.ProvideValue(i, cfg)
	do.Provide(i, newTarget)
	do.Provide(i, newVM)
	do.Provide(i, newOutput)

	return i, nil
}

func newTarget(i *do.Injector) (Target, error) {
	cfg := do.MustInvoke[config.Config](i)

	switch cfg.Backend {
	case config.BackendLLVM:
		return llvmTarget{module: cfg.Module}, nil
	case config.BackendIR:
		return irTarget{}, nil
	}

	return nil, errors.New("unknown backend: %q", cfg.Backend)
}

func newVM(i *do.Injector) (*vm.VM, error) {
	cfg := do.MustInvoke[config.Config](i)

	m := vm.New()
	m.Strict = cfg.VM.Strict
	m.MaxDepth = cfg.VM.MaxDepth

	return m, nil
}

func newOutput(i *do.Injector) (output, error) {
	cfg := do.MustInvoke[config.Config](i)

	return output(cfg.Output), nil
}

func configOf(i *do.Injector) config.Config {
	return do.MustInvoke[config.Config](i)
}

func invokeTarget(i *do.Injector) (Target, error) {
	return do.Invoke[Target](i)
}

func invokeVM(i *do.Injector) (*vm.VM, error) {
	return do.Invoke[*vm.VM](i)
}

func outputOf(i *do.Injector) (string, error) {
	o, err := do.Invoke[output](i)

	return string(o), err
}

func writeOutput(name string, data []byte) error {
	if name == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	return os.WriteFile(name, data, 0o644)
}

func (t llvmTarget) Backend(name string) back.Backend {
	return llvm.New(t.module)
}

func (t llvmTarget) Text(b back.Backend) []byte {
	return []byte(b.(*llvm.Backend).String())
}

func (irTarget) Backend(name string) back.Backend {
	return ir.NewBuilder(name)
}

func (irTarget) Text(b back.Backend) []byte {
	return ir.Format(nil, b.(*ir.Builder).Package())
}
