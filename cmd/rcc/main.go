package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sinato/rcc2/compiler"
	"github.com/sinato/rcc2/compiler/config"
	"github.com/sinato/rcc2/compiler/format"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/parse"
)

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "print the syntax tree of the files",
		Action:      parseAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("source", false, "print formatted source instead of s-expressions"),
		},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile a file to LLVM assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile and interpret a file, print the value main returns",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("entry", "", "function to call (default from config)"),
			cli.NewFlag("exit", false, "exit with the value main returns"),
		},
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print the interpreter code of the files",
		Action:      irAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "rcc",
		Description: "rcc compiles a small subset of C",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("config", config.DefaultFile, "config file"),
			cli.NewFlag("backend", "", "compile backend: llvm or ir"),
			cli.NewFlag("output,o", "", "output file, - for stdout"),
			cli.NewFlag("strict", false, "fail on reads of uninitialized memory"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			parseCmd,
			compileCmd,
			runCmd,
			irCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	w := tlog.NewConsoleWriter(tlog.Stderr, tlog.LstdFlags)

	tlog.DefaultLogger = tlog.New(w)

	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		x, err := parse.ParseText(ctx, text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		if !c.Bool("source") {
			fmt.Printf("%s\n", format.Sexpr(nil, x))
			continue
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	i, err := newInjector(c)
	if err != nil {
		return err
	}

	tg, err := invokeTarget(i)
	if err != nil {
		return err
	}

	out, err := outputOf(i)
	if err != nil {
		return err
	}

	if len(c.Args) != 1 && out != "-" {
		return errors.New("compile one file at a time or write to stdout")
	}

	for _, a := range c.Args {
		b := tg.Backend(a)

		err = compiler.CompileFile(ctx, a, b)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		err = writeOutput(out, tg.Text(b))
		if err != nil {
			return errors.Wrap(err, "write %v", out)
		}
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	i, err := newInjector(c)
	if err != nil {
		return err
	}

	m, err := invokeVM(i)
	if err != nil {
		return err
	}

	entry := c.String("entry")
	if entry == "" {
		entry = configOf(i).Entry
	}

	if len(c.Args) != 1 {
		return errors.New("run takes one file")
	}

	text, err := os.ReadFile(c.Args[0])
	if err != nil {
		return errors.Wrap(err, "read")
	}

	res, err := compiler.RunWith(ctx, m, c.Args[0], text, entry)
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", res)

	if c.Bool("exit") {
		os.Exit(int(uint8(res)))
	}

	return nil
}

func irAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		b := ir.NewBuilder(a)

		err = compiler.CompileFile(ctx, a, b)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		if tr := tlog.SpanFromContext(ctx); tr.If("dump_ir") {
			for id, x := range b.Package().Exprs {
				tr.Printw("expr", "id", id, "val", x)
			}
		}

		fmt.Printf("%s", ir.Format(nil, b.Package()))
	}

	return nil
}
