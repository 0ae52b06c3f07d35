package testcase

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"tlog.app/go/errors"
)

type (
	// Kind is the language of an assertion fence.
	Kind string

	Assertion struct {
		Kind    Kind
		Content string
		Line    int
	}

	// Case is one "Test: name" section of a markdown document:
	// a c fence with the program and the fences checking it.
	Case struct {
		Name       string
		Source     string
		Line       int
		Assertions []Assertion
	}
)

const InputFence = "c"

const (
	AST   Kind = "ast"   // s-expression of the parsed program
	Exit  Kind = "exit"  // value returned by main
	Error Kind = "error" // substring of the compile or run error
	LLVM  Kind = "llvm"  // lines expected in the LLVM module
)

const headingPrefix = "Test: "

// Extract collects test cases from a markdown document.
func Extract(src []byte) (cs []Case, err error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cur *Case

	flush := func() error {
		if cur == nil {
			return nil
		}

		if cur.Source == "" {
			return errors.New("test %q: no %s fence", cur.Name, InputFence)
		}

		if len(cur.Assertions) == 0 {
			return errors.New("test %q: no assertions", cur.Name)
		}

		cs = append(cs, *cur)
		cur = nil

		return nil
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Heading:
			title := nodeText(n, src)
			if !strings.HasPrefix(title, headingPrefix) {
				return ast.WalkContinue, nil
			}

			if err := flush(); err != nil {
				return ast.WalkStop, err
			}

			cur = &Case{
				Name: strings.TrimPrefix(title, headingPrefix),
				Line: line(n, src),
			}

			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lang := string(n.Language(src))
			body := strings.TrimRight(blockText(n, src), "\n")
			l := line(n, src)

			if lang == "" {
				return ast.WalkContinue, nil
			}

			if cur == nil {
				return ast.WalkStop, errors.New("line %d: %s fence outside of a test", l, lang)
			}

			switch Kind(lang) {
			case InputFence:
				if cur.Source != "" {
					return ast.WalkStop, errors.New("line %d: test %q: second %s fence", l, cur.Name, InputFence)
				}

				cur.Source = body
			case AST, Exit, Error, LLVM:
				cur.Assertions = append(cur.Assertions, Assertion{Kind: Kind(lang), Content: body, Line: l})
			default:
				return ast.WalkStop, errors.New("line %d: test %q: unknown fence %q", l, cur.Name, lang)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	err = flush()
	if err != nil {
		return nil, err
	}

	return cs, nil
}

func nodeText(n ast.Node, src []byte) string {
	var b bytes.Buffer

	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); entering && ok {
			b.Write(t.Segment.Value(src))
		}

		return ast.WalkContinue, nil
	})

	return b.String()
}

func blockText(n *ast.FencedCodeBlock, src []byte) string {
	var b bytes.Buffer

	for i := 0; i < n.Lines().Len(); i++ {
		s := n.Lines().At(i)
		b.Write(s.Value(src))
	}

	return b.String()
}

// line is the 1-based line of the first content line of n.
func line(n ast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}

	return 1 + bytes.Count(src[:n.Lines().At(0).Start], []byte("\n"))
}
