package testcase

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtract(t *testing.T) {
	md := `# Arithmetic

Some prose.

## Test: add
` + fence + `c
int main() { return 1 + 2; }
` + fence + `
` + fence + `ast
(program (func main () (return (+ 1 2))))
` + fence + `
` + fence + `exit
3
` + fence + `

## Test: undeclared
` + fence + `c
int main() {
	return b;
}
` + fence + `
` + fence + `error
undeclared identifier "b"
` + fence + `
`

	cs, err := Extract([]byte(md))
	be.Err(t, err, nil)
	be.Equal(t, len(cs), 2)

	c := cs[0]
	be.Equal(t, c.Name, "add")
	be.Equal(t, c.Source, "int main() { return 1 + 2; }")
	be.Equal(t, len(c.Assertions), 2)
	be.Equal(t, c.Assertions[0].Kind, AST)
	be.Equal(t, c.Assertions[0].Content, "(program (func main () (return (+ 1 2))))")
	be.Equal(t, c.Assertions[1].Kind, Exit)
	be.Equal(t, c.Assertions[1].Content, "3")
	be.Equal(t, c.Assertions[1].Line, 13)

	c = cs[1]
	be.Equal(t, c.Name, "undeclared")
	be.Equal(t, c.Source, "int main() {\n\treturn b;\n}")
	be.Equal(t, c.Assertions[0].Kind, Error)
}

func TestExtractErrors(t *testing.T) {
	for name, md := range map[string]string{
		"no_input":      "## Test: x\n" + fence + "exit\n1\n" + fence + "\n",
		"no_assertions": "## Test: x\n" + fence + "c\nint main(){ return 0; }\n" + fence + "\n",
		"outside":       fence + "c\nint main(){ return 0; }\n" + fence + "\n",
		"unknown_fence": "## Test: x\n" + fence + "c\nint main(){ return 0; }\n" + fence + "\n" + fence + "rust\nfn main() {}\n" + fence + "\n",
		"two_inputs":    "## Test: x\n" + fence + "c\nint main(){ return 0; }\n" + fence + "\n" + fence + "c\nint f(){ return 0; }\n" + fence + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(md))
			be.True(t, err != nil)
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	cs, err := Extract([]byte("# nothing here\n\n" + fence + "\nplain block\n" + fence + "\n"))
	be.Err(t, err, nil)
	be.Equal(t, len(cs), 0)
}
