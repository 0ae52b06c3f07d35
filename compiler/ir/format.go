package ir

import "fmt"

// Format appends a readable listing of the package.
func Format(b []byte, p *Package) []byte {
	b = fmt.Appendf(b, "package %s\n", p.Path)

	for _, id := range p.Funcs {
		f, _ := p.Func(id)

		b = fmt.Appendf(b, "\nfunc %s(%d) {\n", f.Name, f.Params)

		for _, id := range f.Code {
			b = FormatExpr(b, p, id)
			b = append(b, '\n')
		}

		b = append(b, "}\n"...)
	}

	return b
}

func FormatExpr(b []byte, p *Package, id Expr) []byte {
	b = append(b, '\t')

	switch x := p.Exprs[id].(type) {
	case Store:
		return fmt.Appendf(b, "store %%%d, %%%d", x.Addr, x.Value)
	case Ret:
		return fmt.Appendf(b, "ret %%%d", x.Value)
	}

	b = fmt.Appendf(b, "%%%d = ", id)

	switch x := p.Exprs[id].(type) {
	case Imm:
		b = fmt.Appendf(b, "imm %d", uint32(x))
	case Param:
		b = fmt.Appendf(b, "param %d", int(x))
	case Alloca:
		b = fmt.Appendf(b, "alloca %v %q", x.Type, x.Name)
	case Load:
		b = fmt.Appendf(b, "load %%%d", x.Addr)
	case ElemPtr:
		b = fmt.Appendf(b, "elemptr %v %%%d, %%%d", x.Array, x.Base, x.Index)
	case BinOp:
		b = fmt.Appendf(b, "%v %%%d, %%%d", x.Op, x.L, x.R)
	case Call:
		f, _ := p.Func(x.Func)

		b = fmt.Appendf(b, "call %s(", f.Name)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = fmt.Appendf(b, "%%%d", a)
		}

		b = append(b, ')')
	default:
		b = fmt.Appendf(b, "%T", x)
	}

	return b
}
