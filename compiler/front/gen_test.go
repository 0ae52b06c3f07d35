package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/parse"
	"github.com/sinato/rcc2/compiler/vm"
)

func generate(t *testing.T, src string) (*ir.Package, error) {
	t.Helper()

	ctx := context.Background()

	p, err := parse.ParseText(ctx, []byte(src))
	require.NoError(t, err)

	b := ir.NewBuilder("main")

	err = Generate(ctx, b, p)

	return b.Package(), err
}

func run(t *testing.T, src string) int32 {
	t.Helper()

	pkg, err := generate(t, src)
	require.NoError(t, err)

	m := vm.New()
	m.Strict = true

	res, err := m.Run(context.Background(), pkg, "main")
	require.NoError(t, err)

	return res
}

func TestGenerateRun(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want int32
	}{
		{"int main(){ return 1+2; }", 3},
		{"int main(){ return 8/2*2-3; }", 5},
		{"int main(){ return 8-3-2; }", 3},
		{"int main(){ int a; a=5; return a+1; }", 6},
		{"int main(){ int a[3]; a[0]=1; a[1]=2; a[2]=3; return a[0]+a[1]+a[2]; }", 6},
		{"int add(int x, int y){ return x+y; } int main(){ return add(4,6); }", 10},
		{"int sub(int x, int y){ return x-y; } int main(){ return sub(10,4); }", 6},
		{"int main(){ int a = 2 * 3; int b = a + 1; return a * b; }", 42},
		{"int main(){ int a[2][3]; a[1][2] = 7; a[0][0] = 1; return a[1][2] - a[0][0]; }", 6},
		{"int main(){ int a; int *p; a = 3; p = 4; return *p + &a; }", 7},
		{"int main(){ int a; a = 1; int a; a = 2; return a; }", 2},
		{"int f(int n){ return n*n; } int g(int n){ return f(n) + f(n+1); } int main(){ return g(2); }", 13},
		{"int main(){ return 0 - 1; }", -1},
	} {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.want, run(t, tc.src))
		})
	}
}

func TestEmissionOrder(t *testing.T) {
	pkg, err := generate(t, "int main(){ int a[2]; int b; b = 5; a[1] = b; return a[1]; }")
	require.NoError(t, err)

	assert.Equal(t, `package main

func main(0) {
	%1 = alloca [2]i32 "a"
	%2 = alloca i32 "b"
	%3 = imm 5
	store %2, %3
	%5 = imm 1
	%6 = elemptr [2]i32 %1, %5
	%7 = load %2
	store %6, %7
	%9 = imm 1
	%10 = elemptr [2]i32 %1, %9
	%11 = load %10
	ret %11
}
`, string(ir.Format(nil, pkg)))
}

func TestParamsInDeclarationOrder(t *testing.T) {
	pkg, err := generate(t, "int f(int x, int y){ return x; } int main(){ return f(1, 2); }")
	require.NoError(t, err)

	assert.Contains(t, string(ir.Format(nil, pkg)), `func f(2) {
	%1 = alloca i32 "x"
	%2 = param 0
	store %1, %2
	%4 = alloca i32 "y"
	%5 = param 1
	store %4, %5
`)

	res, err := vm.Run(context.Background(), pkg, "main")
	require.NoError(t, err)
	assert.Equal(t, int32(1), res)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("array_redefinition", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a[2]; int a[3]; return 0; }")

		var re RedefinitionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "a", re.Name)
	})

	t.Run("array_over_scalar", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; int a[3]; return 0; }")

		var re RedefinitionError
		require.ErrorAs(t, err, &re)
	})

	t.Run("scalar_rebinds", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; int a; return 0; }")
		assert.NoError(t, err)
	})

	t.Run("undeclared", func(t *testing.T) {
		_, err := generate(t, "int main(){ return b; }")

		var ue UndeclaredError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "b", ue.Name)
		assert.Contains(t, err.Error(), `use of undeclared identifier "b"`)
	})

	t.Run("undeclared_assign", func(t *testing.T) {
		_, err := generate(t, "int main(){ x = 1; return 0; }")

		var ue UndeclaredError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "x", ue.Name)
	})

	t.Run("no_cross_function_scope", func(t *testing.T) {
		_, err := generate(t, "int f(){ int a; a = 1; return a; } int main(){ return a; }")

		var ue UndeclaredError
		require.ErrorAs(t, err, &ue)
	})

	t.Run("forward_call", func(t *testing.T) {
		_, err := generate(t, "int main(){ return f(); } int f(){ return 1; }")

		var ue UndefinedFuncError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "f", ue.Name)
	})

	t.Run("arity", func(t *testing.T) {
		_, err := generate(t, "int f(int a){ return a; } int main(){ return f(1, 2); }")

		var ae ArityError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, 1, ae.Want)
		assert.Equal(t, 2, ae.Got)
	})

	t.Run("function_redefinition", func(t *testing.T) {
		_, err := generate(t, "int f(){ return 1; } int f(){ return 2; }")

		var re RedefinitionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "f", re.Name)
	})

	t.Run("binary_and", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; a = 1; return a & a; }")

		var ue UnsupportedOpError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "&", ue.Op)
	})

	t.Run("chained_assignment", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; int b; a = b = 5; return a; }")

		var ve ValueError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := generate(t, "int main(){ return 1; return 2; }")

		var ue UnreachableError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "main", ue.Func)
	})

	t.Run("missing_return", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; a = 1; }")

		var ne back.NoReturnError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "main", ne.Func)
	})

	t.Run("array_as_value", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a[2]; return a; }")

		var ke KindError
		require.ErrorAs(t, err, &ke)
		assert.Equal(t, Array, ke.Kind)
	})

	t.Run("index_scalar", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a; return a[0]; }")

		var ke KindError
		require.ErrorAs(t, err, &ke)
		assert.Equal(t, Scalar, ke.Kind)
	})

	t.Run("index_too_deep", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a[2]; return a[0][1]; }")

		var ke KindError
		require.ErrorAs(t, err, &ke)
	})

	t.Run("index_partial", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a[2][2]; return a[0]; }")

		var ke KindError
		require.ErrorAs(t, err, &ke)
	})

	t.Run("huge_array", func(t *testing.T) {
		_, err := generate(t, "int main(){ int a[100000][100000]; return 0; }")

		var se ArraySizeError
		require.ErrorAs(t, err, &se)
	})
}
