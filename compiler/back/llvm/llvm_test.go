package llvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

func TestFunction(t *testing.T) {
	b := New("my_module")

	add, err := b.BeginFunction("add", 2)
	require.NoError(t, err)

	x := b.AllocSlot(tp.I32, "x")
	b.Store(x, b.Param(0))

	y := b.AllocSlot(tp.I32, "y")
	b.Store(y, b.Param(1))

	s, err := b.BinOp(back.Add, b.Load(x), b.Load(y))
	require.NoError(t, err)

	b.Return(s)
	require.NoError(t, b.EndFunction())

	_, err = b.BeginFunction("main", 0)
	require.NoError(t, err)

	f, ok := b.Lookup("add")
	require.True(t, ok)
	assert.Equal(t, add, f)

	r, err := b.Call(f, []back.Value{b.Const(4), b.Const(6)})
	require.NoError(t, err)

	b.Return(r)
	require.NoError(t, b.EndFunction())

	text := b.String()

	assert.Contains(t, text, "define i32 @add(i32 %0, i32 %1)")
	assert.Contains(t, text, "%x = alloca i32")
	assert.Contains(t, text, "%y = alloca i32")
	assert.Contains(t, text, "define i32 @main()")
	assert.Contains(t, text, "call i32 @add(i32 4, i32 6)")
	assert.Contains(t, text, "entry:")
	assert.Len(t, b.Module().Funcs, 2)
}

func TestArrays(t *testing.T) {
	b := New("my_module")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	a := b.AllocSlot(tp.ArrayOf(tp.I32, 2, 3), "a")

	row, err := b.ElemAddr(a, b.Const(1))
	require.NoError(t, err)

	el, err := b.ElemAddr(row, b.Const(2))
	require.NoError(t, err)

	b.Store(el, b.Const(7))

	_, err = b.ElemAddr(el, b.Const(0))
	var ne back.NotArrayError
	assert.ErrorAs(t, err, &ne)

	b.Return(b.Load(el))
	require.NoError(t, b.EndFunction())

	text := b.String()

	assert.Contains(t, text, "%a = alloca [2 x [3 x i32]]")
	assert.Contains(t, text, "getelementptr [2 x [3 x i32]]")
	assert.Contains(t, text, "getelementptr [3 x i32]")
	assert.Contains(t, text, "store i32 7")
}

func TestRedeclaredNames(t *testing.T) {
	b := New("m")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	b.AllocSlot(tp.I32, "a")
	b.AllocSlot(tp.I32, "a")
	b.AllocSlot(tp.I32, "entry")

	b.Return(b.Const(0))
	require.NoError(t, b.EndFunction())

	text := b.String()

	assert.Contains(t, text, "%a = alloca i32")
	assert.Contains(t, text, "%a.1 = alloca i32")
	assert.Contains(t, text, "%entry.1 = alloca i32")
}

func TestErrors(t *testing.T) {
	b := New("m")

	f, err := b.BeginFunction("f", 1)
	require.NoError(t, err)

	_, err = b.BeginFunction("g", 0)
	assert.Error(t, err)

	_, err = b.Call(f, nil)
	var ae back.ArityError
	if assert.ErrorAs(t, err, &ae) {
		assert.Equal(t, back.ArityError{Func: "f", Want: 1, Got: 0}, ae)
	}

	err = b.EndFunction()
	var re back.NoReturnError
	if assert.ErrorAs(t, err, &re) {
		assert.Equal(t, "f", re.Func)
	}

	_, err = b.BeginFunction("f", 0)
	assert.Error(t, err)

	_, ok := b.Lookup("g")
	assert.False(t, ok)
}
