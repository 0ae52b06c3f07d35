package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/tp"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder("main")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	a := b.AllocSlot(tp.ArrayOf(tp.I32, 2), "a")

	el, err := b.ElemAddr(a, b.Const(1))
	require.NoError(t, err)

	b.Store(el, b.Const(7))

	el, err = b.ElemAddr(a, b.Const(1))
	require.NoError(t, err)

	sum, err := b.BinOp(back.Add, b.Load(el), b.Const(3))
	require.NoError(t, err)

	b.Return(sum)

	require.NoError(t, b.EndFunction())

	assert.Equal(t, `package main

func main(0) {
	%1 = alloca [2]i32 "a"
	%2 = imm 1
	%3 = elemptr [2]i32 %1, %2
	%4 = imm 7
	store %3, %4
	%6 = imm 1
	%7 = elemptr [2]i32 %1, %6
	%8 = load %7
	%9 = imm 3
	%10 = add %8, %9
	ret %10
}
`, string(Format(nil, b.Package())))
}

func TestBuilderCall(t *testing.T) {
	b := NewBuilder("main")

	f, err := b.BeginFunction("id", 1)
	require.NoError(t, err)

	b.Return(b.Param(0))
	require.NoError(t, b.EndFunction())

	_, err = b.BeginFunction("main", 0)
	require.NoError(t, err)

	g, ok := b.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, f, g)

	_, ok = b.Lookup("nope")
	assert.False(t, ok)

	_, err = b.Call(g, nil)
	var ae back.ArityError
	if assert.ErrorAs(t, err, &ae) {
		assert.Equal(t, back.ArityError{Func: "id", Want: 1, Got: 0}, ae)
	}

	r, err := b.Call(g, []back.Value{b.Const(5)})
	require.NoError(t, err)

	b.Return(r)
	require.NoError(t, b.EndFunction())

	id, fn, ok := b.Package().FuncByName("main")
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	assert.NotEqual(t, Nil, id)
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder("main")

	_, err := b.BeginFunction("f", 0)
	require.NoError(t, err)

	_, err = b.BeginFunction("g", 0)
	assert.Error(t, err)

	x := b.AllocSlot(tp.I32, "x")

	_, err = b.ElemAddr(x, b.Const(0))
	var ne back.NotArrayError
	assert.ErrorAs(t, err, &ne)

	err = b.EndFunction()
	var re back.NoReturnError
	if assert.ErrorAs(t, err, &re) {
		assert.Equal(t, "f", re.Func)
	}

	_, err = b.BeginFunction("f", 0)
	assert.Error(t, err)

	_, err = b.BeginFunction("empty", 0)
	require.NoError(t, err)

	assert.ErrorAs(t, b.EndFunction(), &re)
}
