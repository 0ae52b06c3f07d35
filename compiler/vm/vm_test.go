package vm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinato/rcc2/compiler/back"
	"github.com/sinato/rcc2/compiler/ir"
	"github.com/sinato/rcc2/compiler/tp"
)

// mainReturning builds main() { return l op r; }.
func mainReturning(t *testing.T, op back.Op, l, r uint64) *ir.Package {
	t.Helper()

	b := ir.NewBuilder("main")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	v, err := b.BinOp(op, b.Const(l), b.Const(r))
	require.NoError(t, err)

	b.Return(v)
	require.NoError(t, b.EndFunction())

	return b.Package()
}

func TestArithmetic(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		op   back.Op
		l, r uint64
		want int32
	}{
		{back.Add, 1, 2, 3},
		{back.Sub, 8, 3, 5},
		{back.Sub, 0, 1, -1},
		{back.Mul, 65536, 65536, 0},
		{back.Add, math.MaxInt32, 1, math.MinInt32},
		{back.UDiv, 7, 2, 3},
	} {
		res, err := Run(ctx, mainReturning(t, tc.op, tc.l, tc.r), "main")
		require.NoError(t, err)
		assert.Equal(t, tc.want, res, "%v %d %d", tc.op, tc.l, tc.r)
	}
}

func TestUnsignedDivision(t *testing.T) {
	b := ir.NewBuilder("main")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	neg, err := b.BinOp(back.Sub, b.Const(0), b.Const(2))
	require.NoError(t, err)

	q, err := b.BinOp(back.UDiv, neg, b.Const(2))
	require.NoError(t, err)

	b.Return(q)
	require.NoError(t, b.EndFunction())

	res, err := Run(context.Background(), b.Package(), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), res)
}

func TestDivisionByZero(t *testing.T) {
	_, err := Run(context.Background(), mainReturning(t, back.UDiv, 1, 0), "main")

	var de DivisionByZeroError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "main", de.Func)
}

func TestArrays(t *testing.T) {
	build := func(t *testing.T, i, j uint64) *ir.Package {
		b := ir.NewBuilder("main")

		_, err := b.BeginFunction("main", 0)
		require.NoError(t, err)

		a := b.AllocSlot(tp.ArrayOf(tp.I32, 2, 3), "a")

		for x := uint64(0); x < 2; x++ {
			for y := uint64(0); y < 3; y++ {
				row, err := b.ElemAddr(a, b.Const(x))
				require.NoError(t, err)

				el, err := b.ElemAddr(row, b.Const(y))
				require.NoError(t, err)

				b.Store(el, b.Const(10*x+y))
			}
		}

		row, err := b.ElemAddr(a, b.Const(i))
		require.NoError(t, err)

		el, err := b.ElemAddr(row, b.Const(j))
		require.NoError(t, err)

		b.Return(b.Load(el))
		require.NoError(t, b.EndFunction())

		return b.Package()
	}

	ctx := context.Background()

	res, err := Run(ctx, build(t, 1, 2), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(12), res)

	res, err = Run(ctx, build(t, 0, 1), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(1), res)

	_, err = Run(ctx, build(t, 0, 3), "main")
	var be BoundsError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BoundsError{Func: "main", Index: 3, Len: 3}, be)

	_, err = Run(ctx, build(t, 2, 0), "main")
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Len)
}

func TestUninitialized(t *testing.T) {
	b := ir.NewBuilder("main")

	_, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	a := b.AllocSlot(tp.I32, "a")
	b.Return(b.Load(a))
	require.NoError(t, b.EndFunction())

	ctx := context.Background()

	res, err := Run(ctx, b.Package(), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(0), res)

	v := New()
	v.Strict = true

	_, err = v.Run(ctx, b.Package(), "main")

	var ue UninitializedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, UninitializedError{Func: "main", Slot: "a"}, ue)
}

func TestCalls(t *testing.T) {
	b := ir.NewBuilder("main")

	sub, err := b.BeginFunction("sub", 2)
	require.NoError(t, err)

	r, err := b.BinOp(back.Sub, b.Param(0), b.Param(1))
	require.NoError(t, err)

	b.Return(r)
	require.NoError(t, b.EndFunction())

	_, err = b.BeginFunction("main", 0)
	require.NoError(t, err)

	r, err = b.Call(sub, []back.Value{b.Const(10), b.Const(4)})
	require.NoError(t, err)

	b.Return(r)
	require.NoError(t, b.EndFunction())

	v := New()
	v.Strict = true

	res, err := v.Run(context.Background(), b.Package(), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(6), res)

	_, err = v.Run(context.Background(), b.Package(), "sub")
	assert.Error(t, err)

	_, err = v.Run(context.Background(), b.Package(), "nope")
	assert.Error(t, err)
}

func TestStackOverflow(t *testing.T) {
	b := ir.NewBuilder("main")

	f, err := b.BeginFunction("main", 0)
	require.NoError(t, err)

	r, err := b.Call(f, nil)
	require.NoError(t, err)

	b.Return(r)
	require.NoError(t, b.EndFunction())

	v := New()
	v.MaxDepth = 50

	_, err = v.Run(context.Background(), b.Package(), "main")

	var se StackOverflowError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 50, se.Depth)
}
