package tp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayOf(t *testing.T) {
	x := ArrayOf(I32, 2, 3)

	assert.Equal(t, Array{X: Array{X: I32, Len: 3}, Len: 2}, x)
	assert.Equal(t, 24, x.Size())
	assert.Equal(t, "[2][3]i32", x.(Array).String())

	e, ok := Elem(x)
	assert.True(t, ok)
	assert.Equal(t, Array{X: I32, Len: 3}, e)

	_, ok = Elem(I32)
	assert.False(t, ok)
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 4, I32.Size())
	assert.Equal(t, 8, Ptr{X: I32}.Size())
	assert.Equal(t, I32, ArrayOf(I32))
}
