package ecs

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A int32
	B int32
}

func pairColumn(t *testing.T, capacity int) column {
	t.Helper()
	typ := reflect.TypeFor[pair]()
	return newColumn(ComponentInfo{Type: typ, Size: typ.Size(), Align: uintptr(typ.Align())}, capacity)
}

func TestColumnPushAndRead(t *testing.T) {
	c := pairColumn(t, 2)

	values := []pair{{1, 2}, {3, 4}, {5, 6}}
	for i := range values {
		c.pushFrom(unsafe.Pointer(&values[i]))
	}
	require.Equal(t, 3, c.len())

	for i, want := range values {
		got := *(*pair)(c.ptrAt(i))
		assert.Equal(t, want, got)
	}
}

func TestColumnGrowsPastInitialCapacity(t *testing.T) {
	c := pairColumn(t, 1)

	for i := int32(0); i < 100; i++ {
		v := pair{A: i, B: -i}
		c.pushFrom(unsafe.Pointer(&v))
	}
	require.Equal(t, 100, c.len())
	assert.Equal(t, pair{A: 99, B: -99}, *(*pair)(c.ptrAt(99)))
	assert.Equal(t, pair{A: 0, B: 0}, *(*pair)(c.ptrAt(0)))
}

func TestColumnSwapRemove(t *testing.T) {
	c := pairColumn(t, 4)

	values := []pair{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	for i := range values {
		c.pushFrom(unsafe.Pointer(&values[i]))
	}

	// Removing an interior row relocates the last row's bytes into it.
	c.swapRemove(1)
	require.Equal(t, 3, c.len())
	assert.Equal(t, pair{3, 3}, *(*pair)(c.ptrAt(1)))

	// Removing the last row just shrinks.
	c.swapRemove(2)
	require.Equal(t, 2, c.len())
	assert.Equal(t, pair{0, 0}, *(*pair)(c.ptrAt(0)))
}

func TestColumnWriteAt(t *testing.T) {
	c := pairColumn(t, 2)

	v := pair{1, 1}
	c.pushFrom(unsafe.Pointer(&v))
	w := pair{7, 8}
	c.writeAt(0, unsafe.Pointer(&w))

	assert.Equal(t, pair{7, 8}, *(*pair)(c.ptrAt(0)))
}

func TestColumnPushZeroReservesRow(t *testing.T) {
	c := pairColumn(t, 2)

	c.pushZero()
	require.Equal(t, 1, c.len())

	v := pair{9, 9}
	c.writeAt(0, unsafe.Pointer(&v))
	assert.Equal(t, pair{9, 9}, *(*pair)(c.ptrAt(0)))
}

func TestColumnZeroSized(t *testing.T) {
	typ := reflect.TypeFor[struct{}]()
	c := newColumn(ComponentInfo{Type: typ, Size: 0, Align: 1}, 4)

	c.pushZero()
	c.pushFrom(nil)
	require.Equal(t, 2, c.len())

	assert.NotNil(t, c.ptrAt(0))
	c.swapRemove(0)
	assert.Equal(t, 1, c.len())
}

func TestColumnBasePtr(t *testing.T) {
	c := pairColumn(t, 2)

	base, stride := c.basePtr()
	assert.Nil(t, base, "empty column has no base")
	assert.Equal(t, reflect.TypeFor[pair]().Size(), stride)

	v := pair{5, 6}
	c.pushFrom(unsafe.Pointer(&v))
	base, _ = c.basePtr()
	require.NotNil(t, base)
	assert.Equal(t, pair{5, 6}, *(*pair)(base))
}

func TestColumnRowBoundsFatal(t *testing.T) {
	c := pairColumn(t, 2)
	v := pair{1, 2}
	c.pushFrom(unsafe.Pointer(&v))

	assert.Panics(t, func() { c.ptrAt(1) })
	assert.Panics(t, func() { c.ptrAt(-1) })
	assert.Panics(t, func() { c.swapRemove(3) })
}
