package ecs

import (
	"fmt"
	"unsafe"

	"github.com/plus3/loom/region"
)

// zstSlot backs pointers handed out for zero-sized components, which have
// no storage of their own.
var zstSlot [1]byte

// column is a type-erased, growable contiguous buffer holding one component
// type for all rows of one archetype. All byte-level operations trust the
// caller to pass pointers of the right element size; row indices are checked
// and violations are fatal, never recoverable.
type column struct {
	data   []byte
	size   uintptr
	align  uintptr
	length int
}

func newColumn(info ComponentInfo, capacity int) column {
	c := column{size: info.Size, align: info.Align}
	if c.size > 0 && capacity > 0 {
		c.data = make([]byte, 0, c.size*uintptr(capacity))
		region.Default.Alloc(cap(c.data))
	}
	return c
}

func (c *column) len() int {
	return c.length
}

// pushFrom copies size bytes from src into the next free slot, growing the
// backing buffer geometrically when full. Zero-sized components only bump
// the length counter.
func (c *column) pushFrom(src unsafe.Pointer) {
	if c.size == 0 {
		c.length++
		return
	}
	c.reserveRow()
	copy(c.data[uintptr(c.length)*c.size:], unsafe.Slice((*byte)(src), c.size))
	c.length++
}

// pushZero reserves the next row without writing component bytes. Used when
// an entity moves into an archetype that has a column its source lacked; the
// caller must write the row before it is read.
func (c *column) pushZero() {
	if c.size == 0 {
		c.length++
		return
	}
	c.reserveRow()
	c.length++
}

func (c *column) reserveRow() {
	need := uintptr(c.length+1) * c.size
	if uintptr(cap(c.data)) < need {
		newCap := uintptr(cap(c.data)) * 2
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, len(c.data), newCap)
		copy(grown, c.data)
		if cap(c.data) > 0 {
			region.Default.Free(cap(c.data))
		}
		region.Default.Alloc(cap(grown))
		c.data = grown
	}
	c.data = c.data[:need]
}

// writeAt overwrites row's bytes with size bytes read from src.
func (c *column) writeAt(row int, src unsafe.Pointer) {
	c.checkRow(row)
	if c.size == 0 {
		return
	}
	off := uintptr(row) * c.size
	copy(c.data[off:off+c.size], unsafe.Slice((*byte)(src), c.size))
}

// swapRemove overwrites row's bytes with the last row's bytes and shrinks
// the column by one. O(1); row order is not preserved.
func (c *column) swapRemove(row int) {
	c.checkRow(row)
	last := c.length - 1
	if c.size > 0 {
		if row != last {
			dst := uintptr(row) * c.size
			src := uintptr(last) * c.size
			copy(c.data[dst:dst+c.size], c.data[src:src+c.size])
		}
		c.data = c.data[:uintptr(last)*c.size]
	}
	c.length = last
}

// ptrAt returns the address of a row's bytes. The pointer must not be
// retained across any operation that can grow the column.
func (c *column) ptrAt(row int) unsafe.Pointer {
	c.checkRow(row)
	if c.size == 0 {
		return unsafe.Pointer(&zstSlot[0])
	}
	return unsafe.Pointer(&c.data[uintptr(row)*c.size])
}

// basePtr returns the address of row 0 and the row stride, for callers that
// resolve rows themselves. An empty column yields a nil base.
func (c *column) basePtr() (unsafe.Pointer, uintptr) {
	if c.size == 0 {
		return unsafe.Pointer(&zstSlot[0]), 0
	}
	if c.length == 0 {
		return nil, c.size
	}
	return unsafe.Pointer(&c.data[0]), c.size
}

func (c *column) checkRow(row int) {
	if row < 0 || row >= c.length {
		panic(fmt.Sprintf("ecs: column row %d out of bounds (len %d)", row, c.length))
	}
}
