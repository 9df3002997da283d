// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ring implements a simple ring buffer.
package ring

type Buffer[T any] struct {
	data       []T
	head, tail int
	full       bool
}

func NewBuffer[T any](n int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, n)}
}

func (r *Buffer[T]) Len() int {
	if r.full {
		return len(r.data)
	}
	if r.head <= r.tail {
		return r.tail - r.head
	}
	return len(r.data) - r.head + r.tail
}

func (r *Buffer[T]) Size() int {
	return len(r.data)
}

// Push appends a single element, evicting the oldest
// element if the buffer is at capacity.
func (r *Buffer[T]) Push(v T) {
	r.data[r.tail] = v
	r.tail++
	if r.tail == len(r.data) {
		r.tail = 0
	}
	if r.full {
		r.head = r.tail
		return
	}
	if r.tail == r.head {
		r.full = true
	}
}

func (r *Buffer[T]) Write(src []T) {
	if len(src) >= len(r.data) {
		r.head = 0
		r.tail = 0
		r.full = true
		copy(r.data, src[len(src)-len(r.data):])
		return
	}
	for _, v := range src {
		r.Push(v)
	}
}

// At returns the i-th oldest retained element. It panics
// if i is out of range.
func (r *Buffer[T]) At(i int) T {
	if i < 0 || i >= r.Len() {
		panic("ring: index out of range")
	}
	i += r.head
	if i >= len(r.data) {
		i -= len(r.data)
	}
	return r.data[i]
}

func (r *Buffer[T]) Read(dst []T) int {
	n := r.CopyTo(dst)
	r.Advance(n)
	return n
}

func (r *Buffer[T]) CopyTo(dst []T) int {
	if !r.full && r.head <= r.tail {
		return copy(dst, r.data[r.head:r.tail])
	}
	n := copy(dst, r.data[r.head:])
	n += copy(dst[n:], r.data[:r.tail])
	return n
}

func (r *Buffer[T]) Advance(n int) {
	if n <= 0 {
		return
	}
	n = min(n, r.Len())
	r.full = false
	r.head += n
	if r.head >= len(r.data) {
		r.head -= len(r.data)
	}
}
