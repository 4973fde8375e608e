// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/smolevm/go-smolevm/params"
)

// Memory implements a simple, byte addressable scratch memory. Its length is
// always a multiple of the word size; it grows on demand and never shrinks.
type Memory struct {
	store []byte
	limit uint64
}

// NewMemory returns a new memory model capped at params.MaxMemorySize.
func NewMemory() *Memory {
	return NewMemoryWithLimit(params.MaxMemorySize)
}

// NewMemoryWithLimit returns a new memory model that refuses to grow past
// limit bytes (rounded down to whole words).
func NewMemoryWithLimit(limit uint64) *Memory {
	return &Memory{limit: limit}
}

// toWordSize returns the ceiled word size required for memory expansion.
func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// expand grows the memory so that it covers [offset, offset+size). A
// zero-sized access never grows it.
func (m *Memory) expand(offset, size uint64) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset {
		return ErrMemoryLimit
	}
	if end <= uint64(len(m.store)) {
		return nil
	}
	newSize := toWordSize(end) * params.WordSize
	if newSize > m.limit || newSize < end {
		return ErrMemoryLimit
	}
	m.store = append(m.store, make([]byte, newSize-uint64(len(m.store)))...)
	return nil
}

// Store writes a single byte at offset. Values that do not fit in a byte are
// rejected; callers mask beforehand.
func (m *Memory) Store(offset, value uint64) error {
	if value > 0xff {
		return ErrInvalidMemoryValue
	}
	if err := m.expand(offset, 1); err != nil {
		return err
	}
	m.store[offset] = byte(value)
	return nil
}

// Load returns the byte at offset, or zero past the end. It never expands
// the memory.
func (m *Memory) Load(offset uint64) byte {
	if offset >= uint64(len(m.store)) {
		return 0
	}
	return m.store[offset]
}

// LoadRange returns a copy of size bytes starting at offset, expanding the
// memory to cover the range.
func (m *Memory) LoadRange(offset, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if err := m.expand(offset, size); err != nil {
		return nil, err
	}
	cpy := make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return cpy, nil
}

// StoreWord writes val as 32 big-endian bytes starting at offset.
func (m *Memory) StoreWord(offset uint64, val *uint256.Int) error {
	if err := m.expand(offset, params.WordSize); err != nil {
		return err
	}
	b32 := val.Bytes32()
	copy(m.store[offset:], b32[:])
	return nil
}

// StoreRange copies data into memory starting at offset.
func (m *Memory) StoreRange(offset uint64, data []byte) error {
	if err := m.expand(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(m.store[offset:], data)
	return nil
}

// ActiveWordCount returns the number of 32-byte words in use.
func (m *Memory) ActiveWordCount() uint64 {
	return uint64(len(m.store)) / params.WordSize
}

// Len returns the length of the backing slice
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the backing slice
func (m *Memory) Data() []byte {
	return m.store
}
