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
	"github.com/holiman/uint256"

	"github.com/smolevm/go-smolevm/common"
)

// Calldata is an immutable byte buffer with zero-padded reads. It backs both
// the call input and the code being executed.
type Calldata struct {
	data []byte
}

// NewCalldata returns a buffer holding a copy of data.
func NewCalldata(data []byte) *Calldata {
	return &Calldata{data: common.CopyBytes(data)}
}

// Len returns the buffer length in bytes.
func (c *Calldata) Len() int {
	return len(c.data)
}

// Bytes returns the underlying data. Callers must not modify it.
func (c *Calldata) Bytes() []byte {
	return c.data
}

// ReadByte returns the byte at offset, or zero past the end.
func (c *Calldata) ReadByte(offset uint64) byte {
	if offset >= uint64(len(c.data)) {
		return 0
	}
	return c.data[offset]
}

// ReadWord interprets the 32 bytes at offset as a big-endian integer.
// Bytes past the end read as zero.
func (c *Calldata) ReadWord(offset uint64) uint256.Int {
	var w uint256.Int
	w.SetBytes(c.Slice(offset, 32))
	return w
}

// Slice returns a copy of size bytes starting at offset, right-padded with
// zeroes where the range runs past the end.
func (c *Calldata) Slice(offset, size uint64) []byte {
	return getData(c.data, offset, size)
}

// getData returns a copy of data[start:start+size], padded up to size with
// zero's. This function is overflow safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length || end < start {
		end = length
	}
	out := make([]byte, size)
	copy(out, data[start:end])
	return out
}
