// Copyright 2014 The go-ethereum Authors
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

// bitvec is a bit vector which maps bytes in a program.
type bitvec []byte

func newBitvec(n int) bitvec {
	return make(bitvec, n/8+1)
}

func (bits bitvec) set(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

// setRange marks n consecutive positions starting at pos. Whole bytes are
// filled at once once pos is byte-aligned.
func (bits bitvec) setRange(pos, n uint64) {
	end := pos + n
	for ; pos < end && pos%8 != 0; pos++ {
		bits.set(pos)
	}
	for ; pos+8 <= end; pos += 8 {
		bits[pos/8] = 0xff
	}
	for ; pos < end; pos++ {
		bits.set(pos)
	}
}

func (bits bitvec) isSet(pos uint64) bool {
	if pos/8 >= uint64(len(bits)) {
		return false
	}
	return (bits[pos/8]>>(pos%8))&1 == 1
}

// CodeAnalysis is the result of a single forward scan over a program. It is
// never modified after construction and may be shared between runs.
type CodeAnalysis struct {
	size      uint64
	data      bitvec // set bits are PUSH immediates
	jumpdests bitvec // set bits are JUMPDEST opcodes outside immediates
	count     int
}

// AnalyzeCode scans code once, recording JUMPDEST offsets and skipping over
// the immediate bytes of PUSH1..PUSH32. A PUSH truncated by the end of the
// code marks only the bytes that exist.
func AnalyzeCode(code []byte) *CodeAnalysis {
	a := &CodeAnalysis{
		size:      uint64(len(code)),
		data:      newBitvec(len(code)),
		jumpdests: newBitvec(len(code)),
	}
	for pc := uint64(0); pc < a.size; {
		op := OpCode(code[pc])
		pc++
		switch {
		case op == JUMPDEST:
			a.jumpdests.set(pc - 1)
			a.count++
		case op.IsPush():
			n := uint64(op.PushSize())
			if pc+n > a.size {
				n = a.size - pc
			}
			a.data.setRange(pc, n)
			pc += n
		}
	}
	return a
}

// IsJumpDest reports whether pos holds a JUMPDEST reachable as an
// instruction.
func (a *CodeAnalysis) IsJumpDest(pos uint64) bool {
	return pos < a.size && a.jumpdests.isSet(pos)
}

// IsCode reports whether pos is the start of an instruction rather than
// PUSH data.
func (a *CodeAnalysis) IsCode(pos uint64) bool {
	return pos < a.size && !a.data.isSet(pos)
}

// JumpDests lists the valid jump destinations in ascending order.
func (a *CodeAnalysis) JumpDests() []uint64 {
	dests := make([]uint64, 0, a.count)
	for pos := uint64(0); pos < a.size; pos++ {
		if a.jumpdests.isSet(pos) {
			dests = append(dests, pos)
		}
	}
	return dests
}
