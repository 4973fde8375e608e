// Copyright 2015 The go-ethereum Authors
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

func opAdd(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Add(&x, y)
	return nil
}

func opSub(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Sub(&x, y)
	return nil
}

func opMul(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Mul(&x, y)
	return nil
}

func opDiv(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Div(&x, y)
	return nil
}

func opSdiv(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.SDiv(&x, y)
	return nil
}

func opMod(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Mod(&x, y)
	return nil
}

func opSmod(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.SMod(&x, y)
	return nil
}

func opExp(ctx *ExecutionContext) error {
	base, exponent := ctx.Stack.pop(), ctx.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil
}

func opSignExtend(ctx *ExecutionContext) error {
	back, num := ctx.Stack.pop(), ctx.Stack.peek()
	num.ExtendSign(num, &back)
	return nil
}

func opNot(ctx *ExecutionContext) error {
	x := ctx.Stack.peek()
	x.Not(x)
	return nil
}

func setBool(w *uint256.Int, b bool) {
	if b {
		w.SetOne()
	} else {
		w.Clear()
	}
}

func opLt(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	setBool(y, x.Lt(y))
	return nil
}

func opGt(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	setBool(y, x.Gt(y))
	return nil
}

func opSlt(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	setBool(y, x.Slt(y))
	return nil
}

func opSgt(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	setBool(y, x.Sgt(y))
	return nil
}

func opEq(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	setBool(y, x.Eq(y))
	return nil
}

func opIszero(ctx *ExecutionContext) error {
	x := ctx.Stack.peek()
	setBool(x, x.IsZero())
	return nil
}

func opAnd(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.And(&x, y)
	return nil
}

func opOr(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Or(&x, y)
	return nil
}

func opXor(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop(), ctx.Stack.peek()
	y.Xor(&x, y)
	return nil
}

func opByte(ctx *ExecutionContext) error {
	th, val := ctx.Stack.pop(), ctx.Stack.peek()
	val.Byte(&th)
	return nil
}

func opAddmod(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop2()
	z := ctx.Stack.peek()
	z.AddMod(&x, &y, z)
	return nil
}

func opMulmod(ctx *ExecutionContext) error {
	x, y := ctx.Stack.pop2()
	z := ctx.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(ctx *ExecutionContext) error {
	shift, value := ctx.Stack.pop(), ctx.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSHR implements Logical Shift Right with zero fill.
func opSHR(ctx *ExecutionContext) error {
	shift, value := ctx.Stack.pop(), ctx.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSAR implements Arithmetic Shift Right with sign extension.
func opSAR(ctx *ExecutionContext) error {
	shift, value := ctx.Stack.pop(), ctx.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil
}

func opCallDataLoad(ctx *ExecutionContext) error {
	x := ctx.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		*x = ctx.Calldata.ReadWord(offset)
	} else {
		x.Clear()
	}
	return nil
}

func opCallDataSize(ctx *ExecutionContext) error {
	ctx.Stack.push(new(uint256.Int).SetUint64(uint64(ctx.Calldata.Len())))
	return nil
}

func opCallDataCopy(ctx *ExecutionContext) error {
	return copyToMemory(ctx, ctx.Calldata)
}

func opCodeSize(ctx *ExecutionContext) error {
	ctx.Stack.push(new(uint256.Int).SetUint64(uint64(ctx.Code.Len())))
	return nil
}

func opCodeCopy(ctx *ExecutionContext) error {
	return copyToMemory(ctx, ctx.Code)
}

// copyToMemory implements CALLDATACOPY and CODECOPY: it pops the memory
// offset, the source offset and the length, then copies the zero-padded
// source range into memory.
func copyToMemory(ctx *ExecutionContext, src *Calldata) error {
	var (
		memOffset  = ctx.Stack.pop()
		dataOffset = ctx.Stack.pop()
		length     = ctx.Stack.pop()
	)
	memStart, size, err := memoryRange(&memOffset, &length)
	if err != nil || size == 0 {
		return err
	}
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset64 = math.MaxUint64
	}
	// Check the destination before allocating the source copy.
	if err := ctx.Memory.expand(memStart, size); err != nil {
		return err
	}
	return ctx.Memory.StoreRange(memStart, src.Slice(offset64, size))
}

// memoryRange converts a stack offset and size into memory coordinates.
// A zero size is always addressable.
func memoryRange(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, ErrMemoryLimit
	}
	return offset.Uint64(), size.Uint64(), nil
}

func memoryOffset(offset *uint256.Int) (uint64, error) {
	if !offset.IsUint64() {
		return 0, ErrMemoryLimit
	}
	return offset.Uint64(), nil
}

func opPop(ctx *ExecutionContext) error {
	ctx.Stack.pop()
	return nil
}

func opMload(ctx *ExecutionContext) error {
	v := ctx.Stack.peek()
	offset, err := memoryOffset(v)
	if err != nil {
		return err
	}
	data, err := ctx.Memory.LoadRange(offset, params.WordSize)
	if err != nil {
		return err
	}
	v.SetBytes(data)
	return nil
}

func opMstore(ctx *ExecutionContext) error {
	mStart, val := ctx.Stack.pop2()
	offset, err := memoryOffset(&mStart)
	if err != nil {
		return err
	}
	return ctx.Memory.StoreWord(offset, &val)
}

func opMstore8(ctx *ExecutionContext) error {
	off, val := ctx.Stack.pop2()
	offset, err := memoryOffset(&off)
	if err != nil {
		return err
	}
	return ctx.Memory.Store(offset, val.Uint64()&0xff)
}

func opJump(ctx *ExecutionContext) error {
	if ctx.abort.Load() {
		return ErrAborted
	}
	pos := ctx.Stack.pop()
	if !ctx.ValidJumpDest(&pos) {
		return ErrInvalidJump
	}
	ctx.SetPC(pos.Uint64())
	return nil
}

func opJumpi(ctx *ExecutionContext) error {
	if ctx.abort.Load() {
		return ErrAborted
	}
	pos, cond := ctx.Stack.pop2()
	if cond.IsZero() {
		return nil
	}
	if !ctx.ValidJumpDest(&pos) {
		return ErrInvalidJump
	}
	ctx.SetPC(pos.Uint64())
	return nil
}

func opJumpdest(ctx *ExecutionContext) error {
	return nil
}

// opPc pushes the offset of the PC instruction itself.
func opPc(pc uint64, ctx *ExecutionContext) error {
	ctx.Stack.push(new(uint256.Int).SetUint64(pc))
	return nil
}

func opMsize(ctx *ExecutionContext) error {
	ctx.Stack.push(new(uint256.Int).SetUint64(ctx.Memory.ActiveWordCount() * params.WordSize))
	return nil
}

func opReturn(ctx *ExecutionContext) error {
	offset, size := ctx.Stack.pop2()
	start, length, err := memoryRange(&offset, &size)
	if err != nil {
		return err
	}
	return ctx.SetReturnData(start, length)
}

func opStop(ctx *ExecutionContext) error {
	ctx.Stop()
	return nil
}

func opPush0(ctx *ExecutionContext) error {
	ctx.Stack.push(new(uint256.Int))
	return nil
}

// opPush reads the immediate of PUSH1..PUSH32 and pushes it.
func opPush(op OpCode, ctx *ExecutionContext) error {
	v := ctx.ReadCode(op.PushSize())
	ctx.Stack.push(&v)
	return nil
}

func opDup(op OpCode, ctx *ExecutionContext) error {
	ctx.Stack.dup(int(op-DUP1) + 1)
	return nil
}

func opSwap(op OpCode, ctx *ExecutionContext) error {
	ctx.Stack.swap(int(op-SWAP1) + 1)
	return nil
}
