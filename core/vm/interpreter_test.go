// Copyright 2021 The go-ethereum Authors
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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/core/tracing"
)

func run(t *testing.T, code string, input []byte, cfg Config) (*ExecutionContext, error) {
	t.Helper()
	ctx := NewExecutionContext(common.FromHex(code), input)
	err := NewInterpreter(nil, cfg).Run(ctx)
	return ctx, err
}

func top(t *testing.T, ctx *ExecutionContext) *uint256.Int {
	t.Helper()
	w, err := ctx.Stack.Peek(0)
	require.NoError(t, err)
	return w
}

func TestScenarioAddStop(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("600160020100"), nil)
	in := NewInterpreter(nil, Config{})

	for i := 0; i < 3; i++ {
		require.NoError(t, in.Step(ctx))
	}
	assert.Equal(t, uint64(5), ctx.PC())
	assert.Equal(t, uint64(3), top(t, ctx).Uint64())

	require.NoError(t, in.Run(ctx))
	assert.True(t, ctx.Halted())
	assert.Empty(t, ctx.ReturnData())
	assert.Equal(t, uint64(4), ctx.Steps())
}

func TestScenarioMstore8Return(t *testing.T) {
	ctx, err := run(t, "602A60005360016000F3", nil, Config{})
	require.NoError(t, err)
	assert.True(t, ctx.Halted())
	assert.Equal(t, []byte{0x2a}, ctx.ReturnData())
}

func TestScenarioInvalidJump(t *testing.T) {
	ctx, err := run(t, "600556", nil, Config{})
	require.ErrorIs(t, err, ErrInvalidJump)
	assert.False(t, ctx.Halted())
	assert.True(t, ctx.Done())
	assert.Equal(t, uint64(2), ctx.FaultPC())
	assert.Equal(t, FaultInvalidJump, FaultKindOf(ctx.Err()))
}

var loopTests = []string{
	// jumpdest push1(0) jump
	"5b600056",
	// infinite loop using JUMP: push(2) jumpdest dup1 jump
	"60025b8056",
	// infinite loop using JUMPI: push(1) push(4) jumpdest dup2 dup2 jumpi
	"600160045b818157",
}

func TestStepLimit(t *testing.T) {
	for _, code := range loopTests {
		ctx, err := run(t, code, nil, Config{StepLimit: 100})
		require.ErrorIs(t, err, ErrStepLimitReached, "code %s", code)
		assert.Equal(t, uint64(100), ctx.Steps())
		assert.Equal(t, FaultStepLimit, FaultKindOf(err))
	}
}

func TestStepLimitExact(t *testing.T) {
	_, err := run(t, "600160020100", nil, Config{StepLimit: 4})
	assert.NoError(t, err)
	ctx, err := run(t, "600160020100", nil, Config{StepLimit: 3})
	assert.ErrorIs(t, err, ErrStepLimitReached)
	assert.Equal(t, uint64(5), ctx.FaultPC())
}

func TestInvalidOpCode(t *testing.T) {
	ctx, err := run(t, "6001fe", nil, Config{})
	var invalid *ErrInvalidOpCode
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, OpCode(0xfe), invalid.opcode)
	assert.Equal(t, uint64(2), ctx.FaultPC())
	assert.Equal(t, FaultInvalidOpCode, FaultKindOf(err))
}

func TestImplicitStop(t *testing.T) {
	ctx, err := run(t, "6001", nil, Config{})
	require.NoError(t, err)
	assert.True(t, ctx.Halted())
	assert.Equal(t, uint64(2), ctx.Steps())

	ctx, err = run(t, "", nil, Config{})
	require.NoError(t, err)
	assert.True(t, ctx.Halted())
}

func TestTruncatedPush(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("7faabb"), nil)
	in := NewInterpreter(nil, Config{})
	require.NoError(t, in.Step(ctx))

	want := new(uint256.Int).Lsh(uint256.NewInt(0xaabb), 30*8)
	assert.Equal(t, want, top(t, ctx))
	require.NoError(t, in.Run(ctx))
	assert.True(t, ctx.Halted())
}

func TestStackFaults(t *testing.T) {
	_, err := run(t, "01", nil, Config{})
	var underflow *ErrStackUnderflow
	require.ErrorAs(t, err, &underflow)
	assert.Equal(t, FaultStackUnderflow, FaultKindOf(err))

	// jumpdest push0 push1(0) jump: one extra item per iteration
	ctx, err := run(t, "5b5f600056", nil, Config{})
	var overflow *ErrStackOverflow
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, FaultStackOverflow, FaultKindOf(err))
	assert.Equal(t, 1024, ctx.Stack.Len())
}

func TestArithmetic(t *testing.T) {
	max := "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	tests := []struct {
		code string
		want *uint256.Int
	}{
		{"6001" + max + "01", new(uint256.Int)},
		{"6000" + max + "02", new(uint256.Int)},
		{"60036005" + "02", uint256.NewInt(15)},
		// SUB is top minus second: 5 - 3
		{"60036005" + "03", uint256.NewInt(2)},
		{"60056003" + "03", new(uint256.Int).SetAllOne().Sub(new(uint256.Int).SetAllOne(), uint256.NewInt(1))},
		{"6003600a" + "04", uint256.NewInt(3)},
		{"6000600a" + "04", new(uint256.Int)},
		{"6003600a" + "06", uint256.NewInt(1)},
		{"600560046003" + "08", uint256.NewInt(2)},
		{"600560046003" + "09", uint256.NewInt(2)},
		{"60086002" + "0a", uint256.NewInt(256)},
		{"60ff6000" + "0b", new(uint256.Int).SetAllOne()},
		{"60026001" + "10", uint256.NewInt(1)},
		{"60026001" + "11", new(uint256.Int)},
		{"60026002" + "14", uint256.NewInt(1)},
		{"6000" + "15", uint256.NewInt(1)},
		{"600c600a" + "16", uint256.NewInt(8)},
		{"600c600a" + "17", uint256.NewInt(14)},
		{"600c600a" + "18", uint256.NewInt(6)},
		{"6000" + "19", new(uint256.Int).SetAllOne()},
		{"61abcd601e" + "1a", uint256.NewInt(0xab)},
		{"60016004" + "1b", uint256.NewInt(16)},
		{"60106004" + "1c", uint256.NewInt(1)},
		{max + "6004" + "1d", new(uint256.Int).SetAllOne()},
		{"6001610100" + "1b", new(uint256.Int)},
	}
	for _, test := range tests {
		ctx, err := run(t, test.code, nil, Config{})
		require.NoError(t, err, "code %s", test.code)
		assert.Equal(t, test.want, top(t, ctx), "code %s", test.code)
	}
}

func TestSignedArithmetic(t *testing.T) {
	minusOne := "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	tests := []struct {
		code string
		want *uint256.Int
	}{
		// -1 < 1
		{"6001" + minusOne + "12", uint256.NewInt(1)},
		{"6001" + minusOne + "13", new(uint256.Int)},
		// 10 / -1 == -1 * 10
		{minusOne + "600a" + "05", new(uint256.Int).Neg(uint256.NewInt(10))},
		{"6003" + minusOne + "07", new(uint256.Int).SetAllOne()},
	}
	for _, test := range tests {
		ctx, err := run(t, test.code, nil, Config{})
		require.NoError(t, err, "code %s", test.code)
		assert.Equal(t, test.want, top(t, ctx), "code %s", test.code)
	}
}

func TestPcAndMsize(t *testing.T) {
	// push1 0, pop, pc, mstore8(0x40, 1), msize
	ctx, err := run(t, "6000505860016040535900", nil, Config{})
	require.NoError(t, err)
	data := ctx.StackData()
	require.Len(t, data, 2)
	assert.Equal(t, uint64(3), data[0].Uint64())
	assert.Equal(t, uint64(96), data[1].Uint64())
}

func TestMstore8Masks(t *testing.T) {
	ctx, err := run(t, "61123460005360016000f3", nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x34}, ctx.ReturnData())
}

func TestMstoreMload(t *testing.T) {
	// mstore(1, 0x0102) mload(1) msize
	ctx, err := run(t, "61010260015260015159", nil, Config{})
	require.NoError(t, err)
	data := ctx.StackData()
	require.Len(t, data, 2)
	assert.Equal(t, uint64(0x0102), data[0].Uint64())
	assert.Equal(t, uint64(64), data[1].Uint64())
}

func TestMemoryOffsetTooLarge(t *testing.T) {
	_, err := run(t, "6001"+"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"+"53", nil, Config{})
	assert.ErrorIs(t, err, ErrMemoryLimit)
	assert.Equal(t, FaultMemoryLimit, FaultKindOf(err))

	// Zero-length return at an absurd offset is fine.
	ctx, err := run(t, "6000"+"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"+"f3", nil, Config{})
	require.NoError(t, err)
	assert.Empty(t, ctx.ReturnData())
	assert.Zero(t, ctx.Memory.Len())
}

func TestJumps(t *testing.T) {
	// jumpi(7, 1) over two invalid opcodes to jumpdest, push1 7, stop
	ctx, err := run(t, "6001600757fefe5b600700", nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), top(t, ctx).Uint64())

	// JUMPI with zero condition falls through, even to an invalid target.
	ctx, err = run(t, "6000600357600800", nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), top(t, ctx).Uint64())

	// Target inside push data.
	_, err = run(t, "600456605b00", nil, Config{})
	assert.ErrorIs(t, err, ErrInvalidJump)

	// Target beyond 64 bits.
	_, err = run(t, "6801000000000000000056", nil, Config{})
	assert.ErrorIs(t, err, ErrInvalidJump)
}

func TestDupSwap(t *testing.T) {
	// push 1 2 3, dup3, swap1
	ctx, err := run(t, "600160026003829000", nil, Config{})
	require.NoError(t, err)
	var got []uint64
	for _, w := range ctx.StackData() {
		got = append(got, w.Uint64())
	}
	assert.Equal(t, []uint64{1, 2, 1, 3}, got)
}

func TestCalldataOps(t *testing.T) {
	input := common.FromHex("0102030405")
	// calldatasize, push1 1 calldataload, push1 4 push1 1 push1 0 calldatacopy, push1 8 push1 0 return
	ctx, err := run(t, "36600135"+"600460016000"+"37"+"60086000f3", input, Config{})
	require.NoError(t, err)
	data := ctx.StackData()
	require.Len(t, data, 2)
	assert.Equal(t, uint64(5), data[0].Uint64())
	b := data[1].Bytes32()
	assert.Equal(t, []byte{2, 3, 4, 5}, b[:4])
	assert.Equal(t, make([]byte, 28), b[4:])
	assert.Equal(t, []byte{2, 3, 4, 5, 0, 0, 0, 0}, ctx.ReturnData())
}

func TestCodeOps(t *testing.T) {
	// codesize, push1 3 push1 0 push1 0 codecopy, push1 3 push1 0 return
	code := "38" + "600360006000" + "39" + "60036000f3"
	ctx, err := run(t, code, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, uint64(len(code)/2), top(t, ctx).Uint64())
	assert.Equal(t, common.FromHex(code)[:3], ctx.ReturnData())
}

func TestCopyTooLarge(t *testing.T) {
	// calldatacopy(0, 0, 2^64-1)
	_, err := run(t, "67ffffffffffffffff60006000"+"37", nil, Config{})
	assert.ErrorIs(t, err, ErrMemoryLimit)
}

func TestCustomTable(t *testing.T) {
	table := DefaultInstructionSet.Without(ADD)
	assert.False(t, table.Defined(ADD))
	assert.True(t, DefaultInstructionSet.Defined(ADD))

	ctx := NewExecutionContext(common.FromHex("600160020100"), nil)
	err := NewInterpreter(&table, Config{}).Run(ctx)
	var invalid *ErrInvalidOpCode
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, uint64(4), ctx.FaultPC())
}

func TestStepOnDoneContext(t *testing.T) {
	ctx, err := run(t, "600556", nil, Config{})
	require.Error(t, err)
	in := NewInterpreter(nil, Config{})
	assert.ErrorIs(t, in.Step(ctx), ErrInvalidJump)
	assert.Equal(t, uint64(1), ctx.Steps())
}

func TestTracerHooks(t *testing.T) {
	type step struct {
		pc    uint64
		op    OpCode
		stack int
	}
	var (
		steps   []step
		entered bool
		exitErr error
		faulted OpCode
	)
	hooks := &tracing.Hooks{
		OnEnter: func(code, input []byte) { entered = true },
		OnStep: func(pc uint64, op byte, scope tracing.OpContext) {
			steps = append(steps, step{pc, OpCode(op), len(scope.StackData())})
		},
		OnFault: func(pc uint64, op byte, scope tracing.OpContext, err error) {
			faulted = OpCode(op)
		},
		OnExit: func(output []byte, n uint64, err error) { exitErr = err },
	}
	_, err := run(t, "600160020156", nil, Config{Tracer: hooks})
	require.Error(t, err)

	assert.True(t, entered)
	assert.Equal(t, []step{{0, PUSH1, 0}, {2, PUSH1, 1}, {4, ADD, 2}, {5, JUMP, 1}}, steps)
	assert.Equal(t, JUMP, faulted)
	assert.ErrorIs(t, exitErr, ErrInvalidJump)
}

func TestFaultKindOf(t *testing.T) {
	assert.Equal(t, FaultNone, FaultKindOf(nil))
	assert.Equal(t, FaultInvalidStackIndex, FaultKindOf(ErrInvalidStackIndex))
	assert.Equal(t, FaultInvalidMemoryValue, FaultKindOf(ErrInvalidMemoryValue))
	assert.Equal(t, FaultUnknown, FaultKindOf(errStopToken))
	assert.Equal(t, "InvalidJumpDestination", FaultInvalidJump.String())
	assert.Equal(t, "FaultKind(200)", FaultKind(200).String())
}

func TestOpStackCounts(t *testing.T) {
	pops, pushes := OpStackCounts(DUP3)
	assert.Equal(t, 3, pops)
	assert.Equal(t, 4, pushes)
	assert.Equal(t, 1, NextStackSize(ADD, 2))
	assert.Equal(t, 5, NextStackSize(PUSH32, 4))
	pops, pushes = OpStackCounts(0xfe)
	assert.Zero(t, pops+pushes)
}

func BenchmarkLoop(b *testing.B) {
	code := common.FromHex("5b600056")
	in := NewInterpreter(nil, Config{StepLimit: 3000})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx := NewExecutionContext(code, nil)
		_ = in.Run(ctx)
		ctx.Release()
	}
}

func TestAbort(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("5b600056"), nil)
	ctx.Abort()
	err := NewInterpreter(nil, Config{}).Run(ctx)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, FaultAborted, FaultKindOf(err))
	assert.Equal(t, uint64(2), ctx.Steps())
}
