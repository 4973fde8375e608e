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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolevm/go-smolevm/common"
)

func TestReadCode(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("0102030405"), nil)
	ctx.SetPC(1)

	v := ctx.ReadCode(2)
	assert.Equal(t, uint64(0x0203), v.Uint64())
	assert.Equal(t, uint64(3), ctx.PC())

	// Past the end: missing bytes are zero.
	v = ctx.ReadCode(4)
	assert.Equal(t, uint64(0x04050000), v.Uint64())
	assert.Equal(t, uint64(7), ctx.PC())

	v = ctx.ReadCode(1)
	assert.True(t, v.IsZero())
}

func TestSetReturnData(t *testing.T) {
	ctx := NewExecutionContext(nil, nil)
	require.NoError(t, ctx.Memory.Store(1, 0x2a))
	require.NoError(t, ctx.SetReturnData(1, 2))
	assert.True(t, ctx.Halted())
	assert.Equal(t, []byte{0x2a, 0}, ctx.ReturnData())
}

func TestStopHalts(t *testing.T) {
	ctx := NewExecutionContext(nil, nil)
	assert.False(t, ctx.Done())
	ctx.Stop()
	assert.True(t, ctx.Halted())
	assert.Empty(t, ctx.ReturnData())
}

func TestValidJumpDest(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("605b5b00"), nil)
	assert.False(t, ctx.ValidJumpDest(uint256.NewInt(1)))
	assert.True(t, ctx.ValidJumpDest(uint256.NewInt(2)))
	assert.False(t, ctx.ValidJumpDest(uint256.NewInt(3)))
	assert.False(t, ctx.ValidJumpDest(new(uint256.Int).Lsh(uint256.NewInt(1), 64)))
	assert.Equal(t, []uint64{2}, ctx.JumpDests())
}

func TestContextSeparateCalldata(t *testing.T) {
	ctx := NewExecutionContext(common.FromHex("00"), common.FromHex("aabb"))
	assert.Equal(t, []byte{0x00}, ctx.ContractCode())
	assert.Equal(t, []byte{0xaa, 0xbb}, ctx.CallInput())
}

func TestContextOptions(t *testing.T) {
	cache := NewAnalysisCache(4)
	code := common.FromHex("5b00")
	ctx := NewExecutionContext(code, nil, WithAnalysisCache(cache), WithMemoryLimit(32))
	assert.Equal(t, 1, cache.Len())
	assert.True(t, ctx.ValidJumpDest(uint256.NewInt(0)))
	assert.ErrorIs(t, ctx.Memory.Store(32, 1), ErrMemoryLimit)

	ctx.Release()
	assert.Nil(t, ctx.StackData())
}
