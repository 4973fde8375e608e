// Copyright 2022 The go-ethereum Authors
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

package native

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/core/vm/runtime"
)

func TestOpCountTracer(t *testing.T) {
	tracer := NewOpCountTracer()
	jobs := []runtime.Job{
		{Code: common.FromHex("600160020100")},
		{Code: common.FromHex("600160020100")},
		{Code: common.FromHex("600556")},
	}
	_, err := runtime.ExecuteBatch(context.Background(), jobs, &runtime.Config{Tracer: tracer.Hooks(), Workers: 2})
	require.NoError(t, err)

	counts := tracer.Counts()
	require.NotEmpty(t, counts)
	assert.Equal(t, OpCount{Op: "PUSH1", Count: 5}, counts[0])
	assert.Contains(t, counts, OpCount{Op: "ADD", Count: 2})
	assert.Contains(t, counts, OpCount{Op: "JUMP", Count: 1})
	assert.Equal(t, map[string]uint64{"InvalidJumpDestination": 1}, tracer.Faults())

	raw, err := tracer.GetResult()
	require.NoError(t, err)
	var res struct {
		Runs uint64 `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, uint64(3), res.Runs)
}
