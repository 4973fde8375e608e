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

package native

import (
	"github.com/smolevm/go-smolevm/core/tracing"
)

// NewMuxTracer fans every hook out to the given tracers in order. Nil
// entries are skipped; a single tracer is returned as is.
func NewMuxTracer(tracers ...*tracing.Hooks) *tracing.Hooks {
	var hooks []*tracing.Hooks
	for _, t := range tracers {
		if t != nil {
			hooks = append(hooks, t)
		}
	}
	switch len(hooks) {
	case 0:
		return nil
	case 1:
		return hooks[0]
	}
	t := &muxTracer{tracers: hooks}
	return &tracing.Hooks{
		OnEnter: t.OnEnter,
		OnExit:  t.OnExit,
		OnStep:  t.OnStep,
		OnFault: t.OnFault,
	}
}

type muxTracer struct {
	tracers []*tracing.Hooks
}

func (t *muxTracer) OnEnter(code, input []byte) {
	for _, t := range t.tracers {
		if t.OnEnter != nil {
			t.OnEnter(code, input)
		}
	}
}

func (t *muxTracer) OnExit(output []byte, steps uint64, err error) {
	for _, t := range t.tracers {
		if t.OnExit != nil {
			t.OnExit(output, steps, err)
		}
	}
}

func (t *muxTracer) OnStep(pc uint64, op byte, scope tracing.OpContext) {
	for _, t := range t.tracers {
		if t.OnStep != nil {
			t.OnStep(pc, op, scope)
		}
	}
}

func (t *muxTracer) OnFault(pc uint64, op byte, scope tracing.OpContext, err error) {
	for _, t := range t.tracers {
		if t.OnFault != nil {
			t.OnFault(pc, op, scope, err)
		}
	}
}
