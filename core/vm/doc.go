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

/*
Package vm implements a stack-machine interpreter for a subset of the
Ethereum Virtual Machine instruction set.

A run executes a flat byte code program against an ExecutionContext holding a
1024-deep stack of 256-bit words, a word-aligned scratch memory, the code and
the call input. Valid jump destinations are computed once per program and can
be shared between runs through an AnalysisCache.

The Interpreter dispatches through an immutable JumpTable and stops on STOP,
RETURN, a fault or when its step limit is exhausted. There is no gas, no
storage and no nested calls.
*/
package vm
