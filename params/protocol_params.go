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

// Package params holds the fixed limits of the virtual machine.
package params

const (
	StackLimit uint64 = 1024 // Maximum size of VM stack allowed.
	WordSize   uint64 = 32   // Size in bytes of a machine word and of one memory expansion step.

	// DefaultStepLimit bounds the number of executed instructions when the
	// caller does not configure a budget.
	DefaultStepLimit uint64 = 10_000_000

	// MaxMemorySize caps the byte size memory may expand to in a single run.
	MaxMemorySize uint64 = 32 * 1024 * 1024

	// DefaultAnalysisCacheSize is the number of jump-destination bitmaps kept
	// in the shared code analysis cache.
	DefaultAnalysisCacheSize = 4096
)
