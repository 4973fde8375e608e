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

// Package debug implements Go execution tracing and CPU profiling for the
// command line tools.
package debug

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"sync"

	"github.com/smolevm/go-smolevm/log"
)

// Handler is the global debugging handler.
var Handler = new(HandlerT)

// HandlerT implements the debugging facilities. A Go trace and a CPU profile
// can be active at the same time.
type HandlerT struct {
	mu        sync.Mutex
	traceW    *os.File
	traceFile string
	ctx       context.Context
	task      *trace.Task
	cpuW      *os.File
	cpuFile   string
}

// StartGoTrace turns on tracing, writing to the given file. Regions started
// with StartRegionAuto are attached to a single task spanning the trace.
func (h *HandlerT) StartGoTrace(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traceW != nil {
		return errors.New("trace already in progress")
	}
	f, err := os.Create(expandHome(file))
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		return err
	}
	h.traceW, h.traceFile = f, file
	h.ctx, h.task = trace.NewTask(context.Background(), "smolevm")
	log.Info("Go tracing started", "dump", file)
	return nil
}

// StopGoTrace stops an ongoing trace.
func (h *HandlerT) StopGoTrace() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traceW == nil {
		return errors.New("trace not in progress")
	}
	h.task.End()
	h.task, h.ctx = nil, nil

	trace.Stop()
	log.Info("Done writing Go trace", "dump", h.traceFile)
	h.traceW.Close()
	h.traceW = nil
	return nil
}

// StartCPUProfile turns on CPU profiling, writing to the given file.
func (h *HandlerT) StartCPUProfile(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cpuW != nil {
		return errors.New("CPU profiling already in progress")
	}
	f, err := os.Create(expandHome(file))
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	h.cpuW, h.cpuFile = f, file
	log.Info("CPU profiling started", "dump", file)
	return nil
}

// StopCPUProfile stops an ongoing CPU profile.
func (h *HandlerT) StopCPUProfile() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cpuW == nil {
		return errors.New("CPU profiling not in progress")
	}
	pprof.StopCPUProfile()
	log.Info("Done writing CPU profile", "dump", h.cpuFile)
	h.cpuW.Close()
	h.cpuW = nil
	return nil
}

// Tracing reports whether a Go trace is being written.
func (h *HandlerT) Tracing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.task != nil
}

// StartRegionAuto opens a trace region named msg and returns the function
// closing it. It is a no-op when no trace is running.
func (h *HandlerT) StartRegionAuto(msg string) func() {
	h.mu.Lock()
	ctx := h.ctx
	h.mu.Unlock()
	if ctx == nil {
		return func() {}
	}
	region := trace.StartRegion(ctx, msg)
	return region.End
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p)
}
