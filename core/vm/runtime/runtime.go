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

package runtime

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/smolevm/go-smolevm/common/gopool"
	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/core/vm"
	"github.com/smolevm/go-smolevm/log"
	"github.com/smolevm/go-smolevm/metrics"
	"github.com/smolevm/go-smolevm/params"
)

// Config is a basic type specifying certain configuration flags for running
// the VM.
type Config struct {
	StepLimit        uint64
	MaxMemory        uint64
	ProgressInterval uint32
	Workers          int // batch concurrency, zero picks one from the job count

	JumpTable     *vm.JumpTable
	AnalysisCache *vm.AnalysisCache
	Tracer        *tracing.Hooks
}

var (
	sharedCache     *vm.AnalysisCache
	sharedCacheOnce sync.Once
)

// SharedAnalysisCache returns the process-wide analysis cache used when a
// Config does not carry its own.
func SharedAnalysisCache() *vm.AnalysisCache {
	sharedCacheOnce.Do(func() {
		sharedCache = vm.NewAnalysisCache(params.DefaultAnalysisCacheSize)
	})
	return sharedCache
}

// sets defaults on the config
func setDefaults(cfg *Config) {
	if cfg.StepLimit == 0 {
		cfg.StepLimit = params.DefaultStepLimit
	}
	if cfg.MaxMemory == 0 {
		cfg.MaxMemory = params.MaxMemorySize
	}
	if cfg.JumpTable == nil {
		cfg.JumpTable = &vm.DefaultInstructionSet
	}
	if cfg.AnalysisCache == nil {
		cfg.AnalysisCache = SharedAnalysisCache()
	}
}

// Label publishes the effective configuration under "vm/config" in the
// default metrics registry.
func (cfg *Config) Label() {
	metrics.GetOrRegisterLabel("vm/config", nil).Mark(map[string]interface{}{
		"stepLimit":  cfg.StepLimit,
		"maxMemory":  cfg.MaxMemory,
		"cacheItems": cfg.AnalysisCache.Len(),
	})
}

// Result is the post-execution state of a run.
type Result struct {
	Halted     bool          // true on STOP or RETURN
	ReturnData []byte        // data set by RETURN
	Err        error         // the fault, nil on a normal halt
	Fault      vm.FaultKind  // classification of Err
	FaultPC    uint64        // offset of the faulting instruction
	Steps      uint64        // number of executed instructions
	Stack      []uint256.Int // stack at the end of the run, bottom first
	MemorySize int           // memory size in bytes at the end of the run
}

// Failed reports whether the run ended in a fault.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Execute runs code with the given input. It returns once the program halts
// or faults; cfg may be nil, in which case the defaults are used.
func Execute(code, input []byte, cfg *Config) *Result {
	return ExecuteContext(context.Background(), code, input, cfg)
}

// ExecuteContext is like Execute, but aborts the run with vm.ErrAborted once
// ctx is done.
func ExecuteContext(ctx context.Context, code, input []byte, cfg *Config) *Result {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	ectx := vm.NewExecutionContext(code, input,
		vm.WithAnalysisCache(cfg.AnalysisCache),
		vm.WithMemoryLimit(cfg.MaxMemory),
	)
	defer ectx.Release()

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, ectx.Abort)
		defer stop()
	}
	interpreter := vm.NewInterpreter(cfg.JumpTable, vm.Config{
		Tracer:           cfg.Tracer,
		StepLimit:        cfg.StepLimit,
		ProgressInterval: cfg.ProgressInterval,
	})
	err := interpreter.Run(ectx)

	res := &Result{
		Halted:     ectx.Halted(),
		ReturnData: ectx.ReturnData(),
		Err:        err,
		Fault:      vm.FaultKindOf(err),
		Steps:      ectx.Steps(),
		Stack:      append([]uint256.Int(nil), ectx.StackData()...),
		MemorySize: ectx.Memory.Len(),
	}
	if err != nil {
		res.FaultPC = ectx.FaultPC()
	}
	return res
}

// Job is one program of a batch.
type Job struct {
	Code  []byte
	Input []byte
}

// ExecuteBatch runs independent programs concurrently on a worker pool and
// returns their results in job order. Every run gets its own context; the
// jump table and analysis cache are shared. A tracer in cfg must be safe for
// concurrent use.
func ExecuteBatch(ctx context.Context, jobs []Job, cfg *Config) ([]*Result, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	pool, err := gopool.NewPool(cfg.Workers, len(jobs))
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	log.Debug("Executing batch", "jobs", len(jobs), "workers", pool.Cap())
	results := make([]*Result, len(jobs))
	err = pool.Map(ctx, len(jobs), func(ctx context.Context, i int) {
		results[i] = ExecuteContext(ctx, jobs[i].Code, jobs[i].Input, cfg)
	})
	if err != nil {
		return nil, errors.Wrap(err, "batch interrupted")
	}
	return results, nil
}
