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

import (
	"time"

	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/log"
	"github.com/smolevm/go-smolevm/params"
)

// Config are the configuration options for the Interpreter
type Config struct {
	Tracer *tracing.Hooks

	// StepLimit bounds the number of instructions a run may execute.
	// Zero means params.DefaultStepLimit.
	StepLimit uint64

	// ProgressInterval, when non-zero, logs a trace-level progress line every
	// that many steps.
	ProgressInterval uint32
}

// Interpreter executes programs against an ExecutionContext using an
// immutable jump table. One interpreter may serve any number of concurrent
// runs, each with its own context.
type Interpreter struct {
	table    *JumpTable
	cfg      Config
	progress *log.EveryN
}

// NewInterpreter returns an interpreter dispatching through table. A nil
// table selects DefaultInstructionSet.
func NewInterpreter(table *JumpTable, cfg Config) *Interpreter {
	if table == nil {
		table = &DefaultInstructionSet
	}
	if cfg.StepLimit == 0 {
		cfg.StepLimit = params.DefaultStepLimit
	}
	in := &Interpreter{table: table, cfg: cfg}
	if cfg.ProgressInterval > 0 {
		in.progress = log.Every(cfg.ProgressInterval)
	}
	return in
}

// Config returns the effective configuration.
func (in *Interpreter) Config() Config {
	return in.cfg
}

// Run loops and executes instructions until the context halts, faults or
// exhausts the step limit. It returns the fault, if any; a normal halt
// through STOP or RETURN returns nil.
func (in *Interpreter) Run(ctx *ExecutionContext) (err error) {
	runCounter.Inc(1)
	start, startSteps := time.Now(), ctx.steps
	if t := in.cfg.Tracer; t != nil && t.OnEnter != nil {
		t.OnEnter(ctx.ContractCode(), ctx.CallInput())
	}
	defer func() {
		execTimer.UpdateSince(start)
		stepMeter.Mark(int64(ctx.steps - startSteps))
		if t := in.cfg.Tracer; t != nil && t.OnExit != nil {
			t.OnExit(ctx.returnData, ctx.steps, err)
		}
	}()

	for !ctx.Done() {
		if ctx.steps >= in.cfg.StepLimit {
			in.fault(ctx, ctx.pc, STOP, ErrStepLimitReached)
			break
		}
		if err := in.Step(ctx); err != nil {
			return err
		}
	}
	return ctx.err
}

// Step decodes and executes exactly one instruction. On a context that is
// already done it returns the recorded fault, or nil, without executing
// anything.
func (in *Interpreter) Step(ctx *ExecutionContext) error {
	if ctx.Done() {
		return ctx.err
	}
	pc := ctx.pc
	op, operation, err := in.decodeNext(ctx)
	if err != nil {
		return in.fault(ctx, pc, op, err)
	}
	// Validate stack
	if sLen := ctx.Stack.Len(); sLen < operation.minStack {
		return in.fault(ctx, pc, op, &ErrStackUnderflow{stackLen: sLen, required: operation.minStack})
	} else if sLen > operation.maxStack {
		return in.fault(ctx, pc, op, &ErrStackOverflow{stackLen: sLen, limit: operation.maxStack})
	}
	if t := in.cfg.Tracer; t != nil && t.OnStep != nil {
		t.OnStep(pc, byte(op), ctx)
	}
	if err := execute(op, pc, ctx); err != nil {
		return in.fault(ctx, pc, op, err)
	}
	ctx.steps++
	opcodeCount.Inc(1)
	if in.progress != nil {
		log.TraceBy(in.progress, "Interpreter progress", "steps", ctx.steps, "pc", ctx.pc)
	}
	return nil
}

// decodeNext reads the opcode at pc and advances past it. Running off the
// end of the code yields a STOP without moving pc.
func (in *Interpreter) decodeNext(ctx *ExecutionContext) (OpCode, *operation, error) {
	op := STOP
	if ctx.pc < uint64(ctx.Code.Len()) {
		op = OpCode(ctx.Code.ReadByte(ctx.pc))
		ctx.pc++
	}
	operation := in.table[op]
	if operation == nil {
		return op, nil, &ErrInvalidOpCode{opcode: op}
	}
	return op, operation, nil
}

func (in *Interpreter) fault(ctx *ExecutionContext, pc uint64, op OpCode, err error) error {
	ctx.err, ctx.faultPC = err, pc
	faultCounter.Inc(1)
	log.Debug("Execution stopped due to error", "pc", pc, "op", op, "steps", ctx.steps, "err", err)
	if t := in.cfg.Tracer; t != nil && t.OnFault != nil {
		t.OnFault(pc, byte(op), ctx, err)
	}
	return err
}

// execute runs the handler of a decoded, stack-validated opcode.
func execute(op OpCode, pc uint64, ctx *ExecutionContext) error {
	switch {
	case op.IsPush():
		return opPush(op, ctx)
	case op >= DUP1 && op <= DUP16:
		return opDup(op, ctx)
	case op >= SWAP1 && op <= SWAP16:
		return opSwap(op, ctx)
	}
	switch op {
	case STOP:
		return opStop(ctx)
	case ADD:
		return opAdd(ctx)
	case MUL:
		return opMul(ctx)
	case SUB:
		return opSub(ctx)
	case DIV:
		return opDiv(ctx)
	case SDIV:
		return opSdiv(ctx)
	case MOD:
		return opMod(ctx)
	case SMOD:
		return opSmod(ctx)
	case ADDMOD:
		return opAddmod(ctx)
	case MULMOD:
		return opMulmod(ctx)
	case EXP:
		return opExp(ctx)
	case SIGNEXTEND:
		return opSignExtend(ctx)
	case LT:
		return opLt(ctx)
	case GT:
		return opGt(ctx)
	case SLT:
		return opSlt(ctx)
	case SGT:
		return opSgt(ctx)
	case EQ:
		return opEq(ctx)
	case ISZERO:
		return opIszero(ctx)
	case AND:
		return opAnd(ctx)
	case OR:
		return opOr(ctx)
	case XOR:
		return opXor(ctx)
	case NOT:
		return opNot(ctx)
	case BYTE:
		return opByte(ctx)
	case SHL:
		return opSHL(ctx)
	case SHR:
		return opSHR(ctx)
	case SAR:
		return opSAR(ctx)
	case CALLDATALOAD:
		return opCallDataLoad(ctx)
	case CALLDATASIZE:
		return opCallDataSize(ctx)
	case CALLDATACOPY:
		return opCallDataCopy(ctx)
	case CODESIZE:
		return opCodeSize(ctx)
	case CODECOPY:
		return opCodeCopy(ctx)
	case POP:
		return opPop(ctx)
	case MLOAD:
		return opMload(ctx)
	case MSTORE:
		return opMstore(ctx)
	case MSTORE8:
		return opMstore8(ctx)
	case JUMP:
		return opJump(ctx)
	case JUMPI:
		return opJumpi(ctx)
	case PC:
		return opPc(pc, ctx)
	case MSIZE:
		return opMsize(ctx)
	case JUMPDEST:
		return opJumpdest(ctx)
	case PUSH0:
		return opPush0(ctx)
	case RETURN:
		return opReturn(ctx)
	}
	// Defined in a custom table but unknown to this interpreter.
	return &ErrInvalidOpCode{opcode: op}
}
