// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/smolevm/go-smolevm/cmd/utils"
	"github.com/smolevm/go-smolevm/core/vm"
)

var disasmCommand = &cli.Command{
	Action:    disasmCmd,
	Name:      "disasm",
	Usage:     "Disassemble a program",
	ArgsUsage: "[<code>]",
	Flags: []cli.Flag{
		utils.CodeFlag,
		utils.CodeFileFlag,
	},
	Description: `
The disasm command prints one instruction per line together with its stack
effect, followed by the valid jump destinations. Static jumps (a PUSH directly
followed by JUMP or JUMPI) whose target is not a JUMPDEST are reported.`,
}

// instruction is one decoded opcode with its immediate data.
type instruction struct {
	pc  uint64
	op  vm.OpCode
	arg []byte
}

// disassemble splits code into instructions. A truncated PUSH at the end of
// the code keeps only the bytes that exist.
func disassemble(code []byte) []instruction {
	var res []instruction
	for pc := uint64(0); pc < uint64(len(code)); {
		op := vm.OpCode(code[pc])
		ins := instruction{pc: pc, op: op}
		pc++
		if n := uint64(op.PushSize()); n > 0 {
			end := pc + n
			if end > uint64(len(code)) {
				end = uint64(len(code))
			}
			ins.arg = code[pc:end]
			pc = end
		}
		res = append(res, ins)
	}
	return res
}

// staticJumps collects the targets of jumps whose destination is pushed by
// the immediately preceding instruction.
func staticJumps(prog []instruction) mapset.Set[uint64] {
	targets := mapset.NewThreadUnsafeSet[uint64]()
	for i := 1; i < len(prog); i++ {
		if op := prog[i].op; op != vm.JUMP && op != vm.JUMPI {
			continue
		}
		if prev := prog[i-1]; prev.op.IsPush() {
			dest := new(uint256.Int).SetBytes(prev.arg)
			if dest.IsUint64() {
				targets.Add(dest.Uint64())
			} else {
				targets.Add(^uint64(0))
			}
		}
	}
	return targets
}

func writeDisassembly(w io.Writer, code []byte) {
	prog := disassemble(code)
	for _, ins := range prog {
		if !vm.DefaultInstructionSet.Defined(ins.op) {
			fmt.Fprintf(w, "%05d: INVALID %#x\n", ins.pc, byte(ins.op))
			continue
		}
		pops, pushes := vm.OpStackCounts(ins.op)
		if len(ins.arg) > 0 {
			fmt.Fprintf(w, "%05d: %v %#x\t(-%d +%d)\n", ins.pc, ins.op, ins.arg, pops, pushes)
		} else {
			fmt.Fprintf(w, "%05d: %v\t(-%d +%d)\n", ins.pc, ins.op, pops, pushes)
		}
	}

	dests := mapset.NewThreadUnsafeSet[uint64](vm.AnalyzeCode(code).JumpDests()...)
	fmt.Fprintf(w, "jumpdests: %v\n", sorted(dests))

	if bad := staticJumps(prog).Difference(dests); bad.Cardinality() > 0 {
		fmt.Fprintf(w, "invalid static jump targets: %v\n", sorted(bad))
	}
}

func sorted(set mapset.Set[uint64]) []uint64 {
	res := set.ToSlice()
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func disasmCmd(ctx *cli.Context) error {
	inline := ctx.String(utils.CodeFlag.Name)
	if inline == "" {
		inline = ctx.Args().First()
	}
	code, err := utils.ReadHexInput(inline, ctx.String(utils.CodeFileFlag.Name))
	if err != nil {
		return errors.Wrap(err, "invalid code")
	}
	if len(code) == 0 {
		return errors.New("no code given, use --code, --codefile or pass it as an argument")
	}
	writeDisassembly(ctx.App.Writer, code)
	return nil
}
