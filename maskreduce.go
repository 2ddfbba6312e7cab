// Completion: 100% - Mask reduction synthesizer complete
package vise

// Mask reduction: collapse a lane predicate to one bit of truth and
// branch on it. The predicate file has an instruction for this; the
// lane-vector file folds its slices through the bitwise unit first.
// Either way the plan declares the same clobber set, so callers never
// depend on which path a profile takes.

// reduceState is the synthesizer's two-phase walk: slices fold while
// Collecting, the branch may only be emitted once Decided.
type reduceState int

const (
	reduceCollecting reduceState = iota
	reduceDecided
)

func (e *Engine) lowerMaskReduce(op VectorOp, args Args) (*Plan, error) {
	switch e.prof.arch {
	case ArchX86_64:
		return e.reduceMaskRegister(op, args)
	case ArchMIPS64:
		return e.reduceLaneVector(op, args)
	default:
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}
}

// reduceMaskRegister tests a predicate register directly. KORTEST of a
// mask against itself raises ZF when no lane is set and CF when all
// lanes covered by the test width are. Lane counts below the narrowest
// test width fall back to a scalar compare under an explicit lane mask;
// counts past sixteen need the wide mask capability.
func (e *Engine) reduceMaskRegister(op VectorOp, args Args) (*Plan, error) {
	src, ok := args.Src1.(Register)
	if !ok || src.Class != RegMask {
		return nil, &UnsupportedShapeError{Op: op, Detail: "reduction source must be a mask register"}
	}
	if !args.Imm.fits(32) {
		return nil, &FieldOverflowError{Field: "branch displacement", Value: args.Imm.Value, Bits: 32}
	}
	disp := int32(args.Imm.Value)
	lanes := op.Lanes()
	mb := maskWidthBits(lanes)
	if mb > 16 && !e.prof.Has(CapWideMask) {
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}

	plan := &Plan{Op: op}
	if lanes >= 8 {
		plan.Strategy = StrategyDirect
		plan.add(x86KOrTest(src, src, mb))
		if op.Expect == AllLanesSet {
			plan.add(x86Jcc("jc", ccC, disp))
		} else {
			plan.add(x86Jcc("jz", ccZ, disp))
		}
	} else {
		// partial masks: the untested upper bits of the register would
		// poison the all-ones test
		laneMask := int32(1)<<lanes - 1
		rax := e.prof.scratchGPR()
		plan.Strategy = StrategyEmulated
		plan.add(x86KMovToGPR(rax, src, 8))
		plan.add(x86ALUImm32("and", 4, rax, laneMask, true))
		if op.Expect == AllLanesSet {
			plan.add(x86ALUImm32("cmp", 7, rax, laneMask, true))
			plan.add(x86Jcc("je", ccE, disp))
		} else {
			plan.add(x86ALUImm32("cmp", 7, rax, 0, true))
			plan.add(x86Jcc("je", ccE, disp))
		}
	}

	plan.clobber(e.prof.scratchGPR())
	return plan, nil
}

// reduceLaneVector folds the slices of a 0/-1 lane vector into the top
// scratch register and branches on it: AND preserves all-lanes-set, OR
// preserves any-lane-set.
func (e *Engine) reduceLaneVector(op VectorOp, args Args) (*Plan, error) {
	src, ok := args.Src1.(Register)
	if !ok || src.Class != RegVector {
		return nil, &UnsupportedShapeError{Op: op, Detail: "reduction source must be a lane vector"}
	}
	if !args.Imm.fits(32) {
		return nil, &FieldOverflowError{Field: "branch displacement", Value: args.Imm.Value, Bits: 32}
	}
	phys := e.prof.physBits(op.Width)
	n := e.prof.NativeWidthRegisters(op.Width)

	plan := &Plan{Op: op, Strategy: StrategyDirect}
	state := reduceCollecting

	acc := src
	if n > 1 {
		plan.Strategy = StrategyComposed
		acc = e.prof.scratchVec(0, phys)
		for i := 0; i < n; i++ {
			si, err := sliceRegister(ArchMIPS64, src, i, phys)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				plan.add(msaInst("or.v", msaWordVEC(0x01, uint32(si.Encoding), uint32(si.Encoding), uint32(acc.Encoding))))
				continue
			}
			if op.Expect == AllLanesSet {
				plan.add(msaInst("and.v", msaWordVEC(0x00, uint32(si.Encoding), uint32(acc.Encoding), uint32(acc.Encoding))))
			} else {
				plan.add(msaInst("or.v", msaWordVEC(0x01, uint32(si.Encoding), uint32(acc.Encoding), uint32(acc.Encoding))))
			}
		}
		plan.clobber(acc)
	}
	state = reduceDecided

	br, err := e.reduceBranch(op, acc, int32(args.Imm.Value), state)
	if err != nil {
		return nil, err
	}
	plan.add(br)

	plan.clobber(e.prof.scratchGPR())
	return plan, nil
}

// reduceBranch emits the final test-and-branch. Callers must have
// finished folding first; the accumulator is not a valid predicate
// while slices are still outstanding.
func (e *Engine) reduceBranch(op VectorOp, acc Register, disp int32, state reduceState) (Inst, error) {
	if state != reduceDecided {
		panic("BUG: branch emission before the fold decided")
	}
	if op.Expect == AllLanesSet {
		// every lane nonzero within each slice, across all slices
		return msaBranchNotZero(acc, int(intDF(op.Elem)), disp)
	}
	return msaBranchZero(acc, -1, disp)
}
