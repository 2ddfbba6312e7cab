// Completion: 100% - Emulation sequencer complete
package vise

// Scalar round-trip emulation: spill the vector sources to scratch
// memory, run a scalar kernel over every lane, load the result back.
// Always correct, never fast; it exists so the catalog's answer is a
// working sequence instead of a hole in the operation matrix.

// lowerEmulated builds the round-trip plan for an operation with no
// native form under the profile.
func (e *Engine) lowerEmulated(op VectorOp, args Args) (*Plan, error) {
	if e.scratch == nil {
		return nil, &UnsupportedShapeError{Op: op, Detail: "emulation requires a scratch region pair"}
	}
	if !args.Mask.Zero() && op.Kind != MaskedMerge {
		return nil, &UnsupportedShapeError{Op: op, Detail: "masking is not available on emulated operations"}
	}
	if !e.scratch.A.fitsWidth(op.Width) {
		return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region A smaller than the operand width"}
	}

	switch {
	case isCompareKind(op.Kind):
		return e.emulateCompare(op, args)
	case op.Kind == MaskedMerge:
		return e.emulateMerge(op, args)
	case op.Elem.IsFloat():
		// the only float operations without native rows are the
		// reciprocal approximations, which route through lowerApprox
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}
	return e.emulateIntLanes(op, args)
}

func isCompareKind(k Kind) bool {
	switch k {
	case CmpEq, CmpNe, CmpLt, CmpLe, CmpGt, CmpGe:
		return true
	default:
		return false
	}
}

// vecSrc narrows an emulation source to a vector register. The
// round-trip stages through memory itself, so address operands would
// alias the scratch regions unpredictably.
func vecSrc(op VectorOp, o Operand) (Register, error) {
	r, ok := o.(Register)
	if !ok || r.Class != RegVector {
		return Register{}, &UnsupportedShapeError{Op: op, Detail: "emulated operations take register sources"}
	}
	return r, nil
}

// emulateIntLanes is the integer round-trip: multiply, divide and
// saturating arithmetic on lane shapes the profile has no rows for, and
// every byte-lane shift.
func (e *Engine) emulateIntLanes(op VectorOp, args Args) (*Plan, error) {
	dst, err := vecSrc(op, args.Dst)
	if err != nil {
		return nil, err
	}
	src1, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	binary := args.Src2 != nil
	var src2 Register
	if binary {
		if src2, err = vecSrc(op, args.Src2); err != nil {
			return nil, err
		}
		if !e.scratch.B.fitsWidth(op.Width) {
			return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region B smaller than the operand width"}
		}
	}
	if args.Imm != nil {
		if args.Imm.Value < 0 || args.Imm.Value >= int64(op.Elem.Bits()) {
			return nil, &FieldOverflowError{Field: "shift amount", Value: args.Imm.Value, Bits: op.Elem.Bits()}
		}
	}

	plan := &Plan{Op: op, Strategy: StrategyEmulated}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.A.Mem(0), src1); err != nil {
		return nil, err
	}
	if binary {
		if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.B.Mem(0), src2); err != nil {
			return nil, err
		}
	}

	laneBytes := int32(op.Elem.Bytes())
	for i := 0; i < op.Lanes(); i++ {
		a := e.scratch.A.Mem(int32(i) * laneBytes)
		b := e.scratch.B.Mem(int32(i) * laneBytes)
		switch e.prof.arch {
		case ArchX86_64:
			if err := e.x86IntKernel(plan, op, a, b, args.Imm); err != nil {
				return nil, err
			}
		default:
			// the fixed-width file has native rows for the whole
			// integer catalog
			return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
		}
	}

	if err := e.emitMove(plan, op.Elem, op.Width, dst, e.scratch.A.Mem(0)); err != nil {
		return nil, err
	}
	plan.Strategy = StrategyEmulated
	plan.clobber(e.prof.scratchGPR(), e.prof.scratchGPR2(), e.prof.scratchGPR3())
	return plan, nil
}

// x86IntKernel runs one lane through the scalar unit: widen into rax
// (and rcx for the second source), operate, clamp where the operation
// saturates, store the low lane bytes back.
func (e *Engine) x86IntKernel(plan *Plan, op VectorOp, a, b Memory, imm *Immediate) error {
	rax := e.prof.scratchGPR()
	rcx := e.prof.scratchGPR2()
	rdx := e.prof.scratchGPR3()
	elem := op.Elem
	bits := elem.Bits()
	signed := elem.IsSigned()

	plan.add(x86LoadLane(rax, a, elem))
	if entryFor(op.Kind).nSrc == 2 {
		plan.add(x86LoadLane(rcx, b, elem))
	}

	switch op.Kind {
	case Mul:
		plan.add(x86IMul(rax, rcx))

	case Div:
		if signed {
			plan.add(x86CQO())
			plan.add(x86Div("idiv", 7, rcx))
		} else {
			plan.add(x86Xor(rdx, rdx))
			plan.add(x86Div("div", 6, rcx))
		}

	case Add:
		plan.add(x86Add(rax, rcx))
	case Sub:
		plan.add(x86Sub(rax, rcx))

	case Min:
		if signed {
			plan.add(x86Cmp(rax, rcx))
			plan.add(x86CMov("cmovg", ccG, rax, rcx))
		} else {
			plan.add(x86Cmp(rax, rcx))
			plan.add(x86CMov("cmova", ccA, rax, rcx))
		}
	case Max:
		if signed {
			plan.add(x86Cmp(rax, rcx))
			plan.add(x86CMov("cmovl", ccL, rax, rcx))
		} else {
			plan.add(x86Cmp(rax, rcx))
			plan.add(x86CMov("cmovb", ccB, rax, rcx))
		}

	case SatAdd, SatSub:
		if op.Kind == SatAdd {
			plan.add(x86Add(rax, rcx))
		} else {
			plan.add(x86Sub(rax, rcx))
		}
		if signed {
			hi := int64(1)<<(bits-1) - 1
			lo := -(int64(1) << (bits - 1))
			plan.add(x86MovImm64(rdx, hi))
			plan.add(x86Cmp(rax, rdx))
			plan.add(x86CMov("cmovg", ccG, rax, rdx))
			plan.add(x86MovImm64(rdx, lo))
			plan.add(x86Cmp(rax, rdx))
			plan.add(x86CMov("cmovl", ccL, rax, rdx))
		} else if op.Kind == SatAdd {
			hi := int64(1)<<bits - 1
			plan.add(x86MovImm64(rdx, hi))
			plan.add(x86Cmp(rax, rdx))
			plan.add(x86CMov("cmovg", ccG, rax, rdx))
		} else {
			// widened unsigned subtraction underflows below zero
			plan.add(x86Xor(rdx, rdx))
			plan.add(x86Cmp(rax, rdx))
			plan.add(x86CMov("cmovl", ccL, rax, rdx))
		}

	case ShiftLeft:
		plan.add(x86ShiftImm("shl", 4, rax, uint8(imm.Value)))
	case ShiftRightLogical:
		plan.add(x86ShiftImm("shr", 5, rax, uint8(imm.Value)))
	case ShiftRightArith:
		plan.add(x86ShiftImm("sar", 7, rax, uint8(imm.Value)))

	case ShiftLeftVar, ShiftRightLogicalVar, ShiftRightArithVar:
		// counts land in cl; the widened 64-bit value keeps lane
		// overshoot correct for every count below 64
		plan.add(x86ALUImm32("and", 4, rcx, 63, true))
		switch op.Kind {
		case ShiftLeftVar:
			plan.add(x86ShiftCL("shl", 4, rax))
		case ShiftRightLogicalVar:
			plan.add(x86ShiftCL("shr", 5, rax))
		default:
			plan.add(x86ShiftCL("sar", 7, rax))
		}

	default:
		return &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}

	plan.add(x86StoreLane(a, rax, bits))
	return nil
}

// emulateCompare materializes a predicate for narrow lane compares the
// profile lacks rows for: each lane compares through the scalar unit,
// the results accumulate as a bitmask in a general register, and the
// mask moves into the predicate file at the end. Lane counts past the
// base mask width need the wide mask capability.
func (e *Engine) emulateCompare(op VectorOp, args Args) (*Plan, error) {
	if e.prof.arch != ArchX86_64 {
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}
	dst, ok := args.Dst.(Register)
	if !ok || dst.Class != RegMask {
		return nil, &UnsupportedShapeError{Op: op, Detail: "compare destination must be a mask register"}
	}
	src1, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	src2, err := vecSrc(op, args.Src2)
	if err != nil {
		return nil, err
	}
	if !e.scratch.B.fitsWidth(op.Width) {
		return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region B smaller than the operand width"}
	}
	lanes := op.Lanes()
	if maskWidthBits(lanes) > 16 && !e.prof.Has(CapWideMask) {
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}

	rax := e.prof.scratchGPR()
	rcx := e.prof.scratchGPR2()
	rdx := e.prof.scratchGPR3()
	r8, _ := GetRegister(ArchX86_64, "r8")

	plan := &Plan{Op: op, Strategy: StrategyEmulated}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.A.Mem(0), src1); err != nil {
		return nil, err
	}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.B.Mem(0), src2); err != nil {
		return nil, err
	}

	mn, cc := compareCC(op.Kind, op.Elem.IsSigned())
	plan.add(x86Xor(rdx, rdx))
	laneBytes := int32(op.Elem.Bytes())
	for i := 0; i < lanes; i++ {
		plan.add(x86LoadLane(rax, e.scratch.A.Mem(int32(i)*laneBytes), op.Elem))
		plan.add(x86LoadLane(rcx, e.scratch.B.Mem(int32(i)*laneBytes), op.Elem))
		plan.add(x86Cmp(rax, rcx))
		plan.add(x86SetCC(mn, cc, r8))
		plan.add(x86ALUImm32("and", 4, r8, 1, true))
		if i > 0 {
			plan.add(x86ShiftImm("shl", 4, r8, uint8(i)))
		}
		plan.add(x86Or(rdx, r8))
	}
	plan.add(x86KMovFromGPR(dst, rdx, maskWidthBits(lanes)))
	plan.Strategy = StrategyEmulated
	plan.clobber(rax, rcx, rdx, r8)
	return plan, nil
}

func compareCC(k Kind, signed bool) (string, uint8) {
	switch k {
	case CmpEq:
		return "sete", ccE
	case CmpNe:
		return "setne", ccNE
	case CmpLt:
		if signed {
			return "setl", ccL
		}
		return "setb", ccB
	case CmpLe:
		if signed {
			return "setle", ccLE
		}
		return "setbe", ccBE
	case CmpGt:
		if signed {
			return "setg", ccG
		}
		return "seta", ccA
	default:
		if signed {
			return "setge", ccGE
		}
		return "setae", ccAE
	}
}

// emulateMerge is the bit-test fallback for masked merge on lane shapes
// without a native blend row: the predicate moves to a general
// register, each lane picks a source under the carry flag.
func (e *Engine) emulateMerge(op VectorOp, args Args) (*Plan, error) {
	if e.prof.arch != ArchX86_64 {
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}
	if args.MaskZero {
		return nil, &UnsupportedShapeError{Op: op, Detail: "zero-masking is not available on emulated merge"}
	}
	dst, err := vecSrc(op, args.Dst)
	if err != nil {
		return nil, err
	}
	src1, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	src2, err := vecSrc(op, args.Src2)
	if err != nil {
		return nil, err
	}
	if !e.scratch.B.fitsWidth(op.Width) {
		return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region B smaller than the operand width"}
	}
	lanes := op.Lanes()
	if maskWidthBits(lanes) > 16 && !e.prof.Has(CapWideMask) {
		return nil, &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}

	rax := e.prof.scratchGPR()
	rcx := e.prof.scratchGPR2()
	rdx := e.prof.scratchGPR3()

	plan := &Plan{Op: op, Strategy: StrategyEmulated}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.A.Mem(0), src1); err != nil {
		return nil, err
	}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.B.Mem(0), src2); err != nil {
		return nil, err
	}
	plan.add(x86KMovToGPR(rdx, args.Mask, maskWidthBits(lanes)))

	laneBytes := int32(op.Elem.Bytes())
	for i := 0; i < lanes; i++ {
		a := e.scratch.A.Mem(int32(i) * laneBytes)
		plan.add(x86LoadLane(rax, a, op.Elem))
		plan.add(x86LoadLane(rcx, e.scratch.B.Mem(int32(i)*laneBytes), op.Elem))
		plan.add(x86BTImm(rdx, uint8(i)))
		plan.add(x86CMov("cmovc", ccC, rax, rcx))
		plan.add(x86StoreLane(a, rax, op.Elem.Bits()))
	}

	if err := e.emitMove(plan, op.Elem, op.Width, dst, e.scratch.A.Mem(0)); err != nil {
		return nil, err
	}
	plan.Strategy = StrategyEmulated
	plan.clobber(rax, rcx, rdx)
	return plan, nil
}

// scalarRecip is the exact reciprocal path for a file without an
// approximation instruction: every lane divides through the scalar FPU.
// The result is already exact, so no refinement follows.
func (e *Engine) scalarRecip(op VectorOp, args Args, rsqrt bool) (*Plan, error) {
	if e.scratch == nil {
		return nil, &UnsupportedShapeError{Op: op, Detail: "emulation requires a scratch region pair"}
	}
	if !args.Mask.Zero() {
		return nil, &UnsupportedShapeError{Op: op, Detail: "masking is not available on emulated operations"}
	}
	if !e.scratch.A.fitsWidth(op.Width) {
		return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region A smaller than the operand width"}
	}
	dst, err := vecSrc(op, args.Dst)
	if err != nil {
		return nil, err
	}
	src, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	if e.scratch.B.Size < 8 {
		return nil, &UnsupportedShapeError{Op: op, Detail: "scratch region B too small for the staged constant"}
	}

	t8 := e.prof.scratchGPR()
	one := e.prof.scratchFPR(1)  // f6
	lane := e.prof.scratchFPR(2) // f8
	quot := e.prof.scratchFPR(3) // f10

	plan := &Plan{Op: op, Strategy: StrategyEmulated}
	if err := e.emitMove(plan, op.Elem, op.Width, e.scratch.A.Mem(0), src); err != nil {
		return nil, err
	}

	// materialize 1.0: both widths have all their set bits in the top
	// half-word of the pattern
	if op.Elem == F64 {
		plan.add(mipsLUI(t8, 0x3FF0))
		plan.add(mipsDSLL32(t8, t8, 0))
		plan.add(mipsStoreLane(e.scratch.B.Mem(0), t8, 64))
	} else {
		plan.add(mipsLUI(t8, 0x3F80))
		plan.add(mipsStoreLane(e.scratch.B.Mem(0), t8, 32))
	}
	plan.add(mipsFPLoad(one, e.scratch.B.Mem(0), op.Elem))

	laneBytes := int32(op.Elem.Bytes())
	for i := 0; i < op.Lanes(); i++ {
		m := e.scratch.A.Mem(int32(i) * laneBytes)
		plan.add(mipsFPLoad(lane, m, op.Elem))
		if rsqrt {
			plan.add(mipsFPSqrt(lane, lane, op.Elem))
		}
		plan.add(mipsFPDiv(quot, one, lane, op.Elem))
		plan.add(mipsFPStore(m, quot, op.Elem))
	}

	if err := e.emitMove(plan, op.Elem, op.Width, dst, e.scratch.A.Mem(0)); err != nil {
		return nil, err
	}
	plan.Strategy = StrategyEmulated
	plan.clobber(t8, one, lane, quot)
	return plan, nil
}
