// Completion: 100% - Lowering engine complete
package vise

import (
	"fmt"
	"os"
)

// Engine lowers catalog operations to machine code under one profile.
// Strategy selection is deterministic: the same (operation, operands,
// profile) request always produces the same plan.
//
//	Direct    one native instruction covers the logical width
//	Composed  the logical width spans several native-width slices
//	Emulated  no native form; scalar round-trip or refinement sequence
type Engine struct {
	prof    *Profile
	x86     *x86Encoder
	msa     *msaEncoder
	scratch *ScratchPair
}

// NewEngine builds an engine for the profile. scratch may be nil, which
// disables the lowering paths that stage values in memory (emulated
// operations and bracketed rounding modes).
func NewEngine(p *Profile, scratch *ScratchPair) *Engine {
	return &Engine{
		prof:    p,
		x86:     &x86Encoder{prof: p},
		msa:     &msaEncoder{prof: p},
		scratch: scratch,
	}
}

func (e *Engine) Profile() *Profile { return e.prof }

// Lower produces the instruction plan for one operation. The error is
// one of the three lowering error kinds; no partial plan ever escapes.
func (e *Engine) Lower(op VectorOp, args Args) (*Plan, error) {
	if _, err := NewVectorOp(op.Kind, op.Elem, op.Width); err != nil {
		return nil, err
	}
	args, err := Canonicalize(op, args)
	if err != nil {
		return nil, err
	}
	op.Width = e.prof.ResolveWidth(op.Width)

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "vise: lowering %s on %s\n", op, e.prof.Name())
	}

	if err := e.checkMask(op, args); err != nil {
		return nil, err
	}

	switch op.Kind {
	case MaskReduceBranch:
		return e.lowerMaskReduce(op, args)
	case RcpRefine, RsqrtRefine:
		return e.lowerRefine(op, args)
	case RcpApprox, RsqrtApprox:
		return e.lowerApprox(op, args)
	case CvtFloatToInt:
		switch op.Round {
		case RoundDefault, RoundTrunc:
			// trunc has its own instruction on both families
		default:
			return e.lowerBracketed(op, args)
		}
	case Fma, Fms:
		if err := e.checkFusedAlias(op, args); err != nil {
			return nil, err
		}
	case ShiftLeft, ShiftRightLogical, ShiftRightArith:
		if args.Imm.Value < 0 || args.Imm.Value >= int64(op.Elem.Bits()) {
			return nil, &FieldOverflowError{Field: "shift amount", Value: args.Imm.Value, Bits: op.Elem.Bits()}
		}
	}

	if e.prof.HasNative(op.Kind, op.Elem) {
		plan := &Plan{Op: op}
		if err := e.lowerNative(plan, op, args); err != nil {
			return nil, err
		}
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "vise: %s -> %s, %d instruction(s)\n", op, plan.Strategy, len(plan.Insts))
		}
		return plan, nil
	}
	return e.lowerEmulated(op, args)
}

// checkMask rejects mask operands the profile cannot express. The
// all-ones default (k0) passes through and encodes identically to the
// unmasked form.
func (e *Engine) checkMask(op VectorOp, args Args) error {
	if args.Mask.Zero() {
		if args.MaskZero {
			return &UnsupportedShapeError{Op: op, Detail: "zero-masking without a mask register"}
		}
		return nil
	}
	switch e.prof.arch {
	case ArchX86_64:
		if args.Mask.Class != RegMask {
			return &UnsupportedShapeError{Op: op, Detail: "mask operand must be a mask register"}
		}
		// The bitwise encodings only exist at dword/qword granularity,
		// so a predicate over 8/16-bit lanes has no lane-true form.
		if op.Elem.Bits() < 32 {
			switch op.Kind {
			case And, AndNot, Or, Xor, Not:
				return &UnsupportedShapeError{Op: op, Detail: "lane masking is not expressible on sub-dword bitwise lanes"}
			}
		}
	case ArchMIPS64:
		if op.Kind != MaskedMerge {
			return &UnsupportedShapeError{Op: op, Detail: "per-lane masking is only available through masked merge"}
		}
		if args.Mask.Class != RegVector {
			return &UnsupportedShapeError{Op: op, Detail: "merge mask must be a lane vector"}
		}
		if args.MaskZero {
			return &UnsupportedShapeError{Op: op, Detail: "zero-masking is not available"}
		}
	}
	return nil
}

// checkFusedAlias enforces the per-family accumulator constraint on the
// fused multiply forms: the prefixed family folds the destination into
// the product, the fixed-width family into the addend.
func (e *Engine) checkFusedAlias(op VectorOp, args Args) error {
	dst, ok := args.Dst.(Register)
	if !ok {
		return &UnsupportedShapeError{Op: op, Detail: "fused destination must be a register"}
	}
	switch e.prof.arch {
	case ArchX86_64:
		s1, ok := args.Src1.(Register)
		if !ok || s1.Encoding != dst.Encoding {
			return &UnsupportedShapeError{Op: op, Detail: "fused destination must alias the first factor"}
		}
	case ArchMIPS64:
		if op.Kind == Fma {
			s3, ok := args.Src3.(Register)
			if !ok || s3.Encoding != dst.Encoding {
				return &UnsupportedShapeError{Op: op, Detail: "fused destination must alias the addend"}
			}
		}
	}
	return nil
}

// lowerNative emits the Direct form when one native instruction covers
// the logical width, and the Composed slice sequence otherwise. Slices
// run low to high; register operands step to the next consecutive
// encoding and memory operands advance by the slice byte size.
func (e *Engine) lowerNative(plan *Plan, op VectorOp, args Args) error {
	n := e.prof.NativeWidthRegisters(op.Width)
	phys := e.prof.physBits(op.Width)

	if n == 1 {
		plan.Strategy = StrategyDirect
		rec := &record{
			op: op, dst: args.Dst, src1: args.Src1, src2: args.Src2, src3: args.Src3,
			mask: args.Mask, maskZero: args.MaskZero, imm: args.Imm, physBits: phys,
		}
		return e.appendRecord(plan, rec)
	}

	if !entryFor(op.Kind).homogeneous {
		return &UnimplementedOperationError{Op: op, Profile: e.prof.Name()}
	}
	if !args.Mask.Zero() && op.Kind != MaskedMerge {
		return &UnsupportedShapeError{Op: op, Detail: "masking is not available across composed slices"}
	}

	plan.Strategy = StrategyComposed
	sliceOp := op
	sliceOp.Width = Width(phys)
	for i := 0; i < n; i++ {
		rec := &record{op: sliceOp, physBits: phys, imm: args.Imm, maskZero: args.MaskZero}
		var err error
		if rec.dst, err = e.sliceOperand(args.Dst, i, phys); err != nil {
			return err
		}
		if rec.src1, err = e.sliceOperand(args.Src1, i, phys); err != nil {
			return err
		}
		if rec.src2, err = e.sliceOperand(args.Src2, i, phys); err != nil {
			return err
		}
		if rec.src3, err = e.sliceOperand(args.Src3, i, phys); err != nil {
			return err
		}
		if !args.Mask.Zero() {
			m, err := sliceRegister(e.prof.arch, args.Mask, i, phys)
			if err != nil {
				return err
			}
			rec.mask = m
		}
		if err := e.appendRecord(plan, rec); err != nil {
			return err
		}
	}
	return nil
}

// sliceOperand advances one operand to the i-th slice.
func (e *Engine) sliceOperand(o Operand, i int, physBits int) (Operand, error) {
	switch v := o.(type) {
	case nil:
		return nil, nil
	case Register:
		return sliceRegister(e.prof.arch, v, i, physBits)
	case Memory:
		return v.WithDisp(int32(i * physBits / 8)), nil
	case Immediate:
		return v, nil
	default:
		panic("BUG: unknown operand type")
	}
}

func (e *Engine) appendRecord(plan *Plan, rec *record) error {
	switch e.prof.arch {
	case ArchX86_64:
		inst, err := e.x86.encode(rec)
		if err != nil {
			return err
		}
		plan.add(inst)
		return nil
	case ArchMIPS64:
		insts, err := e.msa.encode(rec)
		if err != nil {
			return err
		}
		for _, in := range insts {
			plan.add(in)
		}
		return nil
	default:
		panic("BUG: engine built for an unknown architecture")
	}
}

// emitMove lowers a register/memory move of the given shape into an
// existing plan. The sequencer and the bracket stage build their
// load/store legs with the same Direct/Composed machinery user moves
// take, so slice stepping and displacement classing never diverge.
func (e *Engine) emitMove(plan *Plan, elem ElemType, w Width, dst, src Operand) error {
	mv := VectorOp{Kind: Move, Elem: elem, Width: w}
	return e.lowerNative(plan, mv, Args{Dst: dst, Src1: src})
}
