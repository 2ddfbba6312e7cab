// Completion: 100% - Newton-Raphson refinement complete
package vise

import "math"

// Iterative refinement for the reciprocal approximations. One step of
//
//	r' = r * (2 - x*r)            reciprocal
//	r' = r * (1.5 - 0.5*x*r*r)    reciprocal square root
//
// roughly doubles the correct bits. The profile's accuracy knob decides
// whether a native approximation ships as-is or picks up steps.

// lowerApprox handles RcpApprox and RsqrtApprox: native approximation
// when the file has one (plus refinement when the profile wants more
// bits than the instruction delivers), exact scalar division otherwise.
func (e *Engine) lowerApprox(op VectorOp, args Args) (*Plan, error) {
	rsqrt := op.Kind == RsqrtApprox

	if !e.prof.HasNative(op.Kind, op.Elem) {
		return e.scalarRecip(op, args, rsqrt)
	}

	refine := e.prof.AccuracyBits() > e.prof.ApproxBits()
	if refine && !args.Mask.Zero() {
		return nil, &UnsupportedShapeError{Op: op, Detail: "masking is not available with refinement steps"}
	}

	plan := &Plan{Op: op}
	if err := e.lowerNative(plan, op, args); err != nil {
		return nil, err
	}
	if !refine {
		return plan, nil
	}

	dst, err := vecSrc(op, args.Dst)
	if err != nil {
		return nil, err
	}
	src, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	if err := e.appendRefine(plan, op, dst, src, rsqrt, e.prof.RefineSteps()); err != nil {
		return nil, err
	}
	plan.Strategy = StrategyEmulated
	return plan, nil
}

// lowerRefine handles the explicit refinement operations: src1 is the
// current approximation, src2 the original input.
func (e *Engine) lowerRefine(op VectorOp, args Args) (*Plan, error) {
	rsqrt := op.Kind == RsqrtRefine
	dst, err := vecSrc(op, args.Dst)
	if err != nil {
		return nil, err
	}
	approx, err := vecSrc(op, args.Src1)
	if err != nil {
		return nil, err
	}
	x, err := vecSrc(op, args.Src2)
	if err != nil {
		return nil, err
	}
	if dst.Encoding == x.Encoding {
		return nil, &UnsupportedShapeError{Op: op, Detail: "refinement destination must not alias the input operand"}
	}

	plan := &Plan{Op: op, Strategy: StrategyEmulated}
	if dst.Encoding != approx.Encoding {
		if err := e.emitMove(plan, op.Elem, op.Width, dst, approx); err != nil {
			return nil, err
		}
	}
	if err := e.appendRefine(plan, op, dst, x, rsqrt, e.prof.RefineSteps()); err != nil {
		return nil, err
	}
	plan.Strategy = StrategyEmulated
	return plan, nil
}

// appendRefine emits the step sequence in place over r (the running
// approximation) against x. Wide logical operands refine slice by
// slice; the constants broadcast once into the top scratch registers.
func (e *Engine) appendRefine(plan *Plan, op VectorOp, r, x Register, rsqrt bool, steps int) error {
	elem := op.Elem
	phys := e.prof.physBits(op.Width)
	n := e.prof.NativeWidthRegisters(op.Width)

	tmp := e.prof.scratchVec(0, phys)
	c := e.prof.scratchVec(1, phys)
	var half Register
	if rsqrt {
		half = e.prof.scratchVec(2, phys)
	}

	cVal := 2.0
	if rsqrt {
		cVal = 1.5
	}

	switch e.prof.arch {
	case ArchX86_64:
		rax := e.prof.scratchGPR()
		plan.add(x86MovImm64(rax, floatBitsFor(elem, cVal)))
		plan.add(e.x86.broadcast(c, rax, elem, phys))
		if rsqrt {
			plan.add(x86MovImm64(rax, floatBitsFor(elem, 0.5)))
			plan.add(e.x86.broadcast(half, rax, elem, phys))
		}
		plan.clobber(rax)
	case ArchMIPS64:
		t8 := e.prof.scratchGPR()
		e.msaFillConst(plan, c, t8, elem, cVal)
		if rsqrt {
			e.msaFillConst(plan, half, t8, elem, 0.5)
		}
		plan.clobber(t8)
	}
	plan.clobber(tmp, c)
	if rsqrt {
		plan.clobber(half)
	}

	for i := 0; i < n; i++ {
		ri, err := sliceRegister(e.prof.arch, r, i, phys)
		if err != nil {
			return err
		}
		xi, err := sliceRegister(e.prof.arch, x, i, phys)
		if err != nil {
			return err
		}
		for s := 0; s < steps; s++ {
			if !rsqrt {
				if err := e.refineStep(plan, elem, phys, Mul, tmp, xi, ri); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Sub, tmp, c, tmp); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Mul, ri, ri, tmp); err != nil {
					return err
				}
			} else {
				if err := e.refineStep(plan, elem, phys, Mul, tmp, ri, ri); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Mul, tmp, tmp, xi); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Mul, tmp, tmp, half); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Sub, tmp, c, tmp); err != nil {
					return err
				}
				if err := e.refineStep(plan, elem, phys, Mul, ri, ri, tmp); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Engine) refineStep(plan *Plan, elem ElemType, phys int, k Kind, dst, s1, s2 Register) error {
	rec := &record{
		op:       VectorOp{Kind: k, Elem: elem, Width: Width(phys)},
		dst:      dst,
		src1:     s1,
		src2:     s2,
		physBits: phys,
	}
	return e.appendRecord(plan, rec)
}

// msaFillConst materializes a float constant into every lane of a
// vector register. Every constant the refinement uses has all its set
// bits in the top sixteen of the pattern, so one LUI (plus a shift for
// doubles) builds the scalar.
func (e *Engine) msaFillConst(plan *Plan, dst, gpr Register, elem ElemType, v float64) {
	if elem == F64 {
		bits := math.Float64bits(v)
		plan.add(mipsLUI(gpr, int32(bits>>48)))
		plan.add(mipsDSLL32(gpr, gpr, 0))
	} else {
		bits := math.Float32bits(float32(v))
		plan.add(mipsLUI(gpr, int32(bits>>16)))
	}
	plan.add(e.msa.fill(dst, gpr, elem))
}

func floatBitsFor(elem ElemType, v float64) int64 {
	if elem == F64 {
		return int64(math.Float64bits(v))
	}
	return int64(math.Float32bits(float32(v)))
}
